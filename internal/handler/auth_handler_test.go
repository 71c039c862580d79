package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osvita-dev/kids-registry-api/internal/models"
	"github.com/osvita-dev/kids-registry-api/internal/repository"
	"github.com/osvita-dev/kids-registry-api/internal/service"
)

type sessionRepoMock struct {
	sessions map[string]models.AccessSession
}

func newSessionRepoMock() *sessionRepoMock {
	return &sessionRepoMock{sessions: map[string]models.AccessSession{}}
}

func (m *sessionRepoMock) Save(ctx context.Context, session models.AccessSession) error {
	m.sessions[session.ID] = session
	return nil
}

func (m *sessionRepoMock) Find(ctx context.Context, id string) (*models.AccessSession, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &session, nil
}

func (m *sessionRepoMock) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func newAuthTestHandler(repo *sessionRepoMock) *AuthHandler {
	svc := service.NewAccessService(repo, nil, service.AccessGateConfig{
		Key:           "shkola",
		SessionSecret: "test-secret",
		SessionTTL:    4 * time.Hour,
	})
	return NewAuthHandler(svc)
}

func submitKey(t *testing.T, handler *AuthHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/access-key", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	handler.SubmitKey(c)
	return w
}

func TestAuthHandlerSubmitKeyBlank(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthTestHandler(newSessionRepoMock())

	w := submitKey(t, handler, `{"access_key":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "EMPTY_KEY", env.Error.Code)
}

func TestAuthHandlerSubmitKeyWrong(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthTestHandler(newSessionRepoMock())

	w := submitKey(t, handler, `{"access_key":"ne-toy"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerSubmitKeyOpensSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newSessionRepoMock()
	handler := newAuthTestHandler(repo)

	w := submitKey(t, handler, `{"access_key":"shkola"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data models.SessionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Data.Authenticated)
	assert.NotEmpty(t, env.Data.Token)
	assert.Len(t, repo.sessions, 1)
}
