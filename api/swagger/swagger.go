package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Kids Registry API",
        "description": "Student-record registry for community operators",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Operator access gate"},
        {"name": "Students", "description": "Registry record management"},
        {"name": "Preferences", "description": "Persisted filter preferences"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/auth/access-key": {
            "post": {
                "tags": ["Auth"],
                "summary": "Submit the operator access key",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitKeyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Empty key"},
                    "401": {"description": "Wrong key"}
                }
            }
        },
        "/api/v1/auth/session": {
            "get": {
                "tags": ["Auth"],
                "summary": "Probe the current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "No valid session"}
                }
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Close the current session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "gender", "in": "query", "type": "string"},
                    {"name": "address", "in": "query", "type": "string"},
                    {"name": "date_from", "in": "query", "type": "string"},
                    {"name": "date_to", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student record",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed"},
                    "409": {"description": "Duplicate record in the loaded view"}
                }
            }
        },
        "/api/v1/students/{id}": {
            "put": {
                "tags": ["Students"],
                "summary": "Update student record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/students/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Export students matching the current filters",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["xlsx", "csv", "pdf"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "gender", "in": "query", "type": "string"},
                    {"name": "address", "in": "query", "type": "string"},
                    {"name": "date_from", "in": "query", "type": "string"},
                    {"name": "date_to", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "422": {"description": "No records match the filters"}
                }
            }
        },
        "/api/v1/students/view": {
            "get": {
                "tags": ["Students"],
                "summary": "Read the operator's current list view",
                "parameters": [
                    {"name": "operator", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Change the operator's list view state",
                "parameters": [
                    {"name": "operator", "in": "query", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ViewUpdate"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/preferences/filters": {
            "get": {
                "tags": ["Preferences"],
                "summary": "Load persisted filter preferences",
                "parameters": [
                    {"name": "operator", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Preferences"],
                "summary": "Save filter preferences",
                "parameters": [
                    {"name": "operator", "in": "query", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FilterPreferences"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Preferences"],
                "summary": "Clear filter preferences",
                "parameters": [
                    {"name": "operator", "in": "query", "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "Student": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "child_name": {"type": "string"},
                "gender": {"type": "string", "enum": ["Ч", "Ж", ""]},
                "birth_date": {"type": "string"},
                "address": {"type": "string"},
                "parent_name": {"type": "string"},
                "seq_number": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "child_name": {"type": "string"},
                "gender": {"type": "string"},
                "birth_date": {"type": "string"},
                "address": {"type": "string"},
                "parent_name": {"type": "string"},
                "seq_number": {"type": "string"}
            },
            "required": ["child_name", "birth_date", "address"]
        },
        "UpdateStudentRequest": {
            "type": "object",
            "properties": {
                "child_name": {"type": "string"},
                "gender": {"type": "string"},
                "birth_date": {"type": "string"},
                "address": {"type": "string"},
                "parent_name": {"type": "string"},
                "seq_number": {"type": "string"}
            },
            "required": ["child_name", "birth_date", "address"]
        },
        "SubmitKeyRequest": {
            "type": "object",
            "properties": {
                "access_key": {"type": "string"}
            },
            "required": ["access_key"]
        },
        "FilterPreferences": {
            "type": "object",
            "properties": {
                "search": {"type": "string"},
                "gender": {"type": "string"},
                "sort_by": {"type": "string"},
                "sort_order": {"type": "string"},
                "year": {"type": "integer"}
            }
        },
        "ViewUpdate": {
            "type": "object",
            "properties": {
                "search": {"type": "string"},
                "gender": {"type": "string"},
                "address": {"type": "string"},
                "date_from": {"type": "string"},
                "date_to": {"type": "string"},
                "year": {"type": "integer"},
                "sort_by": {"type": "string"},
                "sort_order": {"type": "string"},
                "page": {"type": "integer"},
                "per_page": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "per_page": {"type": "integer"},
                "total_count": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
