package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Prospect Portal API",
        "description": "Company prospect submission and review. List queries return data null for anonymous callers.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Password sign-in and session context"},
        {"name": "Prospects", "description": "Prospect lifecycle and queries"}
    ],
    "paths": {
        "/auth/sign-up": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register with email and password",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SignUpRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/Envelope"}},
                    "409": {"description": "Email taken", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/sign-in": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SignInRequest"}}],
                "responses": {
                    "200": {"description": "Access token", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/sign-out": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign out the current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Signed out"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/role": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Caller's role, null when signed out or unassigned",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/auth/session": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user with role rows, null when signed out",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/prospects": {
            "get": {
                "tags": ["Prospects"],
                "summary": "List visible prospects",
                "parameters": [
                    {"in": "query", "name": "status", "type": "string", "enum": ["Pending", "Approved", "Rejected", "Submitted"]},
                    {"in": "query", "name": "sort", "type": "string", "enum": ["createdAt", "status", "companyName"]},
                    {"in": "query", "name": "limit", "type": "integer", "default": 50}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "post": {
                "tags": ["Prospects"],
                "summary": "Submit a company prospect",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateProspectRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/prospects/all": {
            "get": {
                "tags": ["Prospects"],
                "summary": "List visible prospects with the large default limit",
                "parameters": [{"in": "query", "name": "limit", "type": "integer", "default": 10000}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/prospects/latest-approved": {
            "get": {
                "tags": ["Prospects"],
                "summary": "Caller's approved prospect awaiting the full detail form",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/prospects/summary": {
            "get": {
                "tags": ["Prospects"],
                "summary": "Prospect counts per status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/prospects/stream": {
            "get": {
                "tags": ["Prospects"],
                "summary": "Live prospect list as server-sent events",
                "produces": ["text/event-stream"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "status", "type": "string"},
                    {"in": "query", "name": "access_token", "type": "string"}
                ],
                "responses": {"200": {"description": "snapshot and ping events"}}
            }
        },
        "/prospects/export": {
            "get": {
                "tags": ["Prospects"],
                "summary": "Download visible prospects",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"in": "query", "name": "status", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/prospects/{id}": {
            "get": {
                "tags": ["Prospects"],
                "summary": "Get a prospect",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "put": {
                "tags": ["Prospects"],
                "summary": "Complete a prospect with the full detail form",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdateProspectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/prospects/{id}/status": {
            "patch": {
                "tags": ["Prospects"],
                "summary": "Approve or reject a prospect (managers)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ReviewProspectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}},
                    "409": {"description": "Already reviewed", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/prospects/{id}/notes": {
            "patch": {
                "tags": ["Prospects"],
                "summary": "Replace review notes (managers)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdateNotesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "SignUpRequest": {
            "type": "object",
            "required": ["email", "password", "fullName"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8},
                "fullName": {"type": "string"}
            }
        },
        "SignInRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "Contact": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "linkedIn": {"type": "string"}
            }
        },
        "CreateProspectRequest": {
            "type": "object",
            "required": ["companyName", "website"],
            "properties": {
                "companyName": {"type": "string"},
                "website": {"type": "string"},
                "notes": {"type": "string"},
                "industry": {"type": "string"},
                "headquarters": {"type": "string"},
                "employees": {"type": "string"},
                "fundingStage": {"type": "string"},
                "contacts": {"type": "array", "items": {"$ref": "#/definitions/Contact"}}
            }
        },
        "ReviewProspectRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["Approved", "Rejected"]},
                "notes": {"type": "string"}
            }
        },
        "UpdateNotesRequest": {
            "type": "object",
            "properties": {"notes": {"type": "string"}}
        },
        "UpdateProspectRequest": {
            "type": "object",
            "required": ["companyName", "website", "linkedIn", "country", "headquarters", "companyType", "industry", "endProduct", "employees", "ceoName", "ceoLinkedIn", "ceoEmail", "phoneNumber", "contacts", "status"],
            "properties": {
                "companyName": {"type": "string"},
                "website": {"type": "string"},
                "linkedIn": {"type": "string"},
                "country": {"type": "string"},
                "headquarters": {"type": "string"},
                "companyType": {"type": "string", "enum": ["Public", "Private", "Startup", "Non-profit"]},
                "industry": {"type": "string"},
                "endProduct": {"type": "string"},
                "employees": {"type": "string"},
                "ceoName": {"type": "string"},
                "ceoLinkedIn": {"type": "string"},
                "ceoEmail": {"type": "string"},
                "phoneNumber": {"type": "string"},
                "fundingStage": {"type": "string"},
                "rdLocations": {"type": "string"},
                "potentialNeeds": {"type": "string"},
                "contacts": {"type": "array", "items": {"$ref": "#/definitions/Contact"}},
                "notes": {"type": "string"},
                "dateTime": {"type": "integer", "description": "epoch milliseconds"},
                "status": {"type": "string", "enum": ["Pending", "Submitted", "Approved", "Rejected"]}
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
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "Envelope": {
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
