package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Synthèses API",
        "description": "Shared course summaries: uploads, catalogue, votes, chat and admin moderation",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "AdminSession": {"type": "apiKey", "in": "header", "name": "X-Admin-Token"}
    },
    "tags": [
        {"name": "Uploads", "description": "Summary and video submissions"},
        {"name": "Records", "description": "Catalogue listing, votes and moderation"},
        {"name": "Journal", "description": "Chat messages and admin action log"},
        {"name": "Admin", "description": "Admin session and exports"},
        {"name": "Contact", "description": "Contact form"}
    ],
    "paths": {
        "/health": {
            "get": {"summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/upload": {
            "post": {
                "tags": ["Uploads"],
                "summary": "Upload one summary or submit a video link",
                "consumes": ["multipart/form-data", "application/json", "application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "fichier", "in": "formData", "type": "file"},
                    {"name": "cours", "in": "formData", "type": "string", "required": true},
                    {"name": "titre", "in": "formData", "type": "string", "required": true},
                    {"name": "nomDiscord", "in": "formData", "type": "string", "required": true},
                    {"name": "anneeScolaire", "in": "formData", "type": "string", "required": true},
                    {"name": "description", "in": "formData", "type": "string"},
                    {"name": "annee", "in": "formData", "type": "integer"},
                    {"name": "uploadType", "in": "formData", "type": "string", "enum": ["pdf", "zip", "video"]},
                    {"name": "videoUrl", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/UploadResponse"}},
                    "400": {"description": "Invalid submission", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Payload too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/upload-multi": {
            "post": {
                "tags": ["Uploads"],
                "summary": "Upload several files bundled into one zip",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "fichiers[]", "in": "formData", "type": "file", "required": true},
                    {"name": "cours", "in": "formData", "type": "string", "required": true},
                    {"name": "titre", "in": "formData", "type": "string", "required": true},
                    {"name": "nomDiscord", "in": "formData", "type": "string", "required": true},
                    {"name": "anneeScolaire", "in": "formData", "type": "string", "required": true},
                    {"name": "description", "in": "formData", "type": "string"},
                    {"name": "annee", "in": "formData", "type": "integer"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/UploadResponse"}},
                    "400": {"description": "Invalid submission", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/get-files": {
            "get": {
                "tags": ["Records"],
                "summary": "List the catalogue, newest first",
                "parameters": [{"name": "annee", "in": "query", "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RecordList"}}}
            }
        },
        "/vote": {
            "post": {
                "tags": ["Records"],
                "summary": "Like or dislike a record",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VoteRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/VoteTally"}},
                    "404": {"description": "Record not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/edit-file": {
            "post": {
                "tags": ["Records"],
                "summary": "Edit a record's metadata",
                "security": [{"AdminSession": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EditRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Record"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Record not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/delete-file/{id}": {
            "delete": {
                "tags": ["Records"],
                "summary": "Delete a record and its artifact",
                "security": [{"AdminSession": []}],
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Record not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/add-message": {
            "post": {
                "tags": ["Journal"],
                "summary": "Post a chat message",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MessageRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ChatEntry"}}}
            }
        },
        "/get-messages": {
            "get": {
                "tags": ["Journal"],
                "summary": "List chat messages",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/delete-message/{id}": {
            "delete": {
                "tags": ["Journal"],
                "summary": "Delete a chat message",
                "security": [{"AdminSession": []}],
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/get-logs": {
            "get": {
                "tags": ["Journal"],
                "summary": "List admin log entries",
                "security": [{"AdminSession": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/delete-log/{id}": {
            "delete": {
                "tags": ["Journal"],
                "summary": "Delete one log entry",
                "security": [{"AdminSession": []}],
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/delete-all-logs": {
            "delete": {
                "tags": ["Journal"],
                "summary": "Clear the admin log",
                "security": [{"AdminSession": []}],
                "responses": {"204": {"description": "Cleared"}}
            }
        },
        "/admin/login": {
            "post": {
                "tags": ["Admin"],
                "summary": "Open an admin session",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "401": {"description": "Invalid password", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/logout": {
            "post": {
                "tags": ["Admin"],
                "summary": "Revoke the current admin session",
                "security": [{"AdminSession": []}],
                "responses": {"204": {"description": "Logged out"}}
            }
        },
        "/api/check-session": {
            "get": {
                "tags": ["Admin"],
                "summary": "Check the current admin session",
                "security": [{"AdminSession": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/admin/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export the catalogue",
                "security": [{"AdminSession": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "annee", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "File attachment"}}
            }
        },
        "/ask-question": {
            "post": {
                "tags": ["Contact"],
                "summary": "Send a message to the operators",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ContactRequest"}}],
                "responses": {"202": {"description": "Accepted"}}
            }
        }
    },
    "definitions": {
        "Record": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "annee": {"type": "integer"},
                "type": {"type": "string", "enum": ["pdf", "zip", "video"]},
                "path": {"type": "string"},
                "url": {"type": "string"},
                "nomFichier": {"type": "string"},
                "cours": {"type": "string"},
                "titre": {"type": "string"},
                "nomDiscord": {"type": "string"},
                "description": {"type": "string"},
                "poidsFichier": {"type": "integer"},
                "anneeScolaire": {"type": "string"},
                "dateAjout": {"type": "string"},
                "likes": {"type": "integer"},
                "dislikes": {"type": "integer"}
            }
        },
        "RecordList": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/Record"}},
                "meta": {"type": "object"}
            }
        },
        "UploadResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "record": {"$ref": "#/definitions/Record"}
            }
        },
        "EditRequest": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "integer"},
                "type": {"type": "string"},
                "titre": {"type": "string"},
                "cours": {"type": "string"},
                "nomDiscord": {"type": "string"},
                "description": {"type": "string"},
                "url": {"type": "string"},
                "annee": {"type": "integer"},
                "anneeScolaire": {"type": "string"}
            }
        },
        "VoteRequest": {
            "type": "object",
            "required": ["id", "vote"],
            "properties": {
                "id": {"type": "integer"},
                "vote": {"type": "string", "enum": ["like", "dislike"]},
                "voterId": {"type": "string"}
            }
        },
        "VoteTally": {
            "type": "object",
            "properties": {
                "likes": {"type": "integer"},
                "dislikes": {"type": "integer"}
            }
        },
        "MessageRequest": {
            "type": "object",
            "required": ["nom", "message"],
            "properties": {
                "nom": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ChatEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "date": {"type": "string"},
                "nom": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ContactRequest": {
            "type": "object",
            "required": ["message"],
            "properties": {
                "nomDiscord": {"type": "string"},
                "email": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["password"],
            "properties": {"password": {"type": "string"}}
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expiresAt": {"type": "string", "format": "date-time"}
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
