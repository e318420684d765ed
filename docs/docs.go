// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/health/ready": {"get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/v1/issues": {
            "get": {
                "tags": ["issues"], "summary": "List issues",
                "parameters": [
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "sort", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["issues"], "summary": "Report a new issue",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}, "429": {"description": "Too Many Requests"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/v1/issues/{id}": {
            "get": {"tags": ["issues"], "summary": "Get an issue", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["issues"], "summary": "Edit a pending issue", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["issues"], "summary": "Delete a pending issue", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/v1/issues/{id}/vote": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["votes"], "summary": "Upvote an issue", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["votes"], "summary": "Withdraw an upvote", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/v1/map/issues": {"get": {"tags": ["issues"], "summary": "Issues with coordinates", "responses": {"200": {"description": "OK"}}}},
        "/v1/me/issues": {"get": {"security": [{"BearerAuth": []}], "tags": ["me"], "summary": "List the caller's issues", "responses": {"200": {"description": "OK"}}}},
        "/v1/me/stats": {"get": {"security": [{"BearerAuth": []}], "tags": ["me"], "summary": "Profile dashboard", "responses": {"200": {"description": "OK"}}}},
        "/v1/me/score": {"get": {"security": [{"BearerAuth": []}], "tags": ["me"], "summary": "Reconciled score", "responses": {"200": {"description": "OK"}}}},
        "/v1/me/quota": {"get": {"security": [{"BearerAuth": []}], "tags": ["me"], "summary": "Issue creation quota", "responses": {"200": {"description": "OK"}}}},
        "/v1/leaderboard": {"get": {"security": [{"BearerAuth": []}], "tags": ["leaderboard"], "summary": "Top contributors", "responses": {"200": {"description": "OK"}}}},
        "/v1/analytics": {"get": {"security": [{"BearerAuth": []}], "tags": ["analytics"], "summary": "Community dashboard", "responses": {"200": {"description": "OK"}}}},
        "/v1/admin/users/{id}/rescore": {"post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Reconcile one user's score", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/v1/admin/rescore": {"post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Queue a rescore of every user", "responses": {"202": {"description": "Accepted"}, "403": {"description": "Forbidden"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Civic Issues API",
	Description:      "Civic issue reporting with points, badges, leaderboard and analytics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
