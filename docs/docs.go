// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/server/main.go
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
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Checks database connectivity",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.HealthResponse"}}
                }
            }
        },
        "/ocr-wine-import": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Runs OCR on an uploaded wine list and extracts its entries",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["import"],
                "summary": "Import a wine list",
                "parameters": [
                    {
                        "description": "Source file location",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.ImportRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ImportResponse"}},
                    "400": {"description": "Missing or invalid parameters", "schema": {"type": "string"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "string"}},
                    "402": {"description": "Subscription required", "schema": {"type": "string"}},
                    "403": {"description": "Not the restaurant owner", "schema": {"type": "string"}},
                    "404": {"description": "Restaurant not found", "schema": {"type": "string"}},
                    "500": {"description": "Internal error", "schema": {"type": "string"}}
                }
            }
        },
        "/ocr-wine-import/jobs/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the job status and its persisted rows",
                "produces": ["application/json"],
                "tags": ["import"],
                "summary": "Get an import job",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.JobDetail"}},
                    "400": {"description": "Invalid job ID", "schema": {"type": "string"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "string"}},
                    "403": {"description": "Not the restaurant owner", "schema": {"type": "string"}},
                    "404": {"description": "Job not found", "schema": {"type": "string"}}
                }
            }
        },
        "/ocr-wine-import/jobs/{id}/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Renders the job's rows as a spreadsheet and returns a presigned download URL",
                "produces": ["application/json"],
                "tags": ["import"],
                "summary": "Export an import job",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "default": "xlsx", "description": "xlsx or csv", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ExportResponse"}},
                    "400": {"description": "Invalid job ID, format, or job not finished", "schema": {"type": "string"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "string"}},
                    "403": {"description": "Not the restaurant owner", "schema": {"type": "string"}},
                    "404": {"description": "Job not found", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "database not reachable"},
                "status": {"type": "string", "example": "ok"}
            }
        },
        "handler.ImportRequest": {
            "type": "object",
            "properties": {
                "ristorante_id": {"type": "string", "example": "3f2b6c1e-8a7d-4f0e-9b1a-2c3d4e5f6a7b"},
                "storage_bucket": {"type": "string", "example": "wine-lists"},
                "storage_path": {"type": "string", "example": "3f2b6c1e/carta-2024.pdf"}
            }
        },
        "handler.ImportResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/handler.WineItemDoc"}},
                "job_id": {"type": "string", "example": "a1b2c3d4-0000-4000-8000-000000000001"},
                "raw_ocr_preview": {"type": "string"}
            }
        },
        "handler.WineItemDoc": {
            "type": "object",
            "properties": {
                "annata": {"type": "string", "example": "2019"},
                "confidence": {"type": "number", "example": 0.85},
                "localita": {"type": "string", "example": "SI"},
                "nome": {"type": "string", "example": "Chianti Classico Riserva"},
                "note": {"type": "string"},
                "prezzo": {"type": "string", "example": "28"},
                "prezzo_bicchiere": {"type": "string", "example": "6"},
                "produttore": {"type": "string", "example": "Castello di Ama"},
                "raw_line": {"type": "string", "example": "Chianti Classico Riserva | 28 | 6"},
                "sezione": {"type": "string", "example": "Rossi"},
                "source_lines": {"type": "array", "items": {"type": "string"}, "example": ["L0002", "L0003"]},
                "source_text": {"type": "string", "example": "Chianti Classico Riserva | 28"},
                "uvaggio": {"type": "string", "example": "Sangiovese"},
                "valuta": {"type": "string", "example": "EUR"}
            }
        },
        "handler.ExportResponse": {
            "type": "object",
            "properties": {
                "expires_in": {"type": "integer", "example": 3600},
                "format": {"type": "string", "example": "xlsx"},
                "key": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "domain.ImportJob": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "file_bucket": {"type": "string"},
                "file_mime": {"type": "string"},
                "file_path": {"type": "string"},
                "id": {"type": "string"},
                "progress": {"type": "integer"},
                "ristorante_id": {"type": "string"},
                "status": {"type": "string", "enum": ["processing", "done", "error"]},
                "updated_at": {"type": "string"}
            }
        },
        "domain.ImportItem": {
            "type": "object",
            "properties": {
                "confidence": {"type": "number"},
                "created_at": {"type": "string"},
                "grapes_guess": {"type": "string"},
                "id": {"type": "string"},
                "job_id": {"type": "string"},
                "name_guess": {"type": "string"},
                "price_guess": {"type": "string"},
                "raw_line": {"type": "string"}
            }
        },
        "service.JobDetail": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/domain.ImportItem"}},
                "job": {"$ref": "#/definitions/domain.ImportJob"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "winelist OCR import API",
	Description:      "Imports restaurant wine lists from scanned menus.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
