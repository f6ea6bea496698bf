package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Masomo Attendance API",
        "description": "Daily class attendance sessions, monthly statistics and exports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Attendance", "description": "Daily attendance sessions and records"},
        {"name": "Attendance Exports", "description": "Asynchronous CSV and PDF exports"}
    ],
    "paths": {
        "/attendance/sessions": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Get the session of a class on a day",
                "parameters": [
                    {"name": "className", "in": "query", "type": "string", "required": true},
                    {"name": "date", "in": "query", "type": "string", "description": "YYYY-MM-DD, defaults to today"}
                ],
                "responses": {
                    "200": {"description": "Session, or null data when none exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Open the daily attendance session of a class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OpenSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "SESSION_ALREADY_EXISTS", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "ROSTER_UNAVAILABLE or STORE_UNAVAILABLE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/sessions/{id}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Get a session by id",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "SESSION_NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/sessions/{id}/records": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record one student's status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "RECORD_VALIDATION_ERROR", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "SESSION_COMPLETED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/sessions/{id}/records/bulk": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record several students at once",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordBulkRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/sessions/{id}/complete": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Complete a session",
                "description": "Unmarked students are recorded ABSENT unless markUnmarkedAsAbsent is false.",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/CompleteSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/records": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List a class's records for a day",
                "parameters": [
                    {"name": "className", "in": "query", "type": "string", "required": true},
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/stats/monthly": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Monthly statistics over completed sessions",
                "parameters": [
                    {"name": "className", "in": "query", "type": "string"},
                    {"name": "month", "in": "query", "type": "string", "description": "YYYY-MM, defaults to the current month"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Download attendance records of a date range (admin)",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "className", "in": "query", "type": "string"},
                    {"name": "startDate", "in": "query", "type": "string"},
                    {"name": "endDate", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/attendance/exports": {
            "post": {
                "tags": ["Attendance Exports"],
                "summary": "Queue an attendance export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportJobRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/exports/{id}": {
            "get": {
                "tags": ["Attendance Exports"],
                "summary": "Export job status",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/exports/download/{token}": {
            "get": {
                "tags": ["Attendance Exports"],
                "summary": "Download a finished export via its signed token",
                "security": [],
                "parameters": [{"name": "token", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "409": {"description": "EXPORT_NOT_READY", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "OpenSessionRequest": {
            "type": "object",
            "required": ["className"],
            "properties": {
                "className": {"type": "string"},
                "date": {"type": "string"}
            }
        },
        "RecordStatusRequest": {
            "type": "object",
            "required": ["studentId", "status"],
            "properties": {
                "studentId": {"type": "string"},
                "studentName": {"type": "string"},
                "status": {"type": "string", "enum": ["PRESENT", "ABSENT", "LATE", "EXCUSED"]},
                "notes": {"type": "string"},
                "arrivalTime": {"type": "string", "description": "HH:MM"}
            }
        },
        "RecordBulkRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/RecordStatusRequest"}}
            }
        },
        "CompleteSessionRequest": {
            "type": "object",
            "properties": {
                "markUnmarkedAsAbsent": {"type": "boolean", "default": true},
                "notes": {"type": "string"}
            }
        },
        "ExportJobRequest": {
            "type": "object",
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "className": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "error": {"type": "string"},
                "message": {"type": "string"},
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
