package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Grievance Redressal API",
        "description": "Ticketing workflow for student grievances: submission, routing, escalation and feedback.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Registration and login"},
        {"name": "Grievances", "description": "Grievance lifecycle"},
        {"name": "Stats", "description": "Read-only chart statistics"},
        {"name": "Admin", "description": "User roster and register export"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a student or authority account",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation error"},
                    "409": {"description": "Username or email already taken"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with username and password",
                "responses": {
                    "200": {"description": "Access token issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/grievances": {
            "post": {
                "tags": ["Grievances"],
                "summary": "File a new grievance, optionally anonymous",
                "responses": {
                    "201": {"description": "Ticket allocated"},
                    "400": {"description": "Validation error"},
                    "409": {"description": "Ticket allocation exhausted"}
                }
            },
            "get": {
                "tags": ["Grievances"],
                "summary": "Grievances visible to the caller",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/track/{ticketId}": {
            "get": {
                "tags": ["Grievances"],
                "summary": "Public tracking by ticket id",
                "parameters": [
                    {"name": "ticketId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Unknown ticket id"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Grievances"],
                "summary": "Role-scoped dashboard with stats",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/grievances/{id}": {
            "get": {
                "tags": ["Grievances"],
                "summary": "Case detail with audit trail and feedback",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Access denied"},
                    "404": {"description": "Unknown grievance"}
                }
            }
        },
        "/grievances/{id}/update": {
            "post": {
                "tags": ["Grievances"],
                "summary": "Apply a status change, reassignment or note",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Applied"},
                    "403": {"description": "Actor lacks the required role"}
                }
            }
        },
        "/grievances/{id}/escalate": {
            "post": {
                "tags": ["Grievances"],
                "summary": "Escalate to administrative review",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Escalated"}
                }
            }
        },
        "/grievances/{id}/feedback": {
            "post": {
                "tags": ["Grievances"],
                "summary": "Rate a resolution (once per case)",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "201": {"description": "Feedback stored"},
                    "409": {"description": "Feedback already exists"}
                }
            }
        },
        "/stats": {
            "get": {
                "tags": ["Stats"],
                "summary": "Per-category, per-status and six-month trend counts",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/users": {
            "get": {
                "tags": ["Admin"],
                "summary": "Registered users",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Admin only"}
                }
            }
        },
        "/admin/grievances": {
            "get": {
                "tags": ["Admin"],
                "summary": "Full grievance register with filters",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Admin only"}
                }
            }
        },
        "/admin/grievances/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export the grievance register as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "403": {"description": "Admin only"}
                }
            }
        }
    },
    "definitions": {
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
