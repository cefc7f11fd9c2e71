package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "University Timetable API",
        "description": "Weekly class timetable generation, auditing and publishing for university programs",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetables", "description": "Term timetable generation and lifecycle"},
        {"name": "Audit", "description": "Conflict auditing of stored or ad-hoc timetables"},
        {"name": "Cycles", "description": "Multi-term cycle generation"},
        {"name": "Exports", "description": "CSV/PDF rendering with signed downloads"},
        {"name": "Metrics", "description": "Operational metrics"}
    ],
    "paths": {
        "/timetables/generate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate ranked timetable alternatives for a program term",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Program not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Structurally infeasible term", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/save": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Persist a generated alternative as a new timetable version",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Proposal not found or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Publishing refused while hard conflicts remain", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/audit": {
            "post": {
                "tags": ["Audit"],
                "summary": "Audit a stored or ad-hoc timetable for conflicts",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AuditTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List stored timetable versions for a program term",
                "parameters": [
                    {"name": "programId", "in": "query", "required": true, "type": "string"},
                    {"name": "termNumber", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get a stored timetable with its slots",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Timetables"],
                "summary": "Delete a draft timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Only drafts may be deleted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/status": {
            "patch": {
                "tags": ["Timetables"],
                "summary": "Move a timetable through its lifecycle",
                "description": "Publishing archives any previously published version of the same program term.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateTimetableStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Archived timetables cannot be republished", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export a stored timetable as CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download an exported timetable file",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cycles/generate": {
            "post": {
                "tags": ["Cycles"],
                "summary": "Generate timetables for several terms of one program",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateCycleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Completed inline", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Queued for background execution", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cycles/jobs/{id}": {
            "get": {
                "tags": ["Cycles"],
                "summary": "Poll a queued cycle generation run",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/snapshot": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Aggregated runtime metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SolverSettings": {
            "type": "object",
            "properties": {
                "strategy": {"type": "string", "enum": ["auto", "fast", "genetic", "annealing", "hybrid"]},
                "populationSize": {"type": "integer"},
                "generations": {"type": "integer"},
                "mutationRate": {"type": "number"},
                "crossoverRate": {"type": "number"},
                "eliteCount": {"type": "integer"},
                "tournamentSize": {"type": "integer"},
                "stagnationLimit": {"type": "integer"},
                "annealingIterations": {"type": "integer"},
                "initialTemperature": {"type": "number"},
                "coolingRate": {"type": "number"},
                "randomSeed": {"type": "integer"},
                "deadlineSeconds": {"type": "integer"}
            }
        },
        "ObjectiveWeights": {
            "type": "object",
            "properties": {
                "workloadOver": {"type": "number"},
                "workloadUnder": {"type": "number"},
                "backToBack": {"type": "number"},
                "subjectPreference": {"type": "number"},
                "daySpread": {"type": "number"},
                "resource": {"type": "number"},
                "facultyPreference": {"type": "number"},
                "workloadGap": {"type": "number"}
            }
        },
        "GenerateTimetableRequest": {
            "type": "object",
            "properties": {
                "programId": {"type": "string"},
                "termNumber": {"type": "integer"},
                "alternatives": {"type": "integer"},
                "settings": {"$ref": "#/definitions/SolverSettings"},
                "weights": {"$ref": "#/definitions/ObjectiveWeights"}
            },
            "required": ["programId", "termNumber"]
        },
        "SaveTimetableRequest": {
            "type": "object",
            "properties": {
                "proposalId": {"type": "string"},
                "alternativeRank": {"type": "integer"},
                "publish": {"type": "boolean"}
            },
            "required": ["proposalId", "alternativeRank"]
        },
        "UpdateTimetableStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["DRAFT", "PUBLISHED", "ARCHIVED"]}
            },
            "required": ["status"]
        },
        "AuditTimetableRequest": {
            "type": "object",
            "properties": {
                "timetableId": {"type": "string"},
                "slots": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/TimetableSlot"}
                }
            }
        },
        "GenerateCycleRequest": {
            "type": "object",
            "properties": {
                "programId": {"type": "string"},
                "termNumbers": {"type": "array", "items": {"type": "integer"}},
                "alternatives": {"type": "integer"},
                "paretoLimit": {"type": "integer"},
                "settings": {"$ref": "#/definitions/SolverSettings"},
                "weights": {"$ref": "#/definitions/ObjectiveWeights"},
                "async": {"type": "boolean"}
            },
            "required": ["programId", "termNumbers"]
        },
        "TimetableSlot": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "timetable_id": {"type": "string"},
                "day_of_week": {"type": "integer"},
                "start_minute": {"type": "integer"},
                "end_minute": {"type": "integer"},
                "course_id": {"type": "string"},
                "course_code": {"type": "string"},
                "section": {"type": "string"},
                "batch": {"type": "string"},
                "room_id": {"type": "string"},
                "faculty_id": {"type": "string"},
                "student_count": {"type": "integer"},
                "session_type": {"type": "string", "enum": ["THEORY", "LAB", "TUTORIAL"]},
                "shared_group_id": {"type": "string"}
            }
        },
        "Timetable": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "program_id": {"type": "string"},
                "term_number": {"type": "integer"},
                "version": {"type": "integer"},
                "status": {"type": "string", "enum": ["DRAFT", "PUBLISHED", "ARCHIVED"]},
                "meta": {"type": "object"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
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
