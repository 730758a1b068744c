package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Quality Panel API",
    "description": "Inspection quality and productivity metrics built from monthly Quality and Production sheets",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/api/sources": {
      "get": {
        "tags": ["sources"],
        "summary": "Source load summary",
        "produces": ["application/json"],
        "responses": {
          "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.LoadSummary"}},
          "503": {"description": "Sources have not been loaded"}
        }
      }
    },
    "/api/periods": {
      "get": {
        "tags": ["periods"],
        "summary": "Available reference months",
        "produces": ["application/json"],
        "responses": {
          "200": {"description": "OK"},
          "503": {"description": "Sources have not been loaded"}
        }
      }
    },
    "/api/dashboard": {
      "post": {
        "tags": ["dashboard"],
        "summary": "Build dashboard",
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [
          {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.DashboardRequest"}}
        ],
        "responses": {
          "200": {"description": "OK"},
          "400": {"description": "Invalid payload"},
          "422": {"description": "FILTER_EXHAUSTED, EMPTY_FILTERED_VIEW or MONTH_UNAVAILABLE"}
        }
      }
    },
    "/api/records": {
      "post": {
        "tags": ["records"],
        "summary": "Filtered records",
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [
          {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.PeriodRequest"}}
        ],
        "responses": {
          "200": {"description": "OK"},
          "400": {"description": "Invalid payload"},
          "422": {"description": "FILTER_EXHAUSTED, EMPTY_FILTERED_VIEW or MONTH_UNAVAILABLE"}
        }
      }
    },
    "/api/admin/reload": {
      "post": {
        "tags": ["admin"],
        "summary": "Reload sources",
        "produces": ["application/json"],
        "responses": {
          "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.LoadSummary"}},
          "502": {"description": "RELOAD_FAILED"}
        }
      }
    },
    "/api/admin/indexes/{id}": {
      "get": {
        "tags": ["admin"],
        "summary": "Read a source index",
        "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
        "responses": {"200": {"description": "OK"}, "404": {"description": "INDEX_STORE_DISABLED"}}
      },
      "put": {
        "tags": ["admin"],
        "summary": "Replace a source index",
        "consumes": ["application/json"],
        "parameters": [
          {"in": "path", "name": "id", "required": true, "type": "string"},
          {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.ReplaceIndexRequest"}}
        ],
        "responses": {"200": {"description": "OK"}, "404": {"description": "INDEX_STORE_DISABLED"}}
      }
    }
  },
  "definitions": {
    "handlers.PeriodRequest": {
      "type": "object",
      "properties": {
        "reference_year": {"type": "integer"},
        "reference_month": {"type": "integer", "minimum": 0, "maximum": 12},
        "start_date": {"type": "string", "example": "2025-09-01"},
        "end_date": {"type": "string", "example": "2025-09-30"},
        "units": {"type": "array", "items": {"type": "string"}},
        "inspectors": {"type": "array", "items": {"type": "string"}}
      }
    },
    "handlers.DashboardRequest": {
      "type": "object",
      "properties": {
        "reference_year": {"type": "integer"},
        "reference_month": {"type": "integer", "minimum": 0, "maximum": 12},
        "start_date": {"type": "string"},
        "end_date": {"type": "string"},
        "units": {"type": "array", "items": {"type": "string"}},
        "inspectors": {"type": "array", "items": {"type": "string"}},
        "denominator": {"type": "string", "enum": ["gross", "net"]},
        "pareto_top_k": {"type": "integer", "minimum": 0, "maximum": 30},
        "what_if_cutoff": {"type": "integer", "minimum": 0},
        "reduction_pct": {"type": "number", "minimum": 0, "maximum": 100},
        "top_errors": {"type": "integer"},
        "ranking_size": {"type": "integer"}
      }
    },
    "handlers.ReplaceIndexRequest": {
      "type": "object",
      "properties": {
        "entries": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "url": {"type": "string"},
              "month": {"type": "string"},
              "active": {"type": "boolean"}
            }
          }
        }
      }
    },
    "models.LoadSummary": {
      "type": "object",
      "properties": {
        "quality": {"type": "object"},
        "production": {"type": "object"},
        "loaded_at": {"type": "string"}
      }
    }
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
