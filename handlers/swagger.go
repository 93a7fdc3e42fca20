package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves the API description:
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>resume-pilot API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "resume-pilot", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer" } },
    "schemas": {
      "Error": { "type": "object", "properties": { "error": {"type":"string"}, "kind": {"type":"string"}, "stage": {"type":"string"}, "details": {"type":"string"} } },
      "GenerateRequest": { "type": "object", "required": ["documentId","instructions"], "properties": { "documentId": {"type":"string"}, "templateId": {"type":"string"}, "instructions": {"type":"string"}, "name": {"type":"string"}, "version": {"type":"integer","minimum":1} } }
    }
  },
  "security": [ { "bearer": [] } ],
  "paths": {
    "/api/files/upload": { "post": { "summary": "Upload a source document", "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"file":{"type":"string","format":"binary"},"tags":{"type":"string"},"systemGen":{"type":"boolean"}}}}}}, "responses": { "201": { "description": "file stored" }, "400": { "description": "invalid upload" } } } },
    "/api/files": { "get": { "summary": "List source documents", "parameters": [ {"name":"tags","in":"query","schema":{"type":"string"}} ], "responses": { "200": { "description": "files" } } } },
    "/api/files/{id}": {
      "get": { "summary": "Get a source document", "responses": { "200": { "description": "file" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a source document", "responses": { "200": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/api/files/{id}/download": { "get": { "summary": "Download a source document", "responses": { "200": { "description": "file bytes" } } } },
    "/api/files/{id}/tags": { "post": { "summary": "Replace tags", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"tags":{"type":"array","items":{"type":"string"}}}}}}}, "responses": { "200": { "description": "updated" } } } },
    "/api/templates": { "get": { "summary": "List active templates", "parameters": [ {"name":"tags","in":"query","schema":{"type":"string"}} ], "responses": { "200": { "description": "templates" } } } },
    "/api/templates/{id}": { "get": { "summary": "Get a template", "responses": { "200": { "description": "template" }, "404": { "description": "not found" } } } },
    "/api/templates/{id}/thumbnail": { "get": { "summary": "Template thumbnail", "responses": { "200": { "description": "image" } } } },
    "/api/templates/{id}/preview": { "get": { "summary": "Template preview PDF", "responses": { "200": { "description": "pdf" } } } },
    "/api/resume/generate": { "post": { "summary": "Generate a resume synchronously", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/GenerateRequest"}}}}, "responses": { "201": { "description": "generated document" }, "400": { "description": "invalid input", "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Error"}}}}, "422": { "description": "compilation failed" }, "502": { "description": "LLM provider error" }, "504": { "description": "timeout" } } } },
    "/api/resume/jobs": { "post": { "summary": "Queue a resume generation", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/GenerateRequest"}}}}, "responses": { "202": { "description": "job queued" } } } },
    "/api/resume/jobs/{id}": { "get": { "summary": "Generation job status", "responses": { "200": { "description": "job" }, "404": { "description": "not found" } } } },
    "/api/generated-documents": { "get": { "summary": "List generated documents", "parameters": [ {"name":"search","in":"query","schema":{"type":"string"}} ], "responses": { "200": { "description": "documents" } } } },
    "/api/generated-documents/{id}": {
      "get": { "summary": "Get a generated document", "responses": { "200": { "description": "document" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a generated document and its files", "responses": { "200": { "description": "deleted" } } }
    },
    "/api/generated-documents/{id}/preview": { "get": { "summary": "Compiled PDF", "responses": { "200": { "description": "pdf" } } } },
    "/api/generated-documents/{id}/source": { "get": { "summary": "Generated LaTeX source", "responses": { "200": { "description": "tex" } } } },
    "/health": { "get": { "summary": "Liveness check", "security": [], "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "security": [], "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "security": [], "responses": { "200": { "description": "metrics" } } } }
  }
}`
