package docs

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OpenAPI specification served at /openapi.json
const openapiJSON = `{
  "openapi": "3.0.3",
  "info": {
    "title": "arktutor API",
    "version": "0.1.0"
  },
  "servers": [ { "url": "/" } ],
  "tags": [
    {"name": "auth", "description": "Registration and tokens"},
    {"name": "grades", "description": "Grades (teachers)"},
    {"name": "sessions", "description": "Study sessions"},
    {"name": "chat", "description": "LLM chat (students)"},
    {"name": "ops", "description": "Health"}
  ],
  "components": {
    "securitySchemes": {
      "bearerAuth": {
        "type": "http",
        "scheme": "bearer",
        "bearerFormat": "JWT"
      }
    }
  },
  "paths": {
    "/api/v1/users": {
      "post": {"summary": "Create a student or teacher","tags": ["auth"],"requestBody": {"required": true},"responses": {"201": {"description": "Created"},"400": {"description": "Invalid input"},"404": {"description": "Assigned teacher not found"},"409": {"description": "Username already exists"}}}
    },
    "/api/v1/authenticate": {
      "post": {"summary": "Exchange username and password for a bearer token","tags": ["auth"],"requestBody": {"required": true},"responses": {"200": {"description": "OK"},"401": {"description": "Invalid username or password"}}}
    },
    "/api/v1/me": {
      "get": {"summary": "Current account","tags": ["auth"],"security": [{"bearerAuth": []}],"responses": {"200": {"description": "OK"},"401": {"description": "Unauthorized"}}}
    },
    "/api/v1/me/password": {
      "put": {"summary": "Change password","tags": ["auth"],"security": [{"bearerAuth": []}],"requestBody": {"required": true},"responses": {"204": {"description": "Changed"},"401": {"description": "Unauthorized"}}}
    },
    "/api/v1/grades": {
      "get": {"summary": "Grades given by the current teacher","tags": ["grades"],"security": [{"bearerAuth": []}],"parameters": [{"name":"student_id","in":"query","schema":{"type":"string","format":"uuid"}},{"name":"start_date","in":"query","schema":{"type":"string"}},{"name":"end_date","in":"query","schema":{"type":"string"}},{"name":"min_score","in":"query","schema":{"type":"number"}},{"name":"max_score","in":"query","schema":{"type":"number"}}],"responses": {"200": {"description": "OK"},"403": {"description": "Only teachers can access this endpoint"}}},
      "post": {"summary": "Record a grade","tags": ["grades"],"security": [{"bearerAuth": []}],"requestBody": {"required": true},"responses": {"201": {"description": "Created"},"404": {"description": "Student not found"}}}
    },
    "/api/v1/sessions": {
      "get": {"summary": "Study sessions of the current teacher's students","tags": ["sessions"],"security": [{"bearerAuth": []}],"parameters": [{"name":"student_id","in":"query","schema":{"type":"string","format":"uuid"}},{"name":"start_date","in":"query","schema":{"type":"string"}},{"name":"end_date","in":"query","schema":{"type":"string"}},{"name":"min_duration","in":"query","schema":{"type":"integer"}},{"name":"max_duration","in":"query","schema":{"type":"integer"}}],"responses": {"200": {"description": "OK"}}},
      "post": {"summary": "Save a study session for the current student","tags": ["sessions"],"security": [{"bearerAuth": []}],"requestBody": {"required": true},"responses": {"201": {"description": "Created"},"403": {"description": "Students can only save their own sessions"}}}
    },
    "/api/v1/chat": {
      "post": {"summary": "Relay a prompt to the LLM","tags": ["chat"],"security": [{"bearerAuth": []}],"requestBody": {"required": true},"responses": {"200": {"description": "OK"},"502": {"description": "Upstream unavailable"}}}
    },
    "/health": {
      "get": {"summary": "Database reachability","tags": ["ops"],"responses": {"200": {"description": "OK"},"503": {"description": "Unavailable"}}}
    }
  }
}`

// RegisterRoutes wires the API documentation endpoints into the Gin engine.
// - GET /openapi.json: OpenAPI 3.0 spec
// - GET /docs: Swagger UI (via CDN) loading /openapi.json
func RegisterRoutes(r *gin.Engine) {
	// convenience: redirect root to docs
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/docs") })
	r.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(openapiJSON))
	})
	r.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})
}

// Simple Swagger-UI page using CDN assets, pointing to /openapi.json
const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <title>arktutor API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  <style>body { margin: 0; padding: 0; }</style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.json',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
 </body>
</html>`
