package docs

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.json
var openAPI []byte

// Handler serves the OpenAPI document read by the swagger UI.
func Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(openAPI)
}
