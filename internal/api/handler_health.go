package api

import (
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiSpec []byte

var (
	specOnce sync.Once
	specDoc  *openapi3.T
	specErr  error
)

// loadSpec parses the embedded OpenAPI document once.
func loadSpec() (*openapi3.T, error) {
	specOnce.Do(func() {
		loader := openapi3.NewLoader()
		specDoc, specErr = loader.LoadFromData(openapiSpec)
	})
	return specDoc, specErr
}

type healthResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	DBConnected bool   `json:"db_connected"`
	UserCount   int    `json:"user_count"`
}

// Health reports liveness plus the status page basics. It stays 200
// even when the database is unreachable; db_connected carries the bad
// news so load balancers keep routing to an instance that can still
// answer from the in-memory registries.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbOK := false
	if h.readDB != nil && h.readDB.PingContext(r.Context()) == nil {
		dbOK = true
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Name:        h.serverName,
		Version:     h.version,
		DBConnected: dbOK,
		UserCount:   h.directory.UserCount(),
	})
}

func (h *Handler) OpenAPISpec(w http.ResponseWriter, _ *http.Request) {
	doc, err := loadSpec()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) Docs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head>
    <title>posgate API</title>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/@scalar/api-reference@1.44.16/dist/style.min.css" />
</head>
<body>
    <script id="api-reference" data-url="/openapi.json"></script>
    <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference@1.44.16/dist/browser/standalone.min.js"></script>
</body>
</html>`)
}
