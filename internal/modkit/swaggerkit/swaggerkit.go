// Package swaggerkit serves the generated OpenAPI document and Swagger UI under /api/docs
package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"vera/internal/platform/config"
	phttp "vera/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	docsPath = "/api/docs"
	oasVer   = "3.0.3"
)

// Mount is a no-op unless enabled
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get(docsPath, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, docsPath+"/", http.StatusPermanentRedirect)
	})
	r.Get(docsPath+"/doc.json", serveDoc)
	r.Handle(docsPath+"/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL(docsPath+"/doc.json"),
	))
}

func serveDoc(w http.ResponseWriter, _ *http.Request) {
	var spec map[string]any
	if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
		http.Error(w, "spec parse error", http.StatusInternalServerError)
		return
	}
	normalize(spec, config.New().Prefix("CORE_API_").MayString("DOCS_TITLE_SUFFIX", ""))

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(spec)
}

// normalize pins the document to OAS 3.0.3 (the UI cannot render 3.1),
// points servers at /api and documents the shared error envelope on every operation
func normalize(spec map[string]any, titleSuffix string) {
	delete(spec, "swagger")
	if v, _ := spec["openapi"].(string); !strings.HasPrefix(v, "3.0") {
		spec["openapi"] = oasVer
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": "/api"}}
	}
	if info, ok := spec["info"].(map[string]any); ok && titleSuffix != "" {
		if t, ok := info["title"].(string); ok {
			info["title"] = t + " " + titleSuffix
		}
	}

	schemas := child(child(spec, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; !ok {
		schemas["ErrorResponse"] = errorSchema()
	}

	paths, _ := spec["paths"].(map[string]any)
	for _, p := range paths {
		ops, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, op := range ops {
			o, ok := op.(map[string]any)
			if !ok {
				continue
			}
			responses := child(o, "responses")
			for status, desc := range map[string]string{"400": "Bad Request", "500": "Internal Server Error"} {
				if _, ok := responses[status]; !ok {
					responses[status] = errorResponse(desc)
				}
			}
		}
	}
}

// child returns m[key] as an object, creating it when absent
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

func errorResponse(desc string) map[string]any {
	return map[string]any{
		"description": desc,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
			},
		},
	}
}

// errorSchema mirrors pnet.Wire
func errorSchema() map[string]any {
	str := map[string]any{"type": "string"}
	num := map[string]any{"type": "integer", "format": "int32"}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status_code": num,
			"status":      str,
			"code":        num,
			"error":       str,
			"message":     str,
			"field":       str,
			"request_id":  str,
		},
		"required": []any{"status_code", "status"},
	}
}
