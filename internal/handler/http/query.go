package http

import (
	"net/http"
	"strings"
)

// optionalQuery returns nil when the query parameter is absent or blank.
func optionalQuery(r *http.Request, key string) *string {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return nil
	}
	return &value
}
