package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/sathwikmerugu45/E-Commerce-Website/pkg/errors"
)

// ParseBearerToken extracts the token from an "Authorization: Bearer" header.
func ParseBearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing authorization header")
	}
	if len(raw) < 7 || !strings.EqualFold(raw[:7], "bearer ") {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid authorization header")
	}
	token := strings.TrimSpace(raw[7:])
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid authorization header")
	}
	return token, nil
}
