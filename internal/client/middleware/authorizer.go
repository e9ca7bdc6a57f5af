package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/andressep95/estate-admin/internal/domain"
	"github.com/andressep95/estate-admin/internal/navigation"
	"github.com/andressep95/estate-admin/internal/repository"
)

// AuthorizerConfig holds where to send the operator after a 401.
type AuthorizerConfig struct {
	AdminLoginPath string
	LoginPath      string
}

// AuthorizerMiddleware attaches the stored bearer token to every request and
// turns any 401 response into a forced logout plus redirect.
func AuthorizerMiddleware(store repository.KeyValueStore, navigator navigation.Navigator, cfg AuthorizerConfig) Middleware {
	if cfg.AdminLoginPath == "" {
		cfg.AdminLoginPath = navigation.AdminLoginPath
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = navigation.LoginPath
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			ctx := req.Context()

			// Admin token first, then the regular user token
			token := storedValue(req, store, domain.KeyAdminToken)
			if token == "" {
				token = storedValue(req, store, domain.KeyUserToken)
			}

			if token != "" {
				req = req.Clone(ctx)
				req.Header.Set("Authorization", "Bearer "+token)
			}

			resp, err := next.RoundTrip(req)
			if err != nil {
				return nil, err
			}

			if resp.StatusCode == http.StatusUnauthorized {
				log.Printf("[AUTHORIZER] %s %s returned 401, clearing session", req.Method, req.URL.Path)
				repository.RemoveKeys(ctx, store, domain.AllAuthKeys...)

				if strings.Contains(req.URL.Path, "/admin") {
					navigator.Navigate(cfg.AdminLoginPath)
				} else {
					navigator.Navigate(cfg.LoginPath)
				}
			}

			return resp, nil
		})
	}
}

func storedValue(req *http.Request, store repository.KeyValueStore, key string) string {
	value, ok, err := store.Get(req.Context(), key)
	if err != nil {
		log.Printf("[AUTHORIZER] Failed to read %s: %v", key, err)
		return ""
	}
	if !ok {
		return ""
	}
	return value
}
