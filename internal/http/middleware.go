package http

import (
	"net/http"
	"strings"

	"github.com/Tasheen2002/Security-Project/internal/auth"
)

// Identity headers injected by the upstream verifier. Token validation
// is delegated entirely to the identity provider; by the time a request
// reaches this process the subject is already authenticated.
const (
	HeaderSubject = "X-User-Subject"
	HeaderEmail   = "X-User-Email"
	HeaderName    = "X-User-Name"
	HeaderRoles   = "X-User-Roles"
)

// PrincipalMiddleware builds the request principal from the verified
// identity headers and rejects requests without a subject.
func PrincipalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := r.Header.Get(HeaderSubject)
		if subject == "" {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		principal := auth.Principal{
			Subject: subject,
			Email:   r.Header.Get(HeaderEmail),
			Name:    r.Header.Get(HeaderName),
			Roles:   splitRoles(r.Header.Get(HeaderRoles)),
		}

		ctx := auth.WithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func splitRoles(header string) []string {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			roles = append(roles, trimmed)
		}
	}
	return roles
}

func principalFrom(r *http.Request) (auth.Principal, bool) {
	return auth.PrincipalFromContext(r.Context())
}
