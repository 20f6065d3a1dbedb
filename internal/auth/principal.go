package auth

import "context"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal is the verified request identity handed over by the
// upstream identity provider. Token verification happens outside this
// process; the subject is trusted as already authenticated.
type Principal struct {
	Subject string
	Email   string
	Name    string
	Roles   []string
}

func (p Principal) IsAdmin() bool {
	for _, r := range p.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

// Username returns the display name used on orders and reviews,
// falling back to the email claim.
func (p Principal) Username() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
