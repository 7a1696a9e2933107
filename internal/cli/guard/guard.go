// Package guard decides whether the current principal may enter a route.
// Decisions are pure functions of the principal; performing the redirect is
// the router's job.
package guard

import "github.com/myshop-dev/myshop/internal/cli/auth"

// AnonymousLanding is where every denied navigation is sent.
const AnonymousLanding = "/"

// Decision is the outcome of an admission check.
type Decision struct {
	Admit    bool
	Redirect string
}

func admit() Decision { return Decision{Admit: true} }

func deny() Decision { return Decision{Redirect: AnonymousLanding} }

// Guard admits or redirects a principal.
type Guard interface {
	Decide(p auth.Principal) Decision
	Name() string
}

// Open admits everyone.
type Open struct{}

func (Open) Decide(auth.Principal) Decision { return admit() }
func (Open) Name() string                   { return "open" }

// UserGuard admits shoppers only. Admins are not shoppers: the role must
// match exactly.
type UserGuard struct{}

func (UserGuard) Decide(p auth.Principal) Decision {
	switch p {
	case auth.User:
		return admit()
	case auth.Admin, auth.Anonymous:
		return deny()
	default:
		return deny()
	}
}

func (UserGuard) Name() string { return "user" }

// AdminGuard admits administrators only.
type AdminGuard struct{}

func (AdminGuard) Decide(p auth.Principal) Decision {
	switch p {
	case auth.Admin:
		return admit()
	case auth.User, auth.Anonymous:
		return deny()
	default:
		return deny()
	}
}

func (AdminGuard) Name() string { return "admin" }

// Check reads the store once and applies g. A nil guard is Open.
func Check(g Guard, sessions auth.SessionReader) Decision {
	if g == nil {
		return admit()
	}
	return g.Decide(auth.CurrentPrincipal(sessions))
}
