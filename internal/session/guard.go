// Package session tracks per-visitor state: who is signed in, where they were
// headed before login, and the cart they own.
package session

import "strings"

// State of the identity behind a session.
type State int

const (
	// StateUnknown means the identity provider has not answered yet.
	StateUnknown State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Routes describes which paths need a signed-in principal.
type Routes struct {
	Gated   []string
	Login   string
	Default string
}

// DefaultRoutes matches the storefront's checkout and profile pages.
func DefaultRoutes() Routes {
	return Routes{
		Gated:   []string{"/checkout", "/me"},
		Login:   "/login",
		Default: "/",
	}
}

// IsGated reports whether path equals or sits below a gated route.
func (r Routes) IsGated(path string) bool {
	for _, g := range r.Gated {
		if path == g || strings.HasPrefix(path, strings.TrimSuffix(g, "/")+"/") {
			return true
		}
	}
	return false
}

type Action int

const (
	ActionRender Action = iota
	ActionPlaceholder
	ActionRedirect
)

// Decision is the outcome of a navigation check.
type Decision struct {
	Action   Action
	Location string
}

// Decide maps an identity state and a target path to a navigation outcome.
func Decide(state State, path string, routes Routes) Decision {
	if !routes.IsGated(path) {
		return Decision{Action: ActionRender}
	}
	switch state {
	case StateAuthenticated:
		return Decision{Action: ActionRender}
	case StateAnonymous:
		return Decision{Action: ActionRedirect, Location: routes.Login}
	default:
		return Decision{Action: ActionPlaceholder}
	}
}
