package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	routes := DefaultRoutes()
	cases := []struct {
		name  string
		state State
		path  string
		want  Decision
	}{
		{"public while unknown", StateUnknown, "/products", Decision{Action: ActionRender}},
		{"gated while unknown", StateUnknown, "/checkout", Decision{Action: ActionPlaceholder}},
		{"gated while anonymous", StateAnonymous, "/checkout", Decision{Action: ActionRedirect, Location: "/login"}},
		{"nested gated while anonymous", StateAnonymous, "/me/orders", Decision{Action: ActionRedirect, Location: "/login"}},
		{"gated while authenticated", StateAuthenticated, "/me", Decision{Action: ActionRender}},
		{"prefix lookalike", StateAnonymous, "/media", Decision{Action: ActionRender}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.state, tc.path, routes))
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unknown", StateUnknown.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "anonymous", StateAnonymous.String())
}
