package guard

import "sync"

// Navigator tracks the current location for a single session and applies
// [Resolve] on every move.
type Navigator struct {
	mu            sync.Mutex
	authenticated bool
	current       Route
	from          string
	history       []string
}

// NewNavigator starts at path.
func NewNavigator(authenticated bool, path string) *Navigator {
	n := &Navigator{authenticated: authenticated}
	n.current = n.resolveLocked(path)
	return n
}

// Current returns the route being rendered.
func (n *Navigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// From returns the protected location remembered for after sign-in, if any.
func (n *Navigator) From() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.from
}

// Go moves to path and returns the route rendered there.
func (n *Navigator) Go(path string) Route {
	n.mu.Lock()
	defer n.mu.Unlock()

	prev := n.current
	n.current = n.resolveLocked(path)
	if n.current.Path != prev.Path && prev.Protected() {
		n.history = append(n.history, prev.Path)
	}
	return n.current
}

// Back returns to the previous protected location, or home.
func (n *Navigator) Back() Route {
	n.mu.Lock()
	defer n.mu.Unlock()

	target := PathHome
	if len(n.history) > 0 {
		target = n.history[len(n.history)-1]
		n.history = n.history[:len(n.history)-1]
	}
	n.current = n.resolveLocked(target)
	return n.current
}

// SetAuthenticated records a session change and re-resolves the current location.
//
// Signing in on a guest-only route continues to the remembered location.
// Losing the session on a protected route redirects to sign-in and remembers it.
func (n *Navigator) SetAuthenticated(authenticated bool) Route {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.authenticated == authenticated {
		return n.current
	}
	n.authenticated = authenticated

	if authenticated && n.current.GuestOnly() {
		target := AfterLogin(n.from)
		n.from = ""
		n.current = n.resolveLocked(target)
		return n.current
	}

	n.history = nil
	n.current = n.resolveLocked(n.current.Path)
	return n.current
}

// SignedOut records an explicit logout: back to sign-in with nothing remembered.
func (n *Navigator) SignedOut() Route {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.authenticated = false
	n.from = ""
	n.history = nil
	n.current = n.resolveLocked(PathSignIn)
	return n.current
}

// resolveLocked follows at most one redirect; redirect targets always render.
func (n *Navigator) resolveLocked(path string) Route {
	d := Resolve(n.authenticated, path)
	if !d.Redirect {
		return d.Route
	}
	if d.From != "" {
		n.from = d.From
	}
	return Resolve(n.authenticated, d.Target).Route
}
