// Package guard maps locations to views and decides who may see them.
//
// Protected routes (home and movie detail) redirect anonymous users to the
// sign-in route and remember where they were headed. Guest-only routes (sign-in
// and sign-up) send signed-in users home. Unknown locations render the
// not-found view for everyone. Decisions depend only on the location and on
// whether a session is active.
package guard

import (
	"net/url"
	"strings"
)

const (
	PathSignIn = "/"
	PathSignUp = "/signup"
	PathHome   = "/home"

	moviePrefix = "/movie/"
)

// Kind identifies a view.
type Kind int

const (
	NotFound Kind = iota
	SignIn
	SignUp
	Home
	Movie
)

func (k Kind) String() string {
	switch k {
	case SignIn:
		return "sign-in"
	case SignUp:
		return "sign-up"
	case Home:
		return "home"
	case Movie:
		return "movie"
	default:
		return "not-found"
	}
}

// Route is a parsed location.
type Route struct {
	Kind    Kind
	Path    string
	MovieID string
}

// Protected reports whether the route requires a session.
func (r Route) Protected() bool {
	return r.Kind == Home || r.Kind == Movie
}

// GuestOnly reports whether the route is only shown without a session.
func (r Route) GuestOnly() bool {
	return r.Kind == SignIn || r.Kind == SignUp
}

// MoviePath returns the location of the detail view for id.
func MoviePath(id string) string {
	return moviePrefix + url.PathEscape(id)
}

// Parse maps a location onto a [Route]. Query strings and fragments are ignored.
func Parse(path string) Route {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		path = PathSignIn
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	switch path {
	case PathSignIn:
		return Route{Kind: SignIn, Path: path}
	case PathSignUp:
		return Route{Kind: SignUp, Path: path}
	case PathHome:
		return Route{Kind: Home, Path: path}
	}

	if rest, ok := strings.CutPrefix(path, moviePrefix); ok && rest != "" && !strings.Contains(rest, "/") {
		id, err := url.PathUnescape(rest)
		if err == nil && id != "" {
			return Route{Kind: Movie, Path: path, MovieID: id}
		}
	}
	return Route{Kind: NotFound, Path: path}
}

// Decision is the outcome of [Resolve]: render Route, or go to Target.
//
// From is set when an anonymous user was turned away from a protected route.
type Decision struct {
	Route    Route
	Redirect bool
	Target   string
	From     string
}

// Resolve decides what a user sees at path.
func Resolve(authenticated bool, path string) Decision {
	r := Parse(path)

	switch {
	case r.Protected() && !authenticated:
		return Decision{Route: r, Redirect: true, Target: PathSignIn, From: r.Path}
	case r.GuestOnly() && authenticated:
		return Decision{Route: r, Redirect: true, Target: PathHome}
	default:
		return Decision{Route: r}
	}
}

// AfterLogin returns where to go once signed in: from when it names a protected route, else home.
func AfterLogin(from string) string {
	if from == "" {
		return PathHome
	}
	if r := Parse(from); r.Protected() {
		return r.Path
	}
	return PathHome
}
