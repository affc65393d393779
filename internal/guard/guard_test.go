package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		path string
		want Route
	}{
		{"/", Route{Kind: SignIn, Path: "/"}},
		{"", Route{Kind: SignIn, Path: "/"}},
		{"/signup", Route{Kind: SignUp, Path: "/signup"}},
		{"/signup/", Route{Kind: SignUp, Path: "/signup"}},
		{"/home?tab=1", Route{Kind: Home, Path: "/home"}},
		{"/movie/tt0372784", Route{Kind: Movie, Path: "/movie/tt0372784", MovieID: "tt0372784"}},
		{"/movie/a%20b", Route{Kind: Movie, Path: "/movie/a%20b", MovieID: "a b"}},
		{"/movie/", Route{Kind: NotFound, Path: "/movie"}},
		{"/movie/a/b", Route{Kind: NotFound, Path: "/movie/a/b"}},
		{"/nope", Route{Kind: NotFound, Path: "/nope"}},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.path))
		})
	}
}

func TestMoviePath(t *testing.T) {
	assert.Equal(t, "/movie/tt1", MoviePath("tt1"))
	assert.Equal(t, "a b", Parse(MoviePath("a b")).MovieID)
}

func TestResolve(t *testing.T) {
	t.Run("Anonymous On Protected Route Redirects With From", func(t *testing.T) {
		d := Resolve(false, "/movie/123")
		assert.True(t, d.Redirect)
		assert.Equal(t, PathSignIn, d.Target)
		assert.Equal(t, "/movie/123", d.From)
	})

	t.Run("Authenticated On Protected Route Renders", func(t *testing.T) {
		d := Resolve(true, "/home")
		assert.False(t, d.Redirect)
		assert.Equal(t, Home, d.Route.Kind)
	})

	t.Run("Authenticated On Guest Route Goes Home", func(t *testing.T) {
		for _, p := range []string{"/", "/signup"} {
			d := Resolve(true, p)
			assert.True(t, d.Redirect)
			assert.Equal(t, PathHome, d.Target)
			assert.Empty(t, d.From)
		}
	})

	t.Run("Anonymous On Guest Route Renders", func(t *testing.T) {
		assert.False(t, Resolve(false, "/signup").Redirect)
	})

	t.Run("Not Found Renders For Everyone", func(t *testing.T) {
		for _, auth := range []bool{true, false} {
			d := Resolve(auth, "/nope")
			assert.False(t, d.Redirect)
			assert.Equal(t, NotFound, d.Route.Kind)
		}
	})
}

func TestAfterLogin(t *testing.T) {
	assert.Equal(t, "/movie/123", AfterLogin("/movie/123"))
	assert.Equal(t, PathHome, AfterLogin(""))
	assert.Equal(t, PathHome, AfterLogin("/signup"))
	assert.Equal(t, PathHome, AfterLogin("/nope"))
}

func TestNavigator(t *testing.T) {
	t.Run("Returns To Requested Movie After Login", func(t *testing.T) {
		n := NewNavigator(false, "/movie/123")
		assert.Equal(t, SignIn, n.Current().Kind)
		assert.Equal(t, "/movie/123", n.From())

		r := n.SetAuthenticated(true)
		assert.Equal(t, Movie, r.Kind)
		assert.Equal(t, "123", r.MovieID)
		assert.Empty(t, n.From())
	})

	t.Run("Login Without From Goes Home", func(t *testing.T) {
		n := NewNavigator(false, "/")
		assert.Equal(t, Home, n.SetAuthenticated(true).Kind)
	})

	t.Run("Signup Page Login Uses From", func(t *testing.T) {
		n := NewNavigator(false, "/home")
		n.Go("/signup")
		assert.Equal(t, Home, n.SetAuthenticated(true).Kind)
	})

	t.Run("Session Loss Redirects To Sign In", func(t *testing.T) {
		n := NewNavigator(true, "/movie/9")
		r := n.SetAuthenticated(false)
		assert.Equal(t, SignIn, r.Kind)
		assert.Equal(t, "/movie/9", n.From())
	})

	t.Run("Explicit Logout Forgets Location", func(t *testing.T) {
		n := NewNavigator(true, "/movie/9")
		assert.Equal(t, SignIn, n.SignedOut().Kind)
		assert.Empty(t, n.From())

		assert.Equal(t, SignIn, n.Go("/home").Kind)
		assert.Equal(t, "/home", n.From())
	})

	t.Run("Unchanged Session Keeps Route", func(t *testing.T) {
		n := NewNavigator(true, "/movie/9")
		assert.Equal(t, Movie, n.SetAuthenticated(true).Kind)
	})

	t.Run("Back Returns To Previous Protected Route", func(t *testing.T) {
		n := NewNavigator(true, "/home")
		n.Go(MoviePath("tt1"))
		n.Go(MoviePath("tt2"))

		assert.Equal(t, "tt1", n.Back().MovieID)
		assert.Equal(t, Home, n.Back().Kind)
		assert.Equal(t, Home, n.Back().Kind)
	})

	t.Run("Not Found Is Reachable Signed In", func(t *testing.T) {
		n := NewNavigator(true, "/home")
		assert.Equal(t, NotFound, n.Go("/whatever").Kind)
		assert.Equal(t, Home, n.Back().Kind)
	})
}
