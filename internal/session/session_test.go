package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore fails writes to the keys in failOn.
type failingStore struct {
	*store.MemoryStore
	failOn map[string]bool
}

func (f *failingStore) Write(key string, value any) error {
	if f.failOn[key] {
		return errors.New("disk full")
	}
	return f.MemoryStore.Write(key, value)
}

type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) listen(s State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

func (r *recorder) all() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func TestManager(t *testing.T) {
	t.Run("Starts Anonymous On Empty Store", func(t *testing.T) {
		m := NewManager(store.NewMemoryStore(), nil)
		assert.False(t, m.Current().IsAuthenticated())
		assert.Equal(t, Anonymous, m.Current().Status)
		assert.Empty(t, m.Accounts())
	})

	t.Run("Signup Creates And Signs In", func(t *testing.T) {
		st := store.NewMemoryStore()
		m := NewManager(st, nil)
		rec := &recorder{}
		m.Subscribe(rec.listen)

		a, err := m.Signup("  ada@example.com ", "secret1", "  Ada ")
		require.NoError(t, err)
		assert.NotEmpty(t, a.ID)
		assert.Equal(t, "ada@example.com", a.Email)
		assert.Equal(t, "Ada", a.Name)
		assert.Equal(t, "secret1", a.Password)

		cur := m.Current()
		require.True(t, cur.IsAuthenticated())
		assert.Equal(t, a, *cur.Account)

		var saved []models.Account
		require.True(t, st.Read(store.KeyAccounts, &saved))
		assert.Equal(t, []models.Account{a}, saved)

		var session models.Account
		require.True(t, st.Read(store.KeyCurrentSession, &session))
		assert.Equal(t, a.ID, session.ID)

		states := rec.all()
		require.Len(t, states, 1)
		assert.True(t, states[0].IsAuthenticated())
	})

	t.Run("Signup Rejects Duplicate Email Ignoring Case", func(t *testing.T) {
		st := store.NewMemoryStore()
		m := NewManager(st, nil)
		_, err := m.Signup("a@x.io", "secret1", "A")
		require.NoError(t, err)
		require.NoError(t, m.Logout())

		before, _ := st.Raw(store.KeyAccounts)
		_, err = m.Signup("A@X.IO", "other12", "B")
		require.ErrorIs(t, err, shared.ErrDuplicateAccount)

		after, _ := st.Raw(store.KeyAccounts)
		assert.Equal(t, before, after)
		assert.False(t, m.Current().IsAuthenticated())
	})

	t.Run("Signup Generates Distinct IDs", func(t *testing.T) {
		m := NewManager(store.NewMemoryStore(), nil)
		a, err := m.Signup("a@x.io", "secret1", "A")
		require.NoError(t, err)
		b, err := m.Signup("b@x.io", "secret1", "B")
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
		assert.Len(t, m.Accounts(), 2)
	})

	t.Run("Signup Rejects Empty Email", func(t *testing.T) {
		m := NewManager(store.NewMemoryStore(), nil)
		_, err := m.Signup("   ", "secret1", "A")
		require.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Empty(t, m.Accounts())
	})

	t.Run("Login Matches Email Ignoring Case", func(t *testing.T) {
		m := NewManager(store.NewMemoryStore(), nil)
		a, err := m.Signup("Ada@Example.com", "secret1", "Ada")
		require.NoError(t, err)
		require.NoError(t, m.Logout())

		got, err := m.Login("ada@EXAMPLE.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, a, got)
		assert.Equal(t, a.ID, m.Current().Account.ID)
	})

	t.Run("Login Requires Exact Password", func(t *testing.T) {
		m := NewManager(store.NewMemoryStore(), nil)
		_, err := m.Signup("a@x.io", "Secret1", "A")
		require.NoError(t, err)
		require.NoError(t, m.Logout())

		rec := &recorder{}
		m.Subscribe(rec.listen)

		_, err = m.Login("a@x.io", "secret1")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
		_, err = m.Login("nobody@x.io", "Secret1")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)

		assert.False(t, m.Current().IsAuthenticated())
		assert.Empty(t, rec.all())
	})

	t.Run("Failed Login Keeps Existing Session", func(t *testing.T) {
		m := NewManager(store.NewMemoryStore(), nil)
		a, err := m.Signup("a@x.io", "secret1", "A")
		require.NoError(t, err)

		_, err = m.Login("a@x.io", "wrong!!")
		require.Error(t, err)
		assert.Equal(t, a.ID, m.Current().Account.ID)
	})

	t.Run("Logout Clears Session", func(t *testing.T) {
		st := store.NewMemoryStore()
		m := NewManager(st, nil)
		_, err := m.Signup("a@x.io", "secret1", "A")
		require.NoError(t, err)

		rec := &recorder{}
		m.Subscribe(rec.listen)
		require.NoError(t, m.Logout())

		assert.False(t, m.Current().IsAuthenticated())
		_, ok := st.Raw(store.KeyCurrentSession)
		assert.False(t, ok)

		states := rec.all()
		require.Len(t, states, 1)
		assert.Equal(t, Anonymous, states[0].Status)
	})

	t.Run("Session Survives Restart", func(t *testing.T) {
		st := store.NewMemoryStore()
		a, err := NewManager(st, nil).Signup("a@x.io", "secret1", "A")
		require.NoError(t, err)

		m := NewManager(st, nil)
		require.True(t, m.Current().IsAuthenticated())
		assert.Equal(t, a, *m.Current().Account)
	})

	t.Run("Dangling Session Is Discarded", func(t *testing.T) {
		st := store.NewMemoryStore()
		require.NoError(t, st.Write(store.KeyCurrentSession, models.Account{ID: "gone", Email: "g@x.io"}))

		m := NewManager(st, nil)
		assert.False(t, m.Current().IsAuthenticated())
		_, ok := st.Raw(store.KeyCurrentSession)
		assert.False(t, ok)
	})

	t.Run("Corrupt Session Is Discarded", func(t *testing.T) {
		st := store.NewMemoryStore()
		st.SetRaw(store.KeyCurrentSession, "{not json")

		m := NewManager(st, nil)
		assert.False(t, m.Current().IsAuthenticated())
		_, ok := st.Raw(store.KeyCurrentSession)
		assert.False(t, ok)
	})

	t.Run("Corrupt Registry Reads As Empty", func(t *testing.T) {
		st := store.NewMemoryStore()
		st.SetRaw(store.KeyAccounts, "[[[")

		m := NewManager(st, nil)
		_, err := m.Signup("a@x.io", "secret1", "A")
		require.NoError(t, err)
		assert.Len(t, m.Accounts(), 1)
	})

	t.Run("Failed Session Write Leaves State Unchanged", func(t *testing.T) {
		mem := store.NewMemoryStore()
		seed := NewManager(mem, nil)
		_, err := seed.Signup("a@x.io", "secret1", "A")
		require.NoError(t, err)
		require.NoError(t, seed.Logout())

		m := NewManager(&failingStore{MemoryStore: mem, failOn: map[string]bool{store.KeyCurrentSession: true}}, nil)
		rec := &recorder{}
		m.Subscribe(rec.listen)

		_, err = m.Login("a@x.io", "secret1")
		require.Error(t, err)
		assert.False(t, m.Current().IsAuthenticated())
		assert.Empty(t, rec.all())
	})

	t.Run("Failed Signup Session Write Rolls Back Account", func(t *testing.T) {
		mem := store.NewMemoryStore()
		m := NewManager(&failingStore{MemoryStore: mem, failOn: map[string]bool{store.KeyCurrentSession: true}}, nil)
		rec := &recorder{}
		m.Subscribe(rec.listen)

		_, err := m.Signup("a@x.io", "secret1", "A")
		require.Error(t, err)
		assert.False(t, m.Current().IsAuthenticated())
		assert.Empty(t, m.Accounts())
		assert.Empty(t, rec.all())

		retry := NewManager(mem, nil)
		_, err = retry.Signup("a@x.io", "secret1", "A")
		require.NoError(t, err, "email must stay available after a failed signup")
	})

	t.Run("Listener Reads Current During Concurrent Transition", func(t *testing.T) {
		m := NewManager(store.NewMemoryStore(), nil)
		_, err := m.Signup("a@x.io", "secret1", "A")
		require.NoError(t, err)
		require.NoError(t, m.Logout())

		entered := make(chan struct{})
		proceed := make(chan struct{})
		done := make(chan State, 1)
		rec := &recorder{}
		var once sync.Once
		m.Subscribe(func(s State) {
			rec.listen(s)
			once.Do(func() {
				close(entered)
				<-proceed
				done <- m.Current()
			})
		})

		go m.Login("a@x.io", "secret1")
		<-entered

		logoutDone := make(chan error, 1)
		go func() { logoutDone <- m.Logout() }()
		require.Eventually(t, func() bool { return !m.Current().IsAuthenticated() }, time.Second, 5*time.Millisecond)

		close(proceed)
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("listener blocked reading Current while another transition was pending")
		}
		require.NoError(t, <-logoutDone)

		states := rec.all()
		require.Len(t, states, 2)
		assert.Equal(t, Authenticated, states[0].Status)
		assert.Equal(t, Anonymous, states[1].Status)
	})

	t.Run("Unsubscribe Stops Notifications", func(t *testing.T) {
		m := NewManager(store.NewMemoryStore(), nil)
		rec := &recorder{}
		unsubscribe := m.Subscribe(rec.listen)
		unsubscribe()

		_, err := m.Signup("a@x.io", "secret1", "A")
		require.NoError(t, err)
		assert.Empty(t, rec.all())
	})

	t.Run("Snapshots Are Independent", func(t *testing.T) {
		m := NewManager(store.NewMemoryStore(), nil)
		_, err := m.Signup("a@x.io", "secret1", "A")
		require.NoError(t, err)

		snap := m.Current()
		snap.Account.Name = "changed"
		assert.Equal(t, "A", m.Current().Account.Name)
	})
}

func TestRememberEmail(t *testing.T) {
	t.Run("Remembers And Forgets", func(t *testing.T) {
		m := NewManager(store.NewMemoryStore(), nil)
		assert.Empty(t, m.LastEmail())

		require.NoError(t, m.RememberEmail(" a@x.io ", true))
		assert.Equal(t, "a@x.io", m.LastEmail())

		require.NoError(t, m.RememberEmail("a@x.io", false))
		assert.Empty(t, m.LastEmail())
	})

	t.Run("Outlives Logout", func(t *testing.T) {
		m := NewManager(store.NewMemoryStore(), nil)
		_, err := m.Signup("a@x.io", "secret1", "A")
		require.NoError(t, err)
		require.NoError(t, m.RememberEmail("a@x.io", true))
		require.NoError(t, m.Logout())
		assert.Equal(t, "a@x.io", m.LastEmail())
	})
}
