// Package session owns the signed-in state of the local client.
//
// A [Manager] moves between two states, Anonymous and Authenticated(account),
// persists every transition through a [store.Store] and publishes an immutable
// [State] snapshot to subscribers after each one. The account registry lives
// in the same store under [store.KeyAccounts].
//
// Passwords are kept and compared in plain text, matching the data already
// written by earlier versions of the registry.
package session

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/store"
)

// Status enumerates the session states.
type Status int

const (
	Anonymous Status = iota
	Authenticated
)

func (s Status) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// State is a snapshot of the session. Account is nil while anonymous.
type State struct {
	Status  Status
	Account *models.Account
}

// IsAuthenticated reports whether an account is signed in.
func (s State) IsAuthenticated() bool {
	return s.Status == Authenticated && s.Account != nil
}

func (s State) clone() State {
	if s.Account != nil {
		a := *s.Account
		s.Account = &a
	}
	return s
}

func anonymous() State {
	return State{Status: Anonymous}
}

func authenticated(a models.Account) State {
	return State{Status: Authenticated, Account: &a}
}

// Listener receives the new [State] after every transition.
type Listener func(State)

// Manager implements login, signup and logout over a persisted account registry.
type Manager struct {
	mu      sync.Mutex
	store   store.Store
	logger  *log.Logger
	newID   func() string
	state   State
	hub     shared.Hub[State]
}

// NewManager creates a [Manager] and restores the persisted session, if any.
//
// A missing, unreadable or dangling session record leaves the manager anonymous.
func NewManager(st store.Store, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := &Manager{
		store:  st,
		logger: logger,
		newID:  shared.GenerateID,
		state:  anonymous(),
		hub:    shared.Hub[State]{Clone: State.clone},
	}
	m.restore()
	return m
}

func (m *Manager) restore() {
	var saved models.Account
	if !m.store.Read(store.KeyCurrentSession, &saved) {
		m.clearSession()
		return
	}

	for _, a := range m.readAccounts() {
		if a.ID == saved.ID && saved.ID != "" {
			m.state = authenticated(a)
			m.logger.Debug("session restored", "account", a.ID)
			return
		}
	}

	m.logger.Warn("discarding session for unknown account", "account", saved.ID)
	m.clearSession()
}

// clearSession drops an absent or undecodable session record.
func (m *Manager) clearSession() {
	if err := m.store.Remove(store.KeyCurrentSession); err != nil {
		m.logger.Error("failed to clear stale session", "err", err)
	}
}

// Current returns the current session snapshot.
func (m *Manager) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Subscribe registers fn for future transitions and returns a func that removes it.
//
// Listeners run in transition order, outside the manager's lock.
func (m *Manager) Subscribe(fn Listener) func() {
	return m.hub.Subscribe(fn)
}

// Signup registers a new account and signs it in.
//
// Fails with [shared.ErrDuplicateAccount] when the email is already registered, ignoring case.
func (m *Manager) Signup(email, password, name string) (models.Account, error) {
	m.mu.Lock()

	accounts := m.readAccounts()
	key := shared.NormalizeEmail(email)
	for _, a := range accounts {
		if shared.NormalizeEmail(a.Email) == key {
			m.mu.Unlock()
			return models.Account{}, shared.ErrDuplicateAccount
		}
	}

	account := models.Account{
		ID:       m.newID(),
		Email:    strings.TrimSpace(email),
		Password: password,
		Name:     strings.TrimSpace(name),
	}
	if err := account.Validate(); err != nil {
		m.mu.Unlock()
		return models.Account{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if err := m.store.Write(store.KeyAccounts, append(accounts, account)); err != nil {
		m.mu.Unlock()
		return models.Account{}, fmt.Errorf("failed to save account: %w", err)
	}
	if err := m.store.Write(store.KeyCurrentSession, account); err != nil {
		if rbErr := m.store.Write(store.KeyAccounts, accounts); rbErr != nil {
			m.logger.Error("failed to roll back account registry", "account", account.ID, "err", rbErr)
		}
		m.mu.Unlock()
		return models.Account{}, fmt.Errorf("failed to save session: %w", err)
	}

	m.state = authenticated(account)
	m.logger.Info("account created", "account", account.ID)
	m.publishLocked()
	return account, nil
}

// Login signs in the account whose email matches ignoring case and whose password matches exactly.
//
// Fails with [shared.ErrInvalidCredentials] otherwise, leaving the current state untouched.
func (m *Manager) Login(email, password string) (models.Account, error) {
	m.mu.Lock()

	key := shared.NormalizeEmail(email)
	for _, a := range m.readAccounts() {
		if shared.NormalizeEmail(a.Email) != key || a.Password != password {
			continue
		}

		if err := m.store.Write(store.KeyCurrentSession, a); err != nil {
			m.mu.Unlock()
			return models.Account{}, fmt.Errorf("failed to save session: %w", err)
		}

		m.state = authenticated(a)
		m.logger.Info("signed in", "account", a.ID)
		m.publishLocked()
		return a, nil
	}

	m.mu.Unlock()
	return models.Account{}, shared.ErrInvalidCredentials
}

// Logout clears the persisted session and returns to Anonymous.
func (m *Manager) Logout() error {
	m.mu.Lock()

	if err := m.store.Remove(store.KeyCurrentSession); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to clear session: %w", err)
	}

	m.state = anonymous()
	m.logger.Info("signed out")
	m.publishLocked()
	return nil
}

// RememberEmail stores email for the next sign-in form, or forgets it when remember is false.
func (m *Manager) RememberEmail(email string, remember bool) error {
	if !remember {
		return m.store.Remove(store.KeyLastEmail)
	}
	return m.store.Write(store.KeyLastEmail, strings.TrimSpace(email))
}

// LastEmail returns the remembered sign-in email, or "".
func (m *Manager) LastEmail() string {
	var email string
	if !m.store.Read(store.KeyLastEmail, &email) {
		return ""
	}
	return email
}

// Accounts returns a copy of the registered accounts.
func (m *Manager) Accounts() []models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readAccounts()
}

func (m *Manager) readAccounts() []models.Account {
	var accounts []models.Account
	if !m.store.Read(store.KeyAccounts, &accounts) {
		return []models.Account{}
	}
	return accounts
}

// publishLocked releases m.mu and notifies listeners of the current state.
func (m *Manager) publishLocked() {
	m.hub.Publish(&m.mu, m.state.clone())
}
