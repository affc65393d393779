package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/flix/internal/session"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/urfave/cli/v3"
)

// accountView is the public part of an account, as printed by whoami.
type accountView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// fieldError folds form validation messages into one [shared.ErrInvalidInput].
func fieldError(errs session.FieldErrors) error {
	if errs.OK() {
		return nil
	}

	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	msgs := make([]string, len(fields))
	for i, f := range fields {
		msgs[i] = errs[f]
	}
	return fmt.Errorf("%w: %s", shared.ErrInvalidInput, strings.Join(msgs, " "))
}

// AuthSignup creates an account and signs it in.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	name := cmd.String("name")
	email := cmd.String("email")
	password := cmd.String("password")
	confirm := password

	if password == "" {
		var err error
		if password, err = r.promptPassword("Password"); err != nil {
			return err
		}
		if confirm, err = r.promptPassword("Confirm password"); err != nil {
			return err
		}
	}

	if err := fieldError(session.ValidateSignup(name, email, password, confirm)); err != nil {
		return err
	}

	account, err := r.session.Signup(email, password, name)
	if err != nil {
		return err
	}

	r.logger.Debug("signed up", "account", account.ID)
	return r.writePlain("✓ Welcome, %s! You are signed in as %s\n", account.Name, account.Email)
}

// AuthLogin signs in with email and password.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	email := strings.TrimSpace(cmd.String("email"))
	if email == "" {
		email = r.session.LastEmail()
	}
	password := cmd.String("password")
	if password == "" {
		var err error
		if password, err = r.promptPassword("Password"); err != nil {
			return err
		}
	}

	if err := fieldError(session.ValidateLogin(email, password)); err != nil {
		return err
	}

	account, err := r.session.Login(email, password)
	if err != nil {
		return err
	}

	if err := r.session.RememberEmail(email, cmd.Bool("remember")); err != nil {
		r.logger.Warn("failed to update remembered email", "err", err)
	}

	return r.writePlain("✓ Signed in as %s\n", account.Email)
}

// AuthLogout clears the session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	if !r.session.Current().IsAuthenticated() {
		return r.writePlain("Not signed in.\n")
	}
	if err := r.session.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthWhoami prints the signed-in account.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	state := r.session.Current()
	if cmd.Bool("json") {
		if !state.IsAuthenticated() {
			return r.writeJSON(nil, false)
		}
		a := state.Account
		return r.writeJSON(accountView{ID: a.ID, Email: a.Email, Name: a.Name}, true)
	}

	if !state.IsAuthenticated() {
		return r.writePlain("Not signed in.\n")
	}
	return r.writePlain("%s <%s>\nID: %s\n", state.Account.Name, state.Account.Email, state.Account.ID)
}
