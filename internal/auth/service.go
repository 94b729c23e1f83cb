// Package auth gates every ledger operation behind a login.
//
// Credentials are stored and compared as plain text. The account data is
// shared with existing spreadsheets and databases that already hold
// passwords verbatim, so hashing here would orphan every stored account.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finanzia/internal/core"
	"finanzia/internal/store"
)

// Accounts is the slice of the backend the access controller needs.
type Accounts interface {
	store.AccountCreator
	store.AccountFinder
}

type Service struct {
	accounts Accounts
}

func NewService(accounts Accounts) *Service {
	return &Service{accounts: accounts}
}

// Register creates a new account. Registration fails with
// core.ErrAlreadyExists when the username is taken; it never overwrites.
func (s *Service) Register(ctx context.Context, username, password string) error {
	a := core.Account{
		Username:  strings.TrimSpace(username),
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.accounts.CreateAccount(ctx, a); err != nil {
		if errors.Is(err, core.ErrAlreadyExists) {
			return core.ErrAlreadyExists
		}
		return fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account registered", "username", a.Username)
	return nil
}

// Authenticate checks the supplied pair against the stored account and
// returns the session handle scoping all subsequent ledger calls. An
// unknown user and a wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (core.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return core.Session{}, core.ErrInvalidCredentials
	}
	a, err := s.accounts.FindAccount(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Session{}, core.ErrInvalidCredentials
		}
		return core.Session{}, fmt.Errorf("find account: %w", err)
	}
	if a.Password != password {
		return core.Session{}, core.ErrInvalidCredentials
	}

	slog.InfoContext(ctx, "Login succeeded", "username", username)
	return core.Session{Username: username}, nil
}
