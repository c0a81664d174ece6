package users

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// ErrWeakPassword rejects passwords the backend would refuse anyway.
var ErrWeakPassword = errors.New("users: password must be at least 6 characters")

// RepositoryPort is the persistence contract the service depends on.
type RepositoryPort interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	GetAccount(ctx context.Context, id int64) (Account, error)
	CreateAccount(ctx context.Context, account NewAccount) (Account, error)
	ChangePassword(ctx context.Context, password string) error
	EnableAccount(ctx context.Context, id int64) error
	DisableAccount(ctx context.Context, id int64) error
}

// Service holds the staff account use cases.
type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns every account sorted by username.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(accounts, func(i, j int) bool {
		return strings.ToLower(accounts[i].Username) < strings.ToLower(accounts[j].Username)
	})
	return accounts, nil
}

// Get fetches a single account.
func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	return s.repo.GetAccount(ctx, id)
}

// Create registers a new staff login.
func (s *Service) Create(ctx context.Context, account NewAccount) (Account, error) {
	account.Username = strings.TrimSpace(account.Username)
	if len(account.Password) < 6 {
		return Account{}, ErrWeakPassword
	}
	return s.repo.CreateAccount(ctx, account)
}

// ChangePassword updates the signed-in account's password.
func (s *Service) ChangePassword(ctx context.Context, password string) error {
	if len(password) < 6 {
		return ErrWeakPassword
	}
	return s.repo.ChangePassword(ctx, password)
}

// SetEnabled flips an account's enabled state.
func (s *Service) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	if enabled {
		return s.repo.EnableAccount(ctx, id)
	}
	return s.repo.DisableAccount(ctx, id)
}
