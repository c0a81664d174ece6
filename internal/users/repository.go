package users

import (
	"context"
	"fmt"

	"github.com/retriever-essentials/pantry-web/internal/backend"
)

// Repository manages staff accounts through the pantry REST API.
type Repository struct {
	api *backend.Client
}

func NewRepository(api *backend.Client) *Repository {
	return &Repository{api: api}
}

// ListAccounts fetches every staff account.
func (r *Repository) ListAccounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := r.api.Get(ctx, "/api/user", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetAccount fetches a single account by ID.
func (r *Repository) GetAccount(ctx context.Context, id int64) (Account, error) {
	var account Account
	if err := r.api.Get(ctx, fmt.Sprintf("/api/user/%d", id), &account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// CreateAccount registers a new staff login.
func (r *Repository) CreateAccount(ctx context.Context, account NewAccount) (Account, error) {
	var created Account
	if err := r.api.Post(ctx, "/api/user", account, &created); err != nil {
		return Account{}, err
	}
	return created, nil
}

// ChangePassword updates the password of the signed-in account. The backend
// reads the target account off the bearer token.
func (r *Repository) ChangePassword(ctx context.Context, password string) error {
	return r.api.Put(ctx, "/api/user/password", map[string]string{"password": password})
}

// EnableAccount re-activates a disabled login.
func (r *Repository) EnableAccount(ctx context.Context, id int64) error {
	return r.api.Put(ctx, fmt.Sprintf("/api/user/enable/%d", id), nil)
}

// DisableAccount locks a login out without deleting its history.
func (r *Repository) DisableAccount(ctx context.Context, id int64) error {
	return r.api.Put(ctx, fmt.Sprintf("/api/user/disable/%d", id), nil)
}
