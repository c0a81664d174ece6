package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/retriever-essentials/pantry-web/internal/token"
)

type memoryRepo struct {
	accounts []Account
	enabled  map[int64]bool
	password string
}

func (m *memoryRepo) ListAccounts(ctx context.Context) ([]Account, error) {
	return append([]Account(nil), m.accounts...), nil
}

func (m *memoryRepo) GetAccount(ctx context.Context, id int64) (Account, error) {
	for _, a := range m.accounts {
		if a.AppUserID == id {
			return a, nil
		}
	}
	return Account{}, nil
}

func (m *memoryRepo) CreateAccount(ctx context.Context, account NewAccount) (Account, error) {
	created := Account{
		AppUserID:   int64(len(m.accounts) + 1),
		Username:    account.Username,
		Authorities: []Authority{{Authority: "ROLE_" + account.UserRole}},
		Enabled:     true,
	}
	m.accounts = append(m.accounts, created)
	return created, nil
}

func (m *memoryRepo) ChangePassword(ctx context.Context, password string) error {
	m.password = password
	return nil
}

func (m *memoryRepo) EnableAccount(ctx context.Context, id int64) error {
	m.enabled[id] = true
	return nil
}

func (m *memoryRepo) DisableAccount(ctx context.Context, id int64) error {
	m.enabled[id] = false
	return nil
}

func TestListSortedByUsername(t *testing.T) {
	repo := &memoryRepo{accounts: []Account{
		{AppUserID: 1, Username: "zoe@pantry.edu"},
		{AppUserID: 2, Username: "Ana@pantry.edu"},
	}}
	svc := NewService(repo)

	accounts, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Ana@pantry.edu", accounts[0].Username)
	require.Equal(t, "zoe@pantry.edu", accounts[1].Username)
}

func TestCreateRejectsShortPassword(t *testing.T) {
	svc := NewService(&memoryRepo{})

	_, err := svc.Create(context.Background(), NewAccount{Username: "new@pantry.edu", Password: "tiny"})
	require.ErrorIs(t, err, ErrWeakPassword)

	created, err := svc.Create(context.Background(), NewAccount{Username: " new@pantry.edu ", Password: "longenough", UserRole: "AUTHORITY"})
	require.NoError(t, err)
	require.Equal(t, "new@pantry.edu", created.Username)

	role, ok := created.Role()
	require.True(t, ok)
	require.Equal(t, token.RoleAuthority, role)
}

func TestChangePassword(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)

	require.ErrorIs(t, svc.ChangePassword(context.Background(), "short"), ErrWeakPassword)
	require.NoError(t, svc.ChangePassword(context.Background(), "longenough"))
	require.Equal(t, "longenough", repo.password)
}

func TestSetEnabled(t *testing.T) {
	repo := &memoryRepo{enabled: map[int64]bool{}}
	svc := NewService(repo)

	require.NoError(t, svc.SetEnabled(context.Background(), 3, true))
	require.True(t, repo.enabled[3])
	require.NoError(t, svc.SetEnabled(context.Background(), 3, false))
	require.False(t, repo.enabled[3])
}
