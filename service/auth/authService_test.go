package authsvc

import (
	"context"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"booklib/model"
	userrepo "booklib/repository/user"
	"booklib/util/hash"
)

type mockRepo struct {
	createFn    func(ctx context.Context, u *model.User) error
	byEmailFn   func(ctx context.Context, email string) (*model.User, error)
	setBannedFn func(ctx context.Context, id int64, banned bool) (bool, error)
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}
func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.byEmailFn(ctx, email)
}
func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) { return nil, nil }
func (m *mockRepo) SetBanned(ctx context.Context, id int64, banned bool) (bool, error) {
	return m.setBannedFn(ctx, id, banned)
}

func TestRegister_Success(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Register(context.Background(), model.RegisterReq{
		Name:     "Rina",
		Email:    "  RINA@Example.COM ",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "rina@example.com", u.Email)
	require.Equal(t, model.RoleUser, u.Role)
	require.True(t, hash.Check(u.PasswordHash, "supersecret"))
}

func TestRegister_BadInput(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret")

	cases := []model.RegisterReq{
		{Name: "", Email: "a@b.com", Password: "supersecret"},
		{Name: "Rina", Email: "", Password: "supersecret"},
		{Name: "Rina", Email: "a@b.com", Password: "short"},
	}
	for _, req := range cases {
		_, _, err := svc.Register(context.Background(), req)
		require.ErrorIs(t, err, ErrBadInput)
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Register(context.Background(), model.RegisterReq{
		Name: "Rina", Email: "rina@example.com", Password: "supersecret",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_Success(t *testing.T) {
	hashed, err := hash.HashPassword("supersecret")
	require.NoError(t, err)

	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: email, PasswordHash: hashed, Role: model.RoleUser}, nil
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Login(context.Background(), model.LoginReq{
		Email: "rina@example.com", Password: "supersecret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(7), u.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	hashed, err := hash.HashPassword("supersecret")
	require.NoError(t, err)

	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, PasswordHash: hashed}, nil
		},
	}
	svc := New(m, "test-secret")

	_, _, err = svc.Login(context.Background(), model.LoginReq{
		Email: "rina@example.com", Password: "nope",
	})
	require.ErrorIs(t, err, ErrInvalidCreds)
}

func TestSetBanned_UnknownUser(t *testing.T) {
	m := &mockRepo{
		setBannedFn: func(ctx context.Context, id int64, banned bool) (bool, error) {
			return false, nil
		},
	}
	svc := New(m, "test-secret")

	err := svc.SetBanned(context.Background(), 99, true)
	require.ErrorIs(t, err, ErrUserNotFound)
}
