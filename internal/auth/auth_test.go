package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/testutil"
)

func newService(t *testing.T, clock *testutil.Clock) (*Service, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	tokens, err := NewTokens("test-secret", time.Hour, clock.Now)
	require.NoError(t, err)
	return NewService(db.Storage, tokens, clock.Now), db
}

func TestRegisterAndLogin(t *testing.T) {
	clock := testutil.NewClock(time.Now())
	svc, db := newService(t, clock)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Email: " New@Example.com ", Password: "hunter22", Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", session.User.Email)
	assert.NotEqual(t, "hunter22", session.User.PasswordHash)
	assert.NotEmpty(t, session.Token)

	cats, err := db.Storage.ListCategories(ctx, session.User.ID)
	require.NoError(t, err)
	require.Len(t, cats, 4)
	assert.Equal(t, "Study", cats[0].Name)
	assert.Equal(t, "#8B5CF6", cats[0].Color)
	assert.Equal(t, "Work", cats[3].Name)

	userID, err := svc.Authenticate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, userID)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{Email: "new@example.com", Password: "another1", Name: "Dup"})
		assert.ErrorIs(t, err, common.ErrConflict)
	})

	t.Run("login", func(t *testing.T) {
		got, err := svc.Login(ctx, LoginInput{Email: "NEW@example.com", Password: "hunter22"})
		require.NoError(t, err)
		assert.Equal(t, session.User.ID, got.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Email: "new@example.com", Password: "wrong-pass"})
		assert.ErrorIs(t, err, common.ErrUnauthorized)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "whatever"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("me", func(t *testing.T) {
		me, err := svc.Me(ctx, session.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "New", me.Name)

		_, err = svc.Me(ctx, "vanished")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService(t, testutil.NewClock(time.Now()))

	tests := []struct {
		name  string
		field string
		in    RegisterInput
	}{
		{name: "bad email", field: "email", in: RegisterInput{Email: "not-an-email", Password: "secret1", Name: "x"}},
		{name: "short password", field: "password", in: RegisterInput{Email: "a@b.co", Password: "12345", Name: "x"}},
		{name: "blank name", field: "name", in: RegisterInput{Email: "a@b.co", Password: "secret1", Name: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestTokens(t *testing.T) {
	clock := testutil.NewClock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	tokens, err := NewTokens("secret", time.Hour, clock.Now)
	require.NoError(t, err)

	token, err := tokens.Sign("user-1")
	require.NoError(t, err)

	userID, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokens("other", time.Hour, clock.Now)
		require.NoError(t, err)
		_, err = other.Parse(token)
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse("not.a.token")
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		clock.Advance(2 * time.Hour)
		_, err := tokens.Parse(token)
		assert.ErrorIs(t, err, common.ErrUnauthorized)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := NewTokens("", 0, nil)
		assert.ErrorIs(t, err, common.ErrMissingConfig)
	})

	t.Run("default ttl", func(t *testing.T) {
		tk, err := NewTokens("s", 0, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultTokenTTL, tk.ttl)
	})
}
