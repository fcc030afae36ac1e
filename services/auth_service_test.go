package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"opsdash-backend/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthTokenRoundTrip(t *testing.T) {
	svc := NewAuthService(nil, "test-secret", time.Hour)

	token, exp, err := svc.IssueToken(&models.User{ID: 42, Email: "ops@example.com"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	id, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestAuthTokenExpired(t *testing.T) {
	svc := NewAuthService(nil, "test-secret", time.Minute)
	svc.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.IssueToken(&models.User{ID: 1})
	require.NoError(t, err)

	svc.Now = time.Now
	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthTokenWrongSecret(t *testing.T) {
	issuer := NewAuthService(nil, "secret-a", time.Hour)
	verifier := NewAuthService(nil, "secret-b", time.Hour)

	token, _, err := issuer.IssueToken(&models.User{ID: 1})
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = verifier.ParseToken("not-a-token")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthLogin(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewAuthService(db, "test-secret", time.Hour)

	hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.MinCost)
	require.NoError(t, err)

	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "email", "password_hash"}).
			AddRow(3, "demo@opsdash.local", string(hash))
	}
	query := regexp.QuoteMeta("SELECT * FROM `users` WHERE email = ?")

	mock.ExpectQuery(query).WillReturnRows(rows())
	session, err := svc.Login(context.Background(), " Demo@OpsDash.local ", "demo1234")
	require.NoError(t, err)
	assert.Equal(t, uint(3), session.User.ID)

	id, err := svc.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), id)

	mock.ExpectQuery(query).WillReturnRows(rows())
	_, err = svc.Login(context.Background(), "demo@opsdash.local", "wrong")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = svc.Login(context.Background(), "ghost@opsdash.local", "demo1234")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = svc.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, models.ErrValidation)

	require.NoError(t, mock.ExpectationsWereMet())
}
