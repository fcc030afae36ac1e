package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"opsdash-backend/models"
	"opsdash-backend/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Login(ctx context.Context, email, password string) (*services.Session, error) {
	args := m.Called(ctx, email, password)
	out, _ := args.Get(0).(*services.Session)
	return out, args.Error(1)
}

func (m *mockAuthenticator) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).(*models.User)
	return out, args.Error(1)
}

func TestLogin(t *testing.T) {
	svc := new(mockAuthenticator)
	r := newTestRouter()
	ctl := NewAuthController(svc)
	r.POST("/api/auth/login", ctl.Login)
	r.GET("/api/auth/me", ctl.Me)

	svc.On("Login", mock.Anything, "demo@opsdash.local", "demo1234").
		Return(&services.Session{Token: "t", ExpiresAt: time.Now().Add(time.Hour), User: &models.User{ID: 1}}, nil).Once()
	svc.On("Login", mock.Anything, "demo@opsdash.local", "wrong").
		Return(nil, models.ErrUnauthorized).Once()
	svc.On("CurrentUser", mock.Anything, uint(1)).Return(&models.User{ID: 1, Email: "demo@opsdash.local"}, nil).Once()

	w := doJSON(r, http.MethodPost, "/api/auth/login", 0, `{"email":"demo@opsdash.local","password":"demo1234"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "passwordHash")

	w = doJSON(r, http.MethodPost, "/api/auth/login", 0, `{"email":"demo@opsdash.local","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/login", 0, `{"email":"not-an-email","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/auth/me", 1, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
