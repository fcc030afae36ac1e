package controllers

import (
	"context"
	"net/http"

	"opsdash-backend/models"
	"opsdash-backend/services"
	"opsdash-backend/utils"

	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*services.Session, error)
	CurrentUser(ctx context.Context, userID uint) (*models.User, error)
}

type AuthController struct {
	AuthSvc Authenticator
}

func NewAuthController(svc Authenticator) *AuthController {
	return &AuthController{AuthSvc: svc}
}

type loginPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login (POST /api/auth/login)
func (ctl *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload) {
		return
	}
	session, err := ctl.AuthSvc.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, session)
}

// Me (GET /api/auth/me)
func (ctl *AuthController) Me(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	user, err := ctl.AuthSvc.CurrentUser(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, user)
}
