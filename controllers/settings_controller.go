package controllers

import (
	"context"
	"net/http"
	"strings"

	"opsdash-backend/models"
	"opsdash-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type SettingsStore interface {
	Get(ctx context.Context, userID uint) (*models.TenantSetting, error)
	Save(ctx context.Context, userID uint, in models.TenantSetting) (*models.TenantSetting, error)
}

type SettingsController struct {
	SettingsSvc SettingsStore
}

func NewSettingsController(svc SettingsStore) *SettingsController {
	return &SettingsController{SettingsSvc: svc}
}

type settingsPayload struct {
	Name                 string           `json:"name" binding:"max=255"`
	Address              string           `json:"address"`
	Phone                string           `json:"phone" binding:"max=50"`
	Email                string           `json:"email" binding:"omitempty,email,max=150"`
	Website              string           `json:"website" binding:"omitempty,url,max=255"`
	Logo                 string           `json:"logo" binding:"max=255"`
	Currency             string           `json:"currency" binding:"omitempty,len=3,alpha"`
	PartialPaymentRatio  *decimal.Decimal `json:"partialPaymentRatio" binding:"omitempty,gt=0,lt=1"`
	DefaultPaymentMethod string           `json:"defaultPaymentMethod" binding:"max=32"`
}

// GetSettings (GET /api/settings)
func (ctl *SettingsController) GetSettings(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	s, err := ctl.SettingsSvc.Get(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, s)
}

// UpdateSettings (PUT /api/settings)
func (ctl *SettingsController) UpdateSettings(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	var p settingsPayload
	if !bindJSON(c, &p) {
		return
	}
	s, err := ctl.SettingsSvc.Save(c.Request.Context(), uid, models.TenantSetting{
		Name:                 p.Name,
		Address:              p.Address,
		Phone:                p.Phone,
		Email:                p.Email,
		Website:              p.Website,
		Logo:                 p.Logo,
		Currency:             strings.ToUpper(p.Currency),
		PartialPaymentRatio:  p.PartialPaymentRatio,
		DefaultPaymentMethod: strings.ToUpper(strings.TrimSpace(p.DefaultPaymentMethod)),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, s)
}
