package services

import (
	"context"
	"errors"
	"fmt"

	"opsdash-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsService struct {
	DB *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{DB: db}
}

// Get returns the tenant's settings, or an empty profile when none were saved yet.
func (s *SettingsService) Get(ctx context.Context, userID uint) (*models.TenantSetting, error) {
	var setting models.TenantSetting
	err := s.DB.WithContext(ctx).Scopes(scopeTenant(userID)).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.TenantSetting{UserID: userID, Currency: "USD"}, nil
		}
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &setting, nil
}

// Save creates or replaces the tenant's single settings row.
func (s *SettingsService) Save(ctx context.Context, userID uint, in models.TenantSetting) (*models.TenantSetting, error) {
	in.ID = 0
	in.UserID = userID
	if in.Currency == "" {
		in.Currency = "USD"
	}

	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "address", "phone", "email", "website", "logo", "currency",
			"partial_payment_ratio", "default_payment_method", "updated_at",
		}),
	}).Create(&in).Error
	if err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	return s.Get(ctx, userID)
}
