package services

import (
	"context"
	"errors"
	"fmt"

	"opsdash-backend/models"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
)

// OwnedStore is the ownership-scoped CRUD shared by every tenant resource. Each
// statement filters on both id and user_id, so a row of another tenant is
// indistinguishable from a missing one.
type OwnedStore[T any] struct {
	DB       *gorm.DB
	Resource string
	Preloads []string
}

func NewOwnedStore[T any](db *gorm.DB, resource string, preloads ...string) *OwnedStore[T] {
	return &OwnedStore[T]{DB: db, Resource: resource, Preloads: preloads}
}

func scopeOwned(userID, id uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ? AND user_id = ?", id, userID)
	}
}

func scopeTenant(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

func (s *OwnedStore[T]) withPreloads(db *gorm.DB) *gorm.DB {
	for _, p := range s.Preloads {
		db = db.Preload(p)
	}
	return db
}

func (s *OwnedStore[T]) List(ctx context.Context, userID uint) ([]T, error) {
	var out []T
	err := s.withPreloads(s.DB.WithContext(ctx)).
		Scopes(scopeTenant(userID)).
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.Resource, err)
	}
	return out, nil
}

func (s *OwnedStore[T]) Get(ctx context.Context, userID, id uint) (*T, error) {
	return s.get(s.DB.WithContext(ctx), userID, id)
}

func (s *OwnedStore[T]) get(db *gorm.DB, userID, id uint) (*T, error) {
	var rec T
	err := s.withPreloads(db).Scopes(scopeOwned(userID, id)).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound(s.Resource)
		}
		return nil, fmt.Errorf("find %s %d: %w", s.Resource, id, err)
	}
	return &rec, nil
}

// Reference is a foreign id taken from a request body. It must name a row of the
// same tenant.
type Reference struct {
	Model any
	Label string
	ID    *uint
}

func checkReferences(tx *gorm.DB, userID uint, refs []Reference) error {
	for _, r := range refs {
		if err := ensureOwned(tx, r.Model, r.Label, userID, r.ID); err != nil {
			return err
		}
	}
	return nil
}

// Create inserts rec as given; callers set the owner on it beforehand.
func (s *OwnedStore[T]) Create(ctx context.Context, userID uint, rec *T, refs ...Reference) error {
	db := s.DB.WithContext(ctx)
	if len(refs) == 0 {
		if err := db.Create(rec).Error; err != nil {
			return s.writeError("create", err)
		}
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, userID, refs); err != nil {
			return err
		}
		if err := tx.Create(rec).Error; err != nil {
			return s.writeError("create", err)
		}
		return nil
	})
}

// Update applies changes with a conditional UPDATE and reads the row back inside the
// same transaction. Zero matched rows means the caller does not own the record.
func (s *OwnedStore[T]) Update(ctx context.Context, userID, id uint, changes map[string]any, refs ...Reference) (*T, error) {
	var out *T
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, userID, refs); err != nil {
			return err
		}
		res := tx.Model(new(T)).Scopes(scopeOwned(userID, id)).Updates(changes)
		if res.Error != nil {
			return s.writeError("update", res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NotFound(s.Resource)
		}
		rec, err := s.get(tx, userID, id)
		if err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete hard-deletes the row. Nothing cascades: a row other records still point at
// (a retreat with bookings, a property with appliances) is refused with ErrConflict.
func (s *OwnedStore[T]) Delete(ctx context.Context, userID, id uint) error {
	res := s.DB.WithContext(ctx).Scopes(scopeOwned(userID, id)).Delete(new(T))
	if res.Error != nil {
		return s.writeError("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound(s.Resource)
	}
	return nil
}

func (s *OwnedStore[T]) writeError(op string, err error) error {
	if isDuplicate(err) {
		return fmt.Errorf("%w: %s already exists", models.ErrConflict, s.Resource)
	}
	if isStillReferenced(err) {
		return fmt.Errorf("%w: %s is still referenced", models.ErrConflict, s.Resource)
	}
	return fmt.Errorf("%s %s: %w", op, s.Resource, err)
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysqldrv.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

func isStillReferenced(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var me *mysqldrv.MySQLError
	return errors.As(err, &me) && me.Number == mysqlRowIsReferenced
}

// ensureOwned checks that the referenced row exists for the tenant. It is used for
// foreign ids coming from request bodies.
func ensureOwned(tx *gorm.DB, model any, label string, userID uint, id *uint) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := tx.Model(model).Scopes(scopeOwned(userID, *id)).Count(&n).Error; err != nil {
		return fmt.Errorf("check %s: %w", label, err)
	}
	if n == 0 {
		return models.Invalid("%s %d does not exist", label, *id)
	}
	return nil
}
