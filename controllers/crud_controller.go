package controllers

import (
	"context"
	"net/http"

	"opsdash-backend/services"
	"opsdash-backend/utils"

	"github.com/gin-gonic/gin"
)

// Store is the ownership-scoped persistence a CRUDController drives.
type Store[T any] interface {
	List(ctx context.Context, userID uint) ([]T, error)
	Get(ctx context.Context, userID, id uint) (*T, error)
	Create(ctx context.Context, userID uint, rec *T, refs ...services.Reference) error
	Update(ctx context.Context, userID, id uint, changes map[string]any, refs ...services.Reference) (*T, error)
	Delete(ctx context.Context, userID, id uint) error
}

// Payload is the request schema of one resource. Binding tags on the payload struct
// are the field-level validation; Build and Changes run only on a valid payload.
type Payload[T any] interface {
	Build(userID uint) *T
	Changes() map[string]any
}

// referencing payloads carry foreign ids that must belong to the caller.
type referencing interface {
	References() []services.Reference
}

type CRUDController[T any, P Payload[T]] struct {
	Store    Store[T]
	Resource string
}

func NewCRUDController[T any, P Payload[T]](store Store[T], resource string) *CRUDController[T, P] {
	return &CRUDController[T, P]{Store: store, Resource: resource}
}

func (ctl *CRUDController[T, P]) Register(rg *gin.RouterGroup) {
	rg.GET("", ctl.List)
	rg.POST("", ctl.Create)
	rg.GET("/:id", ctl.Get)
	rg.PUT("/:id", ctl.Update)
	rg.DELETE("/:id", ctl.Delete)
}

func refsOf(p any) []services.Reference {
	if r, ok := p.(referencing); ok {
		return r.References()
	}
	return nil
}

func (ctl *CRUDController[T, P]) List(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	items, err := ctl.Store.List(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, items)
}

func (ctl *CRUDController[T, P]) Get(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := ctl.Store.Get(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rec)
}

func (ctl *CRUDController[T, P]) Create(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	var p P
	if !bindJSON(c, &p) {
		return
	}
	rec := p.Build(uid)
	if err := ctl.Store.Create(c.Request.Context(), uid, rec, refsOf(p)...); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, rec)
}

// Update validates the whole body before anything is written; a rejected body leaves
// the record untouched.
func (ctl *CRUDController[T, P]) Update(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var p P
	if !bindJSON(c, &p) {
		return
	}
	rec, err := ctl.Store.Update(c.Request.Context(), uid, id, p.Changes(), refsOf(p)...)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rec)
}

func (ctl *CRUDController[T, P]) Delete(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := ctl.Store.Delete(c.Request.Context(), uid, id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": ctl.Resource + " deleted successfully"})
}
