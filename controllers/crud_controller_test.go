package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"opsdash-backend/models"
	"opsdash-backend/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// employerMemStore keeps employers in memory and scopes every call by tenant.
type employerMemStore struct {
	rows   map[uint]models.Employer
	nextID uint
	writes int
}

func newEmployerMemStore(seed ...models.Employer) *employerMemStore {
	s := &employerMemStore{rows: map[uint]models.Employer{}, nextID: 1}
	for _, e := range seed {
		s.rows[e.ID] = e
		if e.ID >= s.nextID {
			s.nextID = e.ID + 1
		}
	}
	return s
}

func (s *employerMemStore) List(_ context.Context, userID uint) ([]models.Employer, error) {
	var out []models.Employer
	for _, e := range s.rows {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *employerMemStore) Get(_ context.Context, userID, id uint) (*models.Employer, error) {
	e, ok := s.rows[id]
	if !ok || e.UserID != userID {
		return nil, models.NotFound("Employer")
	}
	return &e, nil
}

func (s *employerMemStore) Create(_ context.Context, _ uint, rec *models.Employer, _ ...services.Reference) error {
	s.writes++
	rec.ID = s.nextID
	s.nextID++
	s.rows[rec.ID] = *rec
	return nil
}

func (s *employerMemStore) Update(_ context.Context, userID, id uint, changes map[string]any, _ ...services.Reference) (*models.Employer, error) {
	e, ok := s.rows[id]
	if !ok || e.UserID != userID {
		return nil, models.NotFound("Employer")
	}
	s.writes++
	e.Name = changes["name"].(string)
	e.ContactName = changes["contact_name"].(string)
	e.Email = changes["email"].(string)
	e.Phone = changes["phone"].(string)
	e.Industry = changes["industry"].(string)
	e.Address = changes["address"].(string)
	e.Website = changes["website"].(string)
	e.Notes = changes["notes"].(string)
	s.rows[id] = e
	return &e, nil
}

func (s *employerMemStore) Delete(_ context.Context, userID, id uint) error {
	e, ok := s.rows[id]
	if !ok || e.UserID != userID {
		return models.NotFound("Employer")
	}
	s.writes++
	delete(s.rows, id)
	return nil
}

func employerRouter(store *employerMemStore) http.Handler {
	r := newTestRouter()
	NewEmployerController(store).Register(r.Group("/api/employers"))
	return r
}

func TestEmployerOtherTenantIsNotFound(t *testing.T) {
	store := newEmployerMemStore(models.Employer{ID: 5, UserID: 1, Name: "Northwind"})
	r := employerRouter(store)

	valid := map[string]any{"name": "Hijacked"}
	for _, tc := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/employers/5", nil},
		{http.MethodPut, "/api/employers/5", valid},
		{http.MethodDelete, "/api/employers/5", nil},
		{http.MethodPut, "/api/employers/999", valid},
	} {
		w := doJSON(r, tc.method, tc.path, 2, tc.body)
		require.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
		env := decode(t, w)
		assert.Equal(t, "NOT_FOUND", env.Error.Kind)
		assert.Equal(t, "Employer not found", env.Error.Message)
		assert.NotContains(t, w.Body.String(), "Northwind")
	}
	assert.Zero(t, store.writes)
	assert.Equal(t, "Northwind", store.rows[5].Name)
}

func TestEmployerPutMissingRequiredFieldDoesNotMutate(t *testing.T) {
	store := newEmployerMemStore(models.Employer{ID: 5, UserID: 1, Name: "Northwind", Email: "hr@northwind.example"})
	r := employerRouter(store)

	w := doJSON(r, http.MethodPut, "/api/employers/5", 1, map[string]any{"email": "new@northwind.example"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Kind)
	assert.Equal(t, "Invalid input data", env.Error.Message)
	assert.Contains(t, env.Error.Details, "Name")

	w = doJSON(r, http.MethodPut, "/api/employers/5", 1, map[string]any{"name": "   "})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/employers/5", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Employer
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, "Northwind", got.Name)
	assert.Equal(t, "hr@northwind.example", got.Email)
	assert.Zero(t, store.writes)
}

func TestEmployerPutThenGetRoundTrip(t *testing.T) {
	store := newEmployerMemStore(models.Employer{ID: 5, UserID: 1, Name: "Northwind"})
	r := employerRouter(store)

	payload := map[string]any{
		"name":        "Northwind Traders",
		"contactName": "Ada Park",
		"email":       "ada@northwind.example",
		"phone":       "+1 555 0100",
		"industry":    "Logistics",
		"address":     "1 Harbor Way",
		"website":     "https://northwind.example",
		"notes":       "Quarterly offsite",
	}
	w := doJSON(r, http.MethodPut, "/api/employers/5", 1, payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/employers/5", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	for k, v := range payload {
		assert.Equal(t, v, got[k], k)
	}
}

func TestEmployerCreateListDelete(t *testing.T) {
	store := newEmployerMemStore()
	r := employerRouter(store)

	w := doJSON(r, http.MethodPost, "/api/employers", 3, map[string]any{"name": " Acme "})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Employer
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, "Acme", created.Name)
	assert.Equal(t, uint(3), created.UserID)

	w = doJSON(r, http.MethodGet, "/api/employers", 3, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Employer
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	assert.Len(t, list, 1)

	w = doJSON(r, http.MethodDelete, "/api/employers/1", 3, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Employer deleted successfully")
	assert.Empty(t, store.rows)
}

func TestEmployerBadIDAndMissingTenant(t *testing.T) {
	r := employerRouter(newEmployerMemStore())

	w := doJSON(r, http.MethodGet, "/api/employers/abc", 1, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/employers", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAppliancePayloadReferencesProperty(t *testing.T) {
	property := uint(4)
	refs := refsOf(appliancePayload{Name: "Boiler", PropertyID: &property})
	require.Len(t, refs, 1)
	assert.Equal(t, "property", refs[0].Label)
	assert.Equal(t, &property, refs[0].ID)

	assert.Nil(t, refsOf(employerPayload{Name: "Acme"}))
}
