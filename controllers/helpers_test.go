package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"opsdash-backend/middleware"
	"opsdash-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testUserHeader = "X-Test-User"

// newTestRouter stands in for the auth middleware: the tenant comes from a header.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	utils.RegisterValidators()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if raw := c.GetHeader(testUserHeader); raw != "" {
			id, _ := strconv.ParseUint(raw, 10, 64)
			middleware.SetUserID(c, uint(id))
		}
		c.Next()
	})
	return r
}

func doJSON(r http.Handler, method, path string, user uint, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != 0 {
		req.Header.Set(testUserHeader, strconv.FormatUint(uint64(user), 10))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}
