package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-leaveflow/internal/middleware"
	"go-leaveflow/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type errorEnvelope struct {
	Ok    bool `json:"ok"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"user_id":     "u-1",
		"company_id":  "c-1",
		"employee_id": "e-1",
		"role":        "hr",
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", middleware.AuthMiddleware(testSecret), func(c *gin.Context) {
		ctx := c.Request.Context()
		c.JSON(http.StatusOK, gin.H{
			"user_id":     c.GetString("user_id"),
			"company_id":  contextutil.GetCompanyID(ctx),
			"employee_id": contextutil.GetEmployeeID(ctx),
			"role":        c.GetString("role"),
		})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("bearer token exposes claims", func(t *testing.T) {
		r := newAuthRouter()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims()))
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "u-1", body["user_id"])
		assert.Equal(t, "c-1", body["company_id"])
		assert.Equal(t, "e-1", body["employee_id"])
		assert.Equal(t, "hr", body["role"])
	})

	t.Run("cookie token accepted", func(t *testing.T) {
		r := newAuthRouter()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, testSecret, validClaims())})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	tests := []struct {
		name    string
		header  func(t *testing.T) string
		message string
	}{
		{
			name:    "negative missing token",
			header:  func(t *testing.T) string { return "" },
			message: "Authentication is required",
		},
		{
			name:    "negative wrong secret",
			header:  func(t *testing.T) string { return "Bearer " + signToken(t, "other", validClaims()) },
			message: "Invalid token",
		},
		{
			name: "negative expired",
			header: func(t *testing.T) string {
				claims := validClaims()
				claims["exp"] = time.Now().Add(-time.Minute).Unix()
				return "Bearer " + signToken(t, testSecret, claims)
			},
			message: "Token has expired",
		},
		{
			name: "negative missing company claim",
			header: func(t *testing.T) string {
				claims := validClaims()
				delete(claims, "company_id")
				return "Bearer " + signToken(t, testSecret, claims)
			},
			message: "Invalid token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRouter()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if h := tt.header(t); h != "" {
				req.Header.Set("Authorization", h)
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var env errorEnvelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.False(t, env.Ok)
			assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
			assert.Equal(t, tt.message, env.Error.Message)
		})
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", middleware.RequestID(), func(c *gin.Context) {
		c.String(http.StatusOK, contextutil.GetRequestID(c.Request.Context()))
	})

	t.Run("propagates caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "req-42")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Body.String())
		assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	})

	t.Run("generates id when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.NotEmpty(t, w.Body.String())
		assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
	})
}
