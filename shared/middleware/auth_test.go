package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/portal-dev/portal/shared/domain"
	jwt_internal "github.com/portal-dev/portal/shared/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	jwtService := jwt_internal.New("test_secret", time.Hour)
	admin := domain.User{Id: 1, Email: "admin@example.com", Name: "Admin", Role: domain.RoleAdmin}
	tokenAdmin, err := jwtService.NewToken(admin)
	require.NoError(t, err)
	user := domain.User{Id: 2, Email: "user@example.com", Name: "User", Role: domain.RoleUser}
	token, err := jwtService.NewToken(user)
	require.NoError(t, err)

	tests := []struct {
		name           string
		adminOnly      bool
		header         string
		expectedStatus int
		expectedUser   *domain.User
	}{
		{"valid token admin route", true, "Bearer " + tokenAdmin, http.StatusOK, &admin},
		{"valid token user route", false, "Bearer " + token, http.StatusOK, &user},
		{"no header", false, "", http.StatusUnauthorized, nil},
		{"empty bearer", false, "Bearer ", http.StatusUnauthorized, nil},
		{"wrong scheme", false, "Basic " + token, http.StatusUnauthorized, nil},
		{"garbage token", false, "Bearer nope", http.StatusUnauthorized, nil},
		{"user on admin route", true, "Bearer " + token, http.StatusForbidden, nil},
	}

	a := NewAuth(jwtService)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *domain.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetUserFromContext(r)
				w.WriteHeader(http.StatusOK)
			})
			mw := a.NeedAuth()
			if tt.adminOnly {
				mw = a.AdminOnly()
			}

			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			mw(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedUser == nil {
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, tt.expectedUser.Id, seen.Id)
			assert.Equal(t, tt.expectedUser.Email, seen.Email)
			assert.Equal(t, tt.expectedUser.Role, seen.Role)
		})
	}
}

func TestGetUserFromContext_Missing(t *testing.T) {
	assert.Nil(t, GetUserFromContext(httptest.NewRequest("GET", "/", nil)))
}
