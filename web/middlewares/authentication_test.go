package middlewares

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vbdreport.org/vbdreport/security"
)

const testBase64Secret = "IxrAjDoa2FqElO7IhrSrUJELhUckePEPVpaePlS/Xaw="

func protectedRouter(t *testing.T, roles ...string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	secret, err := base64.StdEncoding.DecodeString(testBase64Secret)
	require.NoError(t, err)

	r := gin.New()
	group := r.Group("/api", Authentication(secret))
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func issueToken(t *testing.T, role string) string {
	t.Helper()
	token, err := security.CreateIdentityToken(&security.ReporterIdentity{
		Id:       7,
		UserName: "nurse-station-3",
		Role:     role,
		Hospital: "10703",
	}, testBase64Secret, 3600)
	require.NoError(t, err)
	return token
}

func TestAuthenticationAcceptsValidBearer(t *testing.T) {
	r := protectedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, security.RoleAdmin))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticationRejectsMissingAndMalformed(t *testing.T) {
	r := protectedRouter(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header"},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthenticationRejectsWrongKey(t *testing.T) {
	r := protectedRouter(t)

	otherSecret := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	token, err := security.CreateIdentityToken(&security.ReporterIdentity{
		Id: 1, UserName: "x", Role: security.RoleAdmin,
	}, otherSecret, 3600)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := protectedRouter(t, security.RoleAdmin, security.RoleSuperAdmin)

	tests := []struct {
		role     string
		expected int
	}{
		{role: security.RoleAdmin, expected: http.StatusOK},
		{role: security.RoleSuperAdmin, expected: http.StatusOK},
		{role: security.RoleUser, expected: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
			req.Header.Set("Authorization", "Bearer "+issueToken(t, tt.role))
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}
