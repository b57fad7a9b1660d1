package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWTService(accessExp time.Duration) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  accessExp,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "test",
	})
}

func tokenFor(t *testing.T, svc *auth.JWTService, user *models.User) string {
	t.Helper()
	access, _, _, _, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	return access
}

func protectedRouter(m *AuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{m.JWTAuth()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": user.ID, "role": string(user.RoleType)})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	svc := newJWTService(time.Hour)
	router := protectedRouter(NewAuthMiddleware(svc))

	user := &models.User{ID: 7, Email: "a@b.c", RoleType: models.RoleStudent, DepartmentID: 3}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, svc, user))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":7`)
	assert.Contains(t, w.Body.String(), `"role":"STUDENT"`)
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	router := protectedRouter(NewAuthMiddleware(newJWTService(time.Hour)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_007")
}

func TestJWTAuthRejectsGarbageToken(t *testing.T) {
	router := protectedRouter(NewAuthMiddleware(newJWTService(time.Hour)))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_004")
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	svc := newJWTService(-time.Minute)
	router := protectedRouter(NewAuthMiddleware(svc))

	user := &models.User{ID: 7, Email: "a@b.c", RoleType: models.RoleStudent}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, svc, user))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_005", "expired tokens get their own code")
}

func TestRoleRequired(t *testing.T) {
	svc := newJWTService(time.Hour)
	m := NewAuthMiddleware(svc)
	router := protectedRouter(m, m.RoleRequired(models.RoleInstructor, models.RoleAdmin))

	tests := []struct {
		role models.RoleType
		want int
	}{
		{models.RoleStudent, http.StatusForbidden},
		{models.RoleInstructor, http.StatusOK},
		{models.RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			user := &models.User{ID: 1, Email: "a@b.c", RoleType: tt.role}
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, svc, user))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestCurrentUserWithoutAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := CurrentUser(c)
	assert.False(t, ok)
}
