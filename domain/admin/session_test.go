package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarslive/waitlist-api/internal/log"
)

func newTestSessionManager() *SessionManager {
	return &SessionManager{
		secret: []byte("test-session-secret"),
		ttl:    defaultSessionTTL,
		logger: log.NewLoggerWithJSONOutput(),
	}
}

func TestSessionManager_IssueAndValidate(t *testing.T) {
	sessions := newTestSessionManager()

	token, err := sessions.IssueToken("admin@gmail.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	email, err := sessions.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@gmail.com", email)
}

func TestSessionManager_RejectsForeignSignature(t *testing.T) {
	sessions := newTestSessionManager()

	other := &SessionManager{
		secret: []byte("a-different-secret"),
		ttl:    defaultSessionTTL,
		logger: log.NewLoggerWithJSONOutput(),
	}

	token, err := other.IssueToken("admin@gmail.com")
	require.NoError(t, err)

	_, err = sessions.ValidateToken(token)
	assert.Error(t, err)
}

func TestSessionManager_RejectsExpiredToken(t *testing.T) {
	sessions := newTestSessionManager()
	sessions.ttl = -time.Minute

	token, err := sessions.IssueToken("admin@gmail.com")
	require.NoError(t, err)

	_, err = sessions.ValidateToken(token)
	assert.Error(t, err)
}

func TestSessionManager_RejectsGarbageToken(t *testing.T) {
	sessions := newTestSessionManager()

	_, err := sessions.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sessions := newTestSessionManager()

	engine := gin.New()
	engine.GET("/guarded", sessions.RequireSession(), func(ctx *gin.Context) {
		email, _ := ctx.Get("admin_email")
		ctx.JSON(http.StatusOK, gin.H{"email": email})
	})

	t.Run("missing cookie is unauthorized", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/guarded", nil)

		engine.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("tampered cookie is unauthorized", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "forged"})

		engine.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("valid cookie passes and exposes the admin email", func(t *testing.T) {
		token, err := sessions.IssueToken("admin@gmail.com")
		require.NoError(t, err)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

		engine.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "admin@gmail.com")
	})
}
