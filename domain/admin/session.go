package admin

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tarslive/waitlist-api/config/router"
	"github.com/tarslive/waitlist-api/internal/log"
	"github.com/tarslive/waitlist-api/pkg/utils"
)

// SessionCookieName carries the signed admin session token. The
// original admin gate was an unsigned boolean cookie; a forged header
// was enough to read the whole list. Sessions are now HS256 JWTs
// validated server-side on every admin request.
const SessionCookieName = "admin_session"

const defaultSessionTTL = 12 * time.Hour

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type SessionManager struct {
	secret []byte
	ttl    time.Duration
	logger *log.Logger
}

// NewSessionManagerFromEnv reads ADMIN_SESSION_SECRET. Without one a
// random per-process secret is generated, which invalidates sessions
// on restart but never weakens signing.
func NewSessionManagerFromEnv(logger *log.Logger) *SessionManager {
	secret := utils.GetEnvTrimmed("ADMIN_SESSION_SECRET")
	if secret == "" {
		buf := make([]byte, 32)
		rand.Read(buf)
		secret = hex.EncodeToString(buf)
		logger.Warn("ADMIN_SESSION_SECRET not set, using ephemeral secret; admin sessions will not survive restarts")
	}

	return &SessionManager{
		secret: []byte(secret),
		ttl:    defaultSessionTTL,
		logger: logger,
	}
}

func (sm *SessionManager) IssueToken(email string) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sm.ttl)),
		},
	})

	signed, err := token.SignedString(sm.secret)
	if err != nil {
		return "", fmt.Errorf("sign admin session token: %w", err)
	}

	return signed, nil
}

func (sm *SessionManager) ValidateToken(tokenString string) (string, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return sm.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse admin session token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid admin session token")
	}

	return claims.Email, nil
}

func (sm *SessionManager) SetSessionCookie(ctx *router.RequestContext, token string) {
	ctx.SetCookie(SessionCookieName, token, int(sm.ttl.Seconds()), "/", "", false, true)
}

// RequireSession aborts with 401 unless the request carries a valid
// admin session cookie.
func (sm *SessionManager) RequireSession() router.MiddlewareFunc {
	return func(ctx *router.RequestContext) {
		token, err := ctx.Cookie(SessionCookieName)
		if err != nil || token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, router.UnauthorizedResult("Unauthorized").ToJSON())
			return
		}

		email, err := sm.ValidateToken(token)
		if err != nil {
			sm.logger.Warn("Rejected admin session token", "error", err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, router.UnauthorizedResult("Unauthorized").ToJSON())
			return
		}

		ctx.Set("admin_email", email)
		ctx.Next()
	}
}
