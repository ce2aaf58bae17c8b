package security

import (
	"errors"
	"net/http"
	"time"

	"overmind/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "overmind_session"

// Sessions issues and verifies the opaque session tokens bound to a user.
// Tokens are HS256 JWTs carried in an HttpOnly cookie.
type Sessions struct {
	tokenAuth   *jwtauth.JWTAuth
	exp         time.Duration
	rememberExp time.Duration
}

func NewSessions(cfg *config.Config) *Sessions {
	return &Sessions{
		tokenAuth:   jwtauth.New("HS256", cfg.JWTKey, nil),
		exp:         cfg.JWTExp,
		rememberExp: cfg.JWTRemember,
	}
}

func (s *Sessions) TokenAuth() *jwtauth.JWTAuth {
	return s.tokenAuth
}

// GenerateToken creates a session token for the user. The remember flag
// extends the lifetime.
func (s *Sessions) GenerateToken(userID string, remember bool) (string, error) {
	exp := s.exp
	if remember {
		exp = s.rememberExp
	}
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(exp).Unix(),
		"iat":     time.Now().Unix(),
	}
	_, tokenString, err := s.tokenAuth.Encode(claims)
	return tokenString, err
}

// IssueCookie sets the session cookie on the response.
func (s *Sessions) IssueCookie(w http.ResponseWriter, userID string, remember bool) error {
	token, err := s.GenerateToken(userID, remember)
	if err != nil {
		return err
	}
	exp := s.exp
	if remember {
		exp = s.rememberExp
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(exp.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromCookie is a jwtauth token finder for the session cookie.
func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}
