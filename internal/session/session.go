package session

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"loginportal/internal/models"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "session"

// Claims is the signed session payload. Presence of a valid token is the
// "authenticated" state; there is no server-side session record.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager issues and reads the signed session cookie.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a new session token for the user and sets it as an HttpOnly
// cookie on the response.
func (m *Manager) Issue(c *gin.Context, user *models.User) error {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return err
	}

	c.SetCookie(CookieName, tokenString, int(m.ttl.Seconds()), "/", "", false, true)
	return nil
}

// Current returns the session claims from the request cookie. A missing,
// tampered or expired token reads as anonymous.
func (m *Manager) Current(c *gin.Context) (*Claims, bool) {
	tokenString, err := c.Cookie(CookieName)
	if err != nil || tokenString == "" {
		return nil, false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is what we expect
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	return claims, true
}

// Clear drops the session cookie. Clearing an absent session is a no-op.
func (m *Manager) Clear(c *gin.Context) {
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}
