package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loginportal/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T, cookies ...*http.Cookie) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range cookies {
		c.Request.AddCookie(cookie)
	}
	return c, w
}

func cookieByName(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestIssueAndCurrent(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	user := &models.User{ID: 7, Username: "alice"}

	c, w := newTestContext(t)
	require.NoError(t, m.Issue(c, user))

	cookie := cookieByName(t, w, CookieName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	c2, _ := newTestContext(t, cookie)
	claims, ok := m.Current(c2)
	require.True(t, ok)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestCurrentWithoutCookie(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	c, _ := newTestContext(t)
	_, ok := m.Current(c)
	assert.False(t, ok)
}

func TestCurrentRejectsTamperedToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	user := &models.User{ID: 7, Username: "alice"}

	c, w := newTestContext(t)
	require.NoError(t, m.Issue(c, user))
	cookie := cookieByName(t, w, CookieName)
	require.NotNil(t, cookie)

	// Flip the signature.
	parts := strings.Split(cookie.Value, ".")
	require.Len(t, parts, 3)
	cookie.Value = parts[0] + "." + parts[1] + ".AAAA"

	c2, _ := newTestContext(t, cookie)
	_, ok := m.Current(c2)
	assert.False(t, ok)
}

func TestCurrentRejectsForeignSecret(t *testing.T) {
	issuer := NewManager("one-secret", time.Hour)
	reader := NewManager("another-secret", time.Hour)
	user := &models.User{ID: 7, Username: "alice"}

	c, w := newTestContext(t)
	require.NoError(t, issuer.Issue(c, user))
	cookie := cookieByName(t, w, CookieName)
	require.NotNil(t, cookie)

	c2, _ := newTestContext(t, cookie)
	_, ok := reader.Current(c2)
	assert.False(t, ok)
}

func TestCurrentRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)
	user := &models.User{ID: 7, Username: "alice"}

	c, w := newTestContext(t)
	require.NoError(t, m.Issue(c, user))
	cookie := cookieByName(t, w, CookieName)
	require.NotNil(t, cookie)

	c2, _ := newTestContext(t, cookie)
	_, ok := m.Current(c2)
	assert.False(t, ok)
}

func TestClearDropsCookie(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	c, w := newTestContext(t)
	m.Clear(c)

	cookie := cookieByName(t, w, CookieName)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)

	// Clearing again is a no-op success.
	c2, w2 := newTestContext(t)
	m.Clear(c2)
	cookie = cookieByName(t, w2, CookieName)
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestFlashRoundTrip(t *testing.T) {
	c, w := newTestContext(t)
	SetFlash(c, "success", "Account created. Please login.")

	cookie := cookieByName(t, w, flashCookie)
	require.NotNil(t, cookie)

	c2, w2 := newTestContext(t, cookie)
	flash, ok := TakeFlash(c2)
	require.True(t, ok)
	assert.Equal(t, "success", flash.Category)
	assert.Equal(t, "Account created. Please login.", flash.Message)

	// Taking the flash clears the cookie on the response.
	cleared := cookieByName(t, w2, flashCookie)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestTakeFlashEmpty(t *testing.T) {
	c, _ := newTestContext(t)
	_, ok := TakeFlash(c)
	assert.False(t, ok)
}
