package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"loginportal/internal/service"
	"loginportal/internal/session"
)

const defaultLandingPage = "/dashboard"

type AuthHandler interface {
	Home(c *gin.Context)
	ShowSignup(c *gin.Context)
	Signup(c *gin.Context)
	ShowLogin(c *gin.Context)
	Login(c *gin.Context)
	Dashboard(c *gin.Context)
	Logout(c *gin.Context)
}

type authHandler struct {
	authService service.AuthService
	sessions    *session.Manager
	log         *zap.Logger
}

func NewAuthHandler(authService service.AuthService, sessions *session.Manager, log *zap.Logger) AuthHandler {
	return &authHandler{authService: authService, sessions: sessions, log: log}
}

func (h *authHandler) Home(c *gin.Context) {
	data := h.pageData(c)
	c.HTML(http.StatusOK, "home.html", data)
}

func (h *authHandler) ShowSignup(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", h.pageData(c))
}

func (h *authHandler) Signup(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")
	confirm := c.PostForm("confirm")

	_, err := h.authService.Register(c.Request.Context(), username, email, password, confirm)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			session.SetFlash(c, "danger", "Please fill out all fields.")
		case errors.Is(err, service.ErrPasswordMismatch):
			session.SetFlash(c, "danger", "Passwords do not match.")
		case errors.Is(err, service.ErrUserAlreadyExists):
			session.SetFlash(c, "warning", "A user with that email or username already exists.")
		case errors.Is(err, service.ErrStoreUnavailable):
			session.SetFlash(c, "danger", "Database connection failed.")
		default:
			h.log.Error("Failed to register user", zap.Error(err))
			session.SetFlash(c, "danger", "Database error.")
		}
		c.Redirect(http.StatusFound, "/signup")
		return
	}

	session.SetFlash(c, "success", "Account created. Please login.")
	c.Redirect(http.StatusFound, "/login")
}

func (h *authHandler) ShowLogin(c *gin.Context) {
	data := h.pageData(c)
	data["next"] = c.Query("next")
	c.HTML(http.StatusOK, "login.html", data)
}

func (h *authHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := h.authService.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			session.SetFlash(c, "danger", "Invalid email or password.")
		case errors.Is(err, service.ErrStoreUnavailable):
			session.SetFlash(c, "danger", "Database connection failed.")
		default:
			h.log.Error("Failed to login user", zap.Error(err))
			session.SetFlash(c, "danger", "Database error.")
		}
		c.Redirect(http.StatusFound, loginPage(c.Query("next")))
		return
	}

	if err := h.sessions.Issue(c, user); err != nil {
		h.log.Error("Failed to issue session token", zap.Error(err))
		session.SetFlash(c, "danger", "Failed to login.")
		c.Redirect(http.StatusFound, loginPage(c.Query("next")))
		return
	}

	session.SetFlash(c, "success", "Logged in successfully.")
	c.Redirect(http.StatusFound, redirectTarget(c.Query("next")))
}

func (h *authHandler) Dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"username": c.MustGet("username").(string),
		"flash":    takeFlash(c),
	})
}

// Logout clears the session unconditionally; logging out while already
// logged out is a no-op.
func (h *authHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	session.SetFlash(c, "info", "You have been logged out.")
	c.Redirect(http.StatusFound, "/")
}

func (h *authHandler) pageData(c *gin.Context) gin.H {
	data := gin.H{"flash": takeFlash(c)}
	if claims, ok := h.sessions.Current(c); ok {
		data["username"] = claims.Username
	}
	return data
}

func takeFlash(c *gin.Context) *session.Flash {
	flash, ok := session.TakeFlash(c)
	if !ok {
		return nil
	}
	return &flash
}

func loginPage(next string) string {
	if next == "" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// redirectTarget resolves the post-login destination. Only same-site
// relative paths are honored so a crafted "next" cannot redirect off-site.
func redirectTarget(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return defaultLandingPage
}
