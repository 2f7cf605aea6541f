package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craft-market/internal/config"
	"github.com/craft-market/internal/middleware"
	"github.com/craft-market/internal/models"
	"github.com/craft-market/internal/repository"
	"github.com/craft-market/internal/service"
	"github.com/craft-market/pkg/keygen"
	"github.com/craft-market/pkg/response"
)

const tokenCookieName = "token"

// AuthHandler handles authentication API requests
type AuthHandler struct {
	authService  *service.AuthService
	oauth        service.OAuthProvider
	states       service.StateStore
	frontend     config.FrontendConfig
	cookieMaxAge int
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, oauth service.OAuthProvider, states service.StateStore, frontend config.FrontendConfig, jwtConfig config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		oauth:        oauth,
		states:       states,
		frontend:     frontend,
		cookieMaxAge: jwtConfig.ExpireHours * 3600,
	}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Conflict(c, "user already exists")
			return
		}
		response.InternalError(c, "failed to register user")
		return
	}

	response.Created(c, "user created", gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

// Login handles password login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			response.NotFound(c, "user not found")
		case errors.Is(err, service.ErrPasswordNotSet):
			response.NotFound(c, "password not set")
		case errors.Is(err, service.ErrWrongPassword):
			response.Forbidden(c, "wrong password")
		default:
			response.InternalError(c, "failed to login")
		}
		return
	}

	response.Success(c, "login success", gin.H{
		"user": gin.H{
			"id":      user.ID,
			"name":    user.Name,
			"email":   user.Email,
			"address": user.Address,
		},
		"token": token,
	})
}

// GoogleLogin redirects to Google's consent page
// GET /api/v1/auth/google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := keygen.StateToken()
	if err != nil {
		response.InternalError(c, "failed to generate state token")
		return
	}

	if err := h.states.Save(c.Request.Context(), state); err != nil {
		response.InternalError(c, "failed to store state token")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(state))
}

// GoogleCallback completes the OAuth flow: verifies state, exchanges the
// code, resolves the user and sets the session cookie
// GET /api/v1/auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	ctx := c.Request.Context()

	ok, err := h.states.Consume(ctx, c.Query("state"))
	if err != nil {
		response.InternalError(c, "failed to verify state token")
		return
	}
	if !ok {
		response.BadRequest(c, "invalid oauth state")
		return
	}

	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "missing authorization code")
		return
	}

	providerToken, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		response.InternalError(c, "failed to exchange authorization code")
		return
	}

	profile, err := h.oauth.FetchProfile(ctx, providerToken)
	if err != nil {
		response.InternalError(c, "failed to fetch user profile")
		return
	}

	// Incomplete profiles are returned as-is rather than treated as errors
	if profile.Email == "" || profile.Name == "" {
		response.Success(c, "incomplete profile", profile)
		return
	}

	user, err := h.authService.ResolveOAuthUser(ctx, profile)
	if err != nil {
		response.InternalError(c, "failed to resolve user")
		return
	}

	token, err := h.authService.IssueToken(user, true)
	if err != nil {
		response.InternalError(c, "failed to issue token")
		return
	}

	c.SetCookie(tokenCookieName, token, h.cookieMaxAge, "/", h.frontend.CookieDomain, h.frontend.CookieSecure, true)

	if user.Role == models.RoleAdmin {
		c.Redirect(http.StatusFound, h.frontend.AdminURL)
		return
	}
	c.Redirect(http.StatusFound, h.frontend.UserURL)
}

// Logout clears the session cookie. The check is presence-only; the
// server-stored token stays valid until expiry.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if middleware.BearerToken(c) == "" {
		response.Unauthorized(c, "token not found")
		return
	}

	c.SetCookie(tokenCookieName, "", -1, "/", h.frontend.CookieDomain, h.frontend.CookieSecure, true)
	response.Success(c, "logout success", []interface{}{})
}

// Me returns the current user's profile, resolved from the cookie token
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	tokenString, err := c.Cookie(tokenCookieName)
	if err != nil || tokenString == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	user, err := h.authService.GetUserInfo(c.Request.Context(), tokenString)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Unauthorized(c, "unauthorized")
		return
	}

	response.Success(c, "user info", gin.H{
		"id":      user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"address": user.Address,
		"role":    user.Role,
		"image":   user.Image,
	})
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/google", h.GoogleLogin)
		auth.GET("/google/callback", h.GoogleCallback)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
	}
}
