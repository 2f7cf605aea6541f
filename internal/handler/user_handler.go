package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/craft-market/internal/middleware"
	"github.com/craft-market/internal/repository"
	"github.com/craft-market/internal/service"
	"github.com/craft-market/pkg/response"
)

// UserHandler handles account lifecycle API requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Create handles admin user creation
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Conflict(c, "user already exists")
			return
		}
		response.InternalError(c, "failed to create user")
		return
	}

	response.Created(c, "user created", user)
}

// List handles listing all users
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list users")
		return
	}

	response.Success(c, "user list", users)
}

// Get handles getting a single user
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, "failed to get user")
		return
	}

	response.Success(c, "successfully get user by id", user)
}

// Update handles profile updates
// PUT /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			response.NotFound(c, "user not found")
		case errors.Is(err, service.ErrEmailTaken):
			response.Conflict(c, "email already taken")
		default:
			response.InternalError(c, "failed to update user")
		}
		return
	}

	response.Success(c, "successfully updated user", user)
}

// UpdateRole handles role changes
// PATCH /api/v1/users/:id/role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required,oneof=user admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, "failed to update user role")
		return
	}

	response.Success(c, "successfully updated user role", user)
}

// UpdatePassword handles password changes
// PATCH /api/v1/users/:id/password
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req service.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.userService.UpdatePassword(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			response.NotFound(c, "user not found")
		case errors.Is(err, service.ErrWrongPassword):
			response.BadRequest(c, "old password is incorrect")
		default:
			response.InternalError(c, "failed to update password")
		}
		return
	}

	response.Success(c, "password updated successfully", []interface{}{})
}

// Delete handles admin user deletion
// DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	err := h.userService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, "successfully deleted user", []interface{}{})
}

// DeleteSelf handles a user deleting their own account together with all
// related data
// DELETE /api/v1/users/:id/self
func (h *UserHandler) DeleteSelf(c *gin.Context) {
	id := c.Param("id")

	err := h.userService.DeleteSelf(c.Request.Context(), id, middleware.GetToken(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			response.NotFound(c, "user not found")
		case errors.Is(err, service.ErrTokenMismatch):
			response.Unauthorized(c, "your login credentials do not match the user you are trying to delete")
		default:
			response.InternalError(c, err.Error())
		}
		return
	}

	response.Success(c, "successfully deleted user "+id+" with all related data", []interface{}{})
}

// RegisterRoutes registers user routes. All routes require a valid token;
// management routes additionally require the admin role.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	users := rg.Group("/users")
	users.Use(authMiddleware)
	{
		users.PATCH("/:id/password", h.UpdatePassword)
		users.DELETE("/:id/self", h.DeleteSelf)

		admin := users.Group("", middleware.RequireAdmin())
		{
			admin.POST("", h.Create)
			admin.GET("", h.List)
			admin.GET("/:id", h.Get)
			admin.PUT("/:id", h.Update)
			admin.PATCH("/:id/role", h.UpdateRole)
			admin.DELETE("/:id", h.Delete)
		}
	}
}
