package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/models/dto"
	"github.com/halit/learnsphere/internal/app/services"
	"github.com/halit/learnsphere/internal/middleware"
	"github.com/halit/learnsphere/internal/pkg/helpers"
)

// UserController handles profile and admin user management endpoints
type UserController struct {
	userService *services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(userService *services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{userService: userService, logger: logger}
}

// Me returns the caller's profile
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Router /users/me [get]
func (c *UserController) Me(ctx *gin.Context) {
	caller, ok := requireUser(ctx)
	if !ok {
		return
	}

	user, err := c.userService.GetByID(ctx.Request.Context(), caller.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewUserResponse(user), ""))
}

// List returns users matching the admin filter
// @Summary List users (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role filter" Enums(STUDENT, INSTRUCTOR, ADMIN)
// @Param isActive query bool false "Activation filter"
// @Param search query string false "Search name or email"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /admin/users [get]
func (c *UserController) List(ctx *gin.Context) {
	filter := dto.UserFilter{Search: ctx.Query("search")}
	filter.Page, filter.Size = helpers.ParsePageParams(ctx)

	if r := ctx.Query("role"); r != "" {
		role := models.RoleType(r)
		if role.Valid() {
			filter.Role = &role
		}
	}
	if a := ctx.Query("isActive"); a != "" {
		if active, err := strconv.ParseBool(a); err == nil {
			filter.IsActive = &active
		}
	}

	users, total, err := c.userService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dto.NewUserResponse(u))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.Size),
	}, ""))
}

// Get returns a user by id
// @Summary Get a user (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id} [get]
func (c *UserController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	user, err := c.userService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewUserResponse(user), ""))
}

// Activate enables an account
// @Summary Activate a user account (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id}/activate [post]
func (c *UserController) Activate(ctx *gin.Context) {
	c.setActive(ctx, true, "User activated")
}

// Deactivate disables an account
// @Summary Deactivate a user account (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id}/deactivate [post]
func (c *UserController) Deactivate(ctx *gin.Context) {
	c.setActive(ctx, false, "User deactivated")
}

func (c *UserController) setActive(ctx *gin.Context, active bool, message string) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.userService.SetActive(ctx.Request.Context(), id, active); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", id).Bool("active", active).Msg("User activation changed")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, message))
}

// Delete removes a user
// @Summary Delete a user (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id} [delete]
func (c *UserController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.userService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "User deleted"))
}

// Stats returns the admin dashboard aggregates
// @Summary Platform statistics (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AdminStatsResponse}
// @Router /admin/stats [get]
func (c *UserController) Stats(ctx *gin.Context) {
	stats, err := c.userService.Stats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats, ""))
}
