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

// MaterialController handles material and engagement endpoints
type MaterialController struct {
	materialService   *services.MaterialService
	engagementService *services.EngagementService
	logger            zerolog.Logger
}

// NewMaterialController creates a new MaterialController
func NewMaterialController(
	materialService *services.MaterialService,
	engagementService *services.EngagementService,
	logger zerolog.Logger,
) *MaterialController {
	return &MaterialController{
		materialService:   materialService,
		engagementService: engagementService,
		logger:            logger,
	}
}

func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

func requireUser(ctx *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return nil, false
	}
	return user, true
}

func parseMaterialFilter(ctx *gin.Context) dto.MaterialFilter {
	filter := dto.MaterialFilter{Search: ctx.Query("search")}
	filter.Page, filter.Size = helpers.ParsePageParams(ctx)

	if t := ctx.Query("type"); t != "" {
		mt := models.MaterialType(t)
		if mt.Valid() {
			filter.Type = &mt
		}
	}
	if l := ctx.Query("level"); l != "" {
		if level, err := strconv.Atoi(l); err == nil && level >= 1 && level <= 4 {
			filter.Level = &level
		}
	}
	if d := ctx.Query("difficulty"); d != "" {
		filter.Difficulty = &d
	}

	return filter
}

// List returns materials in the caller's department
// @Summary List materials
// @Description Lists published materials in the caller's department, with optional type/level/difficulty/search filters. Instructors and admins also see unpublished drafts.
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param type query string false "Material type" Enums(VIDEO, DOCUMENT, YOUTUBE)
// @Param level query int false "Level 1-4"
// @Param difficulty query string false "Difficulty"
// @Param search query string false "Search in title and description"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Failure 403 {object} dto.ErrorResponse "Active subscription required"
// @Router /materials [get]
func (c *MaterialController) List(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	filter := parseMaterialFilter(ctx)
	materials, total, err := c.materialService.List(ctx.Request.Context(), user.RoleType, user.DepartmentID, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.MaterialResponse, 0, len(materials))
	for _, m := range materials {
		items = append(items, dto.NewMaterialResponse(m))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.Size),
	}, ""))
}

// Get returns a single material, counting the view
// @Summary Get a material
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse{data=dto.MaterialDetailResponse}
// @Failure 403 {object} dto.ErrorResponse "Cross-department material"
// @Failure 404 {object} dto.ErrorResponse "Material not found"
// @Router /materials/{id} [get]
func (c *MaterialController) Get(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	m, err := c.materialService.Get(ctx.Request.Context(), id, user.RoleType, user.DepartmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	likesCount, liked, err := c.engagementService.LikeInfo(ctx.Request.Context(), id, user.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewMaterialDetailResponse(m, likesCount, liked), ""))
}

// Download streams a file-backed material
// @Summary Download a material file
// @Tags materials
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {file} binary
// @Failure 400 {object} dto.ErrorResponse "Material has no downloadable file"
// @Failure 404 {object} dto.ErrorResponse "Material not found"
// @Router /materials/{id}/download [get]
func (c *MaterialController) Download(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	m, reader, size, err := c.materialService.Download(ctx.Request.Context(), id, user.RoleType, user.DepartmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer reader.Close()

	ctx.Header("Content-Disposition", `attachment; filename="`+m.Source.File.Name+`"`)
	ctx.DataFromReader(http.StatusOK, size, "application/octet-stream", reader, nil)
}

// Create adds a material
// @Summary Create a material
// @Description Creates an unpublished material. VIDEO and DOCUMENT types carry a multipart file upload, YOUTUBE carries a URL.
// @Tags materials
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param type formData string true "Material type" Enums(VIDEO, DOCUMENT, YOUTUBE)
// @Param level formData int true "Level 1-4"
// @Param file formData file false "Content file for VIDEO/DOCUMENT"
// @Param youtubeUrl formData string false "YouTube URL for YOUTUBE"
// @Success 201 {object} dto.APIResponse{data=dto.MaterialResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid input or unusable YouTube URL"
// @Router /materials [post]
func (c *MaterialController) Create(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req dto.CreateMaterialRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	// The upload is optional at the binding level; the service decides
	// whether the type demands one
	upload, _ := ctx.FormFile("file")

	m, err := c.materialService.Create(ctx.Request.Context(), user, &req, upload)
	if err != nil {
		c.logger.Error().Err(err).Str("title", req.Title).Msg("Failed to create material")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewMaterialResponse(m), "Material created"))
}

// Update modifies a material
// @Summary Update a material
// @Tags materials
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse{data=dto.MaterialResponse}
// @Failure 404 {object} dto.ErrorResponse "Material not found"
// @Router /materials/{id} [put]
func (c *MaterialController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateMaterialRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	upload, _ := ctx.FormFile("file")

	m, err := c.materialService.Update(ctx.Request.Context(), id, &req, upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewMaterialResponse(m), "Material updated"))
}

// Delete removes a material
// @Summary Delete a material
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Material not found"
// @Router /materials/{id} [delete]
func (c *MaterialController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.materialService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Material deleted"))
}

// Publish makes a material visible to students
// @Summary Publish a material
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse
// @Router /materials/{id}/publish [post]
func (c *MaterialController) Publish(ctx *gin.Context) {
	c.setPublished(ctx, true, "Material published")
}

// Unpublish hides a material from students
// @Summary Unpublish a material
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse
// @Router /materials/{id}/unpublish [post]
func (c *MaterialController) Unpublish(ctx *gin.Context) {
	c.setPublished(ctx, false, "Material unpublished")
}

func (c *MaterialController) setPublished(ctx *gin.Context, published bool, message string) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.materialService.SetPublished(ctx.Request.Context(), id, published); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, message))
}

// ToggleLike flips the caller's like on a material
// @Summary Like or unlike a material
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse{data=dto.LikeResponse}
// @Router /materials/{id}/like [post]
func (c *MaterialController) ToggleLike(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	liked, count, err := c.engagementService.ToggleLike(ctx.Request.Context(), id, user)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.LikeResponse{Liked: liked, LikesCount: count}, ""))
}

// ListComments returns a material's comments
// @Summary List comments on a material
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CommentResponse}
// @Router /materials/{id}/comments [get]
func (c *MaterialController) ListComments(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	comments, err := c.engagementService.ListComments(ctx.Request.Context(), id, user)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		item := dto.CommentResponse{
			ID:         comment.ID,
			MaterialID: comment.MaterialID,
			UserID:     comment.UserID,
			Body:       comment.Body,
			CreatedAt:  comment.CreatedAt,
		}
		if comment.User != nil {
			item.UserName = comment.User.FirstName + " " + comment.User.LastName
		}
		items = append(items, item)
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(items, ""))
}

// AddComment posts a comment on a material
// @Summary Comment on a material
// @Tags materials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Param request body dto.CreateCommentRequest true "Comment body"
// @Success 201 {object} dto.APIResponse{data=dto.CommentResponse}
// @Router /materials/{id}/comments [post]
func (c *MaterialController) AddComment(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	comment, err := c.engagementService.AddComment(ctx.Request.Context(), id, user, req.Body)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.CommentResponse{
		ID:         comment.ID,
		MaterialID: comment.MaterialID,
		UserID:     comment.UserID,
		Body:       comment.Body,
		CreatedAt:  comment.CreatedAt,
	}, "Comment added"))
}

// DeleteComment removes a comment (author or admin)
// @Summary Delete a comment
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Param commentId path int true "Comment ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Router /materials/{id}/comments/{commentId} [delete]
func (c *MaterialController) DeleteComment(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}
	materialID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	commentID, ok := parseIDParam(ctx, "commentId")
	if !ok {
		return
	}

	if err := c.engagementService.DeleteComment(ctx.Request.Context(), materialID, commentID, user); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Comment deleted"))
}

// UpdateProgress records the caller's progress on a material
// @Summary Report progress on a material
// @Tags materials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Param request body dto.UpdateProgressRequest true "Progress 0-100"
// @Success 200 {object} dto.APIResponse{data=dto.ProgressResponse}
// @Router /materials/{id}/progress [put]
func (c *MaterialController) UpdateProgress(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	p, err := c.engagementService.UpdateProgress(ctx.Request.Context(), id, user, req.Progress)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ProgressResponse{
		MaterialID: p.MaterialID,
		Progress:   p.Progress,
		Completed:  p.Completed,
	}, ""))
}

// GetProgress returns the caller's progress on a material
// @Summary Get own progress on a material
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse{data=dto.ProgressResponse}
// @Router /materials/{id}/progress [get]
func (c *MaterialController) GetProgress(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	p, err := c.engagementService.GetProgress(ctx.Request.Context(), id, user)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ProgressResponse{
		MaterialID: p.MaterialID,
		Progress:   p.Progress,
		Completed:  p.Completed,
	}, ""))
}
