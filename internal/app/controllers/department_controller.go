package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/models/dto"
	"github.com/halit/learnsphere/internal/app/services"
	"github.com/halit/learnsphere/internal/middleware"
)

// DepartmentController handles department endpoints
type DepartmentController struct {
	departmentService *services.DepartmentService
	logger            zerolog.Logger
}

// NewDepartmentController creates a new DepartmentController
func NewDepartmentController(departmentService *services.DepartmentService, logger zerolog.Logger) *DepartmentController {
	return &DepartmentController{departmentService: departmentService, logger: logger}
}

func departmentResponse(d *models.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{ID: d.ID, Name: d.Name, Code: d.Code}
}

// List returns all departments
// @Summary List departments
// @Tags departments
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.DepartmentResponse}
// @Router /departments [get]
func (c *DepartmentController) List(ctx *gin.Context) {
	departments, err := c.departmentService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		items = append(items, departmentResponse(d))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(items, ""))
}

// Get returns a department by id
// @Summary Get a department
// @Tags departments
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} dto.APIResponse{data=dto.DepartmentResponse}
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /departments/{id} [get]
func (c *DepartmentController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	dept, err := c.departmentService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(departmentResponse(dept), ""))
}

// Create adds a department
// @Summary Create a department (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDepartmentRequest true "Department"
// @Success 201 {object} dto.APIResponse{data=dto.DepartmentResponse}
// @Failure 409 {object} dto.ErrorResponse "Name or code already exists"
// @Router /admin/departments [post]
func (c *DepartmentController) Create(ctx *gin.Context) {
	var req dto.CreateDepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	dept, err := c.departmentService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(departmentResponse(dept), "Department created"))
}

// Update modifies a department
// @Summary Update a department (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Param request body dto.UpdateDepartmentRequest true "Department"
// @Success 200 {object} dto.APIResponse{data=dto.DepartmentResponse}
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /admin/departments/{id} [put]
func (c *DepartmentController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateDepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	dept, err := c.departmentService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(departmentResponse(dept), "Department updated"))
}

// Delete removes a department
// @Summary Delete a department (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /admin/departments/{id} [delete]
func (c *DepartmentController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.departmentService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Department deleted"))
}
