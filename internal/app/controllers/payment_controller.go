package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/models/dto"
	"github.com/halit/learnsphere/internal/app/services"
	"github.com/halit/learnsphere/internal/middleware"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
	"github.com/halit/learnsphere/internal/pkg/helpers"
)

// PaymentController handles student payment submission and admin review
type PaymentController struct {
	paymentService      *services.PaymentService
	subscriptionService *services.SubscriptionService
	logger              zerolog.Logger
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(
	paymentService *services.PaymentService,
	subscriptionService *services.SubscriptionService,
	logger zerolog.Logger,
) *PaymentController {
	return &PaymentController{
		paymentService:      paymentService,
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

// Submit records a payment with its proof document
// @Summary Submit a payment for review
// @Tags payments
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param amount formData number true "Amount paid"
// @Param transactionId formData string true "Bank transaction ID"
// @Param proof formData file true "Proof document"
// @Success 201 {object} dto.APIResponse{data=dto.PaymentResponse} "Payment pending review"
// @Failure 409 {object} dto.ErrorResponse "Transaction ID already submitted"
// @Router /student/payments [post]
func (c *PaymentController) Submit(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req dto.SubmitPaymentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	proof, err := ctx.FormFile("proof")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Proof document is required").
			WithField("proof")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	payment, err := c.paymentService.Submit(ctx.Request.Context(), user.ID, &req, proof)
	if err != nil {
		c.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to submit payment")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewPaymentResponse(payment),
		"Payment submitted and pending review"))
}

// ListOwn returns the caller's payment history
// @Summary List own payments
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.PaymentResponse}
// @Router /student/payments [get]
func (c *PaymentController) ListOwn(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	payments, err := c.paymentService.ListForUser(ctx.Request.Context(), user.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		items = append(items, dto.NewPaymentResponse(p))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(items, ""))
}

// GetSubscription returns the caller's subscription status
// @Summary Get own subscription
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SubscriptionResponse}
// @Router /student/subscription [get]
func (c *PaymentController) GetSubscription(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	sub, err := c.subscriptionService.GetCurrent(ctx.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSubscriptionNotFound) {
			ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "No subscription"))
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewSubscriptionResponse(sub, time.Now()), ""))
}

// List returns payments for the admin review queue
// @Summary List payments (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Payment status" Enums(PENDING, APPROVED, DENIED)
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /admin/payments [get]
func (c *PaymentController) List(ctx *gin.Context) {
	status := models.PaymentStatus(ctx.Query("status"))
	page, size := helpers.ParsePageParams(ctx)

	payments, total, err := c.paymentService.List(ctx.Request.Context(), status, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		items = append(items, dto.NewPaymentResponse(p))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, ""))
}

// Approve approves a pending payment
// @Summary Approve a payment (admin)
// @Description Approves a pending payment, provisions a one-year subscription and activates the account, all atomically.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} dto.APIResponse{data=dto.SubscriptionResponse} "Subscription provisioned"
// @Failure 409 {object} dto.ErrorResponse "Payment already approved or denied"
// @Router /admin/payments/{id}/approve [post]
func (c *PaymentController) Approve(ctx *gin.Context) {
	admin, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	sub, err := c.paymentService.Approve(ctx.Request.Context(), id, admin.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("paymentID", id).Int64("adminID", admin.ID).Msg("Payment approved")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewSubscriptionResponse(sub, time.Now()),
		"Payment approved and subscription provisioned"))
}

// Deny denies a pending payment with a reason
// @Summary Deny a payment (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Param request body dto.DenyPaymentRequest true "Denial reason"
// @Success 200 {object} dto.APIResponse "Payment denied"
// @Failure 409 {object} dto.ErrorResponse "Payment already approved or denied"
// @Router /admin/payments/{id}/deny [post]
func (c *PaymentController) Deny(ctx *gin.Context) {
	admin, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.DenyPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.paymentService.Deny(ctx.Request.Context(), id, admin.ID, req.Reason); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("paymentID", id).Int64("adminID", admin.ID).Msg("Payment denied")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Payment denied"))
}
