package dto

import (
	"time"

	"github.com/halit/learnsphere/internal/app/models"
)

// SubmitPaymentRequest represents a student payment submission. The proof
// document arrives as a multipart file alongside these form fields.
type SubmitPaymentRequest struct {
	Amount        float64 `form:"amount" binding:"required,gt=0"`
	TransactionID string  `form:"transactionId" binding:"required,max=100"`
}

// DenyPaymentRequest carries the denial reason
type DenyPaymentRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            int64                `json:"id"`
	UserID        int64                `json:"userId"`
	Amount        float64              `json:"amount"`
	TransactionID string               `json:"transactionId"`
	Status        models.PaymentStatus `json:"status"`
	DenialReason  *string              `json:"denialReason,omitempty"`
	ApprovedAt    *time.Time           `json:"approvedAt,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// NewPaymentResponse maps a payment model to its response shape
func NewPaymentResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		Amount:        p.Amount,
		TransactionID: p.TransactionID,
		Status:        p.Status,
		DenialReason:  p.DenialReason,
		ApprovedAt:    p.ApprovedAt,
		CreatedAt:     p.CreatedAt,
	}
}

// SubscriptionResponse represents a subscription in API responses
type SubscriptionResponse struct {
	ID        int64                     `json:"id"`
	UserID    int64                     `json:"userId"`
	Status    models.SubscriptionStatus `json:"status"`
	StartDate time.Time                 `json:"startDate"`
	EndDate   time.Time                 `json:"endDate"`
	Active    bool                      `json:"active"`
}

// NewSubscriptionResponse maps a subscription model to its response shape
func NewSubscriptionResponse(s *models.Subscription, now time.Time) SubscriptionResponse {
	return SubscriptionResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Status:    s.Status,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Active:    s.ActiveAt(now),
	}
}
