package models

import "time"

// Payment represents a submitted payment proof based on the 'payments'
// table. Lifecycle: PENDING -> APPROVED | DENIED, both terminal.
type Payment struct {
	ID            int64         `json:"id" db:"id"`
	UserID        int64         `json:"userId" db:"user_id"`
	Amount        float64       `json:"amount" db:"amount"`
	TransactionID string        `json:"transactionId" db:"transaction_id"` // unique, supplied by submitter
	ProofPath     string        `json:"proofPath,omitempty" db:"proof_path"`
	Status        PaymentStatus `json:"status" db:"status"`
	DenialReason  *string       `json:"denialReason,omitempty" db:"denial_reason"`
	ApprovedBy    *int64        `json:"approvedBy,omitempty" db:"approved_by"`
	ApprovedAt    *time.Time    `json:"approvedAt,omitempty" db:"approved_at"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	User          *User         `json:"user,omitempty"` // Relation, no db tag
}
