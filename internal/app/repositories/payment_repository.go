package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
	"github.com/halit/learnsphere/internal/pkg/dberrors"
	"github.com/halit/learnsphere/internal/pkg/helpers"
)

const paymentColumns = "id, user_id, amount, transaction_id, proof_path, status, denial_reason, approved_by, approved_at, created_at"

// PaymentRepository handles payment database operations
type PaymentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(&p.ID, &p.UserID, &p.Amount, &p.TransactionID, &p.ProofPath,
		&p.Status, &p.DenialReason, &p.ApprovedBy, &p.ApprovedAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a pending payment. The transaction ID is globally unique;
// a duplicate maps to ErrDuplicateTransaction regardless of submitter.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) (int64, error) {
	query := `INSERT INTO payments (user_id, amount, transaction_id, proof_path, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		payment.UserID, payment.Amount, payment.TransactionID, payment.ProofPath, models.PaymentStatusPending).Scan(&id)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "payments_transaction_id_key") {
			return 0, apperrors.ErrDuplicateTransaction
		}
		return 0, fmt.Errorf("error creating payment: %w", err)
	}

	return id, nil
}

// GetByID retrieves a payment by id
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("error getting payment: %w", err)
	}

	return payment, nil
}

// ListByUserID returns a user's payments, newest first
func (r *PaymentRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}
	defer rows.Close()

	return collectPayments(rows)
}

// List returns payments filtered by status with the submitter joined in,
// for the admin review queue.
func (r *PaymentRepository) List(ctx context.Context, status models.PaymentStatus, page, pageSize int) ([]*models.Payment, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)

	countQ := r.sb.Select("COUNT(*)").From("payments p")
	listQ := r.sb.Select(
		"p.id", "p.user_id", "p.amount", "p.transaction_id", "p.proof_path",
		"p.status", "p.denial_reason", "p.approved_by", "p.approved_at", "p.created_at",
		"u.first_name", "u.last_name", "u.email").
		From("payments p").
		Join("users u ON u.id = p.user_id").
		OrderBy("p.created_at ASC").
		Offset(uint64(offset)).
		Limit(uint64(limit))

	if status != "" {
		countQ = countQ.Where(squirrel.Eq{"p.status": status})
		listQ = listQ.Where(squirrel.Eq{"p.status": status})
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build payment count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting payments: %w", err)
	}

	listSQL, listArgs, err := listQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build payment list query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{User: &models.User{}}
		err := rows.Scan(&p.ID, &p.UserID, &p.Amount, &p.TransactionID, &p.ProofPath,
			&p.Status, &p.DenialReason, &p.ApprovedBy, &p.ApprovedAt, &p.CreatedAt,
			&p.User.FirstName, &p.User.LastName, &p.User.Email)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning payment: %w", err)
		}
		p.User.ID = p.UserID
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, total, nil
}

// Approve marks the payment approved, but only while it is still pending.
// Returns false when another admin resolved it first. Runs in the
// approval transaction, so it takes a Querier.
func (r *PaymentRepository) Approve(ctx context.Context, q Querier, paymentID, adminID int64, at time.Time) (bool, error) {
	tag, err := q.Exec(ctx,
		`UPDATE payments SET status = $1, approved_by = $2, approved_at = $3
		 WHERE id = $4 AND status = $5`,
		models.PaymentStatusApproved, adminID, at, paymentID, models.PaymentStatusPending)
	if err != nil {
		return false, fmt.Errorf("error approving payment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Deny marks the payment denied with a reason, only while still pending.
func (r *PaymentRepository) Deny(ctx context.Context, q Querier, paymentID, adminID int64, reason string, at time.Time) (bool, error) {
	tag, err := q.Exec(ctx,
		`UPDATE payments SET status = $1, denial_reason = $2, approved_by = $3, approved_at = $4
		 WHERE id = $5 AND status = $6`,
		models.PaymentStatusDenied, reason, adminID, at, paymentID, models.PaymentStatusPending)
	if err != nil {
		return false, fmt.Errorf("error denying payment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountByStatus counts payments in the given status
func (r *PaymentRepository) CountByStatus(ctx context.Context, status models.PaymentStatus) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM payments WHERE status = $1", status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting payments: %w", err)
	}
	return count, nil
}

func collectPayments(rows pgx.Rows) ([]*models.Payment, error) {
	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return payments, nil
}
