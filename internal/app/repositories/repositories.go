package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx operations shared by *pgxpool.Pool and
// pgx.Tx. Repository methods that must participate in a caller-owned
// transaction take a Querier instead of using the pool directly.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	OtpRepository          *OtpRepository
	TokenRepository        *TokenRepository
	DepartmentRepository   *DepartmentRepository
	SubscriptionRepository *SubscriptionRepository
	PaymentRepository      *PaymentRepository
	MaterialRepository     *MaterialRepository
	EngagementRepository   *EngagementRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		OtpRepository:          NewOtpRepository(db),
		TokenRepository:        NewTokenRepository(db),
		DepartmentRepository:   NewDepartmentRepository(db),
		SubscriptionRepository: NewSubscriptionRepository(db),
		PaymentRepository:      NewPaymentRepository(db),
		MaterialRepository:     NewMaterialRepository(db),
		EngagementRepository:   NewEngagementRepository(db),
	}
}
