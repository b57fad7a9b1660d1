package seed

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/repositories"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
)

// defaultAdminEmail identifies the bootstrap admin account. The password
// below is a development default; change it through the reset flow.
const (
	defaultAdminEmail    = "admin@learnsphere.app"
	defaultAdminPassword = "Admin123!"
)

// CreateDefaultData seeds departments and the default admin account if
// they don't exist. Errors are collected so one failure doesn't stop the
// rest of the seed.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	departmentRepo := repositories.NewDepartmentRepository(dbPool)
	userRepo := repositories.NewUserRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	defaults := []models.Department{
		{Name: "Computer Engineering", Code: "CENG"},
		{Name: "Electrical Engineering", Code: "EEE"},
		{Name: "Mathematics", Code: "MATH"},
		{Name: "Physics", Code: "PHYS"},
	}
	for i := range defaults {
		_, err := departmentRepo.Create(ctx, &defaults[i])
		if err != nil && !errors.Is(err, apperrors.ErrDepartmentAlreadyExists) {
			lgr.Error().Err(err).Str("code", defaults[i].Code).Msg("Error creating default department")
			finalErr = errors.Join(finalErr, err)
		}
	}

	exists, err := userRepo.EmailExists(ctx, defaultAdminEmail)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return errors.Join(finalErr, err)
	}
	if exists {
		return finalErr
	}

	lgr.Info().Msg("Creating default admin user...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return errors.Join(finalErr, err)
	}

	// Admin needs a department; take the first one available
	departments, err := departmentRepo.List(ctx)
	if err != nil || len(departments) == 0 {
		lgr.Error().Err(err).Msg("No department available for admin user")
		return errors.Join(finalErr, err)
	}

	now := time.Now()
	admin := &models.User{
		Email:           defaultAdminEmail,
		Password:        string(hashedPassword),
		FirstName:       "System",
		LastName:        "Administrator",
		RoleType:        models.RoleAdmin,
		DepartmentID:    departments[0].ID,
		IsActive:        true,
		EmailVerifiedAt: &now,
	}

	adminID, err := userRepo.CreateUser(ctx, dbPool, admin)
	if err != nil && !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		lgr.Error().Err(err).Msg("Error creating admin user")
		finalErr = errors.Join(finalErr, err)
	} else if err == nil {
		lgr.Info().Int64("adminID", adminID).Msg("Default admin user created")
	}

	return finalErr
}
