package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/halit/learnsphere/internal/app/models/dto"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
)

// HandleAPIError translates service errors into API responses
func HandleAPIError(c *gin.Context, err error) {
	// A CustomError carries its own message; unwrap for classification
	var custom *apperrors.CustomError
	message := ""
	if errors.As(err, &custom) {
		message = custom.Message
	}

	respond := func(status int, code dto.ErrorCode, fallback string) {
		if message == "" {
			message = fallback
		}
		c.JSON(status, dto.NewFailureResponse(dto.NewErrorDetail(code, message)))
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(401, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(401, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenRevoked):
		respond(401, dto.ErrorCodeInvalidToken, "Token revoked")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		respond(401, dto.ErrorCodeTokenNotFound, "Token not found")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respond(401, dto.ErrorCodeInvalidToken, "Invalid token")

	case errors.Is(err, apperrors.ErrEmailNotVerified):
		respond(403, dto.ErrorCodeEmailNotVerified, "Email not verified")
	case errors.Is(err, apperrors.ErrAccountNotActivated):
		respond(403, dto.ErrorCodeNotActivated, "Account not activated by admin")
	case errors.Is(err, apperrors.ErrSubscriptionRequired):
		respond(403, dto.ErrorCodeSubscriptionRequired, "Active subscription required")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respond(403, dto.ErrorCodeForbidden, "Permission denied")

	case errors.Is(err, apperrors.ErrInvalidOtp):
		respond(400, dto.ErrorCodeInvalidOtp, "Invalid verification code")
	case errors.Is(err, apperrors.ErrOtpExpired):
		respond(400, dto.ErrorCodeOtpExpired, "Verification code expired, request a new one")

	case errors.Is(err, apperrors.ErrUserNotFound):
		respond(404, dto.ErrorCodeResourceNotFound, "User not found")
	case errors.Is(err, apperrors.ErrMaterialNotFound):
		respond(404, dto.ErrorCodeResourceNotFound, "Material not found")
	case errors.Is(err, apperrors.ErrCommentNotFound):
		respond(404, dto.ErrorCodeResourceNotFound, "Comment not found")
	case errors.Is(err, apperrors.ErrDepartmentNotFound):
		respond(404, dto.ErrorCodeResourceNotFound, "Department not found")
	case errors.Is(err, apperrors.ErrPaymentNotFound):
		respond(404, dto.ErrorCodeResourceNotFound, "Payment not found")
	case errors.Is(err, apperrors.ErrSubscriptionNotFound):
		respond(404, dto.ErrorCodeResourceNotFound, "No subscription found")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		respond(404, dto.ErrorCodeResourceNotFound, "Resource not found")

	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		respond(409, dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrEmailAlreadyVerified):
		respond(409, dto.ErrorCodeResourceAlreadyExists, "Email already verified")
	case errors.Is(err, apperrors.ErrDuplicateTransaction):
		respond(409, dto.ErrorCodeResourceAlreadyExists, "Transaction ID already submitted")
	case errors.Is(err, apperrors.ErrPaymentAlreadyResolved):
		respond(409, dto.ErrorCodeResourceAlreadyExists, "Payment already approved or denied")
	case errors.Is(err, apperrors.ErrDepartmentAlreadyExists):
		respond(409, dto.ErrorCodeResourceAlreadyExists, "Department with this name or code already exists")
	case errors.Is(err, apperrors.ErrConflict):
		respond(409, dto.ErrorCodeResourceAlreadyExists, "Conflict")

	case errors.Is(err, apperrors.ErrMaterialNotDownload):
		respond(400, dto.ErrorCodeValidationFailed, "Material has no downloadable file")
	case errors.Is(err, apperrors.ErrValidationFailed):
		respond(400, dto.ErrorCodeValidationFailed, "Validation failed")
	case errors.Is(err, apperrors.ErrBadRequest):
		respond(400, dto.ErrorCodeValidationFailed, "Bad request")

	default:
		// Never leak internals in the message
		c.JSON(500, dto.NewFailureResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	}
}
