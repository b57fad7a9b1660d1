package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halit/learnsphere/internal/app/models/dto"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
)

func handleError(t *testing.T, err error) (int, dto.APIResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleAPIError(c, err)

	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHandleAPIErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"invalid credentials", apperrors.ErrInvalidCredentials, 401, dto.ErrorCodeInvalidCredentials},
		{"token expired", apperrors.ErrTokenExpired, 401, dto.ErrorCodeExpiredToken},
		{"email not verified", apperrors.ErrEmailNotVerified, 403, dto.ErrorCodeEmailNotVerified},
		{"account not activated", apperrors.ErrAccountNotActivated, 403, dto.ErrorCodeNotActivated},
		{"subscription required", apperrors.ErrSubscriptionRequired, 403, dto.ErrorCodeSubscriptionRequired},
		{"permission denied", apperrors.ErrPermissionDenied, 403, dto.ErrorCodeForbidden},
		{"invalid otp", apperrors.ErrInvalidOtp, 400, dto.ErrorCodeInvalidOtp},
		{"otp expired", apperrors.ErrOtpExpired, 400, dto.ErrorCodeOtpExpired},
		{"material not found", apperrors.ErrMaterialNotFound, 404, dto.ErrorCodeResourceNotFound},
		{"subscription not found", apperrors.ErrSubscriptionNotFound, 404, dto.ErrorCodeResourceNotFound},
		{"email exists", apperrors.ErrEmailAlreadyExists, 409, dto.ErrorCodeResourceAlreadyExists},
		{"duplicate transaction", apperrors.ErrDuplicateTransaction, 409, dto.ErrorCodeResourceAlreadyExists},
		{"payment resolved", apperrors.ErrPaymentAlreadyResolved, 409, dto.ErrorCodeResourceAlreadyExists},
		{"not a downloadable material", apperrors.ErrMaterialNotDownload, 400, dto.ErrorCodeValidationFailed},
		{"unknown error", errors.New("pgx: connection refused"), 500, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := handleError(t, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestHandleAPIErrorUsesCustomMessage(t *testing.T) {
	err := apperrors.NewCustomError(apperrors.ErrResourceNotFound, "Department not found")
	status, resp := handleError(t, err)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Department not found", resp.Error.Message)
}

func TestHandleAPIErrorHidesInternals(t *testing.T) {
	_, resp := handleError(t, errors.New("dial tcp 10.0.0.3:5432: i/o timeout"))

	assert.Equal(t, "Internal server error", resp.Error.Message)
	assert.NotContains(t, resp.Error.Message, "5432")
}

func TestHandleAPIErrorUnwrapsWrappedSentinels(t *testing.T) {
	wrapped := errors.Join(errors.New("while fetching material"), apperrors.ErrMaterialNotFound)
	status, resp := handleError(t, wrapped)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, resp.Error.Code)
}
