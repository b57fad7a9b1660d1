package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/halit/learnsphere/internal/app/models/dto"
	"github.com/halit/learnsphere/internal/app/services"
)

// SubscriptionMiddleware gates material-serving routes behind an active
// subscription.
type SubscriptionMiddleware struct {
	subscriptionService *services.SubscriptionService
}

// NewSubscriptionMiddleware creates a new SubscriptionMiddleware
func NewSubscriptionMiddleware(subscriptionService *services.SubscriptionService) *SubscriptionMiddleware {
	return &SubscriptionMiddleware{subscriptionService: subscriptionService}
}

// SubscriptionRequired rejects students without an active subscription
// before any material is looked up. Instructors and admins pass through.
func (m *SubscriptionMiddleware) SubscriptionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		active, err := m.subscriptionService.HasActiveSubscription(c.Request.Context(), user.ID, user.RoleType)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
				WithDetails("Failed to check subscription status")
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
			return
		}

		if !active {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeSubscriptionRequired, "Active subscription required").
				WithDetails("Submit a payment and wait for approval to access materials")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}
