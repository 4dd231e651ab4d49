package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	portssvc "github.com/splitkit/settlement_app/internal/core/ports/services"
	"github.com/splitkit/settlement_app/internal/middleware"
	"github.com/splitkit/settlement_app/internal/platform/config"
	"github.com/splitkit/settlement_app/internal/realtime"
)

// validPaymentMethods are the methods the payment processor accepts.
var validPaymentMethods = map[string]struct{}{
	"UPI":           {},
	"BANK_TRANSFER": {},
	"CARD":          {},
	"CASH":          {},
}

// paymentMethodValidator backs the `paymentmethod` binding tag.
func paymentMethodValidator(fl validator.FieldLevel) bool {
	_, ok := validPaymentMethods[fl.Field().String()]
	return ok
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	hub *realtime.Hub,
) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Registration only fails on an empty tag name.
		_ = v.RegisterValidation("paymentmethod", paymentMethodValidator)
	}

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services, hub)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	hub *realtime.Hub,
) {
	// The gateway upstream authenticates and asserts member identity;
	// this core only requires the assertion to be present.
	v1 := r.Group("/api/v1", middleware.MemberIdentityMiddleware())
	groups := v1.Group("/groups/:groupID")

	registerDebtRoutes(groups, services.Balance)
	registerBalanceRoutes(groups, services.Balance, services.Members)
	registerSettlementRoutes(groups, services.Settlement, services.Coordinator)
	registerPlanRoutes(groups, services.Coordinator)
	registerRealtimeRoutes(groups, services.Members, hub)
}
