package user

import (
	"net/http"
	"strings"

	"github.com/farhansajid/visamock/internal/controller"
	"github.com/farhansajid/visamock/internal/dto"
	"github.com/farhansajid/visamock/internal/middleware"
	"github.com/farhansajid/visamock/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type PaymentController struct {
	paymentSvc service.PaymentService
	couponSvc  service.CouponService
}

func NewPaymentController(paymentSvc service.PaymentService, couponSvc service.CouponService) *PaymentController {
	return &PaymentController{paymentSvc: paymentSvc, couponSvc: couponSvc}
}

// ListPlans godoc
// @Summary List purchasable credit packs
// @Tags payments
// @Produce json
// @Success 200 {array} dto.PlanResponse
// @Router /payments/plans [get]
func (ctrl *PaymentController) ListPlans(c *gin.Context) {
	plans := make([]dto.PlanResponse, 0, len(service.Plans))
	for _, key := range []string{"starter", "pro", "premium"} {
		plan := service.Plans[key]
		plans = append(plans, dto.PlanResponse{
			Name:    plan.Name,
			BDT:     plan.BDT,
			USD:     plan.USD,
			Credits: plan.Credits,
		})
	}
	c.JSON(http.StatusOK, plans)
}

// InitiatePayment godoc
// @Summary Start a hosted checkout
// @Description Creates a pending order and a gateway session, returning the URL to redirect the user to.
// @Tags payments
// @Accept json
// @Produce json
// @Param checkout body dto.InitiatePaymentRequest true "Plan, currency and optional coupon"
// @Success 200 {object} dto.CheckoutResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid plan, currency or coupon"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse "Gateway unavailable"
// @Router /payments/initiate [post]
// @Security BearerAuth
func (ctrl *PaymentController) InitiatePayment(c *gin.Context) {
	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	session, err := ctrl.paymentSvc.InitiatePayment(
		c.Request.Context(),
		middleware.UserID(c),
		c.GetString(middleware.ContextEmail),
		c.GetString(middleware.ContextFullName),
		req.Plan,
		req.Currency,
		req.CouponCode,
	)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CheckoutResponse{
		GatewayURL: session.GatewayURL,
		TranID:     session.TranID,
		Amount:     session.Amount,
		Currency:   session.Currency,
	})
}

// ValidateCoupon godoc
// @Summary Preview a coupon against a plan
// @Description Validates the code for the caller and returns the discounted price without creating an order.
// @Tags payments
// @Accept json
// @Produce json
// @Param coupon body dto.ValidateCouponRequest true "Code, plan and currency"
// @Success 200 {object} dto.CouponPreviewResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid, expired or exhausted coupon"
// @Failure 401 {object} dto.ErrorResponse
// @Router /payments/validate-coupon [post]
// @Security BearerAuth
func (ctrl *PaymentController) ValidateCoupon(c *gin.Context) {
	var req dto.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	plan, ok := service.Plans[strings.ToLower(req.Plan)]
	if !ok {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid plan: " + req.Plan})
		return
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "BDT"
	}
	price := plan.BDT
	if currency == "USD" {
		price = plan.USD
	}

	coupon, err := ctrl.couponSvc.Validate(req.Code, middleware.UserID(c))
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CouponPreviewResponse{
		Valid:          true,
		Code:           coupon.Code,
		DiscountType:   coupon.DiscountType,
		DiscountAmount: coupon.DiscountAmount,
		OriginalPrice:  price,
		FinalPrice:     ctrl.couponSvc.ApplyDiscount(price, currency, plan, coupon),
		Currency:       currency,
	})
}

// HandleIPN godoc
// @Summary Gateway payment notification
// @Description Server-to-server callback from SSLCommerz. Form encoded; unauthenticated by design of the gateway, so the outcome is revalidated against the gateway before any credit is granted.
// @Tags payments
// @Accept x-www-form-urlencoded
// @Produce json
// @Param tran_id formData string true "Transaction ID"
// @Param val_id formData string false "Validation ID, present on success"
// @Param status formData string true "Gateway status"
// @Success 200 {object} map[string]string
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Unknown transaction"
// @Router /payments/ipn [post]
func (ctrl *PaymentController) HandleIPN(c *gin.Context) {
	tranID := c.PostForm("tran_id")
	valID := c.PostForm("val_id")
	status := c.PostForm("status")
	if tranID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "tran_id is required"})
		return
	}

	log.Info().Str("tranID", tranID).Str("status", status).Msg("IPN received")

	if err := ctrl.paymentSvc.HandleIPN(c.Request.Context(), tranID, valID, status); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
