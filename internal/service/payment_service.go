package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/farhansajid/visamock/config"
	"github.com/farhansajid/visamock/internal/apperror"
	"github.com/farhansajid/visamock/internal/model"
	"github.com/farhansajid/visamock/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Plan is a purchasable credit pack. Prices are whole units in each
// currency.
type Plan struct {
	Name    string
	BDT     int
	USD     int
	Credits int
}

// Plans is the fixed catalog of credit packs, keyed by lowercase name.
var Plans = map[string]Plan{
	"starter": {Name: "Starter", BDT: 800, USD: 8, Credits: 100},
	"pro":     {Name: "Pro", BDT: 1500, USD: 15, Credits: 200},
	"premium": {Name: "Premium", BDT: 2800, USD: 28, Credits: 400},
}

// CheckoutSession is what the frontend needs to hand the user off to the
// hosted payment page.
type CheckoutSession struct {
	GatewayURL string
	TranID     string
	Amount     int
	Currency   string
}

// PaymentService runs the checkout flow against SSLCommerz and settles
// orders from the gateway's server-to-server notifications.
type PaymentService interface {
	InitiatePayment(ctx context.Context, userID uint, email, name, planName, currency, couponCode string) (*CheckoutSession, error)
	HandleIPN(ctx context.Context, tranID, valID, status string) error
	ListOrders() ([]model.Order, error)
}

type paymentService struct {
	orderRepo  repository.OrderRepository
	couponRepo repository.CouponRepository
	coupons    CouponService
	gateway    SSLCommerzClient
	ledger     LedgerService
	cfg        *config.Config
}

func NewPaymentService(
	orderRepo repository.OrderRepository,
	couponRepo repository.CouponRepository,
	coupons CouponService,
	gateway SSLCommerzClient,
	ledger LedgerService,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		orderRepo:  orderRepo,
		couponRepo: couponRepo,
		coupons:    coupons,
		gateway:    gateway,
		ledger:     ledger,
		cfg:        cfg,
	}
}

// NewTranID builds a transaction reference that is unique per checkout
// attempt and safe to expose in gateway redirects.
func NewTranID() string {
	return fmt.Sprintf("VC_%d_%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}

func (s *paymentService) InitiatePayment(ctx context.Context, userID uint, email, name, planName, currency, couponCode string) (*CheckoutSession, error) {
	plan, ok := Plans[strings.ToLower(planName)]
	if !ok {
		return nil, apperror.Validationf("Invalid plan: %s", planName)
	}

	currency = strings.ToUpper(currency)
	if currency == "" {
		currency = "BDT"
	}
	if currency != "BDT" && currency != "USD" {
		return nil, apperror.Validationf("Unsupported currency: %s", currency)
	}

	amount := plan.BDT
	if currency == "USD" {
		amount = plan.USD
	}

	var coupon *model.Coupon
	if couponCode != "" {
		var err error
		coupon, err = s.coupons.Validate(couponCode, userID)
		if err != nil {
			return nil, err
		}
		amount = s.coupons.ApplyDiscount(amount, currency, plan, coupon)
	}
	if amount <= 0 {
		return nil, apperror.Validationf("Invalid discounted amount")
	}

	tranID := NewTranID()
	order := &model.Order{
		UserID:   userID,
		TranID:   tranID,
		PlanName: plan.Name,
		Amount:   amount,
		Currency: currency,
		Credits:  plan.Credits,
		Status:   model.OrderStatusPending,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Redemption is booked before the gateway call: an abandoned or refused
	// checkout still consumes a use.
	if coupon != nil {
		if err := s.couponRepo.CreateUsage(&model.CouponUsage{
			CouponID: coupon.ID,
			UserID:   userID,
			OrderID:  &order.ID,
		}); err != nil {
			log.Error().Err(err).Uint("couponID", coupon.ID).Msg("Failed to record coupon usage")
		} else if err := s.couponRepo.IncrementTimesUsed(coupon.ID); err != nil {
			log.Error().Err(err).Uint("couponID", coupon.ID).Msg("Failed to increment coupon counter")
		}
	}

	session, err := s.gateway.CreateSession(ctx, SSLCommerzSessionRequest{
		TotalAmount:   amount,
		Currency:      currency,
		TranID:        tranID,
		SuccessURL:    s.cfg.FrontendURL + "/payment/success?tran_id=" + tranID,
		FailURL:       s.cfg.FrontendURL + "/payment/fail?tran_id=" + tranID,
		CancelURL:     s.cfg.FrontendURL + "/payment/cancel?tran_id=" + tranID,
		IPNURL:        s.cfg.Server.PublicURL + "/api/v1/payments/ipn",
		CustomerName:  name,
		CustomerEmail: email,
		ProductName:   plan.Name + " Credit Pack",
		UserRef:       fmt.Sprintf("%d", userID),
	})
	if err != nil {
		_ = s.orderRepo.SetStatus(tranID, model.OrderStatusFailed, nil)
		return nil, err
	}
	if session.Status != "SUCCESS" || session.GatewayPageURL == "" {
		log.Error().Str("tranID", tranID).Str("reason", session.FailedReason).Msg("SSLCommerz refused session")
		_ = s.orderRepo.SetStatus(tranID, model.OrderStatusFailed, nil)
		return nil, apperror.Upstreamf("payment gateway refused the session: %s", session.FailedReason)
	}

	if err := s.orderRepo.SetSessionKey(tranID, session.SessionKey); err != nil {
		log.Error().Err(err).Str("tranID", tranID).Msg("Failed to store session key")
	}

	log.Info().
		Uint("userID", userID).
		Str("tranID", tranID).
		Str("plan", plan.Name).
		Int("amount", amount).
		Str("currency", currency).
		Msg("Checkout session created")

	return &CheckoutSession{
		GatewayURL: session.GatewayPageURL,
		TranID:     tranID,
		Amount:     amount,
		Currency:   currency,
	}, nil
}

// HandleIPN settles an order from a gateway notification. The notification
// itself is untrusted: a paid outcome is accepted only after the gateway's
// validation API confirms it, and credits are granted exactly once no
// matter how many times the same notification is delivered.
func (s *paymentService) HandleIPN(ctx context.Context, tranID, valID, status string) error {
	order, err := s.orderRepo.FindByTranID(tranID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Acknowledge so the gateway stops redelivering.
			log.Warn().Str("tranID", tranID).Msg("IPN for unknown transaction")
			return nil
		}
		return err
	}

	switch status {
	case "FAILED":
		return s.settleTerminal(order, model.OrderStatusFailed)
	case "CANCELLED":
		return s.settleTerminal(order, model.OrderStatusCancelled)
	}

	if valID == "" {
		return apperror.Validationf("val_id is required for a successful transaction")
	}

	validation, err := s.gateway.ValidateTransaction(ctx, valID)
	if err != nil {
		return err
	}
	if !validation.Valid() {
		log.Warn().Str("tranID", tranID).Str("status", validation.Status).Msg("Gateway validation rejected transaction")
		return s.settleTerminal(order, model.OrderStatusFailed)
	}

	paidAmount, err := strconv.ParseFloat(validation.Amount, 64)
	if err != nil || paidAmount < float64(order.Amount) {
		log.Warn().
			Str("tranID", tranID).
			Str("paid", validation.Amount).
			Int("expected", order.Amount).
			Msg("Validated amount does not cover the order")
		return s.settleTerminal(order, model.OrderStatusFailed)
	}

	won, err := s.orderRepo.MarkPaid(tranID, valID)
	if err != nil {
		return err
	}
	if !won {
		log.Info().Str("tranID", tranID).Msg("Order already settled, skipping credit")
		return nil
	}

	if _, err := s.ledger.Adjust(order.UserID, order.Credits, LedgerReasonPurchase); err != nil {
		log.Error().Err(err).Str("tranID", tranID).Msg("Order paid but credit grant failed")
		return err
	}

	log.Info().
		Str("tranID", tranID).
		Uint("userID", order.UserID).
		Int("credits", order.Credits).
		Msg("Order paid and credits granted")
	return nil
}

// settleTerminal records a failed or cancelled outcome without clobbering
// an order that already settled as paid.
func (s *paymentService) settleTerminal(order *model.Order, status string) error {
	if order.Status == model.OrderStatusPaid {
		return nil
	}
	return s.orderRepo.SetStatus(order.TranID, status, nil)
}

func (s *paymentService) ListOrders() ([]model.Order, error) {
	return s.orderRepo.FindAll()
}
