package admin

import (
	"net/http"
	"strings"

	"github.com/farhansajid/visamock/internal/controller"
	"github.com/farhansajid/visamock/internal/dto"
	"github.com/farhansajid/visamock/internal/middleware"
	"github.com/farhansajid/visamock/internal/model"
	"github.com/farhansajid/visamock/internal/repository"
	"github.com/farhansajid/visamock/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

type AdminController struct {
	couponRepo    repository.CouponRepository
	catalogSvc    service.CatalogService
	profileSvc    service.ProfileService
	paymentSvc    service.PaymentService
	interviewRepo repository.InterviewRepository
}

func NewAdminController(
	couponRepo repository.CouponRepository,
	catalogSvc service.CatalogService,
	profileSvc service.ProfileService,
	paymentSvc service.PaymentService,
	interviewRepo repository.InterviewRepository,
) *AdminController {
	return &AdminController{
		couponRepo:    couponRepo,
		catalogSvc:    catalogSvc,
		profileSvc:    profileSvc,
		paymentSvc:    paymentSvc,
		interviewRepo: interviewRepo,
	}
}

// CreateCoupon godoc
// @Summary (Admin) Create a discount coupon
// @Tags admin
// @Accept json
// @Produce json
// @Param coupon body dto.CreateCouponRequest true "Coupon definition"
// @Success 201 {object} model.Coupon
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/coupons [post]
// @Security BearerAuth
func (ctrl *AdminController) CreateCoupon(c *gin.Context) {
	var req dto.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if req.DiscountType == model.DiscountTypePercentage && req.DiscountAmount > 100 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Percentage discount cannot exceed 100"})
		return
	}

	active := true
	coupon := model.Coupon{
		Code:            strings.ToUpper(strings.TrimSpace(req.Code)),
		DiscountType:    req.DiscountType,
		DiscountAmount:  req.DiscountAmount,
		ExpirationDate:  req.ExpirationDate,
		PerUserLimit:    req.PerUserLimit,
		TotalUsageLimit: req.TotalUsageLimit,
		IsActive:        &active,
	}
	if coupon.PerUserLimit <= 0 {
		coupon.PerUserLimit = 1
	}
	if req.IsActive != nil {
		coupon.IsActive = req.IsActive
	}

	if err := ctrl.couponRepo.Create(&coupon); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

// ListCoupons godoc
// @Summary (Admin) List all coupons
// @Tags admin
// @Produce json
// @Success 200 {array} model.Coupon
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/coupons [get]
// @Security BearerAuth
func (ctrl *AdminController) ListCoupons(c *gin.Context) {
	coupons, err := ctrl.couponRepo.FindAll()
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupons)
}

// UpdateCoupon godoc
// @Summary (Admin) Update a coupon
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Coupon ID"
// @Param coupon body dto.UpdateCouponRequest true "Fields to change"
// @Success 200 {object} model.Coupon
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/coupons/{id} [put]
// @Security BearerAuth
func (ctrl *AdminController) UpdateCoupon(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	coupon, err := ctrl.couponRepo.FindByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Coupon not found"})
		return
	}

	if req.DiscountType != nil {
		coupon.DiscountType = *req.DiscountType
	}
	if req.DiscountAmount != nil {
		coupon.DiscountAmount = *req.DiscountAmount
	}
	if req.ExpirationDate != nil {
		coupon.ExpirationDate = req.ExpirationDate
	}
	if req.PerUserLimit != nil {
		coupon.PerUserLimit = *req.PerUserLimit
	}
	if req.TotalUsageLimit != nil {
		coupon.TotalUsageLimit = req.TotalUsageLimit
	}
	if req.IsActive != nil {
		coupon.IsActive = req.IsActive
	}

	if err := ctrl.couponRepo.Update(coupon); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

// DeleteCoupon godoc
// @Summary (Admin) Delete a coupon
// @Tags admin
// @Param id path int true "Coupon ID"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/coupons/{id} [delete]
// @Security BearerAuth
func (ctrl *AdminController) DeleteCoupon(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.couponRepo.Delete(id); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateCountry godoc
// @Summary (Admin) Add a destination country
// @Tags admin
// @Accept json
// @Produce json
// @Param country body dto.CreateCountryRequest true "Country"
// @Success 201 {object} dto.CountryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/countries [post]
// @Security BearerAuth
func (ctrl *AdminController) CreateCountry(c *gin.Context) {
	var req dto.CreateCountryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	country := model.Country{
		Name:      req.Name,
		Code:      strings.ToUpper(req.Code),
		FlagEmoji: req.FlagEmoji,
	}
	if err := ctrl.catalogSvc.CreateCountry(&country); err != nil {
		controller.RespondError(c, err)
		return
	}

	var resp dto.CountryResponse
	if err := copier.Copy(&resp, &country); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// DeleteCountry godoc
// @Summary (Admin) Remove a country
// @Tags admin
// @Param id path int true "Country ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/countries/{id} [delete]
// @Security BearerAuth
func (ctrl *AdminController) DeleteCountry(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.catalogSvc.DeleteCountry(id); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateVisaType godoc
// @Summary (Admin) Add a visa type
// @Description Optionally carries dedicated voice-vendor credentials that override the global ones.
// @Tags admin
// @Accept json
// @Produce json
// @Param visa_type body dto.CreateVisaTypeRequest true "Visa type"
// @Success 201 {object} dto.VisaTypeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Country not found"
// @Router /admin/visa-types [post]
// @Security BearerAuth
func (ctrl *AdminController) CreateVisaType(c *gin.Context) {
	var req dto.CreateVisaTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	visaType := model.VisaType{
		CountryID:       req.CountryID,
		Name:            req.Name,
		Description:     req.Description,
		VapiAssistantID: req.VapiAssistantID,
		VapiPublicKey:   req.VapiPublicKey,
		VapiPrivateKey:  req.VapiPrivateKey,
	}
	if err := ctrl.catalogSvc.CreateVisaType(&visaType); err != nil {
		controller.RespondError(c, err)
		return
	}

	var resp dto.VisaTypeResponse
	if err := copier.Copy(&resp, &visaType); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateVisaType godoc
// @Summary (Admin) Update a visa type
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Visa type ID"
// @Param visa_type body dto.UpdateVisaTypeRequest true "Fields to change"
// @Success 200 {object} dto.VisaTypeResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/visa-types/{id} [put]
// @Security BearerAuth
func (ctrl *AdminController) UpdateVisaType(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateVisaTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	visaType, err := ctrl.catalogSvc.UpdateVisaType(id, func(vt *model.VisaType) {
		if req.Name != nil {
			vt.Name = *req.Name
		}
		if req.Description != nil {
			vt.Description = req.Description
		}
		if req.VapiAssistantID != nil {
			vt.VapiAssistantID = req.VapiAssistantID
		}
		if req.VapiPublicKey != nil {
			vt.VapiPublicKey = req.VapiPublicKey
		}
		if req.VapiPrivateKey != nil {
			vt.VapiPrivateKey = req.VapiPrivateKey
		}
	})
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	var resp dto.VisaTypeResponse
	if err := copier.Copy(&resp, visaType); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteVisaType godoc
// @Summary (Admin) Remove a visa type
// @Tags admin
// @Param id path int true "Visa type ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/visa-types/{id} [delete]
// @Security BearerAuth
func (ctrl *AdminController) DeleteVisaType(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.catalogSvc.DeleteVisaType(id); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GrantCredits godoc
// @Summary (Admin) Grant or claw back credits
// @Description Adjusts a user's balance and records an audit row. Negative amounts claw back; the balance never goes below zero.
// @Tags admin
// @Accept json
// @Produce json
// @Param grant body dto.GrantCreditsRequest true "User, amount and reason"
// @Success 200 {object} dto.GrantCreditsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "User has no profile"
// @Router /admin/credits/grant [post]
// @Security BearerAuth
func (ctrl *AdminController) GrantCredits(c *gin.Context) {
	var req dto.GrantCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	balance, err := ctrl.profileSvc.GrantCredits(req.UserID, middleware.UserID(c), req.Credits, req.Reason)
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	log.Info().Uint("userID", req.UserID).Int("credits", req.Credits).Uint("grantedBy", middleware.UserID(c)).Msg("Admin credit grant")
	c.JSON(http.StatusOK, dto.GrantCreditsResponse{UserID: req.UserID, Balance: balance})
}

// ListOrders godoc
// @Summary (Admin) List all orders
// @Tags admin
// @Produce json
// @Success 200 {array} dto.OrderResponse
// @Router /admin/orders [get]
// @Security BearerAuth
func (ctrl *AdminController) ListOrders(c *gin.Context) {
	orders, err := ctrl.paymentSvc.ListOrders()
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	responses := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		var resp dto.OrderResponse
		if err := copier.Copy(&resp, &orders[i]); err != nil {
			controller.RespondError(c, err)
			return
		}
		responses = append(responses, resp)
	}
	c.JSON(http.StatusOK, responses)
}

// ListProfiles godoc
// @Summary (Admin) List all user profiles
// @Tags admin
// @Produce json
// @Success 200 {array} dto.ProfileResponse
// @Router /admin/profiles [get]
// @Security BearerAuth
func (ctrl *AdminController) ListProfiles(c *gin.Context) {
	profiles, err := ctrl.profileSvc.ListAll()
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	responses := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		var resp dto.ProfileResponse
		if err := copier.Copy(&resp, &profiles[i]); err != nil {
			controller.RespondError(c, err)
			return
		}
		responses = append(responses, resp)
	}
	c.JSON(http.StatusOK, responses)
}

// ListInterviews godoc
// @Summary (Admin) List all interviews
// @Tags admin
// @Produce json
// @Success 200 {array} dto.InterviewResponse
// @Router /admin/interviews [get]
// @Security BearerAuth
func (ctrl *AdminController) ListInterviews(c *gin.Context) {
	interviews, err := ctrl.interviewRepo.FindAll()
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	responses := make([]dto.InterviewResponse, 0, len(interviews))
	for i := range interviews {
		responses = append(responses, controller.ToInterviewResponse(&interviews[i]))
	}
	c.JSON(http.StatusOK, responses)
}
