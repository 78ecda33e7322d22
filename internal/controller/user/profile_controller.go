package user

import (
	"net/http"

	"github.com/farhansajid/visamock/internal/controller"
	"github.com/farhansajid/visamock/internal/dto"
	"github.com/farhansajid/visamock/internal/middleware"
	"github.com/farhansajid/visamock/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type ProfileController struct {
	profileSvc  service.ProfileService
	referralSvc service.ReferralService
	catalogSvc  service.CatalogService
}

func NewProfileController(profileSvc service.ProfileService, referralSvc service.ReferralService, catalogSvc service.CatalogService) *ProfileController {
	return &ProfileController{profileSvc: profileSvc, referralSvc: referralSvc, catalogSvc: catalogSvc}
}

// GetProfile godoc
// @Summary Get the caller's profile and credit balance
// @Description Returns the profile, creating it with the starter balance on first call.
// @Tags profile
// @Produce json
// @Success 200 {object} dto.ProfileResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /profile [get]
// @Security BearerAuth
func (ctrl *ProfileController) GetProfile(c *gin.Context) {
	var email, fullName *string
	if v := c.GetString(middleware.ContextEmail); v != "" {
		email = &v
	}
	if v := c.GetString(middleware.ContextFullName); v != "" {
		fullName = &v
	}

	profile, err := ctrl.profileSvc.EnsureProfile(middleware.UserID(c), email, fullName)
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	var resp dto.ProfileResponse
	if err := copier.Copy(&resp, profile); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetReferralCode godoc
// @Summary Get the caller's shareable invite code
// @Description Mints a code on first call.
// @Tags referrals
// @Produce json
// @Success 200 {object} dto.ReferralCodeResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /referrals/code [get]
// @Security BearerAuth
func (ctrl *ProfileController) GetReferralCode(c *gin.Context) {
	code, err := ctrl.referralSvc.EnsureCode(middleware.UserID(c))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReferralCodeResponse{Code: code.Code})
}

// ClaimReferral godoc
// @Summary Redeem an invite code
// @Description Records the referral and pays the referrer's bonus while under the cap. A user can redeem at most one code, and never their own.
// @Tags referrals
// @Accept json
// @Produce json
// @Param referral body dto.ClaimReferralRequest true "Invite code"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse "Invalid, own, or already redeemed code"
// @Failure 401 {object} dto.ErrorResponse
// @Router /referrals/claim [post]
// @Security BearerAuth
func (ctrl *ProfileController) ClaimReferral(c *gin.Context) {
	var req dto.ClaimReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	ip := c.ClientIP()
	if err := ctrl.referralSvc.Claim(middleware.UserID(c), req.Code, &ip, req.DeviceFingerprint); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListCountries godoc
// @Summary List destination countries
// @Tags catalog
// @Produce json
// @Success 200 {array} dto.CountryResponse
// @Router /countries [get]
func (ctrl *ProfileController) ListCountries(c *gin.Context) {
	countries, err := ctrl.catalogSvc.Countries()
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	responses := make([]dto.CountryResponse, 0, len(countries))
	for i := range countries {
		var resp dto.CountryResponse
		if err := copier.Copy(&resp, &countries[i]); err != nil {
			controller.RespondError(c, err)
			return
		}
		responses = append(responses, resp)
	}
	c.JSON(http.StatusOK, responses)
}

// ListVisaTypes godoc
// @Summary List visa types, optionally for one country
// @Tags catalog
// @Produce json
// @Param country_id query int false "Filter by country"
// @Success 200 {array} dto.VisaTypeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /visa-types [get]
func (ctrl *ProfileController) ListVisaTypes(c *gin.Context) {
	var countryID *uint
	if c.Query("country_id") != "" {
		id, ok := controller.ParseQueryID(c, "country_id")
		if !ok {
			return
		}
		countryID = &id
	}

	visaTypes, err := ctrl.catalogSvc.VisaTypes(countryID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	responses := make([]dto.VisaTypeResponse, 0, len(visaTypes))
	for i := range visaTypes {
		var resp dto.VisaTypeResponse
		if err := copier.Copy(&resp, &visaTypes[i]); err != nil {
			controller.RespondError(c, err)
			return
		}
		responses = append(responses, resp)
	}
	c.JSON(http.StatusOK, responses)
}
