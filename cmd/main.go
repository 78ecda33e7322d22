package main

import (
	"context"
	"net/http"
	"time"

	"github.com/farhansajid/visamock/config"
	"github.com/farhansajid/visamock/database"
	_ "github.com/farhansajid/visamock/docs" // Swagger docs - auto-generated
	adminctrl "github.com/farhansajid/visamock/internal/controller/admin"
	userctrl "github.com/farhansajid/visamock/internal/controller/user"
	"github.com/farhansajid/visamock/internal/logger"
	"github.com/farhansajid/visamock/internal/middleware"
	"github.com/farhansajid/visamock/internal/model"
	"github.com/farhansajid/visamock/internal/repository"
	"github.com/farhansajid/visamock/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Visa Mock Interview API
// @version 1.0
// @description Credit-based mock visa interview practice with AI-generated performance reports.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewProfileRepository,
			repository.NewOrderRepository,
			repository.NewCouponRepository,
			repository.NewInterviewRepository,
			repository.NewReportRepository,
			repository.NewCatalogRepository,
			repository.NewReferralRepository,
			repository.NewUserRoleRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewLedgerService,
			service.NewCouponService,
			service.NewSSLCommerzClient,
			service.NewPaymentService,
			service.NewVapiClient,
			service.NewGeminiLLMService,
			service.NewReportNotifier,
			service.NewAnalysisService,
			service.NewInterviewService,
			service.NewReportService,
			service.NewReferralService,
			service.NewProfileService,
			service.NewCatalogService,
		),

		// API Controllers Layer
		fx.Provide(
			userctrl.NewInterviewController,
			userctrl.NewPaymentController,
			userctrl.NewProfileController,
			adminctrl.NewAdminController,
		),

		// Invokers - Functions that are executed by Fx
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	roleRepo repository.UserRoleRepository,
	interviewCtrl *userctrl.InterviewController,
	paymentCtrl *userctrl.PaymentController,
	profileCtrl *userctrl.ProfileController,
	adminCtrl *adminctrl.AdminController,
) {
	api := router.Group("/api/v1")

	// Public routes. The IPN endpoint is unauthenticated because the
	// gateway calls it server-to-server; the handler revalidates every
	// notification against the gateway before trusting it.
	api.GET("/payments/plans", paymentCtrl.ListPlans)
	api.POST("/payments/ipn", paymentCtrl.HandleIPN)
	api.GET("/countries", profileCtrl.ListCountries)
	api.GET("/visa-types", profileCtrl.ListVisaTypes)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(cfg))
	{
		authed.GET("/profile", profileCtrl.GetProfile)
		authed.GET("/referrals/code", profileCtrl.GetReferralCode)
		authed.POST("/referrals/claim", profileCtrl.ClaimReferral)

		authed.POST("/payments/initiate", paymentCtrl.InitiatePayment)
		authed.POST("/payments/validate-coupon", paymentCtrl.ValidateCoupon)

		authed.POST("/interviews", interviewCtrl.CreateInterview)
		authed.GET("/interviews", interviewCtrl.ListInterviews)
		authed.GET("/interviews/:id", interviewCtrl.GetInterview)
		authed.POST("/interviews/:id/start", interviewCtrl.StartInterview)
		authed.POST("/interviews/:id/call", interviewCtrl.AttachCall)
		authed.POST("/interviews/:id/finalize", interviewCtrl.FinalizeInterview)
		authed.POST("/interviews/:id/analyze", interviewCtrl.AnalyzeInterview)
		authed.GET("/interviews/:id/media", interviewCtrl.GetMedia)
		authed.GET("/interviews/:id/report", interviewCtrl.GetReport)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAuth(cfg), middleware.RequireAdmin(roleRepo))
	{
		admin.POST("/coupons", adminCtrl.CreateCoupon)
		admin.GET("/coupons", adminCtrl.ListCoupons)
		admin.PUT("/coupons/:id", adminCtrl.UpdateCoupon)
		admin.DELETE("/coupons/:id", adminCtrl.DeleteCoupon)

		admin.POST("/countries", adminCtrl.CreateCountry)
		admin.DELETE("/countries/:id", adminCtrl.DeleteCountry)
		admin.POST("/visa-types", adminCtrl.CreateVisaType)
		admin.PUT("/visa-types/:id", adminCtrl.UpdateVisaType)
		admin.DELETE("/visa-types/:id", adminCtrl.DeleteVisaType)

		admin.POST("/credits/grant", adminCtrl.GrantCredits)
		admin.GET("/orders", adminCtrl.ListOrders)
		admin.GET("/profiles", adminCtrl.ListProfiles)
		admin.GET("/interviews", adminCtrl.ListInterviews)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Visa mock interview API starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Profile{},
		&model.CreditGrant{},
		&model.UserRole{},
		&model.Country{},
		&model.VisaType{},
		&model.Interview{},
		&model.InterviewReport{},
		&model.Order{},
		&model.Coupon{},
		&model.CouponUsage{},
		&model.ReferralCode{},
		&model.Referral{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
