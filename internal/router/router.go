package router

import (
	"net/http"
	"time"

	"spotshare/config"
	"spotshare/internal/handler"
	"spotshare/internal/middleware"
	"spotshare/internal/repository"
	"spotshare/internal/service"
	"spotshare/internal/ws"
	"spotshare/pkg/cloudinary"
	"spotshare/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client, feed *ws.FeedHub) (*gin.Engine, *service.Sweeper) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	spotRepo := repository.NewSpotRepository(db)
	dealRepo := repository.NewDealRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	parkingSvc := service.NewParkingService(db, spotRepo, sessionRepo, creditRepo, feed)
	handshakeSvc := service.NewHandshakeService(db, dealRepo, spotRepo, sessionRepo, creditRepo, feed)
	membershipSvc := service.NewMembershipService(membershipRepo, creditRepo)
	sweeper := service.NewSweeper(spotRepo, dealRepo, sessionRepo, feed)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	accountHandler := handler.NewAccountHandler(userRepo, creditRepo, sessionRepo, cloud)
	spotHandler := handler.NewSpotHandler(parkingSvc, spotRepo)
	dealHandler := handler.NewDealHandler(handshakeSvc)
	creditHandler := handler.NewCreditHandler(creditRepo)
	storeHandler := handler.NewStoreHandler(membershipSvc, &payment.StubProvider{})

	authMw := middleware.AuthRequired(&cfg.JWT)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", accountHandler.Me)
			me.PATCH("/profile", accountHandler.UpdateProfile)
			me.POST("/avatar", accountHandler.UploadAvatar)
			me.GET("/stats", accountHandler.Stats)
			me.GET("/history", accountHandler.History)
			me.GET("/session", spotHandler.MySession)
		}

		spots := api.Group("/spots")
		spots.Use(authMw)
		{
			spots.GET("", spotHandler.List)
			spots.POST("", spotHandler.Report)
			spots.POST("/:id/claim", spotHandler.Claim)
			spots.POST("/:id/release", spotHandler.Release)
		}

		deals := api.Group("/deals")
		deals.Use(authMw)
		{
			deals.GET("", dealHandler.List)
			deals.GET("/mine", dealHandler.Mine)
			deals.GET("/:id", dealHandler.Get)
			deals.POST("", dealHandler.Offer)
			deals.POST("/:id/request", dealHandler.Request)
			deals.POST("/:id/accept", dealHandler.Accept)
			deals.POST("/:id/decline", dealHandler.Decline)
			deals.POST("/:id/confirm", dealHandler.Confirm)
			deals.POST("/:id/cancel", dealHandler.Cancel)
		}

		credits := api.Group("/credits")
		credits.Use(authMw)
		{
			credits.GET("/balance", creditHandler.GetBalance)
			credits.GET("/transactions", creditHandler.ListTransactions)
		}

		store := api.Group("/store")
		store.Use(authMw)
		{
			store.GET("/packages", storeHandler.ListPackages)
			store.GET("/memberships", storeHandler.ListMemberships)
			store.GET("/memberships/mine", storeHandler.MyMembership)
			store.POST("/memberships/checkout", storeHandler.CheckoutMembership)
			store.POST("/packages/checkout", storeHandler.CheckoutPackage)
		}
	}

	r.GET("/ws/feed", ws.UpgradeFeedWS(&cfg.JWT, feed))

	return r, sweeper
}
