package app

import (
	"mandabem_backend/internal/config"
	"mandabem_backend/internal/middleware"
	"mandabem_backend/internal/model"
	"mandabem_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	router.Use(middleware.ConfigMiddleware(cfg))

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware())
	{
		// 2. 参赛者
		a.registerParticipantRoutes(authGroup, c)

		// 3. 评委
		a.registerJudgeRoutes(authGroup, c)

		// 4. 管理员
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		public.POST("/auth/participants", c.auth.ParticipantLogin)
		public.POST("/auth/staff/login", c.auth.StaffLogin)

		public.GET("/locations/cities", c.challenge.ListCities)
		public.GET("/challenges", c.challenge.ListChallenges)
		public.GET("/challenges/:id", c.challenge.GetChallenge)
		public.GET("/challenges/:id/leaderboard", c.challenge.GetLeaderboard)

		public.GET("/pricing", c.pricing.GetPrice)
		public.GET("/tax-id", c.pricing.CheckTaxID)
	}
}

func (a *App) registerParticipantRoutes(group *gin.RouterGroup, c *controllers) {
	participant := group.Group("")
	participant.Use(middleware.RoleMiddleware(model.Participant))
	{
		participant.GET("/challenges/:id/quote", c.submission.Quote)
		participant.POST("/submissions", c.submission.CreateSubmission)
		participant.GET("/submissions/mine", c.submission.ListMine)
		participant.POST("/submissions/:id/payment", c.submission.ConfirmPayment)
	}
}

func (a *App) registerJudgeRoutes(group *gin.RouterGroup, c *controllers) {
	judge := group.Group("/judge")
	judge.Use(middleware.RoleMiddleware(model.JudgeRole))
	{
		judge.GET("/submissions/pending", c.judge.ListPending)
		judge.POST("/submissions/:id/evaluations", c.judge.RecordEvaluation)
		judge.GET("/submissions/:id/evaluations", c.judge.ListEvaluations)
	}
}

func (a *App) registerAdminRoutes(group *gin.RouterGroup, c *controllers) {
	admin := group.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/staff", c.auth.CreateStaff)
		admin.POST("/locations", c.challenge.CreateLocation)
		admin.POST("/challenges", c.challenge.CreateChallenge)
		admin.PATCH("/challenges/:id/status", c.challenge.UpdateStatus)
	}
}
