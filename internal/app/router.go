package app

import (
	"care_training_backend/docs"
	"care_training_backend/internal/middleware"
	"care_training_backend/internal/model"
	"care_training_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, provider middleware.IdentityProvider) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c, provider)

	// 2. 学员接口
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(provider))
	a.registerTraineeRoutes(authGroup, c)

	// 3. 管理员接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(provider), middleware.RoleMiddleware(model.Admin))
	a.registerAdminRoutes(admin, c)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, provider middleware.IdentityProvider) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/certificates/verify/:serial", c.certificate.Verify)

		// 登录用户提交时记录提交人
		public.GET("/intake/questions", c.intake.Questions)
		public.POST("/intake/submissions", middleware.OptionalAuthMiddleware(provider), c.intake.Submit)
	}
}

func (a *App) registerTraineeRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.Profile)

	modules := rg.Group("/modules")
	{
		modules.GET("", c.module.List)
		modules.GET("/:id", c.module.Get)
		modules.POST("/:id/video-watched", c.module.MarkVideoWatched)
		modules.POST("/:id/transcript-viewed", c.module.MarkTranscriptViewed)
		modules.GET("/:id/questions", c.module.Questions)
		modules.POST("/:id/assessment", c.module.SubmitAssessment)
		modules.GET("/:id/attempts", c.module.Attempts)
	}

	cert := rg.Group("/certificate")
	{
		cert.GET("/eligibility", c.certificate.Eligibility)
		cert.POST("", c.certificate.Issue)
		cert.GET("", c.certificate.Get)
	}

	forum := rg.Group("/forum")
	{
		forum.GET("/threads", c.forum.ListThreads)
		forum.POST("/threads", c.forum.CreateThread)
		forum.GET("/threads/:id", c.forum.GetThread)
		forum.POST("/threads/:id/replies", c.forum.Reply)
		forum.GET("/threads/:id/ws", c.forum.Subscribe)
		forum.POST("/:type/:id/like", c.forum.ToggleLike)
	}

	live := rg.Group("/live-classes")
	{
		live.GET("", c.liveClass.ListUpcoming)
		live.POST("/:id/register", c.liveClass.Register)
		live.DELETE("/:id/register", c.liveClass.Unregister)
	}
}

func (a *App) registerAdminRoutes(admin *gin.RouterGroup, c *controllers) {
	admin.GET("/modules", c.module.AdminList)
	admin.POST("/modules", c.module.Create)
	admin.PUT("/modules/:id", c.module.Update)
	admin.POST("/modules/:id/video", c.module.UploadVideo)
	admin.POST("/modules/:id/questions", c.module.AddQuestion)

	admin.POST("/live-classes", c.liveClass.Schedule)

	admin.GET("/analytics", c.analytics.Summary)
	admin.GET("/export/progress.csv", c.analytics.ExportProgress)
	admin.GET("/intake/submissions", c.intake.ListSubmissions)
}
