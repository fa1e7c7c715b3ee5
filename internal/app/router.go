package app

import (
	"survey_backend/docs"
	"survey_backend/internal/config"
	"survey_backend/internal/middleware"
	"survey_backend/internal/model"
	"survey_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/healthz", c.health.Live)
	router.GET("/readyz", c.health.Ready)

	read := a.newLimiter("read", cfg.RateLimit.Read).Middleware()
	write := a.newLimiter("write", cfg.RateLimit.Write).Middleware()
	bruteForce := a.newLimiter("bruteforce", cfg.RateLimit.BruteForce).Middleware()

	// 1. 登录
	a.registerAuthRoutes(router, c, cfg, bruteForce)

	// 2. 答题端(无需登录)
	a.registerPublicRoutes(router, c, read, write)

	// 3. 后台管理
	a.registerAdminRoutes(router, c, cfg, write)
}

func (a *App) registerAuthRoutes(router *gin.Engine, c *controllers, cfg *config.Config, bruteForce gin.HandlerFunc) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/login", bruteForce, c.auth.Login)
		auth.GET("/me", middleware.AuthMiddleware(cfg.JWT.Secret), c.auth.Me)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, read, write gin.HandlerFunc) {
	public := router.Group("/api")
	{
		public.GET("/surveys/:slug", read, c.survey.GetPublicSurvey)
		public.POST("/surveys/:slug/flow", read, c.flow.Evaluate)
		public.GET("/invitations/:token", read, c.invitation.GetInvitation)

		public.GET("/surveys/:slug/drafts/:deviceId", write, c.draft.GetDraft)
		public.PUT("/surveys/:slug/drafts/:deviceId", write, c.draft.SaveDraft)
		public.DELETE("/surveys/:slug/drafts/:deviceId", write, c.draft.ClearDraft)
		public.POST("/responses", write, c.response.Submit)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config, write gin.HandlerFunc) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		// 1. 只读接口：管理员和编辑都可访问
		viewer := admin.Group("/")
		viewer.Use(middleware.RoleMiddleware(model.Editor))
		{
			viewer.GET("/surveys", c.survey.ListSurveys)
			viewer.GET("/surveys/:id", c.survey.GetSurvey)
			viewer.GET("/surveys/:id/stats", c.survey.GetStats)
			viewer.GET("/surveys/:id/export", c.export.ExportResponses)
			viewer.GET("/surveys/:id/sections", c.section.ListSections)
			viewer.GET("/surveys/:id/questions", c.question.ListQuestions)
			viewer.GET("/surveys/:id/invitations", c.invitation.ListInvitations)
			viewer.GET("/templates", c.question.ListTemplates)
		}

		// 2. 写接口：仅限管理员
		adminOnly := admin.Group("/")
		adminOnly.Use(middleware.RoleMiddleware(model.Admin), write)
		{
			adminOnly.POST("/surveys", c.survey.CreateSurvey)
			adminOnly.PUT("/surveys/:id", c.survey.UpdateSurvey)
			adminOnly.DELETE("/surveys/:id", c.survey.DeleteSurvey)

			adminOnly.POST("/surveys/:id/sections", c.section.CreateSection)
			adminOnly.PUT("/sections/:id", c.section.RenameSection)
			adminOnly.DELETE("/sections/:id", c.section.DeleteSection)

			adminOnly.POST("/questions/bulk", c.question.BulkSave)
			adminOnly.POST("/surveys/:id/questions/move", c.question.MoveQuestion)
			adminOnly.POST("/surveys/:id/questions/templates/:name", c.question.AppendTemplate)
			adminOnly.PUT("/surveys/:id/questions/:questionId/order", c.question.SetQuestionOrder)
			adminOnly.DELETE("/surveys/:id/questions/:questionId", c.question.RemoveQuestion)

			adminOnly.POST("/surveys/:id/invitations", c.invitation.SendInvitations)
			adminOnly.POST("/invitations", c.invitation.CreateInvitation)
		}
	}
}
