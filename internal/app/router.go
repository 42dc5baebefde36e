package app

import (
	"compliance_lms_backend/docs"
	"compliance_lms_backend/internal/config"
	"compliance_lms_backend/internal/middleware"
	"compliance_lms_backend/internal/model"
	"compliance_lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerEmployeeRoutes(authGroup, c)
		a.registerComplianceRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 证书对外验证，第三方无需登录
		public.GET("/certificates/:certificateId/verify", c.certificate.Verify)
	}
}

// registerEmployeeRoutes 员工（全体已登录用户）接口
func (a *App) registerEmployeeRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/profile", c.auth.UpdateProfile)

	// 课程与学习
	rg.GET("/courses", c.course.ListAccessible)
	rg.GET("/courses/:id", c.course.GetCourse)
	rg.POST("/courses/:id/start", c.progress.StartCourse)
	rg.POST("/courses/:id/video-progress", c.progress.UpdateVideoProgress)
	rg.POST("/courses/:id/quiz", c.progress.SubmitQuiz)
	rg.POST("/courses/:id/restart", c.progress.Restart)
	rg.GET("/courses/:id/progress", c.progress.GetProgress)
	rg.POST("/courses/:id/certificate", c.certificate.Issue)

	// 我的
	rg.GET("/my/progress", c.progress.ListMyProgress)
	rg.GET("/my/certificates", c.certificate.ListMine)
	rg.POST("/my/certificates/:certificateId/download", c.certificate.Download)
	rg.GET("/my/summary", c.report.GetMySummary)

	// 制度与公告
	rg.GET("/policies", c.policy.ListForEmployee)
	rg.GET("/policies/:id", c.policy.GetPolicy)
	rg.POST("/policies/:id/ack", c.policy.Acknowledge)
	rg.GET("/announcements", c.announcement.ListPublished)
}

// registerComplianceRoutes 合规专员接口（管理员自动拥有）
func (a *App) registerComplianceRoutes(rg *gin.RouterGroup, c *controllers) {
	manage := rg.Group("/manage")
	manage.Use(middleware.RoleMiddleware(model.Compliance))
	{
		// 课程管理
		manage.GET("/courses", c.course.ListCourses)
		manage.POST("/courses", c.course.CreateCourse)
		manage.PUT("/courses/:id", c.course.UpdateCourse)
		manage.DELETE("/courses/:id", c.course.DeleteCourse)
		manage.POST("/courses/:id/video", c.course.UploadVideo)
		manage.GET("/courses/:id/progress", c.progress.ListCourseProgress)
		manage.GET("/courses/:id/certificates", c.certificate.ListByCourse)

		// 证书管理
		manage.POST("/certificates/:certificateId/invalidate", c.certificate.Invalidate)

		// 制度管理
		manage.GET("/policies", c.policy.ListPolicies)
		manage.POST("/policies", c.policy.CreatePolicy)
		manage.PUT("/policies/:id", c.policy.UpdatePolicy)
		manage.DELETE("/policies/:id", c.policy.DeletePolicy)
		manage.GET("/policies/:id/acks", c.policy.GetAckReport)

		// 公告管理
		manage.GET("/announcements", c.announcement.List)
		manage.POST("/announcements", c.announcement.Create)
		manage.PUT("/announcements/:id", c.announcement.Update)
		manage.DELETE("/announcements/:id", c.announcement.Delete)

		// 报表
		manage.GET("/reports/overview", c.report.GetOverview)
		manage.GET("/reports/courses/:id", c.report.GetCourseStats)
		manage.GET("/reports/departments/:department", c.report.GetDepartmentCompliance)
		manage.GET("/reports/overdue", c.report.ListOverdue)
		manage.GET("/reports/users/:id", c.report.GetUserSummary)
	}
}

// registerAdminRoutes 管理员接口
func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.ListUsers)
		admin.GET("/users/:id", c.user.GetUser)
		admin.PUT("/users/:id", c.user.UpdateUser)
		admin.PUT("/users/:id/password", c.user.ResetPassword)
	}
}
