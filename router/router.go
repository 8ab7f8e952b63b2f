package router

import (
	"time"

	"officeexpense/api"
	"officeexpense/config"
	_ "officeexpense/docs"
	"officeexpense/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// 登录认证（无需会话）
	authHandler := api.NewAuthHandler()
	auth := r.Group("/auth")
	{
		auth.GET("/signin", authHandler.SignIn)
		auth.GET("/redirect", authHandler.Redirect)
		auth.POST("/login", middleware.LoginRateLimit(5, time.Minute), authHandler.Login)
		auth.POST("/signout", authHandler.SignOut)
		auth.GET("/me", middleware.SessionAuth(), authHandler.Me)
	}

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组，全部需要会话
	v1 := r.Group("/api/v1")
	v1.Use(middleware.SessionAuth())
	{
		// 费用记录
		expenseHandler := api.NewExpenseHandler()
		exportHandler := api.NewExportHandler()
		importHandler := api.NewImportHandler()
		expenses := v1.Group("/expenses")
		{
			expenses.POST("", expenseHandler.Create)
			expenses.GET("", expenseHandler.List)
			expenses.GET("/export-csv", exportHandler.ExportCSV)
			expenses.GET("/export-excel", exportHandler.ExportExcel)
			expenses.POST("/import-excel", importHandler.ImportExcel)
			expenses.GET("/:id", expenseHandler.Get)
			expenses.PUT("/:id", expenseHandler.Update)
			expenses.DELETE("/:id", expenseHandler.Delete)
		}

		// 费用类别（查询面向所有人，维护仅管理员）
		categoryHandler := api.NewCategoryHandler()
		v1.GET("/categories", categoryHandler.List)

		// 统计分析
		analyticsHandler := api.NewAnalyticsHandler()
		analytics := v1.Group("/analytics")
		{
			analytics.GET("/budget-summary/:month/:year", analyticsHandler.BudgetSummary)
			analytics.GET("/wallet-summary", analyticsHandler.WalletSummaryOverall)
			analytics.GET("/category-breakdown", analyticsHandler.CategoryBreakdown)
			analytics.GET("/expense-trends/:days", analyticsHandler.ExpenseTrends)
			analytics.GET("/expense-trends-monthly/:months", analyticsHandler.ExpenseTrendsMonthly)
		}

		// 经费池查询
		walletHandler := api.NewWalletHandler()
		v1.GET("/wallet", walletHandler.List)
		v1.GET("/wallet/current", walletHandler.Current)

		// 需要管理员权限的接口
		adminOnly := v1.Group("")
		adminOnly.Use(middleware.RequireAdmin())
		{
			adminOnly.POST("/categories", categoryHandler.Create)
			adminOnly.PUT("/categories/:id", categoryHandler.Update)
			adminOnly.DELETE("/categories/:id", categoryHandler.Delete)

			adminOnly.POST("/wallet", walletHandler.Create)
			adminOnly.PUT("/wallet/:id", walletHandler.Update)
			adminOnly.DELETE("/wallet/:id", walletHandler.Delete)

			userHandler := api.NewUserHandler()
			adminOnly.GET("/users", userHandler.List)
			adminOnly.POST("/users", userHandler.Create)
			adminOnly.GET("/users/:id", userHandler.Get)
			adminOnly.PUT("/users/:id", userHandler.Update)
			adminOnly.PUT("/users/:id/status", userHandler.SetStatus)
			adminOnly.DELETE("/users/:id", userHandler.Delete)

			reportHandler := api.NewReportHandler()
			adminOnly.POST("/reports/email", reportHandler.SendMonthlyReport)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
