package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-loyalty/controllers"
	"github.com/yeremiapane/table-loyalty/middlewares"
	"github.com/yeremiapane/table-loyalty/models"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, maxPointsPerTransaction int) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.SecurityHeaders())

	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db)
	pointsCtrl := controllers.NewPointsController(db, maxPointsPerTransaction)

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.Use(middlewares.NewStrictRateLimiter())
	{
		auth.POST("/register", userCtrl.Register)
		auth.POST("/login", userCtrl.Login)
	}
	api.GET("/auth/profile", middlewares.AuthMiddleware(), userCtrl.GetProfile)
	api.POST("/auth/logout", middlewares.AuthMiddleware(), userCtrl.Logout)

	tables := api.Group("/tables")
	{
		// Public: customers scan a QR and watch the leaderboard.
		tables.GET("/leaderboard", tableCtrl.GetLeaderboard)
		tables.GET("/qr/:qr_code", tableCtrl.GetTableByQR)

		staff := tables.Group("")
		staff.Use(middlewares.AuthMiddleware())
		{
			staff.GET("", middlewares.RequireRoles(models.RoleCashier), tableCtrl.GetAllTables)
			staff.GET("/:table_id", tableCtrl.GetTableByID)
			staff.GET("/:table_id/history", middlewares.RequireRoles(models.RoleCashier), tableCtrl.GetTableHistory)
			// Renaming is reserved for admins: there are no customer
			// accounts here, so the self-service rename path has no owner
			// identity to check against.
			staff.PUT("/:table_id/name", middlewares.RequireAdmin(), tableCtrl.RenameTable)
			staff.POST("", middlewares.RequireAdmin(), tableCtrl.CreateTable)
			staff.DELETE("/:table_id", middlewares.RequireAdmin(), tableCtrl.DeactivateTable)
		}
	}

	points := api.Group("/points")
	points.Use(middlewares.AuthMiddleware())
	{
		points.POST("/add", middlewares.RequireRoles(models.RoleCashier), pointsCtrl.AddPoints)
		points.POST("/table/:table_id", middlewares.RequireRoles(models.RoleCashier), pointsCtrl.AddPointsToTable)
		points.POST("/redeem", middlewares.RequireRoles(models.RoleCashier), pointsCtrl.RedeemPoints)
		points.POST("/reset/:table_id", middlewares.RequireAdmin(), pointsCtrl.ResetTablePoints)
		points.GET("/transactions", middlewares.RequireRoles(models.RoleCashier), pointsCtrl.GetTransactions)
		points.GET("/stats/daily", middlewares.RequireRoles(models.RoleCashier), pointsCtrl.GetDailyStats)
		points.GET("/stats/user", pointsCtrl.GetUserStats)
		points.GET("/stats/user/:user_id", pointsCtrl.GetUserStats)
	}

	return r
}
