package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Junior-NGOY/masomo-sub003/internal/middleware"
	"github.com/Junior-NGOY/masomo-sub003/internal/models"
	"github.com/Junior-NGOY/masomo-sub003/internal/service"
)

// Routes bundles the handlers mounted under the API prefix.
type Routes struct {
	Auth       *service.AuthService
	Attendance *AttendanceHandler
	ExportJobs *ExportJobHandler
}

// Register mounts the attendance API on group. Downloads authenticate with
// their signed token instead of a bearer token.
func Register(group *gin.RouterGroup, routes Routes) {
	if routes.ExportJobs != nil {
		group.GET("/attendance/exports/download/:token", routes.ExportJobs.Download)
	}

	secured := group.Group("/attendance")
	secured.Use(middleware.JWT(routes.Auth))
	secured.Use(middleware.WithResponseMeta())

	staff := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin, models.RoleSuperAdmin)
	admin := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	sessions := secured.Group("/sessions")
	sessions.GET("", staff, routes.Attendance.GetSession)
	sessions.POST("", staff, routes.Attendance.OpenSession)
	sessions.GET("/:id", staff, routes.Attendance.GetSessionByID)
	sessions.POST("/:id/records", staff, routes.Attendance.RecordStatus)
	sessions.POST("/:id/records/bulk", staff, routes.Attendance.RecordBulk)
	sessions.POST("/:id/complete", staff, routes.Attendance.CompleteSession)

	secured.GET("/records", staff, routes.Attendance.GetRecords)
	secured.GET("/stats/monthly", staff, routes.Attendance.MonthlyStats)
	secured.GET("/export", admin, routes.Attendance.Export)

	if routes.ExportJobs != nil {
		secured.POST("/exports", staff, routes.ExportJobs.Create)
		secured.GET("/exports/:id", staff, routes.ExportJobs.Status)
	}
}
