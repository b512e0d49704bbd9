package http

import (
	"Galeguia/internal/delivery/http/controllers"
	"Galeguia/internal/service"
	"Galeguia/pkg/logger"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitRoutes(l logger.Log, u service.Collection) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	r.Use(cors.New(config))

	statusController := controllers.NewStatusHandler()
	authController := controllers.NewAuthHandler(l, u.AuthService)
	courseController := controllers.NewCourseHandler(l, u.CourseService)
	curriculumController := controllers.NewCurriculumHandler(l, u.CurriculumService)
	enrollmentController := controllers.NewEnrollmentHandler(l, u.EnrollmentService)
	adminController := controllers.NewAdminHandler(l, u.AdminService)

	v1 := r.Group("/v1", controllers.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)

		auth := v1.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.POST("/refresh", authController.Refresh)
			auth.POST("/reset-password", authController.ResetPassword)
			auth.POST("/update-password", authController.UpdatePassword)
			auth.POST("/logout", authController.AuthMiddleware, authController.Logout)
		}

		v1.GET("/me", authController.AuthMiddleware, authController.Me)
		v1.PATCH("/me", authController.AuthMiddleware, authController.UpdateProfile)

		courses := v1.Group("/courses")
		{
			courses.GET("", courseController.ListPublished)

			authed := courses.Group("", authController.AuthMiddleware)
			{
				authed.POST("", courseController.Create)
				authed.GET("/accessible", courseController.ListAccessible)
				authed.GET("/my-courses", courseController.ListMine)
				authed.GET("/search", courseController.Search)
				authed.GET("/:course_id/content", courseController.Content)
				authed.PATCH("/:course_id", courseController.Update)
				authed.PATCH("/:course_id/publish", courseController.Publish)
				authed.DELETE("/:course_id", courseController.Delete)
				authed.PUT("/:course_id/cover", courseController.UploadCover)

				authed.GET("/:course_id/modules", curriculumController.ListModules)
				authed.POST("/:course_id/modules", curriculumController.CreateModule)
				authed.PATCH("/:course_id/modules/reorder", curriculumController.ReorderModules)

				authed.GET("/:course_id/enrolled", enrollmentController.IsEnrolled)
				authed.GET("/:course_id/progress", enrollmentController.CourseProgress)
				authed.GET("/:course_id/next-lesson", enrollmentController.NextLesson)
			}
		}

		modules := v1.Group("/modules", authController.AuthMiddleware)
		{
			modules.PATCH("/:module_id", curriculumController.UpdateModule)
			modules.DELETE("/:module_id", curriculumController.DeleteModule)
			modules.GET("/:module_id/lessons", curriculumController.ListLessons)
			modules.POST("/:module_id/lessons", curriculumController.CreateLesson)
			modules.PATCH("/:module_id/lessons/reorder", curriculumController.ReorderLessons)
		}

		lessons := v1.Group("/lessons", authController.AuthMiddleware)
		{
			lessons.PATCH("/:lesson_id", curriculumController.UpdateLesson)
			lessons.DELETE("/:lesson_id", curriculumController.DeleteLesson)
			lessons.PUT("/:lesson_id/video", curriculumController.UploadVideo)
			lessons.POST("/:lesson_id/complete", enrollmentController.CompleteLesson)
			lessons.POST("/:lesson_id/progress", enrollmentController.UpdateProgress)
		}

		enrollments := v1.Group("/enrollments", authController.AuthMiddleware)
		{
			enrollments.POST("", enrollmentController.Enroll)
			enrollments.GET("", enrollmentController.MyCourses)
		}

		admin := v1.Group("/admin", authController.AuthMiddleware, adminController.RequireAdmin)
		{
			admin.GET("/courses", adminController.ListAllCourses)
			admin.GET("/courses/:course_id", adminController.CourseDetails)
			admin.PATCH("/courses/:course_id", adminController.UpdateCourse)
			admin.GET("/stats", adminController.Stats)
		}
	}
	return r
}
