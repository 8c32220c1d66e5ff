package routes

import (
	"uni-application-api/controllers"
	"uni-application-api/middleware"
	"uni-application-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/auth/signup", controllers.Signup)
			public.POST("/auth/login", controllers.Login)
			public.POST("/auth/admin/login", controllers.AdminLogin)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "University Application API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)

			// Common endpoints (all authenticated users)
			protected.GET("/programs", controllers.GetPrograms)
			protected.GET("/programs/:id", controllers.GetProgram)
			protected.GET("/document-types", controllers.GetDocumentTypes)

			// Student applications
			applications := protected.Group("/applications", middleware.RequireRole(models.RoleStudent))
			{
				applications.POST("", controllers.CreateApplication)
				applications.GET("", controllers.GetApplications)
				applications.GET("/:id", controllers.GetApplication)
				applications.GET("/:id/progress", controllers.GetApplicationProgress)
				applications.GET("/:id/required-documents", controllers.GetRequiredDocuments)

				// Workflow actions
				applications.POST("/:id/submit", controllers.SubmitApplication)
				applications.POST("/:id/request-interview", controllers.RequestInterview)
				applications.POST("/:id/submit-cas-documents", controllers.SubmitCASDocuments)
				applications.POST("/:id/submit-visa-documents", controllers.SubmitVisaDocuments)
				applications.POST("/:id/apply-visa", controllers.ApplyVisa)

				// Pre-submission documents
				applications.POST("/:id/documents", controllers.UploadDocument)
				applications.GET("/:id/documents", controllers.GetDocuments)
				applications.GET("/:id/documents/:documentId/download", controllers.DownloadDocument)
				applications.DELETE("/:id/documents/:documentId", controllers.DeleteDocument)

				// Stage documents (interview/cas/visa)
				applications.POST("/:id/stages/:stage/documents", controllers.UploadStageDocument)
				applications.GET("/:id/stages/:stage/documents", controllers.GetStageDocuments)

				// Files uploaded by admin
				applications.GET("/:id/offer-letter/download", controllers.DownloadOfferLetter)
				applications.GET("/:id/cas/download", controllers.DownloadCAS)
				applications.GET("/:id/visa/download", controllers.DownloadVisa)
			}

			// Admin routes
			admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/applications", controllers.AdminGetApplications)
				admin.GET("/applications/stats", controllers.AdminGetApplicationStats)
				admin.GET("/applications/:id", controllers.AdminGetApplication)
				admin.PUT("/applications/:id/notes", controllers.AdminUpdateApplicationNotes)

				// Workflow actions
				admin.POST("/applications/:id/review", controllers.AdminReviewApplication)
				admin.POST("/applications/:id/request-offer-letter", controllers.AdminRequestOfferLetter)
				admin.POST("/applications/:id/offer-letter", controllers.AdminUploadOfferLetter)
				admin.POST("/applications/:id/stages/:stage/configure", controllers.AdminConfigureStageDocuments)
				admin.POST("/applications/:id/schedule-interview", controllers.AdminScheduleInterview)
				admin.POST("/applications/:id/interview-result", controllers.AdminRecordInterviewResult)
				admin.POST("/applications/:id/cas", controllers.AdminUploadCAS)
				admin.POST("/applications/:id/visa", controllers.AdminUploadVisa)

				// Stage requirements and stored files
				admin.GET("/applications/:id/stages/:stage/documents", controllers.AdminGetStageDocuments)
				admin.GET("/applications/:id/offer-letter/download", controllers.AdminDownloadOfferLetter)
				admin.GET("/applications/:id/cas/download", controllers.AdminDownloadCAS)
				admin.GET("/applications/:id/visa/download", controllers.AdminDownloadVisa)

				// Student uploads
				admin.GET("/applications/:id/documents/:documentId/download", controllers.AdminDownloadDocument)

				// Document type catalog
				admin.POST("/document-types", controllers.CreateDocumentType)
				admin.PUT("/document-types/:id", controllers.UpdateDocumentType)
				admin.DELETE("/document-types/:id", controllers.DeleteDocumentType)
			}
		}
	}
}
