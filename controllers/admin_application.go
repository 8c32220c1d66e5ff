package controllers

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"uni-application-api/config"
	"uni-application-api/models"
	"uni-application-api/services"

	"github.com/gin-gonic/gin"
)

// AdminGetApplications lists applications across all students with filters
// and pagination
func AdminGetApplications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := config.DB.Model(&models.Application{}).
		Preload("Student").Preload("Program")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if programID := c.Query("program_id"); programID != "" {
		query = query.Where("program_id = ?", programID)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		query = query.Joins("JOIN students ON students.student_id = applications.student_id").
			Where("students.full_name LIKE ? OR students.email LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count applications"})
		return
	}

	var applications []models.Application
	if err := query.Order("applications.updated_at DESC").
		Limit(limit).Offset(offset).
		Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"total":        total,
		"page":         page,
		"limit":        limit,
	})
}

// AdminGetApplication returns the full application record including documents
// and status history
func AdminGetApplication(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	var application models.Application
	if err := config.DB.Preload("Student").Preload("Program").
		Preload("Documents").Preload("StageDocuments").Preload("StageDocuments.DocumentType").
		Where("application_id = ?", id).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	var history []models.ApplicationStatusHistory
	if err := config.DB.Where("application_id = ?", id).
		Order("created_at ASC").Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch status history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application":    application,
		"status_history": history,
	})
}

// AdminGetApplicationStats returns per-status counts for the dashboard
func AdminGetApplicationStats(c *gin.Context) {
	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}

	var rows []statusCount
	if err := config.DB.Model(&models.Application{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statistics"})
		return
	}

	counts := make(map[string]int64, len(rows))
	var total int64
	for _, row := range rows {
		counts[row.Status] = row.Count
		total += row.Count
	}
	// Ensure every workflow status appears, even with zero applications
	for _, s := range services.AllStatuses() {
		if _, ok := counts[string(s)]; !ok {
			counts[string(s)] = 0
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"by_status": counts,
	})
}

// AdminReviewApplication moves a submitted application to under_review
func AdminReviewApplication(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	result, err := appService().Review(id, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Application is now under review",
		"status":  result.Application.Status,
	})
}

// AdminRequestOfferLetter records that an offer letter was requested from the
// university
func AdminRequestOfferLetter(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	result, err := appService().RequestOfferLetter(id, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Offer letter requested",
		"status":       result.Application.Status,
		"requested_at": result.Application.OfferLetterRequestedAt,
	})
}

// AdminUploadOfferLetter stores the offer letter file and notifies the student
func AdminUploadOfferLetter(c *gin.Context) {
	adminUploadStageFile(c, "offer-letters",
		func(id, adminID int, info services.FileInfo) (*services.TransitionResult, error) {
			return appService().ReceiveOfferLetter(id, adminID, info)
		},
		func(result *services.TransitionResult) {
			services.NotifyOfferLetterReceived(result.Application)
		},
		"Offer letter uploaded successfully")
}

// AdminUploadCAS stores the CAS statement file; receiving it enables the visa
// stage
func AdminUploadCAS(c *gin.Context) {
	adminUploadStageFile(c, "cas",
		func(id, adminID int, info services.FileInfo) (*services.TransitionResult, error) {
			return appService().ReceiveCAS(id, adminID, info)
		},
		nil,
		"CAS uploaded successfully")
}

// AdminUploadVisa stores the final visa document and completes the application
func AdminUploadVisa(c *gin.Context) {
	adminUploadStageFile(c, "visas",
		func(id, adminID int, info services.FileInfo) (*services.TransitionResult, error) {
			return appService().ReceiveVisa(id, adminID, info)
		},
		nil,
		"Visa document uploaded successfully")
}

func adminUploadStageFile(
	c *gin.Context,
	subdir string,
	receive func(id, adminID int, info services.FileInfo) (*services.TransitionResult, error),
	after func(*services.TransitionResult),
	message string,
) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	info, _, err := saveUpload(c, file, subdir+"/"+strconv.Itoa(id))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := receive(id, currentUserID(c), info)
	if err != nil {
		os.Remove(info.Path)
		respondServiceError(c, err)
		return
	}
	if after != nil {
		after(result)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"status":  result.Application.Status,
	})
}

// AdminConfigureStageDocuments sets (or reshapes) the required document list
// for the interview, cas or visa stage
func AdminConfigureStageDocuments(c *gin.Context) {
	// An empty selection is valid: the stage opens with no requirements and
	// previously configured rows are deactivated.
	type ConfigureRequest struct {
		DocumentTypeIDs []int   `json:"document_type_ids"`
		Notes           *string `json:"notes"`
	}

	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	stage := c.Param("stage")
	if !models.IsStageValid(stage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stage"})
		return
	}

	var req ConfigureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// All referenced document types must exist
	if len(req.DocumentTypeIDs) > 0 {
		var count int64
		if err := config.DB.Model(&models.DocumentType{}).
			Where("document_type_id IN ?", req.DocumentTypeIDs).
			Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate document types"})
			return
		}
		if count != int64(len(req.DocumentTypeIDs)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "One or more document types do not exist"})
			return
		}
	}

	result, err := appService().ConfigureStageDocuments(id, currentUserID(c), stage, req.DocumentTypeIDs, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stage documents configured successfully",
		"stage":   stage,
		"status":  result.Application.Status,
	})
}

// AdminScheduleInterview records the interview schedule
func AdminScheduleInterview(c *gin.Context) {
	type ScheduleRequest struct {
		InterviewDate time.Time `json:"interview_date" binding:"required"`
		Location      string    `json:"location" binding:"required"`
		MeetingLink   string    `json:"meeting_link" binding:"required"`
		Notes         *string   `json:"notes"`
	}

	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := appService().ScheduleInterview(id, currentUserID(c), &req.InterviewDate, req.Location, req.MeetingLink, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Interview scheduled successfully",
		"status":         result.Application.Status,
		"interview_date": result.Application.InterviewDate,
	})
}

// AdminRecordInterviewResult records pass/fail; fail rejects the application
func AdminRecordInterviewResult(c *gin.Context) {
	type ResultRequest struct {
		Result string  `json:"result" binding:"required,oneof=pass fail"`
		Notes  *string `json:"notes"`
	}

	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	var req ResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := appService().RecordInterviewResult(id, currentUserID(c), req.Result, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	services.NotifyInterviewResult(result.Application, req.Result)

	c.JSON(http.StatusOK, gin.H{
		"message": "Interview result recorded",
		"result":  req.Result,
		"status":  result.Application.Status,
	})
}

// AdminUpdateApplicationNotes updates the admin-only notes on an application
func AdminUpdateApplicationNotes(c *gin.Context) {
	type NotesRequest struct {
		AdminNotes string `json:"admin_notes" binding:"required"`
	}

	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := config.DB.Model(&models.Application{}).
		Where("application_id = ?", id).
		Updates(map[string]interface{}{
			"admin_notes": req.AdminNotes,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notes"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notes updated successfully"})
}

// AdminGetStageDocuments lists a stage's requirement rows for any application
func AdminGetStageDocuments(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	stage := c.Param("stage")
	if !models.IsStageValid(stage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stage"})
		return
	}

	if _, err := appService().Get(id); err != nil {
		respondServiceError(c, err)
		return
	}

	documents, err := appService().StageDocuments(id, stage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stage":     stage,
		"documents": documents,
	})
}

// AdminDownloadOfferLetter streams the stored offer letter
func AdminDownloadOfferLetter(c *gin.Context) {
	adminDownloadStoredFile(c, func(app *models.Application) models.StoredFile { return app.OfferLetterFile }, "Offer letter")
}

// AdminDownloadCAS streams the stored CAS statement
func AdminDownloadCAS(c *gin.Context) {
	adminDownloadStoredFile(c, func(app *models.Application) models.StoredFile { return app.CASFile }, "CAS")
}

// AdminDownloadVisa streams the stored visa document
func AdminDownloadVisa(c *gin.Context) {
	adminDownloadStoredFile(c, func(app *models.Application) models.StoredFile { return app.VisaFile }, "Visa document")
}

func adminDownloadStoredFile(c *gin.Context, pick func(*models.Application) models.StoredFile, label string) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	app, err := appService().Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	file := pick(app)
	if !file.IsSet() {
		c.JSON(http.StatusNotFound, gin.H{"error": label + " has not been uploaded"})
		return
	}

	name := *file.Filename
	if file.OriginalFilename != nil && *file.OriginalFilename != "" {
		name = *file.OriginalFilename
	}
	c.FileAttachment(*file.Path, name)
}

// AdminDownloadDocument streams any uploaded document of an application
func AdminDownloadDocument(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	documentID, ok := paramInt(c, "documentId")
	if !ok {
		return
	}

	var doc models.ApplicationDocument
	if err := config.DB.Where("document_id = ? AND application_id = ?", documentID, id).
		First(&doc).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	c.FileAttachment(doc.FilePath, doc.OriginalFilename)
}
