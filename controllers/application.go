package controllers

import (
	"net/http"

	"uni-application-api/config"
	"uni-application-api/models"
	"uni-application-api/services"

	"github.com/gin-gonic/gin"
)

// CreateApplication creates a new draft application for a program
func CreateApplication(c *gin.Context) {
	type CreateApplicationRequest struct {
		ProgramID         int     `json:"program_id" binding:"required"`
		PersonalStatement *string `json:"personal_statement"`
		AdditionalNotes   *string `json:"additional_notes"`
	}

	var req CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	studentID := currentUserID(c)

	// Check if program exists and is open
	var program models.Program
	if err := config.DB.Where("program_id = ? AND is_active = ? AND deleted_at IS NULL", req.ProgramID, true).
		First(&program).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
		return
	}

	// One application per student per program
	var existing models.Application
	if err := config.DB.Where("student_id = ? AND program_id = ?", studentID, req.ProgramID).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You already have an application for this program"})
		return
	}

	application := models.Application{
		StudentID:         studentID,
		ProgramID:         req.ProgramID,
		Status:            string(services.StatusDraft),
		PersonalStatement: req.PersonalStatement,
		AdditionalNotes:   req.AdditionalNotes,
	}

	if err := config.DB.Create(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create application"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"application": application})
}

// GetApplications returns the current student's applications
func GetApplications(c *gin.Context) {
	studentID := currentUserID(c)

	var applications []models.Application
	query := config.DB.Preload("Program").Preload("Documents").
		Where("student_id = ?", studentID).
		Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"total":        len(applications),
	})
}

// GetApplication returns one of the student's applications
func GetApplication(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	studentID := currentUserID(c)

	var application models.Application
	if err := config.DB.Preload("Program").Preload("Documents").Preload("StageDocuments").
		Where("application_id = ? AND student_id = ?", id, studentID).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"application": application})
}

// GetApplicationProgress returns the workflow progress view: current status,
// active document requirements and their satisfaction state.
func GetApplicationProgress(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	studentID := currentUserID(c)

	svc := appService()
	if _, err := svc.GetOwned(id, studentID); err != nil {
		respondServiceError(c, err)
		return
	}

	progress, err := svc.Progress(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// SubmitApplication moves a draft to submitted
func SubmitApplication(c *gin.Context) {
	type SubmitRequest struct {
		PersonalStatement *string `json:"personal_statement"`
		AdditionalNotes   *string `json:"additional_notes"`
	}

	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := appService().Submit(id, currentUserID(c), req.PersonalStatement, req.AdditionalNotes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application submitted successfully",
		"application": result.Application,
	})
}

// RequestInterview submits the interview stage once all configured documents
// are uploaded
func RequestInterview(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	result, err := appService().RequestInterview(id, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Interview request submitted successfully",
		"status":       result.Application.Status,
		"requested_at": result.Application.InterviewRequestedAt,
	})
}

// SubmitCASDocuments submits the CAS document set
func SubmitCASDocuments(c *gin.Context) {
	submitStageDocuments(c, models.StageCAS, "CAS documents submitted successfully. Admin will now process your CAS application.")
}

// SubmitVisaDocuments submits the visa document set
func SubmitVisaDocuments(c *gin.Context) {
	submitStageDocuments(c, models.StageVisa, "Visa documents submitted successfully. You can now apply for visa.")
}

func submitStageDocuments(c *gin.Context, stage, message string) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	result, err := appService().SubmitStageDocuments(id, currentUserID(c), stage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"status":  result.Application.Status,
	})
}

// ApplyVisa moves the application into visa processing
func ApplyVisa(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	result, err := appService().ApplyVisa(id, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Visa application submitted successfully. Admin will process your visa application.",
		"status":     result.Application.Status,
		"applied_at": result.Application.VisaAppliedAt,
	})
}

// GetRequiredDocuments lists the program's pre-submission document checklist
func GetRequiredDocuments(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	studentID := currentUserID(c)

	app, err := appService().GetOwned(id, studentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var required []models.ProgramRequiredDocument
	if err := config.DB.Where("program_id = ?", app.ProgramID).
		Find(&required).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch required documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"required_documents": required})
}
