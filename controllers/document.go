package controllers

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"uni-application-api/config"
	"uni-application-api/models"
	"uni-application-api/services"

	"github.com/gin-gonic/gin"
)

// UploadDocument stores a pre-submission document for a draft application.
// Re-uploading the same document type replaces the previous file.
func UploadDocument(c *gin.Context) {
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
	if app.Status != string(services.StatusDraft) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Documents can only be uploaded while the application is a draft"})
		return
	}

	documentType := c.PostForm("document_type")
	if documentType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_type is required"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	info, contentType, err := saveUpload(c, file, "applications/"+strconv.Itoa(id))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	var doc models.ApplicationDocument
	err = config.DB.Where("application_id = ? AND document_type = ?", id, documentType).
		First(&doc).Error
	if err == nil {
		if doc.FilePath != "" {
			os.Remove(doc.FilePath)
		}
		updated := map[string]interface{}{
			"filename":          info.Filename,
			"original_filename": info.OriginalFilename,
			"file_path":         info.Path,
			"file_size":         info.Size,
			"content_type":      contentType,
			"updated_at":        now,
		}
		if err := config.DB.Model(&doc).Updates(updated).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save document"})
			return
		}
	} else {
		doc = models.ApplicationDocument{
			ApplicationID:    id,
			DocumentType:     documentType,
			Filename:         info.Filename,
			OriginalFilename: info.OriginalFilename,
			FilePath:         info.Path,
			FileSize:         info.Size,
			ContentType:      contentType,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := config.DB.Create(&doc).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save document"})
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Document uploaded successfully",
		"document": doc,
	})
}

// GetDocuments lists documents uploaded for one of the student's applications
func GetDocuments(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	if _, err := appService().GetOwned(id, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	var documents []models.ApplicationDocument
	if err := config.DB.Where("application_id = ?", id).
		Order("created_at DESC").Find(&documents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

// DownloadDocument streams one of the student's uploaded files
func DownloadDocument(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	documentID, ok := paramInt(c, "documentId")
	if !ok {
		return
	}

	if _, err := appService().GetOwned(id, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	var doc models.ApplicationDocument
	if err := config.DB.Where("document_id = ? AND application_id = ?", documentID, id).
		First(&doc).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	if _, err := os.Stat(doc.FilePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found on server"})
		return
	}

	c.FileAttachment(doc.FilePath, doc.OriginalFilename)
}

// DeleteDocument removes a pre-submission document from a draft application
func DeleteDocument(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	documentID, ok := paramInt(c, "documentId")
	if !ok {
		return
	}

	app, err := appService().GetOwned(id, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if app.Status != string(services.StatusDraft) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Documents can only be deleted while the application is a draft"})
		return
	}

	var doc models.ApplicationDocument
	if err := config.DB.Where("document_id = ? AND application_id = ?", documentID, id).
		First(&doc).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	if err := config.DB.Delete(&doc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}
	if doc.FilePath != "" {
		os.Remove(doc.FilePath)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}

// UploadStageDocument attaches a file to one configured stage requirement
func UploadStageDocument(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	stage := c.Param("stage")
	if !models.IsStageValid(stage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stage"})
		return
	}

	documentTypeID, err := strconv.Atoi(c.PostForm("document_type_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_type_id is required"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	info, contentType, err := saveUpload(c, file, "applications/"+strconv.Itoa(id)+"/"+stage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := appService().AttachStageDocument(id, currentUserID(c), stage, documentTypeID, info, contentType)
	if err != nil {
		os.Remove(info.Path)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Document uploaded successfully",
		"document": doc,
	})
}

// GetStageDocuments lists the active document requirements for one stage
func GetStageDocuments(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	stage := c.Param("stage")
	if !models.IsStageValid(stage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stage"})
		return
	}

	if _, err := appService().GetOwned(id, currentUserID(c)); err != nil {
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

// DownloadOfferLetter streams the offer letter the admin uploaded
func DownloadOfferLetter(c *gin.Context) {
	downloadStoredFile(c, func(app *models.Application) models.StoredFile { return app.OfferLetterFile }, "Offer letter")
}

// DownloadCAS streams the CAS statement the admin uploaded
func DownloadCAS(c *gin.Context) {
	downloadStoredFile(c, func(app *models.Application) models.StoredFile { return app.CASFile }, "CAS")
}

// DownloadVisa streams the visa document the admin uploaded
func DownloadVisa(c *gin.Context) {
	downloadStoredFile(c, func(app *models.Application) models.StoredFile { return app.VisaFile }, "Visa document")
}

func downloadStoredFile(c *gin.Context, pick func(*models.Application) models.StoredFile, label string) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	app, err := appService().GetOwned(id, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	file := pick(app)
	if !file.IsSet() {
		c.JSON(http.StatusNotFound, gin.H{"error": label + " is not available yet"})
		return
	}
	if _, err := os.Stat(*file.Path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found on server"})
		return
	}

	name := *file.Filename
	if file.OriginalFilename != nil && *file.OriginalFilename != "" {
		name = *file.OriginalFilename
	}
	c.FileAttachment(*file.Path, name)
}
