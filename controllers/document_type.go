package controllers

import (
	"net/http"
	"time"

	"uni-application-api/config"
	"uni-application-api/models"

	"github.com/gin-gonic/gin"
)

// GetDocumentTypes lists the document type catalog. Available to any
// authenticated user so students can see what a requirement refers to.
func GetDocumentTypes(c *gin.Context) {
	query := config.DB.Where("deleted_at IS NULL")

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if c.Query("common") == "true" {
		query = query.Where("is_common = ?", true)
	}

	var types []models.DocumentType
	if err := query.Order("category, name").Find(&types).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document types"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"document_types": types})
}

// CreateDocumentType adds a catalog entry (admin only)
func CreateDocumentType(c *gin.Context) {
	var req models.CreateDocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.DocumentType
	if err := config.DB.Where("name = ? AND deleted_at IS NULL", req.Name).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A document type with this name already exists"})
		return
	}

	docType := models.DocumentType{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		IsCommon:    req.IsCommon,
	}
	if docType.Category == "" {
		docType.Category = "general"
	}

	if err := config.DB.Create(&docType).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document type"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Document type created successfully",
		"document_type": docType,
	})
}

// UpdateDocumentType edits a catalog entry (admin only)
func UpdateDocumentType(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	var req models.UpdateDocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var docType models.DocumentType
	if err := config.DB.Where("document_type_id = ? AND deleted_at IS NULL", id).
		First(&docType).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document type not found"})
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.IsCommon != nil {
		updates["is_common"] = *req.IsCommon
	}

	if err := config.DB.Model(&docType).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update document type"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Document type updated successfully",
		"document_type": docType,
	})
}

// DeleteDocumentType soft-deletes a catalog entry (admin only). Stage
// requirement rows that copied its name are unaffected.
func DeleteDocumentType(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	result := config.DB.Model(&models.DocumentType{}).
		Where("document_type_id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", time.Now())
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document type"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document type not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document type deleted successfully"})
}
