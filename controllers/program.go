package controllers

import (
	"net/http"
	"strings"

	"uni-application-api/config"
	"uni-application-api/models"

	"github.com/gin-gonic/gin"
)

// GetPrograms lists open UK programs with optional filters
func GetPrograms(c *gin.Context) {
	query := config.DB.Where("is_active = ? AND deleted_at IS NULL", true)

	if level := c.Query("level"); level != "" {
		query = query.Where("program_level = ?", level)
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}
	if field := c.Query("field"); field != "" {
		query = query.Where("field_of_study = ?", field)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		query = query.Where("university_name LIKE ? OR program_name LIKE ?", like, like)
	}

	var programs []models.Program
	if err := query.Order("university_name, program_name").Find(&programs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch programs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"programs": programs,
		"total":    len(programs),
	})
}

// GetProgram returns one program with its pre-submission document checklist
func GetProgram(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	var program models.Program
	if err := config.DB.Preload("RequiredDocuments").
		Where("program_id = ? AND deleted_at IS NULL", id).
		First(&program).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"program": program})
}
