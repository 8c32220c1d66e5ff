package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"uni-application-api/config"
	"uni-application-api/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondServiceError maps workflow/service errors to HTTP status codes with
// enough detail for the caller to act on.
func respondServiceError(c *gin.Context, err error) {
	var invalid *services.InvalidTransitionError
	var guard *services.GuardFailedError

	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this application"})
	case errors.Is(err, services.ErrConflictingUpdate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &invalid):
		c.JSON(http.StatusConflict, gin.H{
			"error":  invalid.Error(),
			"status": string(invalid.From),
		})
	case errors.As(err, &guard):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             guard.Error(),
			"missing_documents": guard.MissingDocuments,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// currentUserID returns the authenticated account id from the context.
func currentUserID(c *gin.Context) int {
	id, _ := c.Get("userID")
	return id.(int)
}

// paramInt parses a numeric path parameter.
func paramInt(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", name)})
		return 0, false
	}
	return v, true
}

// allowed upload content types (matches models.ApplicationDocument validation)
var allowedUploadTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/jpeg": true,
	"image/png":  true,
}

// saveUpload stores a multipart file under the upload path for the given
// subdirectory and returns the stored reference.
func saveUpload(c *gin.Context, file *multipart.FileHeader, subdir string) (services.FileInfo, string, error) {
	contentType := file.Header.Get("Content-Type")
	if !allowedUploadTypes[contentType] {
		return services.FileInfo{}, "", fmt.Errorf("invalid file type. Only PDF, Word, and image files are allowed")
	}

	dir := filepath.Join(config.App.UploadPath, subdir)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return services.FileInfo{}, "", err
	}

	storedName := uuid.New().String() + filepath.Ext(file.Filename)
	storedPath := filepath.Join(dir, storedName)

	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		return services.FileInfo{}, "", err
	}

	return services.FileInfo{
		Filename:         storedName,
		OriginalFilename: file.Filename,
		Path:             storedPath,
		Size:             file.Size,
	}, contentType, nil
}

func appService() *services.ApplicationService {
	return services.NewApplicationService(config.DB)
}
