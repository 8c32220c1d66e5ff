package controllers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"uni-application-api/config"
	"uni-application-api/models"
	"uni-application-api/services"

	"github.com/gin-gonic/gin"
)

func newAdminUploadContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="offer.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4")); err != nil {
		t.Fatalf("failed to write file part: %v", err)
	}
	writer.Close()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/admin/applications/5/offer-letter", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	c.Set("userID", 9)
	return c, w
}

func TestAdminUploadRemovesFileWhenTransitionFails(t *testing.T) {
	config.App = &config.Config{UploadPath: t.TempDir()}

	var savedPath string
	receive := func(id, adminID int, info services.FileInfo) (*services.TransitionResult, error) {
		savedPath = info.Path
		return nil, &services.InvalidTransitionError{From: services.StatusDraft, Action: services.ActionUploadOffer}
	}

	c, w := newAdminUploadContext(t)
	adminUploadStageFile(c, "offer-letters", receive, nil, "uploaded")

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if savedPath == "" {
		t.Fatal("transition callback never received the stored file")
	}
	if _, err := os.Stat(savedPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stored file was not cleaned up: %s", savedPath)
	}
}

func TestAdminUploadKeepsFileOnSuccess(t *testing.T) {
	config.App = &config.Config{UploadPath: t.TempDir()}

	var savedPath string
	receive := func(id, adminID int, info services.FileInfo) (*services.TransitionResult, error) {
		savedPath = info.Path
		return &services.TransitionResult{
			Application: &models.Application{ApplicationID: 5, Status: "offer_letter_received"},
		}, nil
	}

	c, w := newAdminUploadContext(t)
	adminUploadStageFile(c, "offer-letters", receive, nil, "uploaded")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if _, err := os.Stat(savedPath); err != nil {
		t.Errorf("stored file missing after successful transition: %v", err)
	}
}
