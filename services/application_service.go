package services

import (
	"errors"
	"fmt"
	"time"

	"uni-application-api/models"

	"gorm.io/gorm"
)

// ApplicationService applies workflow transitions against persisted
// applications. Every transition runs in one transaction and writes the new
// status with an optimistic status check, so a concurrent transition that
// read the same prior status fails with ErrConflictingUpdate instead of
// double-applying.
type ApplicationService struct {
	db *gorm.DB
}

func NewApplicationService(db *gorm.DB) *ApplicationService {
	return &ApplicationService{db: db}
}

// FileInfo carries the stored reference of an uploaded file.
type FileInfo struct {
	Filename         string
	OriginalFilename string
	Path             string
	Size             int64
}

// TransitionResult is returned by every transition operation.
type TransitionResult struct {
	Application *models.Application
	Effects     Effects
}

// Get loads an application by id.
func (s *ApplicationService) Get(applicationID int) (*models.Application, error) {
	return s.get(s.db, applicationID)
}

// GetOwned loads an application and verifies student ownership.
func (s *ApplicationService) GetOwned(applicationID, studentID int) (*models.Application, error) {
	app, err := s.get(s.db, applicationID)
	if err != nil {
		return nil, err
	}
	if app.StudentID != studentID {
		return nil, ErrForbidden
	}
	return app, nil
}

func (s *ApplicationService) get(tx *gorm.DB, applicationID int) (*models.Application, error) {
	var app models.Application
	if err := tx.Where("application_id = ?", applicationID).First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

// apply is the shared transition core: load, validate via the pure state
// machine, then commit status + updates + history atomically. The updates map
// holds the action's stage-metadata column writes; side runs inside the same
// transaction after the status write (stage document configuration etc.).
func (s *ApplicationService) apply(
	applicationID int,
	actor Actor,
	actorID int,
	action Action,
	g Guard,
	updates map[string]interface{},
	side func(tx *gorm.DB, app *models.Application, now time.Time) error,
) (*TransitionResult, error) {
	result := &TransitionResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		app, err := s.get(tx, applicationID)
		if err != nil {
			return err
		}
		current := Status(app.Status)
		now := time.Now()

		// Document guards are loaded here so the state machine stays pure.
		if docAction(action) {
			missing, err := s.missingDocuments(tx, app, action)
			if err != nil {
				return err
			}
			g.MissingDocuments = missing
		}

		next, effects, err := Transition(current, action, actor, g)
		if err != nil {
			return err
		}

		if updates == nil {
			updates = map[string]interface{}{}
		}
		updates["status"] = string(next)
		updates["updated_at"] = now
		if effects.DecisionReason != "" {
			updates["decision_date"] = now
			updates["decision_reason"] = effects.DecisionReason
		}
		if effects.VisaEnabled {
			updates["visa_enabled_at"] = now
		}

		if err := s.writeStatus(tx, app, current, next, actor, actorID, updates, now); err != nil {
			return err
		}

		if side != nil {
			if err := side(tx, app, now); err != nil {
				return err
			}
		}

		fresh, err := s.get(tx, applicationID)
		if err != nil {
			return err
		}
		result.Application = fresh
		result.Effects = effects
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// writeStatus performs the optimistic status update and appends the history
// row. Zero rows affected means another request moved the application first.
func (s *ApplicationService) writeStatus(
	tx *gorm.DB,
	app *models.Application,
	from, to Status,
	actor Actor,
	actorID int,
	updates map[string]interface{},
	now time.Time,
) error {
	res := tx.Model(&models.Application{}).
		Where("application_id = ? AND status = ?", app.ApplicationID, string(from)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflictingUpdate
	}

	old := string(from)
	history := models.ApplicationStatusHistory{
		ApplicationID: app.ApplicationID,
		OldStatus:     &old,
		NewStatus:     string(to),
		ChangedBy:     actorID,
		ChangedByRole: string(actor),
		CreatedAt:     now,
	}
	return tx.Create(&history).Error
}

// docAction reports whether the action's guard depends on uploaded documents.
func docAction(action Action) bool {
	switch action {
	case ActionSubmit, ActionRequestInterview, ActionSubmitCASDocs, ActionSubmitVisaDocs:
		return true
	}
	return false
}

// missingDocuments lists the document names still required before the given
// submit action may pass.
func (s *ApplicationService) missingDocuments(tx *gorm.DB, app *models.Application, action Action) ([]string, error) {
	if action == ActionSubmit {
		return s.missingProgramDocuments(tx, app)
	}
	for stage, w := range stageWindows {
		if w.action == action {
			return s.missingStageDocuments(tx, app.ApplicationID, stage)
		}
	}
	return nil, nil
}

func (s *ApplicationService) missingProgramDocuments(tx *gorm.DB, app *models.Application) ([]string, error) {
	var required []models.ProgramRequiredDocument
	if err := tx.Where("program_id = ? AND is_required = ?", app.ProgramID, true).
		Find(&required).Error; err != nil {
		return nil, err
	}

	var uploaded []models.ApplicationDocument
	if err := tx.Where("application_id = ?", app.ApplicationID).
		Find(&uploaded).Error; err != nil {
		return nil, err
	}

	uploadedTypes := make(map[string]bool, len(uploaded))
	for _, doc := range uploaded {
		uploadedTypes[doc.DocumentType] = true
	}

	var missing []string
	for _, doc := range required {
		if !uploadedTypes[doc.DocumentType] {
			missing = append(missing, doc.DocumentName)
		}
	}
	return missing, nil
}

func (s *ApplicationService) missingStageDocuments(tx *gorm.DB, applicationID int, stage string) ([]string, error) {
	var rows []models.StageDocument
	if err := tx.Where(
		"application_id = ? AND stage = ? AND is_required = ? AND is_active = ? AND is_uploaded = ?",
		applicationID, stage, true, true, false,
	).Find(&rows).Error; err != nil {
		return nil, err
	}

	var missing []string
	for _, row := range rows {
		missing = append(missing, row.DocumentName)
	}
	return missing, nil
}

// Submit moves a draft to submitted after verifying required fields and the
// program's pre-submission document checklist.
func (s *ApplicationService) Submit(applicationID, studentID int, personalStatement, additionalNotes *string) (*TransitionResult, error) {
	if _, err := s.GetOwned(applicationID, studentID); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{"submitted_at": now}
	if personalStatement != nil && *personalStatement != "" {
		updates["personal_statement"] = *personalStatement
	}
	if additionalNotes != nil && *additionalNotes != "" {
		updates["additional_notes"] = *additionalNotes
	}

	g := Guard{FieldsPresent: s.submitFieldsPresent(applicationID, personalStatement)}
	return s.apply(applicationID, ActorStudent, studentID, ActionSubmit, g, updates, nil)
}

func (s *ApplicationService) submitFieldsPresent(applicationID int, personalStatement *string) bool {
	if personalStatement != nil && *personalStatement != "" {
		return true
	}
	var app models.Application
	if err := s.db.Select("personal_statement").
		Where("application_id = ?", applicationID).First(&app).Error; err != nil {
		return false
	}
	return app.PersonalStatement != nil && *app.PersonalStatement != ""
}

// Review moves a submitted application under review.
func (s *ApplicationService) Review(applicationID, adminID int) (*TransitionResult, error) {
	return s.apply(applicationID, ActorAdmin, adminID, ActionReview, Guard{}, nil, nil)
}

// RequestOfferLetter records the admin's offer letter request.
func (s *ApplicationService) RequestOfferLetter(applicationID, adminID int) (*TransitionResult, error) {
	updates := map[string]interface{}{"offer_letter_requested_at": time.Now()}
	return s.apply(applicationID, ActorAdmin, adminID, ActionRequestOffer, Guard{}, updates, nil)
}

// ReceiveOfferLetter stores the uploaded offer letter and advances the
// application.
func (s *ApplicationService) ReceiveOfferLetter(applicationID, adminID int, file FileInfo) (*TransitionResult, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"offer_letter_received_at":       now,
		"offer_letter_filename":          file.Filename,
		"offer_letter_original_filename": file.OriginalFilename,
		"offer_letter_path":              file.Path,
		"offer_letter_size":              file.Size,
	}
	g := Guard{FileProvided: file.Filename != ""}
	return s.apply(applicationID, ActorAdmin, adminID, ActionUploadOffer, g, updates, nil)
}

// configureActions maps a stage to its configure transition.
var configureActions = map[string]Action{
	models.StageInterview: ActionConfigureInterviewDocs,
	models.StageCAS:       ActionConfigureCASDocs,
	models.StageVisa:      ActionConfigureVisaDocs,
}

var stageConfiguredColumns = map[string]string{
	models.StageInterview: "interview_documents_configured_at",
	models.StageCAS:       "cas_documents_configured_at",
	models.StageVisa:      "visa_documents_configured_at",
}

var stageNotesColumns = map[string]string{
	models.StageInterview: "interview_notes",
	models.StageCAS:       "cas_notes",
	models.StageVisa:      "visa_notes",
}

// ConfigureStageDocuments creates or updates the stage's document requirement
// rows for the chosen document types. First configuration advances the status
// (offer_letter_received -> interview_documents_required and so on);
// reconfiguration while the window is still open keeps the status and only
// reshapes the requirement set. Unselected previously-configured types are
// deactivated, never deleted.
func (s *ApplicationService) ConfigureStageDocuments(applicationID, adminID int, stage string, documentTypeIDs []int, notes *string) (*TransitionResult, error) {
	action, ok := configureActions[stage]
	if !ok {
		return nil, fmt.Errorf("unknown stage '%s'", stage)
	}

	now := time.Now()
	updates := map[string]interface{}{stageConfiguredColumns[stage]: now}
	if notes != nil && *notes != "" {
		updates[stageNotesColumns[stage]] = *notes
	}

	side := func(tx *gorm.DB, app *models.Application, now time.Time) error {
		return s.syncStageDocuments(tx, app.ApplicationID, stage, documentTypeIDs, now)
	}

	app, err := s.Get(applicationID)
	if err != nil {
		return nil, err
	}
	current := Status(app.Status)

	// Mid-stage reconfiguration: window open, status unchanged.
	if configurable, ok := ConfigurableStage(current); ok && configurable == stage {
		if required, _ := StageCollectionStatus(stage); current == required {
			return s.reconfigure(applicationID, adminID, stage, current, updates, side)
		}
	}

	return s.apply(applicationID, ActorAdmin, adminID, action, Guard{}, updates, side)
}

// reconfigure reshapes an already-active stage's requirement set without a
// status transition. The optimistic status check still applies.
func (s *ApplicationService) reconfigure(
	applicationID, adminID int,
	stage string,
	current Status,
	updates map[string]interface{},
	side func(tx *gorm.DB, app *models.Application, now time.Time) error,
) (*TransitionResult, error) {
	result := &TransitionResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		app, err := s.get(tx, applicationID)
		if err != nil {
			return err
		}
		if Status(app.Status) != current {
			return ErrConflictingUpdate
		}

		now := time.Now()
		updates["updated_at"] = now
		res := tx.Model(&models.Application{}).
			Where("application_id = ? AND status = ?", applicationID, string(current)).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflictingUpdate
		}

		if err := side(tx, app, now); err != nil {
			return err
		}

		fresh, err := s.get(tx, applicationID)
		if err != nil {
			return err
		}
		result.Application = fresh
		result.Effects = Effects{ConfigurableStage: stage}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// syncStageDocuments upserts requirement rows for the selected document types
// and soft-deactivates active rows whose type was unselected. Reactivated
// rows keep their upload state so history survives reconfiguration.
func (s *ApplicationService) syncStageDocuments(tx *gorm.DB, applicationID int, stage string, documentTypeIDs []int, now time.Time) error {
	var existing []models.StageDocument
	if err := tx.Where("application_id = ? AND stage = ?", applicationID, stage).
		Find(&existing).Error; err != nil {
		return err
	}

	byTypeID := make(map[int]*models.StageDocument, len(existing))
	for i := range existing {
		byTypeID[existing[i].DocumentTypeID] = &existing[i]
	}

	selected := make(map[int]bool, len(documentTypeIDs))
	for _, typeID := range documentTypeIDs {
		selected[typeID] = true

		if row, ok := byTypeID[typeID]; ok {
			if err := tx.Model(&models.StageDocument{}).
				Where("stage_document_id = ?", row.StageDocumentID).
				Updates(map[string]interface{}{
					"is_active":   true,
					"is_required": true,
					"updated_at":  now,
				}).Error; err != nil {
				return err
			}
			continue
		}

		var docType models.DocumentType
		if err := tx.Where("document_type_id = ? AND deleted_at IS NULL", typeID).
			First(&docType).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("document type %d: %w", typeID, ErrNotFound)
			}
			return err
		}

		row := models.StageDocument{
			ApplicationID:  applicationID,
			Stage:          stage,
			DocumentTypeID: typeID,
			DocumentName:   docType.Name,
			Description:    docType.Description,
			IsRequired:     true,
			IsUploaded:     false,
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}

	for _, row := range existing {
		if row.IsActive && !selected[row.DocumentTypeID] {
			if err := tx.Model(&models.StageDocument{}).
				Where("stage_document_id = ?", row.StageDocumentID).
				Updates(map[string]interface{}{
					"is_active":  false,
					"updated_at": now,
				}).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// RequestInterview submits the interview stage once every configured
// requirement is satisfied.
func (s *ApplicationService) RequestInterview(applicationID, studentID int) (*TransitionResult, error) {
	if _, err := s.GetOwned(applicationID, studentID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"interview_requested_at": time.Now()}
	return s.apply(applicationID, ActorStudent, studentID, ActionRequestInterview, Guard{}, updates, nil)
}

// ScheduleInterview records the interview slot provided by the admin.
func (s *ApplicationService) ScheduleInterview(applicationID, adminID int, date *time.Time, location, meetingLink string, notes *string) (*TransitionResult, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"interview_scheduled_at": now,
		"interview_date":         date,
		"interview_location":     location,
		"interview_meeting_link": meetingLink,
	}
	if notes != nil && *notes != "" {
		updates["interview_notes"] = *notes
	}
	g := Guard{SchedulePresent: date != nil && location != "" && meetingLink != ""}
	return s.apply(applicationID, ActorAdmin, adminID, ActionScheduleInterview, g, updates, nil)
}

// RecordInterviewResult marks the interview pass or fail; fail terminates the
// application.
func (s *ApplicationService) RecordInterviewResult(applicationID, adminID int, result string, notes *string) (*TransitionResult, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"interview_result":      result,
		"interview_result_date": now,
	}
	if notes != nil && *notes != "" {
		updates["interview_result_notes"] = *notes
	}
	return s.apply(applicationID, ActorAdmin, adminID, ActionRecordResult, Guard{Result: result}, updates, nil)
}

// SubmitStageDocuments submits the CAS or visa document set (the interview
// stage submits through RequestInterview).
func (s *ApplicationService) SubmitStageDocuments(applicationID, studentID int, stage string) (*TransitionResult, error) {
	if _, err := s.GetOwned(applicationID, studentID); err != nil {
		return nil, err
	}

	action, ok := StageSubmitAction(stage)
	if !ok || action == ActionRequestInterview {
		return nil, fmt.Errorf("unknown stage '%s'", stage)
	}

	now := time.Now()
	updates := map[string]interface{}{}
	switch stage {
	case models.StageCAS:
		updates["cas_documents_submitted_at"] = now
	case models.StageVisa:
		updates["visa_documents_submitted_at"] = now
	}
	return s.apply(applicationID, ActorStudent, studentID, action, Guard{}, updates, nil)
}

// ReceiveCAS stores the CAS file uploaded by the admin; receiving it enables
// the visa stage.
func (s *ApplicationService) ReceiveCAS(applicationID, adminID int, file FileInfo) (*TransitionResult, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"cas_received_at":       now,
		"cas_filename":          file.Filename,
		"cas_original_filename": file.OriginalFilename,
		"cas_path":              file.Path,
		"cas_size":              file.Size,
	}
	g := Guard{FileProvided: file.Filename != ""}
	return s.apply(applicationID, ActorAdmin, adminID, ActionUploadCAS, g, updates, nil)
}

// ApplyVisa moves the application into the visa processing stage.
func (s *ApplicationService) ApplyVisa(applicationID, studentID int) (*TransitionResult, error) {
	if _, err := s.GetOwned(applicationID, studentID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"visa_applied_at": time.Now()}
	return s.apply(applicationID, ActorStudent, studentID, ActionApplyVisa, Guard{}, updates, nil)
}

// ReceiveVisa stores the visa file uploaded by the admin and completes the
// application.
func (s *ApplicationService) ReceiveVisa(applicationID, adminID int, file FileInfo) (*TransitionResult, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"visa_received_at":       now,
		"visa_filename":          file.Filename,
		"visa_original_filename": file.OriginalFilename,
		"visa_path":              file.Path,
		"visa_size":              file.Size,
	}
	g := Guard{FileProvided: file.Filename != ""}
	return s.apply(applicationID, ActorAdmin, adminID, ActionUploadVisa, g, updates, nil)
}

var stageSubmittedColumns = map[string]string{
	models.StageInterview: "interview_requested_at",
	models.StageCAS:       "cas_documents_submitted_at",
	models.StageVisa:      "visa_documents_submitted_at",
}

// AttachStageDocument records an uploaded file against a stage requirement.
// Uploads are only accepted while the stage's window is open; re-uploading
// after the stage was submitted reverts the application to the stage's
// collection status so the student must submit again.
func (s *ApplicationService) AttachStageDocument(applicationID, studentID int, stage string, documentTypeID int, file FileInfo, contentType string) (*models.ApplicationDocument, error) {
	var saved models.ApplicationDocument

	err := s.db.Transaction(func(tx *gorm.DB) error {
		app, err := s.get(tx, applicationID)
		if err != nil {
			return err
		}
		if app.StudentID != studentID {
			return ErrForbidden
		}
		current := Status(app.Status)

		revert, ok := CanUploadStageDocument(current, stage)
		if !ok {
			return &InvalidTransitionError{From: current, Action: Action("upload_" + stage + "_document")}
		}

		var requirement models.StageDocument
		if err := tx.Where(
			"application_id = ? AND stage = ? AND document_type_id = ? AND is_active = ?",
			applicationID, stage, documentTypeID, true,
		).First(&requirement).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("document type is not required for this stage: %w", ErrNotFound)
			}
			return err
		}

		now := time.Now()
		doc, err := s.upsertDocument(tx, applicationID, requirement.DocumentName, file, contentType, now)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.StageDocument{}).
			Where("stage_document_id = ?", requirement.StageDocumentID).
			Updates(map[string]interface{}{
				"is_uploaded":          true,
				"uploaded_document_id": doc.DocumentID,
				"updated_at":           now,
			}).Error; err != nil {
			return err
		}

		if revert {
			collection, _ := StageCollectionStatus(stage)
			updates := map[string]interface{}{
				stageSubmittedColumns[stage]: nil,
				"updated_at":                 now,
			}
			updates["status"] = string(collection)
			if err := s.writeStatus(tx, app, current, collection, ActorStudent, studentID, updates, now); err != nil {
				return err
			}
		}

		saved = *doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// upsertDocument replaces the stored file reference for the document type if
// one exists, otherwise creates the row. Re-uploading is idempotent.
func (s *ApplicationService) upsertDocument(tx *gorm.DB, applicationID int, documentType string, file FileInfo, contentType string, now time.Time) (*models.ApplicationDocument, error) {
	var existing models.ApplicationDocument
	err := tx.Where("application_id = ? AND document_type = ?", applicationID, documentType).
		First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err == nil {
		if err := tx.Model(&models.ApplicationDocument{}).
			Where("document_id = ?", existing.DocumentID).
			Updates(map[string]interface{}{
				"filename":          file.Filename,
				"original_filename": file.OriginalFilename,
				"file_path":         file.Path,
				"file_size":         file.Size,
				"content_type":      contentType,
				"updated_at":        now,
			}).Error; err != nil {
			return nil, err
		}
		existing.Filename = file.Filename
		existing.OriginalFilename = file.OriginalFilename
		existing.FilePath = file.Path
		existing.FileSize = file.Size
		existing.ContentType = contentType
		return &existing, nil
	}

	doc := models.ApplicationDocument{
		ApplicationID:    applicationID,
		DocumentType:     documentType,
		Filename:         file.Filename,
		OriginalFilename: file.OriginalFilename,
		FilePath:         file.Path,
		FileSize:         file.Size,
		ContentType:      contentType,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := tx.Create(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// StageDocuments returns the stage's requirement rows (active first).
func (s *ApplicationService) StageDocuments(applicationID int, stage string) ([]models.StageDocument, error) {
	var rows []models.StageDocument
	if err := s.db.Where("application_id = ? AND stage = ?", applicationID, stage).
		Order("is_active DESC, stage_document_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
