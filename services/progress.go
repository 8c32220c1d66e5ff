package services

import (
	"uni-application-api/models"
)

// StageProgress reports one stage's requirement set and satisfaction state.
type StageProgress struct {
	Stage      string                 `json:"stage"`
	Configured bool                   `json:"configured"`
	Submitted  bool                   `json:"submitted"`
	Complete   bool                   `json:"complete"`
	Documents  []models.StageDocument `json:"documents"`
	Missing    []string               `json:"missing_documents"`
}

// Progress is the workflow progress view rendered to students and admins.
type Progress struct {
	ApplicationID int             `json:"application_id"`
	Status        Status          `json:"status"`
	Terminal      bool            `json:"terminal"`
	VisaEnabled   bool            `json:"visa_enabled"`
	Downloads     []string        `json:"available_downloads"`
	Stages        []StageProgress `json:"stages"`
}

// Progress builds the current status + active document requirements +
// satisfaction view for one application.
func (s *ApplicationService) Progress(applicationID int) (*Progress, error) {
	app, err := s.Get(applicationID)
	if err != nil {
		return nil, err
	}

	var rows []models.StageDocument
	if err := s.db.Where("application_id = ?", applicationID).
		Order("stage ASC, stage_document_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byStage := make(map[string][]models.StageDocument)
	for _, row := range rows {
		byStage[row.Stage] = append(byStage[row.Stage], row)
	}

	configuredAt := map[string]bool{
		models.StageInterview: app.InterviewDocumentsConfiguredAt != nil,
		models.StageCAS:       app.CASDocumentsConfiguredAt != nil,
		models.StageVisa:      app.VisaDocumentsConfiguredAt != nil,
	}
	submittedAt := map[string]bool{
		models.StageInterview: app.InterviewRequestedAt != nil,
		models.StageCAS:       app.CASDocumentsSubmittedAt != nil,
		models.StageVisa:      app.VisaDocumentsSubmittedAt != nil,
	}

	progress := &Progress{
		ApplicationID: app.ApplicationID,
		Status:        Status(app.Status),
		Terminal:      Status(app.Status).Terminal(),
		VisaEnabled:   app.VisaEnabledAt != nil,
	}

	if app.OfferLetterFile.IsSet() {
		progress.Downloads = append(progress.Downloads, "offer_letter")
	}
	if app.CASFile.IsSet() {
		progress.Downloads = append(progress.Downloads, "cas")
	}
	if app.VisaFile.IsSet() {
		progress.Downloads = append(progress.Downloads, "visa")
	}

	for _, stage := range models.ValidStages() {
		sp := StageProgress{
			Stage:      stage,
			Configured: configuredAt[stage],
			Submitted:  submittedAt[stage],
			Documents:  byStage[stage],
		}
		sp.Complete = sp.Configured
		for _, row := range sp.Documents {
			if !row.IsActive || !row.IsRequired {
				continue
			}
			if !row.IsUploaded {
				sp.Missing = append(sp.Missing, row.DocumentName)
				sp.Complete = false
			}
		}
		progress.Stages = append(progress.Stages, sp)
	}

	return progress, nil
}
