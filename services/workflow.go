package services

import (
	"uni-application-api/models"
)

// Status is the workflow state of an application.
type Status string

const (
	StatusDraft                     Status = "draft"
	StatusSubmitted                 Status = "submitted"
	StatusUnderReview               Status = "under_review"
	StatusOfferLetterRequested      Status = "offer_letter_requested"
	StatusOfferLetterReceived       Status = "offer_letter_received"
	StatusInterviewDocsRequired     Status = "interview_documents_required"
	StatusInterviewRequested        Status = "interview_requested"
	StatusInterviewScheduled        Status = "interview_scheduled"
	StatusAccepted                  Status = "accepted"
	StatusRejected                  Status = "rejected"
	StatusCASDocsRequired           Status = "cas_documents_required"
	StatusCASApplicationInProgress  Status = "cas_application_in_progress"
	StatusCASReceived               Status = "cas_received"
	StatusVisaDocsRequired          Status = "visa_documents_required"
	StatusVisaApplicationReady      Status = "visa_application_ready"
	StatusVisaApplicationInProgress Status = "visa_application_in_progress"
	StatusCompleted                 Status = "completed"
)

// AllStatuses returns the full status enumeration in flow order.
func AllStatuses() []Status {
	return []Status{
		StatusDraft, StatusSubmitted, StatusUnderReview,
		StatusOfferLetterRequested, StatusOfferLetterReceived,
		StatusInterviewDocsRequired, StatusInterviewRequested,
		StatusInterviewScheduled, StatusAccepted, StatusRejected,
		StatusCASDocsRequired, StatusCASApplicationInProgress,
		StatusCASReceived, StatusVisaDocsRequired,
		StatusVisaApplicationReady, StatusVisaApplicationInProgress,
		StatusCompleted,
	}
}

// Valid reports whether s belongs to the enumeration.
func (s Status) Valid() bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are defined from s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// Actor is the role attempting a transition.
type Actor string

const (
	ActorStudent Actor = "student"
	ActorAdmin   Actor = "admin"
)

// Action identifies one row of the transition table.
type Action string

const (
	ActionSubmit                 Action = "submit"
	ActionReview                 Action = "review"
	ActionRequestOffer           Action = "request_offer"
	ActionUploadOffer            Action = "upload_offer"
	ActionConfigureInterviewDocs Action = "configure_interview_docs"
	ActionRequestInterview       Action = "request_interview"
	ActionScheduleInterview      Action = "schedule_interview"
	ActionRecordResult           Action = "record_result"
	ActionConfigureCASDocs       Action = "configure_cas_docs"
	ActionSubmitCASDocs          Action = "submit_cas_docs"
	ActionUploadCAS              Action = "upload_cas"
	ActionConfigureVisaDocs      Action = "configure_visa_docs"
	ActionSubmitVisaDocs         Action = "submit_visa_docs"
	ActionApplyVisa              Action = "apply_visa"
	ActionUploadVisa             Action = "upload_visa"
)

// Interview results accepted by ActionRecordResult.
const (
	ResultPass = "pass"
	ResultFail = "fail"
)

// Guard carries the already-evaluated precondition inputs for a transition.
// The application service loads them from storage; the state machine itself
// stays pure.
type Guard struct {
	// FieldsPresent is true when the draft has its required fields filled in.
	FieldsPresent bool
	// MissingDocuments lists active+required stage documents not yet uploaded.
	MissingDocuments []string
	// FileProvided is true when an admin upload action carries a file.
	FileProvided bool
	// SchedulePresent is true when date, location and meeting link are all set.
	SchedulePresent bool
	// Result is the interview outcome for ActionRecordResult (pass/fail).
	Result string
}

// Effects describes the side-effect flags of a committed transition.
type Effects struct {
	// ConfigurableStage names the stage whose document configuration became
	// active, if any (interview/cas/visa).
	ConfigurableStage string
	// VisaEnabled is set when receiving the CAS implicitly enabled the visa
	// stage.
	VisaEnabled bool
	// DownloadAvailable names the file that became downloadable for the
	// student (offer_letter/cas/visa).
	DownloadAvailable string
	// DecisionReason is recorded on the application when the transition is a
	// rejection.
	DecisionReason string
}

type rule struct {
	from  Status
	actor Actor
	guard func(Guard) error
	apply func(Guard) (Status, Effects)
}

func to(next Status, eff Effects) func(Guard) (Status, Effects) {
	return func(Guard) (Status, Effects) { return next, eff }
}

var transitions = map[Action]rule{
	ActionSubmit: {
		from:  StatusDraft,
		actor: ActorStudent,
		guard: func(g Guard) error {
			if !g.FieldsPresent {
				return guardFailed("required application fields are missing")
			}
			if len(g.MissingDocuments) > 0 {
				return missingDocuments(g.MissingDocuments)
			}
			return nil
		},
		apply: to(StatusSubmitted, Effects{}),
	},
	ActionReview: {
		from:  StatusSubmitted,
		actor: ActorAdmin,
		apply: to(StatusUnderReview, Effects{}),
	},
	ActionRequestOffer: {
		from:  StatusUnderReview,
		actor: ActorAdmin,
		apply: to(StatusOfferLetterRequested, Effects{}),
	},
	ActionUploadOffer: {
		from:  StatusOfferLetterRequested,
		actor: ActorAdmin,
		guard: requireFile("offer letter file is required"),
		apply: to(StatusOfferLetterReceived, Effects{DownloadAvailable: "offer_letter"}),
	},
	ActionConfigureInterviewDocs: {
		from:  StatusOfferLetterReceived,
		actor: ActorAdmin,
		apply: to(StatusInterviewDocsRequired, Effects{ConfigurableStage: models.StageInterview}),
	},
	ActionRequestInterview: {
		from:  StatusInterviewDocsRequired,
		actor: ActorStudent,
		guard: requireDocuments,
		apply: to(StatusInterviewRequested, Effects{}),
	},
	ActionScheduleInterview: {
		from:  StatusInterviewRequested,
		actor: ActorAdmin,
		guard: func(g Guard) error {
			if !g.SchedulePresent {
				return guardFailed("interview date, location and meeting link are required")
			}
			return nil
		},
		apply: to(StatusInterviewScheduled, Effects{}),
	},
	ActionRecordResult: {
		from:  StatusInterviewScheduled,
		actor: ActorAdmin,
		guard: func(g Guard) error {
			if g.Result != ResultPass && g.Result != ResultFail {
				return guardFailed("result must be either 'pass' or 'fail'")
			}
			return nil
		},
		apply: func(g Guard) (Status, Effects) {
			if g.Result == ResultPass {
				return StatusAccepted, Effects{ConfigurableStage: models.StageCAS}
			}
			return StatusRejected, Effects{DecisionReason: "Failed interview"}
		},
	},
	ActionConfigureCASDocs: {
		from:  StatusAccepted,
		actor: ActorAdmin,
		apply: to(StatusCASDocsRequired, Effects{ConfigurableStage: models.StageCAS}),
	},
	ActionSubmitCASDocs: {
		from:  StatusCASDocsRequired,
		actor: ActorStudent,
		guard: requireDocuments,
		apply: to(StatusCASApplicationInProgress, Effects{}),
	},
	ActionUploadCAS: {
		from:  StatusCASApplicationInProgress,
		actor: ActorAdmin,
		guard: requireFile("CAS file is required"),
		apply: to(StatusCASReceived, Effects{VisaEnabled: true, DownloadAvailable: "cas"}),
	},
	ActionConfigureVisaDocs: {
		from:  StatusCASReceived,
		actor: ActorAdmin,
		apply: to(StatusVisaDocsRequired, Effects{ConfigurableStage: models.StageVisa}),
	},
	ActionSubmitVisaDocs: {
		from:  StatusVisaDocsRequired,
		actor: ActorStudent,
		guard: requireDocuments,
		apply: to(StatusVisaApplicationReady, Effects{}),
	},
	ActionApplyVisa: {
		from:  StatusVisaApplicationReady,
		actor: ActorStudent,
		apply: to(StatusVisaApplicationInProgress, Effects{}),
	},
	ActionUploadVisa: {
		from:  StatusVisaApplicationInProgress,
		actor: ActorAdmin,
		guard: requireFile("visa file is required"),
		apply: to(StatusCompleted, Effects{DownloadAvailable: "visa"}),
	},
}

func requireFile(reason string) func(Guard) error {
	return func(g Guard) error {
		if !g.FileProvided {
			return guardFailed(reason)
		}
		return nil
	}
}

func requireDocuments(g Guard) error {
	if len(g.MissingDocuments) > 0 {
		return missingDocuments(g.MissingDocuments)
	}
	return nil
}

// Transition validates the requested action against the current status, actor
// and guard inputs, and computes the resulting status plus side-effect flags.
// It never mutates anything; callers commit status and effects atomically or
// not at all.
func Transition(current Status, action Action, actor Actor, g Guard) (Status, Effects, error) {
	r, ok := transitions[action]
	if !ok {
		return current, Effects{}, &InvalidTransitionError{From: current, Action: action}
	}
	if current != r.from {
		return current, Effects{}, &InvalidTransitionError{From: current, Action: action}
	}
	if actor != r.actor {
		return current, Effects{}, ErrForbidden
	}
	if r.guard != nil {
		if err := r.guard(g); err != nil {
			return current, Effects{}, err
		}
	}
	next, eff := r.apply(g)
	return next, eff, nil
}

// stageWindow describes the statuses during which a stage's documents may be
// uploaded and what submitting the stage looks like.
type stageWindow struct {
	required  Status // documents are being collected
	submitted Status // stage confirmed, admin processing
	action    Action // the stage's submit action
}

var stageWindows = map[string]stageWindow{
	models.StageInterview: {StatusInterviewDocsRequired, StatusInterviewRequested, ActionRequestInterview},
	models.StageCAS:       {StatusCASDocsRequired, StatusCASApplicationInProgress, ActionSubmitCASDocs},
	models.StageVisa:      {StatusVisaDocsRequired, StatusVisaApplicationReady, ActionSubmitVisaDocs},
}

// StageSubmitAction returns the submit action that closes the given stage's
// document-collection window.
func StageSubmitAction(stage string) (Action, bool) {
	w, ok := stageWindows[stage]
	return w.action, ok
}

// CanUploadStageDocument reports whether stage documents may be uploaded in
// the current status, and whether doing so must revert the application to the
// stage's collection status (the stage was already submitted; re-uploading
// forces re-submission).
func CanUploadStageDocument(current Status, stage string) (revert bool, ok bool) {
	w, known := stageWindows[stage]
	if !known {
		return false, false
	}
	switch current {
	case w.required:
		return false, true
	case w.submitted:
		return true, true
	default:
		return false, false
	}
}

// StageCollectionStatus returns the status the application reverts to when a
// stage document is re-uploaded after submission.
func StageCollectionStatus(stage string) (Status, bool) {
	w, ok := stageWindows[stage]
	return w.required, ok
}

// ConfigurableStage maps the current status to the stage whose documents an
// admin may (re)configure, if any. Reconfiguration is allowed while the stage
// window is still open.
func ConfigurableStage(current Status) (string, bool) {
	switch current {
	case StatusOfferLetterReceived, StatusInterviewDocsRequired:
		return models.StageInterview, true
	case StatusAccepted, StatusCASDocsRequired:
		return models.StageCAS, true
	case StatusCASReceived, StatusVisaDocsRequired:
		return models.StageVisa, true
	default:
		return "", false
	}
}
