package services

import (
	"errors"
	"testing"

	"uni-application-api/models"
)

func TestTransitionHappyPathToCompletion(t *testing.T) {
	steps := []struct {
		action Action
		actor  Actor
		guard  Guard
		want   Status
	}{
		{ActionSubmit, ActorStudent, Guard{FieldsPresent: true}, StatusSubmitted},
		{ActionReview, ActorAdmin, Guard{}, StatusUnderReview},
		{ActionRequestOffer, ActorAdmin, Guard{}, StatusOfferLetterRequested},
		{ActionUploadOffer, ActorAdmin, Guard{FileProvided: true}, StatusOfferLetterReceived},
		{ActionConfigureInterviewDocs, ActorAdmin, Guard{}, StatusInterviewDocsRequired},
		{ActionRequestInterview, ActorStudent, Guard{}, StatusInterviewRequested},
		{ActionScheduleInterview, ActorAdmin, Guard{SchedulePresent: true}, StatusInterviewScheduled},
		{ActionRecordResult, ActorAdmin, Guard{Result: ResultPass}, StatusAccepted},
		{ActionConfigureCASDocs, ActorAdmin, Guard{}, StatusCASDocsRequired},
		{ActionSubmitCASDocs, ActorStudent, Guard{}, StatusCASApplicationInProgress},
		{ActionUploadCAS, ActorAdmin, Guard{FileProvided: true}, StatusCASReceived},
		{ActionConfigureVisaDocs, ActorAdmin, Guard{}, StatusVisaDocsRequired},
		{ActionSubmitVisaDocs, ActorStudent, Guard{}, StatusVisaApplicationReady},
		{ActionApplyVisa, ActorStudent, Guard{}, StatusVisaApplicationInProgress},
		{ActionUploadVisa, ActorAdmin, Guard{FileProvided: true}, StatusCompleted},
	}

	current := StatusDraft
	for _, step := range steps {
		next, _, err := Transition(current, step.action, step.actor, step.guard)
		if err != nil {
			t.Fatalf("Transition(%s, %s) returned error: %v", current, step.action, err)
		}
		if next != step.want {
			t.Fatalf("Transition(%s, %s) = %s, want %s", current, step.action, next, step.want)
		}
		current = next
	}

	if !current.Terminal() {
		t.Errorf("expected %s to be terminal", current)
	}
}

func TestTransitionInterviewFailRejects(t *testing.T) {
	next, effects, err := Transition(StatusInterviewScheduled, ActionRecordResult, ActorAdmin, Guard{Result: ResultFail})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != StatusRejected {
		t.Errorf("got status %s, want %s", next, StatusRejected)
	}
	if effects.DecisionReason == "" {
		t.Error("expected a decision reason on rejection")
	}
	if !next.Terminal() {
		t.Error("rejected must be terminal")
	}
}

func TestTransitionEffects(t *testing.T) {
	tests := []struct {
		name   string
		from   Status
		action Action
		actor  Actor
		guard  Guard
		check  func(t *testing.T, eff Effects)
	}{
		{
			name: "upload offer exposes download", from: StatusOfferLetterRequested,
			action: ActionUploadOffer, actor: ActorAdmin, guard: Guard{FileProvided: true},
			check: func(t *testing.T, eff Effects) {
				if eff.DownloadAvailable != "offer_letter" {
					t.Errorf("DownloadAvailable = %q, want offer_letter", eff.DownloadAvailable)
				}
			},
		},
		{
			name: "upload cas enables visa", from: StatusCASApplicationInProgress,
			action: ActionUploadCAS, actor: ActorAdmin, guard: Guard{FileProvided: true},
			check: func(t *testing.T, eff Effects) {
				if !eff.VisaEnabled {
					t.Error("expected VisaEnabled")
				}
				if eff.DownloadAvailable != "cas" {
					t.Errorf("DownloadAvailable = %q, want cas", eff.DownloadAvailable)
				}
			},
		},
		{
			name: "interview pass opens cas configuration", from: StatusInterviewScheduled,
			action: ActionRecordResult, actor: ActorAdmin, guard: Guard{Result: ResultPass},
			check: func(t *testing.T, eff Effects) {
				if eff.ConfigurableStage != models.StageCAS {
					t.Errorf("ConfigurableStage = %q, want %q", eff.ConfigurableStage, models.StageCAS)
				}
			},
		},
		{
			name: "upload visa exposes download", from: StatusVisaApplicationInProgress,
			action: ActionUploadVisa, actor: ActorAdmin, guard: Guard{FileProvided: true},
			check: func(t *testing.T, eff Effects) {
				if eff.DownloadAvailable != "visa" {
					t.Errorf("DownloadAvailable = %q, want visa", eff.DownloadAvailable)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, eff, err := Transition(tt.from, tt.action, tt.actor, tt.guard)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, eff)
		})
	}
}

func TestTransitionRejectsWrongStatus(t *testing.T) {
	// Every action must fail from every status other than its defined source.
	for action, r := range transitions {
		for _, status := range AllStatuses() {
			if status == r.from {
				continue
			}
			_, _, err := Transition(status, action, r.actor, Guard{
				FieldsPresent: true, FileProvided: true, SchedulePresent: true, Result: ResultPass,
			})
			var invalid *InvalidTransitionError
			if !errors.As(err, &invalid) {
				t.Errorf("Transition(%s, %s): got %v, want InvalidTransitionError", status, action, err)
				continue
			}
			if invalid.From != status || invalid.Action != action {
				t.Errorf("Transition(%s, %s): error carries From=%s Action=%s", status, action, invalid.From, invalid.Action)
			}
		}
	}
}

func TestTransitionRejectsWrongActor(t *testing.T) {
	for action, r := range transitions {
		other := ActorStudent
		if r.actor == ActorStudent {
			other = ActorAdmin
		}
		_, _, err := Transition(r.from, action, other, Guard{
			FieldsPresent: true, FileProvided: true, SchedulePresent: true, Result: ResultPass,
		})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Transition(%s, %s) as %s: got %v, want ErrForbidden", r.from, action, other, err)
		}
	}
}

func TestTransitionGuardFailures(t *testing.T) {
	tests := []struct {
		name   string
		from   Status
		action Action
		actor  Actor
		guard  Guard
	}{
		{"submit without fields", StatusDraft, ActionSubmit, ActorStudent, Guard{}},
		{"upload offer without file", StatusOfferLetterRequested, ActionUploadOffer, ActorAdmin, Guard{}},
		{"schedule without slot", StatusInterviewRequested, ActionScheduleInterview, ActorAdmin, Guard{}},
		{"record unknown result", StatusInterviewScheduled, ActionRecordResult, ActorAdmin, Guard{Result: "maybe"}},
		{"upload cas without file", StatusCASApplicationInProgress, ActionUploadCAS, ActorAdmin, Guard{}},
		{"upload visa without file", StatusVisaApplicationInProgress, ActionUploadVisa, ActorAdmin, Guard{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _, err := Transition(tt.from, tt.action, tt.actor, tt.guard)
			var guard *GuardFailedError
			if !errors.As(err, &guard) {
				t.Fatalf("got %v, want GuardFailedError", err)
			}
			if next != tt.from {
				t.Errorf("status changed on guard failure: %s", next)
			}
		})
	}
}

func TestTransitionReportsMissingDocuments(t *testing.T) {
	missing := []string{"Passport Copy", "Bank Statement"}
	for _, tt := range []struct {
		from   Status
		action Action
	}{
		{StatusDraft, ActionSubmit},
		{StatusInterviewDocsRequired, ActionRequestInterview},
		{StatusCASDocsRequired, ActionSubmitCASDocs},
		{StatusVisaDocsRequired, ActionSubmitVisaDocs},
	} {
		_, _, err := Transition(tt.from, tt.action, ActorStudent, Guard{
			FieldsPresent:    true,
			MissingDocuments: missing,
		})
		var guard *GuardFailedError
		if !errors.As(err, &guard) {
			t.Fatalf("Transition(%s, %s): got %v, want GuardFailedError", tt.from, tt.action, err)
		}
		if len(guard.MissingDocuments) != len(missing) {
			t.Errorf("Transition(%s, %s): missing documents %v, want %v", tt.from, tt.action, guard.MissingDocuments, missing)
		}
	}
}

func TestTerminalStatusesAcceptNoAction(t *testing.T) {
	for _, status := range []Status{StatusRejected, StatusCompleted} {
		for action := range transitions {
			_, _, err := Transition(status, action, ActorAdmin, Guard{
				FieldsPresent: true, FileProvided: true, SchedulePresent: true, Result: ResultPass,
			})
			if err == nil {
				t.Errorf("Transition(%s, %s) succeeded on a terminal status", status, action)
			}
		}
	}
}

func TestCanUploadStageDocument(t *testing.T) {
	tests := []struct {
		status     Status
		stage      string
		wantOK     bool
		wantRevert bool
	}{
		{StatusInterviewDocsRequired, models.StageInterview, true, false},
		{StatusInterviewRequested, models.StageInterview, true, true},
		{StatusInterviewScheduled, models.StageInterview, false, false},
		{StatusCASDocsRequired, models.StageCAS, true, false},
		{StatusCASApplicationInProgress, models.StageCAS, true, true},
		{StatusCASReceived, models.StageCAS, false, false},
		{StatusVisaDocsRequired, models.StageVisa, true, false},
		{StatusVisaApplicationReady, models.StageVisa, true, true},
		{StatusVisaApplicationInProgress, models.StageVisa, false, false},
		// stage mismatch
		{StatusInterviewDocsRequired, models.StageCAS, false, false},
		{StatusDraft, models.StageInterview, false, false},
		{StatusDraft, "unknown", false, false},
	}

	for _, tt := range tests {
		revert, ok := CanUploadStageDocument(tt.status, tt.stage)
		if ok != tt.wantOK || revert != tt.wantRevert {
			t.Errorf("CanUploadStageDocument(%s, %s) = (revert=%v, ok=%v), want (revert=%v, ok=%v)",
				tt.status, tt.stage, revert, ok, tt.wantRevert, tt.wantOK)
		}
	}
}

func TestStageCollectionStatus(t *testing.T) {
	tests := []struct {
		stage string
		want  Status
	}{
		{models.StageInterview, StatusInterviewDocsRequired},
		{models.StageCAS, StatusCASDocsRequired},
		{models.StageVisa, StatusVisaDocsRequired},
	}
	for _, tt := range tests {
		got, ok := StageCollectionStatus(tt.stage)
		if !ok || got != tt.want {
			t.Errorf("StageCollectionStatus(%s) = (%s, %v), want (%s, true)", tt.stage, got, ok, tt.want)
		}
	}
	if _, ok := StageCollectionStatus("unknown"); ok {
		t.Error("StageCollectionStatus accepted an unknown stage")
	}
}

func TestConfigurableStage(t *testing.T) {
	tests := []struct {
		status Status
		want   string
		wantOK bool
	}{
		{StatusOfferLetterReceived, models.StageInterview, true},
		{StatusInterviewDocsRequired, models.StageInterview, true},
		{StatusAccepted, models.StageCAS, true},
		{StatusCASDocsRequired, models.StageCAS, true},
		{StatusCASReceived, models.StageVisa, true},
		{StatusVisaDocsRequired, models.StageVisa, true},
		{StatusDraft, "", false},
		{StatusInterviewRequested, "", false},
		{StatusCompleted, "", false},
	}

	for _, tt := range tests {
		stage, ok := ConfigurableStage(tt.status)
		if stage != tt.want || ok != tt.wantOK {
			t.Errorf("ConfigurableStage(%s) = (%q, %v), want (%q, %v)", tt.status, stage, ok, tt.want, tt.wantOK)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range AllStatuses() {
		if !s.Valid() {
			t.Errorf("%s reported invalid", s)
		}
	}
	if Status("archived").Valid() {
		t.Error("unknown status reported valid")
	}
}
