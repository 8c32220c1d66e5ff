package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type stepKind int

const (
	kindQuery stepKind = iota
	kindExec
)

type queryStep struct {
	kind    stepKind
	pattern *regexp.Regexp
	args    []driver.Value // nil skips argument matching
	columns []string
	rows    [][]driver.Value
	err     error
	result  driver.Result
}

type scriptedDB struct {
	mu    sync.Mutex
	steps []*queryStep
}

func (db *scriptedDB) next(kind stepKind, query string, args []driver.NamedValue) (*queryStep, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.steps) == 0 {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	step := db.steps[0]
	if step.kind != kind {
		return nil, fmt.Errorf("unexpected kind for query %s: got %v want %v", query, kind, step.kind)
	}
	if !step.pattern.MatchString(query) {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	if step.args != nil {
		if len(step.args) != len(args) {
			return nil, fmt.Errorf("unexpected arg count for %s: got %d want %d", query, len(args), len(step.args))
		}
		for i := range args {
			if args[i].Value != step.args[i] {
				return nil, fmt.Errorf("unexpected arg %d for %s: got %v want %v", i, query, args[i].Value, step.args[i])
			}
		}
	}
	db.steps = db.steps[1:]
	return step, nil
}

func (db *scriptedDB) verifyComplete() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.steps) != 0 {
		return fmt.Errorf("unmet expectations: %d", len(db.steps))
	}
	return nil
}

type scriptedDriver struct {
	db *scriptedDB
}

func (d *scriptedDriver) Open(string) (driver.Conn, error) {
	return &scriptedConn{db: d.db}, nil
}

type scriptedConn struct {
	db *scriptedDB
}

func (c *scriptedConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *scriptedConn) Close() error { return nil }

func (c *scriptedConn) Begin() (driver.Tx, error) {
	return scriptedTx{}, nil
}

type scriptedTx struct{}

func (scriptedTx) Commit() error   { return nil }
func (scriptedTx) Rollback() error { return nil }

func (c *scriptedConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	step, err := c.db.next(kindQuery, query, args)
	if err != nil {
		return nil, err
	}
	if step.err != nil {
		return nil, step.err
	}
	return &scriptedRows{columns: step.columns, rows: step.rows}, nil
}

func (c *scriptedConn) Query(query string, args []driver.Value) (driver.Rows, error) {
	named := make([]driver.NamedValue, len(args))
	for i, v := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return c.QueryContext(context.Background(), query, named)
}

func (c *scriptedConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	step, err := c.db.next(kindExec, query, args)
	if err != nil {
		return nil, err
	}
	if step.err != nil {
		return nil, step.err
	}
	if step.result != nil {
		return step.result, nil
	}
	return scriptedResult{}, nil
}

func (c *scriptedConn) Exec(query string, args []driver.Value) (driver.Result, error) {
	named := make([]driver.NamedValue, len(args))
	for i, v := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return c.ExecContext(context.Background(), query, named)
}

type scriptedResult struct {
	lastInsertID int64
	rowsAffected int64
}

func (r scriptedResult) LastInsertId() (int64, error) { return r.lastInsertID, nil }

func (r scriptedResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

type scriptedRows struct {
	columns []string
	rows    [][]driver.Value
	idx     int
}

func (r *scriptedRows) Columns() []string { return r.columns }

func (r *scriptedRows) Close() error { return nil }

func (r *scriptedRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	row := r.rows[r.idx]
	for i := range dest {
		dest[i] = nil
	}
	for i := range row {
		dest[i] = row[i]
	}
	r.idx++
	return nil
}

func newScriptedGormDB(t *testing.T, steps []*queryStep) (*gorm.DB, *scriptedDB, func()) {
	t.Helper()
	state := &scriptedDB{steps: steps}
	driverName := fmt.Sprintf("scripted_%d", time.Now().UnixNano())
	sql.Register(driverName, &scriptedDriver{db: state})

	sqlDB, err := sql.Open(driverName, "")
	if err != nil {
		t.Fatalf("failed to open sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to create gorm db: %v", err)
	}

	cleanup := func() {
		_ = sqlDB.Close()
	}
	return gormDB, state, cleanup
}

var (
	selectApplicationPattern = regexp.MustCompile("SELECT \\* FROM `applications` WHERE application_id = \\?")
	updateApplicationPattern = regexp.MustCompile("UPDATE `applications` SET")
	insertHistoryPattern     = regexp.MustCompile("INSERT INTO `application_status_history`")
)

func applicationRow(id, studentID int, status string) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: selectApplicationPattern,
		columns: []string{"application_id", "student_id", "program_id", "status"},
		rows:    [][]driver.Value{{int64(id), int64(studentID), int64(1), status}},
	}
}

func TestReviewAdvancesAndRecordsHistory(t *testing.T) {
	steps := []*queryStep{
		applicationRow(7, 2, "submitted"),
		{
			kind:    kindExec,
			pattern: updateApplicationPattern,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: insertHistoryPattern,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		applicationRow(7, 2, "under_review"),
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewApplicationService(gormDB)
	result, err := service.Review(7, 99)
	if err != nil {
		t.Fatalf("Review returned error: %v", err)
	}
	if result.Application.Status != "under_review" {
		t.Errorf("status = %s, want under_review", result.Application.Status)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestReviewConcurrentUpdateConflicts(t *testing.T) {
	// Another request already moved the application; the optimistic
	// status-scoped update touches zero rows and the transaction rolls back
	// before the history insert.
	steps := []*queryStep{
		applicationRow(7, 2, "submitted"),
		{
			kind:    kindExec,
			pattern: updateApplicationPattern,
			result:  scriptedResult{rowsAffected: 0},
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewApplicationService(gormDB)
	_, err := service.Review(7, 99)
	if !errors.Is(err, ErrConflictingUpdate) {
		t.Fatalf("got %v, want ErrConflictingUpdate", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestReviewRejectsWrongStatus(t *testing.T) {
	steps := []*queryStep{
		applicationRow(7, 2, "draft"),
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewApplicationService(gormDB)
	_, err := service.Review(7, 99)
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidTransitionError", err)
	}
	if invalid.From != StatusDraft || invalid.Action != ActionReview {
		t.Errorf("error carries From=%s Action=%s", invalid.From, invalid.Action)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestGetOwnedRejectsOtherStudent(t *testing.T) {
	steps := []*queryStep{
		applicationRow(7, 2, "draft"),
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewApplicationService(gormDB)
	if _, err := service.GetOwned(7, 42); !errors.Is(err, ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestGetMissingApplication(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: selectApplicationPattern,
			columns: []string{"application_id", "student_id", "program_id", "status"},
			rows:    [][]driver.Value{},
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewApplicationService(gormDB)
	if _, err := service.Get(404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestConfigureInterviewDocsAcceptsEmptySelection(t *testing.T) {
	// Configuring a stage with no document types is a valid transition: the
	// stage opens with zero requirements and any previously configured rows
	// are deactivated.
	steps := []*queryStep{
		// configurable-window lookup outside the transaction
		applicationRow(7, 2, "offer_letter_received"),
		// reload inside the transaction
		applicationRow(7, 2, "offer_letter_received"),
		{
			kind:    kindExec,
			pattern: updateApplicationPattern,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: insertHistoryPattern,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		// existing requirement rows to reconcile against the empty selection
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `application_stage_documents`"),
			columns: []string{"stage_document_id", "application_id", "stage", "document_type_id", "document_name", "is_required", "is_uploaded", "is_active"},
			rows:    [][]driver.Value{},
		},
		applicationRow(7, 2, "interview_documents_required"),
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewApplicationService(gormDB)
	result, err := service.ConfigureStageDocuments(7, 99, "interview", nil, nil)
	if err != nil {
		t.Fatalf("ConfigureStageDocuments returned error: %v", err)
	}
	if result.Application.Status != "interview_documents_required" {
		t.Errorf("status = %s, want interview_documents_required", result.Application.Status)
	}
	if result.Effects.ConfigurableStage != "interview" {
		t.Errorf("ConfigurableStage = %q, want interview", result.Effects.ConfigurableStage)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestStageReuploadAfterSubmitRevertsStatus(t *testing.T) {
	// Re-uploading an interview document after request-interview must revert
	// the application to interview_documents_required, clear the requested
	// timestamp and append a history row, forcing a fresh submission.
	revertPattern := regexp.MustCompile("UPDATE `applications` SET `interview_requested_at`=\\?,`status`=\\?,`updated_at`=\\? WHERE application_id = \\? AND status = \\?")

	steps := []*queryStep{
		applicationRow(7, 2, "interview_requested"),
		// active requirement row for the uploaded type
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `application_stage_documents`"),
			columns: []string{"stage_document_id", "application_id", "stage", "document_type_id", "document_name", "is_required", "is_uploaded", "is_active"},
			rows: [][]driver.Value{
				{int64(11), int64(7), "interview", int64(5), "Passport Copy", true, true, true},
			},
		},
		// no prior upload for this document type
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `application_documents`"),
			columns: []string{"document_id", "application_id", "document_type"},
			rows:    [][]driver.Value{},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `application_documents`"),
			result:  scriptedResult{lastInsertID: 21, rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `application_stage_documents` SET"),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: revertPattern,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: insertHistoryPattern,
			result:  scriptedResult{lastInsertID: 2, rowsAffected: 1},
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewApplicationService(gormDB)
	doc, err := service.AttachStageDocument(7, 2, "interview", 5, FileInfo{
		Filename:         "stored.pdf",
		OriginalFilename: "passport.pdf",
		Path:             "/uploads/stored.pdf",
		Size:             1024,
	}, "application/pdf")
	if err != nil {
		t.Fatalf("AttachStageDocument returned error: %v", err)
	}
	if doc.DocumentID != 21 {
		t.Errorf("document id = %d, want 21", doc.DocumentID)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestRequestInterviewBlockedByMissingDocuments(t *testing.T) {
	steps := []*queryStep{
		// ownership check outside the transaction
		applicationRow(7, 2, "interview_documents_required"),
		// reload inside the transaction
		applicationRow(7, 2, "interview_documents_required"),
		// active+required+not-uploaded stage documents
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `application_stage_documents`"),
			columns: []string{"stage_document_id", "application_id", "stage", "document_name", "is_required", "is_uploaded", "is_active"},
			rows: [][]driver.Value{
				{int64(1), int64(7), "interview", "Passport Copy", true, false, true},
				{int64(2), int64(7), "interview", "Financial Statement", true, false, true},
			},
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewApplicationService(gormDB)
	_, err := service.RequestInterview(7, 2)
	var guard *GuardFailedError
	if !errors.As(err, &guard) {
		t.Fatalf("got %v, want GuardFailedError", err)
	}
	if len(guard.MissingDocuments) != 2 {
		t.Errorf("missing documents = %v, want 2 entries", guard.MissingDocuments)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}
