package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"exeat-backend/internal/model"
	"exeat-backend/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrIDGeneration signals that id allocation kept colliding after
	// retries. Practically unreachable; treated as fatal by callers.
	ErrIDGeneration = errors.New("failed to allocate a unique exeat id")
	// ErrAlreadyReviewed is returned in strict mode when Review is
	// called on a request that is no longer pending.
	ErrAlreadyReviewed = errors.New("exeat request already reviewed; reopen it first")
)

// ValidationError reports a caller-supplied field that fails a
// precondition, e.g. a return date not after the departure date.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

const maxIDAttempts = 5

// --- DTOs ---

// SubmitExeatRequest carries a new request. The subject fields are
// copied as given (filled from the session by the handler), never
// re-validated against a user directory.
type SubmitExeatRequest struct {
	StudentID     string    `json:"student_id"`
	StudentName   string    `json:"student_name"`
	Department    string    `json:"department"`
	Reason        string    `json:"reason" binding:"required"`
	ReasonDetails string    `json:"reason_details" binding:"required"`
	Destination   string    `json:"destination" binding:"required"`
	DepartureDate time.Time `json:"departure_date" binding:"required"`
	ReturnDate    time.Time `json:"return_date" binding:"required"`
}

type ReviewExeatRequest struct {
	Comment string `json:"comment"`
}

type ReopenExeatRequest struct {
	Note string `json:"note"`
}

// Notifier receives lifecycle events for fan-out to connected clients.
// Implemented by the websocket hub; a nil Notifier disables fan-out.
type Notifier interface {
	Notify(event string, payload interface{})
}

// Lifecycle event names broadcast over the hub
const (
	EventSubmitted = "exeat.submitted"
	EventApproved  = "exeat.approved"
	EventRejected  = "exeat.rejected"
	EventReopened  = "exeat.reopened"
	EventDeleted   = "exeat.deleted"
)

// --- Interface ---

// ExeatService enforces the request lifecycle: it is the single writer
// of status, review metadata and the QR token.
type ExeatService interface {
	Submit(ctx context.Context, req SubmitExeatRequest) (model.ExeatRequest, error)
	Get(ctx context.Context, id string) (model.ExeatRequest, error)
	List(ctx context.Context, filter ExeatFilter) ([]model.ExeatRequest, int64, error)
	ListForStudent(ctx context.Context, studentID string) ([]model.ExeatRequest, error)
	Approve(ctx context.Context, id, reviewer, comment string) (model.ExeatRequest, error)
	Reject(ctx context.Context, id, reviewer, comment string) (model.ExeatRequest, error)
	Reopen(ctx context.Context, id, actor, note string) (model.ExeatRequest, error)
	Delete(ctx context.Context, id string) error
}

type exeatService struct {
	store    store.ExeatStore
	logger   *zap.Logger
	notifier Notifier
	now      func() time.Time
	// strict forbids reviewing a request that is not pending; the
	// default mirrors the original app, where an admin may change a
	// decision directly without reopening.
	strict bool
}

// Option configures an ExeatService.
type Option func(*exeatService)

// WithClock overrides the time source. Used by tests and by the
// checkpoint simulation mode.
func WithClock(now func() time.Time) Option {
	return func(s *exeatService) { s.now = now }
}

// WithStrictTransitions makes Approve/Reject fail with
// ErrAlreadyReviewed unless the request is pending.
func WithStrictTransitions() Option {
	return func(s *exeatService) { s.strict = true }
}

// WithNotifier attaches a lifecycle-event sink (the websocket hub).
func WithNotifier(n Notifier) Option {
	return func(s *exeatService) { s.notifier = n }
}

// NewExeatService returns the lifecycle service backed by the given store.
func NewExeatService(st store.ExeatStore, logger *zap.Logger, opts ...Option) ExeatService {
	s := &exeatService{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// --- Implementation ---

func (s *exeatService) Submit(ctx context.Context, req SubmitExeatRequest) (model.ExeatRequest, error) {
	if !model.ValidReason(req.Reason) {
		return model.ExeatRequest{}, &ValidationError{Field: "reason", Message: "unknown leave reason"}
	}
	// The interval invariant lives here, not in the form layer, so it
	// holds for every caller.
	if !req.ReturnDate.After(req.DepartureDate) {
		return model.ExeatRequest{}, &ValidationError{Field: "return_date", Message: "return date must be after departure date"}
	}

	rec := model.ExeatRequest{
		StudentID:     req.StudentID,
		StudentName:   req.StudentName,
		Department:    req.Department,
		Reason:        req.Reason,
		ReasonDetails: req.ReasonDetails,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Status:        model.StatusPending,
		CreatedAt:     s.now(),
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		rec.ID = s.generateID(attempt)
		err := s.store.Insert(rec)
		if err == nil {
			s.logger.Info("exeat request submitted",
				zap.String("id", rec.ID),
				zap.String("student_id", rec.StudentID))
			s.notify(EventSubmitted, rec)
			return rec, nil
		}
		if !errors.Is(err, store.ErrDuplicateID) {
			return model.ExeatRequest{}, fmt.Errorf("failed to insert exeat request: %w", err)
		}
	}
	return model.ExeatRequest{}, ErrIDGeneration
}

func (s *exeatService) Get(ctx context.Context, id string) (model.ExeatRequest, error) {
	rec, err := s.store.FindByID(id)
	if err != nil {
		return model.ExeatRequest{}, fmt.Errorf("exeat request %s: %w", id, err)
	}
	return rec, nil
}

func (s *exeatService) List(ctx context.Context, filter ExeatFilter) ([]model.ExeatRequest, int64, error) {
	records := ApplyFilter(s.store.FindAll(), filter)
	total := int64(len(records))

	page, limit := filter.Page, filter.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		return records, total, nil
	}
	start := (page - 1) * limit
	if start >= len(records) {
		return []model.ExeatRequest{}, total, nil
	}
	end := start + limit
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], total, nil
}

func (s *exeatService) ListForStudent(ctx context.Context, studentID string) ([]model.ExeatRequest, error) {
	return ApplyFilter(s.store.FindAll(), ExeatFilter{StudentID: studentID}), nil
}

func (s *exeatService) Approve(ctx context.Context, id, reviewer, comment string) (model.ExeatRequest, error) {
	rec, err := s.review(id, model.StatusApproved, reviewer, comment)
	if err != nil {
		return model.ExeatRequest{}, err
	}
	s.logger.Info("exeat request approved",
		zap.String("id", id),
		zap.String("reviewer", reviewer))
	s.notify(EventApproved, rec)
	return rec, nil
}

func (s *exeatService) Reject(ctx context.Context, id, reviewer, comment string) (model.ExeatRequest, error) {
	rec, err := s.review(id, model.StatusRejected, reviewer, comment)
	if err != nil {
		return model.ExeatRequest{}, err
	}
	s.logger.Info("exeat request rejected",
		zap.String("id", id),
		zap.String("reviewer", reviewer))
	s.notify(EventRejected, rec)
	return rec, nil
}

// review applies a terminal decision. The QR token is derived from the
// id on approval and cleared otherwise, so it exists if and only if the
// record is approved.
func (s *exeatService) review(id, decision, reviewer, comment string) (model.ExeatRequest, error) {
	rec, err := s.store.FindByID(id)
	if err != nil {
		return model.ExeatRequest{}, fmt.Errorf("exeat request %s: %w", id, err)
	}

	if s.strict && rec.Status != model.StatusPending {
		return model.ExeatRequest{}, fmt.Errorf("exeat request %s is %s: %w", id, rec.Status, ErrAlreadyReviewed)
	}

	now := s.now()
	rec.Status = decision
	rec.Comments = comment
	rec.ReviewedBy = reviewer
	rec.ReviewedAt = &now
	if decision == model.StatusApproved {
		rec.QRCode = QRTokenFor(id)
	} else {
		rec.QRCode = ""
	}

	if err := s.store.Replace(id, rec); err != nil {
		return model.ExeatRequest{}, fmt.Errorf("failed to update exeat request %s: %w", id, err)
	}
	return rec, nil
}

func (s *exeatService) Reopen(ctx context.Context, id, actor, note string) (model.ExeatRequest, error) {
	rec, err := s.store.FindByID(id)
	if err != nil {
		return model.ExeatRequest{}, fmt.Errorf("exeat request %s: %w", id, err)
	}

	// Allowed from any status, including pending (a self-loop that
	// still refreshes the review metadata).
	now := s.now()
	rec.Status = model.StatusPending
	rec.Comments = note
	rec.ReviewedBy = actor
	rec.ReviewedAt = &now
	rec.QRCode = ""

	if err := s.store.Replace(id, rec); err != nil {
		return model.ExeatRequest{}, fmt.Errorf("failed to reopen exeat request %s: %w", id, err)
	}

	s.logger.Info("exeat request reopened",
		zap.String("id", id),
		zap.String("actor", actor))
	s.notify(EventReopened, rec)
	return rec, nil
}

func (s *exeatService) Delete(ctx context.Context, id string) error {
	if err := s.store.Remove(id); err != nil {
		return fmt.Errorf("exeat request %s: %w", id, err)
	}
	s.logger.Info("exeat request deleted", zap.String("id", id))
	s.notify(EventDeleted, map[string]string{"id": id})
	return nil
}

// generateID keeps the historical id scheme: "exeat-" plus the last six
// digits of the current unix-millisecond clock. Retries fall back to a
// random suffix since a second time-based attempt would collide again
// within the same millisecond.
func (s *exeatService) generateID(attempt int) string {
	if attempt == 0 {
		millis := s.now().UnixMilli()
		return fmt.Sprintf("exeat-%06d", millis%1_000_000)
	}
	return "exeat-" + uuid.New().String()[:6]
}

func (s *exeatService) notify(event string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.Notify(event, payload)
	}
}

// QRTokenFor derives the credential issued for an approved request.
// Stable and unique per id; verified by exact match at the checkpoint.
func QRTokenFor(id string) string {
	return id + "-approved"
}
