package service

import (
	"context"
	"fmt"
	"time"

	"exeat-backend/internal/model"
	"exeat-backend/internal/store"

	"go.uber.org/zap"
)

// Verification classifications for a scanned exeat code
const (
	VerificationValid   = "valid"   // approved and not yet past the return time
	VerificationExpired = "expired" // approved but past the return time
	VerificationInvalid = "invalid" // not approved (pending/rejected/reopened)
)

// Travel direction hints shown to the checkpoint officer
const (
	DirectionDeparting = "departing" // now within [departure, return]
	DirectionReturning = "returning" // outside the leave window
)

// VerificationResult is what the security checkpoint sees after a scan.
// Informational only; verification never mutates the request.
type VerificationResult struct {
	Request   model.ExeatRequest `json:"request"`
	Status    string             `json:"status"`
	Direction string             `json:"direction"`
	CheckedAt time.Time          `json:"checked_at"`
}

// CheckpointService is the read-only verification gate used by security
// staff at the campus exit.
type CheckpointService interface {
	VerifyByCode(ctx context.Context, code string) (VerificationResult, error)
}

type checkpointService struct {
	store  store.ExeatStore
	logger *zap.Logger
	now    func() time.Time
}

// CheckpointOption configures a CheckpointService.
type CheckpointOption func(*checkpointService)

// WithCheckpointClock overrides the verification time source.
func WithCheckpointClock(now func() time.Time) CheckpointOption {
	return func(s *checkpointService) { s.now = now }
}

// NewCheckpointService returns the verification gate over the store.
func NewCheckpointService(st store.ExeatStore, logger *zap.Logger, opts ...CheckpointOption) CheckpointService {
	s := &checkpointService{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VerifyByCode looks up the request whose issued QR token matches code
// exactly and classifies it against the current time.
func (s *checkpointService) VerifyByCode(ctx context.Context, code string) (VerificationResult, error) {
	rec, err := s.store.FindByQRCode(code)
	if err != nil {
		s.logger.Warn("checkpoint scan did not match any exeat", zap.String("code", code))
		return VerificationResult{}, fmt.Errorf("exeat code %q: %w", code, err)
	}

	now := s.now()
	result := VerificationResult{
		Request:   rec,
		Status:    Classify(rec, now),
		Direction: ClassifyDirection(rec, now),
		CheckedAt: now,
	}

	s.logger.Info("exeat verified at checkpoint",
		zap.String("id", rec.ID),
		zap.String("status", result.Status),
		zap.String("direction", result.Direction))
	return result, nil
}

// Classify is the pure verdict function: valid iff approved and now is
// not past the return time, expired iff approved and past it, invalid
// for anything not approved.
func Classify(rec model.ExeatRequest, now time.Time) string {
	if rec.Status != model.StatusApproved {
		return VerificationInvalid
	}
	if now.After(rec.ReturnDate) {
		return VerificationExpired
	}
	return VerificationValid
}

// ClassifyDirection reports whether the student is inside the leave
// window (departing) or outside it (returning / not yet departed).
func ClassifyDirection(rec model.ExeatRequest, now time.Time) string {
	if !now.Before(rec.DepartureDate) && !now.After(rec.ReturnDate) {
		return DirectionDeparting
	}
	return DirectionReturning
}
