package store

import (
	"errors"
	"sync"
	"time"

	"exeat-backend/internal/model"
)

var (
	// ErrNotFound signals that no record exists for the given id (or
	// QR code). Surfaced to the caller as-is; never retried.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID signals an Insert with an id already present.
	// Ids are generated by the lifecycle service, so hitting this
	// through the normal submit path means id generation failed.
	ErrDuplicateID = errors.New("duplicate record id")
)

// ExeatStore is the authoritative set of exeat requests. All records
// live in process memory for the lifetime of the service; there is no
// durable storage behind it.
type ExeatStore interface {
	Insert(rec model.ExeatRequest) error
	FindByID(id string) (model.ExeatRequest, error)
	FindByQRCode(code string) (model.ExeatRequest, error)
	FindAll() []model.ExeatRequest
	Replace(id string, rec model.ExeatRequest) error
	Remove(id string) error
}

type exeatStore struct {
	mu sync.RWMutex
	// records holds the owned copies keyed by id; order holds ids in
	// insertion order so FindAll is deterministic.
	records map[string]model.ExeatRequest
	order   []string
}

// NewExeatStore returns an empty in-memory exeat store.
func NewExeatStore() ExeatStore {
	return &exeatStore{records: make(map[string]model.ExeatRequest)}
}

func (s *exeatStore) Insert(rec model.ExeatRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return ErrDuplicateID
	}
	s.records[rec.ID] = cloneRequest(rec)
	s.order = append(s.order, rec.ID)
	return nil
}

func (s *exeatStore) FindByID(id string) (model.ExeatRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return model.ExeatRequest{}, ErrNotFound
	}
	return cloneRequest(rec), nil
}

// FindByQRCode does an exact-match scan over issued QR tokens. Only
// approved records carry a token, so at most one record can match.
func (s *exeatStore) FindByQRCode(code string) (model.ExeatRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		rec := s.records[id]
		if rec.QRCode != "" && rec.QRCode == code {
			return cloneRequest(rec), nil
		}
	}
	return model.ExeatRequest{}, ErrNotFound
}

func (s *exeatStore) FindAll() []model.ExeatRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ExeatRequest, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneRequest(s.records[id]))
	}
	return out
}

func (s *exeatStore) Replace(id string, rec model.ExeatRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	rec.ID = id
	s.records[id] = cloneRequest(rec)
	return nil
}

func (s *exeatStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// cloneRequest copies a record including its ReviewedAt pointer so the
// store and its callers never share mutable state.
func cloneRequest(rec model.ExeatRequest) model.ExeatRequest {
	out := rec
	if rec.ReviewedAt != nil {
		t := *rec.ReviewedAt
		out.ReviewedAt = &t
	}
	return out
}

// SeedDemoData loads the demo fixtures used by the frontend walkthrough:
// one approved request with an issued QR token, two pending, one rejected.
// Intended for development mode only.
func SeedDemoData(s ExeatStore) error {
	reviewed1 := time.Date(2025, time.May, 8, 14, 30, 0, 0, time.Local)
	reviewed3 := time.Date(2025, time.May, 8, 9, 15, 0, 0, time.Local)

	fixtures := []model.ExeatRequest{
		{
			ID:            "exeat-001",
			StudentID:     "VU123456",
			StudentName:   "John Student",
			Department:    "Computer Science",
			Reason:        model.ReasonMedical,
			ReasonDetails: "Dental appointment in the city",
			Destination:   "City Dental Clinic, Downtown",
			DepartureDate: time.Date(2025, time.May, 10, 9, 0, 0, 0, time.Local),
			ReturnDate:    time.Date(2025, time.May, 10, 16, 0, 0, 0, time.Local),
			Status:        model.StatusApproved,
			Comments:      "Approved. Please return on time.",
			ReviewedBy:    "Admin User",
			ReviewedAt:    &reviewed1,
			CreatedAt:     time.Date(2025, time.May, 7, 10, 0, 0, 0, time.Local),
			QRCode:        "exeat-001-approved",
		},
		{
			ID:            "exeat-002",
			StudentID:     "VU123456",
			StudentName:   "John Student",
			Department:    "Computer Science",
			Reason:        model.ReasonFamily,
			ReasonDetails: "Sister's wedding",
			Destination:   "Family home, 123 Main St, Hometown",
			DepartureDate: time.Date(2025, time.May, 15, 8, 0, 0, 0, time.Local),
			ReturnDate:    time.Date(2025, time.May, 17, 18, 0, 0, 0, time.Local),
			Status:        model.StatusPending,
			CreatedAt:     time.Date(2025, time.May, 7, 14, 20, 0, 0, time.Local),
		},
		{
			ID:            "exeat-003",
			StudentID:     "VU789012",
			StudentName:   "Jane Student",
			Department:    "Business Administration",
			Reason:        model.ReasonAcademic,
			ReasonDetails: "Business conference",
			Destination:   "Grand Conference Hotel",
			DepartureDate: time.Date(2025, time.May, 12, 7, 30, 0, 0, time.Local),
			ReturnDate:    time.Date(2025, time.May, 13, 19, 0, 0, 0, time.Local),
			Status:        model.StatusRejected,
			Comments:      "Insufficient details provided. Please reapply with conference invitation.",
			ReviewedBy:    "Admin User",
			ReviewedAt:    &reviewed3,
			CreatedAt:     time.Date(2025, time.May, 7, 8, 45, 0, 0, time.Local),
		},
		{
			ID:            "exeat-004",
			StudentID:     "VU456789",
			StudentName:   "Robert Student",
			Department:    "Engineering",
			Reason:        model.ReasonPersonal,
			ReasonDetails: "Visiting family",
			Destination:   "Family residence",
			DepartureDate: time.Date(2025, time.May, 9, 16, 0, 0, 0, time.Local),
			ReturnDate:    time.Date(2025, time.May, 11, 12, 0, 0, 0, time.Local),
			Status:        model.StatusPending,
			CreatedAt:     time.Date(2025, time.May, 7, 12, 30, 0, 0, time.Local),
		},
	}

	for _, f := range fixtures {
		if err := s.Insert(f); err != nil {
			return err
		}
	}
	return nil
}
