package store

import (
	"errors"
	"testing"
	"time"

	"exeat-backend/internal/model"
)

func sampleRequest(id string) model.ExeatRequest {
	return model.ExeatRequest{
		ID:            id,
		StudentID:     "VU123456",
		StudentName:   "John Student",
		Department:    "Computer Science",
		Reason:        model.ReasonMedical,
		ReasonDetails: "Dental appointment",
		Destination:   "City Dental Clinic",
		DepartureDate: time.Date(2025, time.May, 10, 9, 0, 0, 0, time.UTC),
		ReturnDate:    time.Date(2025, time.May, 10, 16, 0, 0, 0, time.UTC),
		Status:        model.StatusPending,
		CreatedAt:     time.Date(2025, time.May, 7, 10, 0, 0, 0, time.UTC),
	}
}

func TestInsertAndFindByID(t *testing.T) {
	s := NewExeatStore()

	if err := s.Insert(sampleRequest("exeat-100")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	rec, err := s.FindByID("exeat-100")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if rec.StudentID != "VU123456" || rec.Status != model.StatusPending {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestInsertDuplicateID(t *testing.T) {
	s := NewExeatStore()

	if err := s.Insert(sampleRequest("exeat-100")); err != nil {
		t.Fatalf("first Insert failed: %v", err)
	}
	if err := s.Insert(sampleRequest("exeat-100")); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
}

func TestFindByIDNotFound(t *testing.T) {
	s := NewExeatStore()
	if _, err := s.FindByID("exeat-999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReadsReturnValueCopies(t *testing.T) {
	s := NewExeatStore()
	rec := sampleRequest("exeat-100")
	reviewed := time.Date(2025, time.May, 8, 12, 0, 0, 0, time.UTC)
	rec.ReviewedAt = &reviewed
	if err := s.Insert(rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := s.FindByID("exeat-100")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	got.Status = model.StatusApproved
	*got.ReviewedAt = got.ReviewedAt.Add(time.Hour)

	again, _ := s.FindByID("exeat-100")
	if again.Status != model.StatusPending {
		t.Error("mutating a returned record leaked into the store")
	}
	if !again.ReviewedAt.Equal(reviewed) {
		t.Error("mutating a returned ReviewedAt pointer leaked into the store")
	}
}

func TestReplace(t *testing.T) {
	s := NewExeatStore()
	if err := s.Insert(sampleRequest("exeat-100")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	updated := sampleRequest("exeat-100")
	updated.Status = model.StatusApproved
	updated.QRCode = "exeat-100-approved"
	if err := s.Replace("exeat-100", updated); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	rec, _ := s.FindByID("exeat-100")
	if rec.Status != model.StatusApproved || rec.QRCode != "exeat-100-approved" {
		t.Errorf("Replace did not apply: %+v", rec)
	}

	if err := s.Replace("exeat-999", updated); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on missing id, got %v", err)
	}
}

func TestRemoveIsPermanent(t *testing.T) {
	s := NewExeatStore()
	if err := s.Insert(sampleRequest("exeat-100")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := s.Remove("exeat-100"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := s.FindByID("exeat-100"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after Remove, got %v", err)
	}
	if got := len(s.FindAll()); got != 0 {
		t.Errorf("FindAll still returns %d records after Remove", got)
	}

	if err := s.Remove("exeat-100"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double Remove, got %v", err)
	}
}

func TestFindByQRCodeExactMatch(t *testing.T) {
	s := NewExeatStore()
	rec := sampleRequest("exeat-001")
	rec.Status = model.StatusApproved
	rec.QRCode = "exeat-001-approved"
	if err := s.Insert(rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := s.FindByQRCode("exeat-001-approved")
	if err != nil {
		t.Fatalf("FindByQRCode failed: %v", err)
	}
	if got.ID != "exeat-001" {
		t.Errorf("wrong record: %s", got.ID)
	}

	for _, code := range []string{"exeat-001", "EXEAT-001-APPROVED", "exeat-001-approved ", ""} {
		if _, err := s.FindByQRCode(code); !errors.Is(err, ErrNotFound) {
			t.Errorf("code %q: expected ErrNotFound, got %v", code, err)
		}
	}
}

func TestSeedDemoData(t *testing.T) {
	s := NewExeatStore()
	if err := SeedDemoData(s); err != nil {
		t.Fatalf("SeedDemoData failed: %v", err)
	}

	all := s.FindAll()
	if len(all) != 4 {
		t.Fatalf("expected 4 fixtures, got %d", len(all))
	}

	approved, err := s.FindByID("exeat-001")
	if err != nil {
		t.Fatalf("fixture exeat-001 missing: %v", err)
	}
	if approved.Status != model.StatusApproved || approved.QRCode != "exeat-001-approved" {
		t.Errorf("fixture exeat-001 should be approved with a token: %+v", approved)
	}

	// Seeding twice must fail on the duplicate ids, not silently double up.
	if err := SeedDemoData(s); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID on double seed, got %v", err)
	}
}
