package service

import (
	"sort"
	"strings"
	"time"

	"exeat-backend/internal/model"
)

// ExeatFilter narrows a listing. All predicate fields are optional and
// conjunctive; zero values mean "no constraint". Page/Limit paginate
// the filtered result (Limit <= 0 disables pagination).
type ExeatFilter struct {
	Status     string
	StudentID  string
	Department string
	// Departure-date bounds, inclusive on both ends.
	DepartureFrom time.Time
	DepartureTo   time.Time
	Page          int
	Limit         int
}

// ApplyFilter returns the records matching every set predicate, sorted
// newest-first by creation time. Ordering is a presentation contract:
// dashboards always show the latest request on top.
func ApplyFilter(records []model.ExeatRequest, f ExeatFilter) []model.ExeatRequest {
	out := make([]model.ExeatRequest, 0, len(records))
	for _, rec := range records {
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		if f.StudentID != "" && rec.StudentID != f.StudentID {
			continue
		}
		if f.Department != "" && rec.Department != f.Department {
			continue
		}
		if !f.DepartureFrom.IsZero() && rec.DepartureDate.Before(f.DepartureFrom) {
			continue
		}
		if !f.DepartureTo.IsZero() && rec.DepartureDate.After(f.DepartureTo) {
			continue
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Search keeps the records whose student name, student id, department,
// reason or destination contains text, case-insensitively. Blank or
// whitespace-only text returns the input unchanged, preserving order.
func Search(records []model.ExeatRequest, text string) []model.ExeatRequest {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return records
	}

	out := make([]model.ExeatRequest, 0, len(records))
	for _, rec := range records {
		if containsFold(rec.StudentName, needle) ||
			containsFold(rec.StudentID, needle) ||
			containsFold(rec.Department, needle) ||
			containsFold(rec.Reason, needle) ||
			containsFold(rec.Destination, needle) {
			out = append(out, rec)
		}
	}
	return out
}

// containsFold matches a pre-lowercased needle against s.
func containsFold(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), needle)
}
