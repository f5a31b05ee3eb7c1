package service

import (
	"testing"
	"time"

	"exeat-backend/internal/model"
)

func day(d int) time.Time {
	return time.Date(2025, time.May, d, 12, 0, 0, 0, time.UTC)
}

func filterFixtures() []model.ExeatRequest {
	return []model.ExeatRequest{
		{ID: "a", StudentID: "VU1", StudentName: "John Student", Department: "CS", Reason: model.ReasonMedical, Destination: "Clinic", Status: model.StatusPending, DepartureDate: day(10), CreatedAt: day(1)},
		{ID: "b", StudentID: "VU1", StudentName: "John Student", Department: "CS", Reason: model.ReasonFamily, Destination: "Home", Status: model.StatusApproved, DepartureDate: day(12), CreatedAt: day(3)},
		{ID: "c", StudentID: "VU2", StudentName: "Jane Student", Department: "Business", Reason: model.ReasonAcademic, Destination: "Conference Hotel", Status: model.StatusPending, DepartureDate: day(14), CreatedAt: day(2)},
		{ID: "d", StudentID: "VU3", StudentName: "Robert Student", Department: "Engineering", Reason: model.ReasonPersonal, Destination: "Family residence", Status: model.StatusRejected, DepartureDate: day(16), CreatedAt: day(4)},
	}
}

func ids(records []model.ExeatRequest) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestApplyFilterOrdersNewestFirst(t *testing.T) {
	got := ids(ApplyFilter(filterFixtures(), ExeatFilter{}))
	want := []string{"d", "b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestApplyFilterConjunction(t *testing.T) {
	got := ApplyFilter(filterFixtures(), ExeatFilter{Status: model.StatusPending, StudentID: "VU1"})
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("conjunctive filter returned %v, want [a]", ids(got))
	}
}

func TestApplyFilterByDepartment(t *testing.T) {
	got := ApplyFilter(filterFixtures(), ExeatFilter{Department: "CS"})
	if len(got) != 2 {
		t.Errorf("department filter returned %v", ids(got))
	}
}

func TestApplyFilterDepartureBoundsInclusive(t *testing.T) {
	got := ApplyFilter(filterFixtures(), ExeatFilter{DepartureFrom: day(12), DepartureTo: day(14)})
	if len(got) != 2 {
		t.Fatalf("bounded filter returned %v", ids(got))
	}
	for _, r := range got {
		if r.ID != "b" && r.ID != "c" {
			t.Errorf("unexpected record %s in bounds", r.ID)
		}
	}
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	records := filterFixtures()

	cases := []struct {
		text string
		want []string
	}{
		{"jane", []string{"c"}},
		{"FAMILY", []string{"b", "d"}},      // reason "Family Emergency" + destination "Family residence"
		{"vu1", []string{"a", "b"}},         // student id
		{"engineering", []string{"d"}},      // department
		{"conference", []string{"c"}},       // destination
		{"nobody-matches-this", []string{}}, // no hit
	}
	for _, tc := range cases {
		got := ids(Search(records, tc.text))
		if len(got) != len(tc.want) {
			t.Errorf("Search(%q) = %v, want %v", tc.text, got, tc.want)
			continue
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Errorf("Search(%q) = %v, want %v", tc.text, got, tc.want)
				break
			}
		}
	}
}

func TestSearchBlankTextIsNoOp(t *testing.T) {
	records := filterFixtures()
	for _, text := range []string{"", "   ", "\t\n"} {
		got := Search(records, text)
		if len(got) != len(records) {
			t.Errorf("Search(%q) dropped records: %v", text, ids(got))
		}
		for i := range records {
			if got[i].ID != records[i].ID {
				t.Errorf("Search(%q) reordered records", text)
				break
			}
		}
	}
}
