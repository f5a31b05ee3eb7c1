package model

import "time"

// ExeatStatus enum constants
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Leave reason enum constants — fixed set shown in the request form
const (
	ReasonMedical  = "Medical Appointment"
	ReasonFamily   = "Family Emergency"
	ReasonPersonal = "Personal Reasons"
	ReasonAcademic = "Academic Event"
	ReasonOther    = "Other"
)

// ValidStatus reports whether s is one of the known exeat statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// ValidReason reports whether r is one of the fixed leave reasons.
func ValidReason(r string) bool {
	switch r {
	case ReasonMedical, ReasonFamily, ReasonPersonal, ReasonAcademic, ReasonOther:
		return true
	}
	return false
}

// ExeatRequest is a single exit-permission record moving through the
// pending → approved/rejected lifecycle. The store owns every record;
// reads hand out value copies so callers cannot bypass the lifecycle
// service.
type ExeatRequest struct {
	ID            string     `json:"id"`
	StudentID     string     `json:"student_id"`
	StudentName   string     `json:"student_name"`
	Department    string     `json:"department,omitempty"`
	Reason        string     `json:"reason"`
	ReasonDetails string     `json:"reason_details"`
	Destination   string     `json:"destination"`
	DepartureDate time.Time  `json:"departure_date"`
	ReturnDate    time.Time  `json:"return_date"`
	Status        string     `json:"status"`
	Comments      string     `json:"comments,omitempty"`
	ReviewedBy    string     `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	// QRCode is the credential issued on approval and cleared on any
	// other transition. Present if and only if Status == approved.
	QRCode string `json:"qr_code,omitempty"`
}
