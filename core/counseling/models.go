package counseling

import (
	"time"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
)

// Mode is the counseling session type, stored as is.
type Mode string

const (
	ModeIndividual Mode = "pribadi"
	ModeGroup      Mode = "kelompok"
)

func (m Mode) Valid() bool { return m == ModeIndividual || m == ModeGroup }

func (m Mode) Label() string {
	if m == ModeGroup {
		return "kelompok"
	}
	return "pribadi"
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusConfirmed Status = "confirmed"
)

// Transitions is the request lifecycle: pending -> accepted|rejected, accepted -> confirmed (by the student).
var Transitions = core.Transitions[Status]{
	StatusPending:  {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusConfirmed},
}

var statusLabels = map[Status]string{
	StatusPending:   "Menunggu",
	StatusAccepted:  "Disetujui",
	StatusRejected:  "Ditolak",
	StatusConfirmed: "Dikonfirmasi",
}

// notes shown to the student in their history
var statusNotes = map[Status]string{
	StatusAccepted: "Konselor telah menyetujui jadwal konseling Anda. Silakan konfirmasi kehadiran Anda.",
	StatusRejected: "Mohon maaf, jadwal konseling belum bisa disetujui saat ini. Silakan ajukan jadwal lain atau hubungi konselor secara langsung.",
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string { return statusLabels[s] }

// Request is a submitted counseling request.
type Request struct {
	ID            int64     `json:"id"`
	StudentID     int64     `json:"student_id"`
	StudentName   string    `json:"student_name,omitempty"`
	Type          Mode      `json:"type"`
	ProblemType   string    `json:"problem_type"`
	PreferredTime string    `json:"preferred_time"`
	Notes         string    `json:"notes"`
	FormData      string    `json:"form_data"`
	Status        Status    `json:"status"`
	StatusLabel   string    `json:"status_label"`
	StatusNote    string    `json:"status_note,omitempty"`
	Actions       []string  `json:"actions"`
	CreatedAt     time.Time `json:"created_at"`
}

// Actions available on a request
const (
	ActionAccept  = "accept"
	ActionReject  = "reject"
	ActionConfirm = "confirm"
)

// Decorate fills the derived display fields for a counselor (`asStudent` false) or for the requesting student.
func (r *Request) Decorate(asStudent bool) {
	r.StatusLabel = r.Status.Label()
	r.Actions = []string{}
	if asStudent {
		r.StatusNote = statusNotes[r.Status]
		if Transitions.Allowed(r.Status, StatusConfirmed) {
			r.Actions = append(r.Actions, ActionConfirm)
		}
		return
	}
	if Transitions.Allowed(r.Status, StatusAccepted) {
		r.Actions = append(r.Actions, ActionAccept)
	}
	if Transitions.Allowed(r.Status, StatusRejected) {
		r.Actions = append(r.Actions, ActionReject)
	}
}
