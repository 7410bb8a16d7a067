package counseling

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
)

var (
	ErrTooManyTopics      = errors.New("Pilih maksimal 2 topik")
	ErrPrivacyNotAgreed   = errors.New("Silakan setujui Janji Kerahasiaan terlebih dahulu.")
	ErrUnknownMode        = errors.New("jenis konseling tidak valid")
	ErrMissingModeAnswers = errors.New("jawaban formulir tidak ditemukan")
)

// IndividualForm holds the answers of a personal counseling request.
type IndividualForm struct {
	Name          string   `json:"nama" validate:"notblank"`
	Class         string   `json:"kelas" validate:"required,choice=class"`
	Contact       string   `json:"kontak"`
	Hobby         string   `json:"hobi" validate:"notblank"`
	Mood          string   `json:"mood" validate:"required,choice=mood"`
	Reasons       []string `json:"reasons" validate:"dive,choice=reason"`
	ReasonOther   string   `json:"reasonLainnya"`
	Story         string   `json:"story"`
	Method        string   `json:"method" validate:"required,choice=method"`
	Time          string   `json:"time" validate:"required,choice=time"`
	Companion     string   `json:"companion" validate:"required,choice=companion"`
	Expectation   string   `json:"expectation" validate:"required,choice=expectation"`
	PrivacyAgreed bool     `json:"privacyAgreed"`
}

func NewIndividualForm(name string) IndividualForm {
	return IndividualForm{
		Name:        name,
		Class:       Classes[0],
		Mood:        "😐",
		Reasons:     []string{},
		Method:      Methods[0],
		Time:        Times[0],
		Companion:   Companions[0],
		Expectation: Expectations[0],
	}
}

func (f *IndividualForm) Clean() {
	f.Name = core.CleanString(f.Name)
	f.Class = core.CleanString(f.Class)
	f.Contact = core.CleanString(f.Contact)
	f.Hobby = core.CleanString(f.Hobby)
	f.Reasons = core.CleanStrings(f.Reasons)
	f.ReasonOther = core.CleanString(f.ReasonOther)
	f.Story = strings.TrimSpace(f.Story)
}

func (f *IndividualForm) ToggleReason(reason string) {
	f.Reasons = toggle(f.Reasons, reason)
}

// GroupForm holds the answers of a group counseling request.
type GroupForm struct {
	Name             string   `json:"nama" validate:"notblank"`
	Class            string   `json:"kelas" validate:"required,choice=class"`
	GroupName        string   `json:"namaKelompok"`
	Topics           []string `json:"topics" validate:"max=2,dive,choice=topic"`
	WhyInterested    string   `json:"whyInterested" validate:"notblank"`
	MemberPref       string   `json:"memberPref" validate:"required,choice=memberpref"`
	ParticipantType  string   `json:"participantType" validate:"required,choice=participant"`
	Expectations     []string `json:"expectations" validate:"dive,choice=groupexp"`
	ExpectationOther string   `json:"expectationLainnya"`
	SecrecyPromise   string   `json:"secrecyPromise" validate:"required,choice=secrecy"`
}

func NewGroupForm(name string) GroupForm {
	return GroupForm{
		Name:            name,
		Class:           Classes[0],
		Topics:          []string{},
		MemberPref:      MemberPrefs[1],
		ParticipantType: ParticipantTypes[2],
		Expectations:    []string{},
		SecrecyPromise:  SecrecyPromises[0],
	}
}

func (f *GroupForm) Clean() {
	f.Name = core.CleanString(f.Name)
	f.Class = core.CleanString(f.Class)
	f.GroupName = core.CleanString(f.GroupName)
	f.Topics = core.CleanStrings(f.Topics)
	f.WhyInterested = strings.TrimSpace(f.WhyInterested)
	f.Expectations = core.CleanStrings(f.Expectations)
	f.ExpectationOther = core.CleanString(f.ExpectationOther)
}

// ToggleTopic selects or deselects topic. A third topic is refused and leaves the selection as is.
func (f *GroupForm) ToggleTopic(topic string) error {
	if core.Contains(f.Topics, topic) {
		f.Topics = toggle(f.Topics, topic)
		return nil
	}
	if len(f.Topics) >= MaxTopics {
		return ErrTooManyTopics
	}
	f.Topics = append(f.Topics, topic)
	return nil
}

func (f *GroupForm) ToggleExpectation(exp string) {
	f.Expectations = toggle(f.Expectations, exp)
}

func toggle(items []string, item string) []string {
	out := make([]string, 0, len(items)+1)
	found := false
	for _, it := range items {
		if it == item {
			found = true
			continue
		}
		out = append(out, it)
	}
	if !found {
		out = append(out, item)
	}
	return out
}

// Submission is the body of a counseling request: the mode and the answers of that mode.
type Submission struct {
	Type       Mode            `json:"type" validate:"required"`
	Individual *IndividualForm `json:"pribadi,omitempty"`
	Group      *GroupForm      `json:"kelompok,omitempty"`
}

// Check enforces the rules struct tags cannot express.
func (s *Submission) Check() error {
	switch s.Type {
	case ModeIndividual:
		if s.Individual == nil {
			return ErrMissingModeAnswers
		}
		if !s.Individual.PrivacyAgreed {
			return ErrPrivacyNotAgreed
		}
	case ModeGroup:
		if s.Group == nil {
			return ErrMissingModeAnswers
		}
		if len(s.Group.Topics) > MaxTopics {
			return ErrTooManyTopics
		}
	default:
		return ErrUnknownMode
	}
	return nil
}

func (s *Submission) Clean() {
	if s.Individual != nil {
		s.Individual.Clean()
	}
	if s.Group != nil {
		s.Group.Clean()
	}
}

// Flatten turns the answers of the selected mode into a pending request of the student.
func (s Submission) Flatten(studentID int64) (Request, error) {
	if err := s.Check(); err != nil {
		return Request{}, err
	}
	req := Request{StudentID: studentID, Type: s.Type, Status: StatusPending}

	var answers interface{}
	if s.Type == ModeIndividual {
		f := s.Individual
		req.ProblemType = strings.Join(f.Reasons, ", ")
		req.PreferredTime = f.Time
		req.Notes = f.Story
		answers = f
	} else {
		f := s.Group
		req.ProblemType = strings.Join(f.Topics, ", ")
		req.PreferredTime = GroupPreferredTime
		req.Notes = f.WhyInterested
		answers = f
	}

	data, err := json.Marshal(answers)
	if err != nil {
		return Request{}, errors.Wrap(err, "encoding form data")
	}
	req.FormData = string(data)
	return req, nil
}
