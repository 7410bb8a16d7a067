package counseling

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
)

var (
	// errors
	ErrNotFound = errors.New("counseling request not found")
)

type (
	// Recipient is who gets notified about a request.
	Recipient struct {
		Name  string
		Email string
	}

	Repository interface {
		CreateRequest(ctx context.Context, req Request) (Request, error)
		GetRequest(ctx context.Context, id int64) (Request, error)
		// QueryRequests returns requests newest first with the student name.
		// A zero studentID returns the requests of every student.
		QueryRequests(ctx context.Context, studentID int64) ([]Request, error)
		// TransitionRequest sets the status of request id, only if its status is currently one of from
		// (and it belongs to studentID, when non-zero). Returns ErrNotFound when nothing was updated.
		TransitionRequest(ctx context.Context, id, studentID int64, to Status, from ...Status) (Request, error)
		GetRecipient(ctx context.Context, studentID int64) (Recipient, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		mailer   core.EmailService
		logger   core.Logger
		locker   core.Locker
		lockTTL  time.Duration
	}
)

func NewService(
	repo Repository,
	validate *validator.Validate,
	mailer core.EmailService,
	logger core.Logger,
	locker core.Locker,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
		mailer:   mailer,
		logger:   logger,
		locker:   locker,
		lockTTL:  conf.Portal.SubmitLockTTL,
	}
}

// Submit stores one pending request built from the answers of the selected mode.
func (svc *Service) Submit(ctx context.Context, studentID int64, sub Submission) (Request, error) {
	sub.Clean()
	if err := sub.Check(); err != nil {
		return Request{}, err
	}
	// only the answers of the selected mode count
	var answers interface{} = sub.Individual
	if sub.Type == ModeGroup {
		answers = sub.Group
	}
	if err := svc.validate.Struct(answers); err != nil {
		return Request{}, err
	}

	req, err := sub.Flatten(studentID)
	if err != nil {
		return Request{}, err
	}

	var created Request
	err = core.WithLock(ctx, svc.locker, fmt.Sprintf("submit:counseling:%d", studentID), svc.lockTTL, func() error {
		var err error
		created, err = svc.repo.CreateRequest(ctx, req)
		return err
	})
	if err != nil {
		return Request{}, errors.Wrap(err, "creating counseling request")
	}
	created.Decorate(true)
	return created, nil
}

// ListAll returns the requests of every student for the counselor dashboard.
func (svc *Service) ListAll(ctx context.Context) ([]Request, error) {
	return svc.list(ctx, 0, false)
}

// ListForStudent returns the history of one student.
func (svc *Service) ListForStudent(ctx context.Context, studentID int64) ([]Request, error) {
	return svc.list(ctx, studentID, true)
}

func (svc *Service) list(ctx context.Context, studentID int64, asStudent bool) ([]Request, error) {
	reqs, err := svc.repo.QueryRequests(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying counseling requests")
	}
	for i := range reqs {
		reqs[i].Decorate(asStudent)
	}
	return reqs, nil
}

func (svc *Service) Accept(ctx context.Context, id int64) (Request, error) {
	return svc.review(ctx, id, StatusAccepted)
}

func (svc *Service) Reject(ctx context.Context, id int64) (Request, error) {
	return svc.review(ctx, id, StatusRejected)
}

func (svc *Service) review(ctx context.Context, id int64, to Status) (Request, error) {
	req, err := svc.transition(ctx, id, 0, to)
	if err != nil {
		return Request{}, err
	}
	svc.notify(ctx, req)
	req.Decorate(false)
	return req, nil
}

// Confirm lets a student confirm one of their own accepted requests.
func (svc *Service) Confirm(ctx context.Context, studentID, id int64) (Request, error) {
	req, err := svc.transition(ctx, id, studentID, StatusConfirmed)
	if err != nil {
		return Request{}, err
	}
	req.Decorate(true)
	return req, nil
}

func (svc *Service) transition(ctx context.Context, id, studentID int64, to Status) (Request, error) {
	req, err := svc.repo.TransitionRequest(ctx, id, studentID, to, Transitions.Sources(to)...)
	if err == nil {
		return req, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Request{}, errors.Wrap(err, "updating counseling request status")
	}

	// nothing updated: unknown request, someone else's, or wrong current status
	cur, gErr := svc.repo.GetRequest(ctx, id)
	if gErr != nil {
		return Request{}, gErr
	}
	if studentID != 0 && cur.StudentID != studentID {
		return Request{}, ErrNotFound
	}
	return Request{}, core.ErrInvalidTransition
}

// notify emails the student about the review of their request. Failures are logged only.
func (svc *Service) notify(ctx context.Context, req Request) {
	if svc.mailer == nil {
		return
	}
	rcpt, err := svc.repo.GetRecipient(ctx, req.StudentID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("looking up student %d for notification: %v", req.StudentID, err), err)
		return
	}
	if rcpt.Email == "" {
		return
	}
	svc.mailer.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: rcpt.Name, Address: rcpt.Email}},
		Subject:      "Permohonan konseling " + req.Status.Label(),
		TemplateName: "request_status",
		TemplateData: map[string]interface{}{
			"Name":        rcpt.Name,
			"Type":        req.Type.Label(),
			"ProblemType": req.ProblemType,
			"StatusLabel": strings.ToLower(req.Status.Label()),
			"Accepted":    req.Status == StatusAccepted,
		},
	})
}
