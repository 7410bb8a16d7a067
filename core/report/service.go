package report

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
)

var (
	// errors
	ErrNotFound = errors.New("report not found")
)

type (
	Repository interface {
		CreateReport(ctx context.Context, r Report) (Report, error)
		GetReport(ctx context.Context, id int64) (Report, error)
		// QueryReports returns every report, newest first, with the reporter name when known.
		QueryReports(ctx context.Context) ([]Report, error)
		// TransitionReport sets the status of report id, only if its status is currently one of from.
		// Returns ErrNotFound when no report was updated.
		TransitionReport(ctx context.Context, id int64, to Status, from ...Status) (Report, error)
	}

	Service struct {
		repo            Repository
		locker          core.Locker
		lockTTL         time.Duration
		strictAnonymity bool
	}
)

func NewService(repo Repository, locker core.Locker, conf *core.Config) *Service {
	return &Service{
		repo:            repo,
		locker:          locker,
		lockTTL:         conf.Portal.SubmitLockTTL,
		strictAnonymity: conf.Portal.StrictAnonymity,
	}
}

// Submit validates every applicable wizard step and stores the composed report.
// With strict anonymity, anonymous reports are stored without the reporter id.
func (svc *Service) Submit(ctx context.Context, studentID int64, form Form) (Report, error) {
	form.Clean()
	if err := Wizard.Validate(form); err != nil {
		return Report{}, err
	}

	rep := Report{
		StudentID:   studentID,
		Content:     form.Compose(),
		IsAnonymous: form.IsAnonymous,
		Status:      StatusPending,
	}
	if form.IsAnonymous && svc.strictAnonymity {
		rep.StudentID = 0
	}

	var created Report
	err := core.WithLock(ctx, svc.locker, fmt.Sprintf("submit:report:%d", studentID), svc.lockTTL, func() error {
		var err error
		created, err = svc.repo.CreateReport(ctx, rep)
		return err
	})
	if err != nil {
		return Report{}, errors.Wrap(err, "creating report")
	}
	created.Redact()
	created.Decorate()
	return created, nil
}

// List returns every report for the counselor dashboard, anonymous reporters redacted.
func (svc *Service) List(ctx context.Context) ([]Report, error) {
	reps, err := svc.repo.QueryReports(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying reports")
	}
	for i := range reps {
		reps[i].Redact()
		reps[i].Decorate()
	}
	return reps, nil
}

// MarkRead moves a pending report to read.
func (svc *Service) MarkRead(ctx context.Context, id int64) (Report, error) {
	return svc.transition(ctx, id, StatusRead)
}

func (svc *Service) transition(ctx context.Context, id int64, to Status) (Report, error) {
	rep, err := svc.repo.TransitionReport(ctx, id, to, Transitions.Sources(to)...)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Report{}, errors.Wrap(err, "updating report status")
		}
		// nothing updated: unknown report or wrong current status
		if _, gErr := svc.repo.GetReport(ctx, id); gErr != nil {
			return Report{}, gErr
		}
		return Report{}, core.ErrInvalidTransition
	}
	rep.Redact()
	rep.Decorate()
	return rep, nil
}
