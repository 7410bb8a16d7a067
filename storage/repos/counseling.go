package repos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/counseling"
)

type counselingRepository struct {
	db core.DataStore
}

func NewCounselingRepository(db core.DataStore) counseling.Repository {
	return &counselingRepository{db: db}
}

func toRequest(rec core.Record) counseling.Request {
	return counseling.Request{
		ID:            rec.Int64("id"),
		StudentID:     rec.Int64("student_id"),
		StudentName:   rec.Record(core.CollUsers).String("name"),
		Type:          counseling.Mode(rec.String("type")),
		ProblemType:   rec.String("problem_type"),
		PreferredTime: rec.String("preferred_time"),
		Notes:         rec.String("notes"),
		FormData:      rec.String("form_data"),
		Status:        counseling.Status(rec.String("status")),
		CreatedAt:     rec.Time("created_at"),
	}
}

func (repo *counselingRepository) CreateRequest(ctx context.Context, req counseling.Request) (counseling.Request, error) {
	recs, err := repo.db.Insert(ctx, core.CollCounseling, core.Record{
		"student_id":     req.StudentID,
		"type":           string(req.Type),
		"problem_type":   req.ProblemType,
		"preferred_time": req.PreferredTime,
		"notes":          req.Notes,
		"form_data":      req.FormData,
		"status":         string(req.Status),
	})
	if err != nil {
		return counseling.Request{}, errors.Wrap(err, "inserting counseling request")
	}
	return toRequest(recs[0]), nil
}

func (repo *counselingRepository) GetRequest(ctx context.Context, id int64) (counseling.Request, error) {
	rec, err := core.SelectOne(ctx, repo.db, core.Query{
		Collection: core.CollCounseling,
		Filters:    []core.Filter{core.Eq("id", id)},
		Embeds:     []core.Embed{studentEmbed(false)},
	})
	if err != nil {
		if err == core.ErrNoRows {
			return counseling.Request{}, counseling.ErrNotFound
		}
		return counseling.Request{}, errors.Wrap(err, "selecting counseling request")
	}
	return toRequest(rec), nil
}

func (repo *counselingRepository) QueryRequests(ctx context.Context, studentID int64) ([]counseling.Request, error) {
	q := core.Query{
		Collection: core.CollCounseling,
		Embeds:     []core.Embed{studentEmbed(true)},
		Orderings:  newestFirst,
	}
	if studentID != 0 {
		q.Filters = append(q.Filters, core.Eq("student_id", studentID))
	}
	recs, err := repo.db.Select(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "selecting counseling requests")
	}
	reqs := make([]counseling.Request, 0, len(recs))
	for _, rec := range recs {
		reqs = append(reqs, toRequest(rec))
	}
	return reqs, nil
}

func (repo *counselingRepository) TransitionRequest(ctx context.Context, id, studentID int64, to counseling.Status, from ...counseling.Status) (counseling.Request, error) {
	filters := []core.Filter{core.Eq("id", id), core.In("status", statusValues(from)...)}
	if studentID != 0 {
		filters = append(filters, core.Eq("student_id", studentID))
	}
	recs, err := repo.db.Update(ctx, core.CollCounseling, core.Record{"status": string(to)}, filters...)
	if err != nil {
		return counseling.Request{}, errors.Wrap(err, "updating counseling request")
	}
	if len(recs) == 0 {
		return counseling.Request{}, counseling.ErrNotFound
	}

	// reload with the student name
	req, err := repo.GetRequest(ctx, id)
	if err != nil {
		return toRequest(recs[0]), nil
	}
	return req, nil
}

func (repo *counselingRepository) GetRecipient(ctx context.Context, studentID int64) (counseling.Recipient, error) {
	rec, err := core.SelectOne(ctx, repo.db, core.Query{
		Collection: core.CollUsers,
		Columns:    []string{"name", "email"},
		Filters:    []core.Filter{core.Eq("id", studentID)},
	})
	if err != nil {
		return counseling.Recipient{}, errors.Wrap(err, "selecting student")
	}
	return counseling.Recipient{Name: rec.String("name"), Email: rec.String("email")}, nil
}
