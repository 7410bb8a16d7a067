package repos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/report"
)

type reportRepository struct {
	db core.DataStore
}

func NewReportRepository(db core.DataStore) report.Repository {
	return &reportRepository{db: db}
}

func toReport(rec core.Record) report.Report {
	return report.Report{
		ID:          rec.Int64("id"),
		StudentID:   rec.Int64("student_id"),
		StudentName: rec.Record(core.CollUsers).String("name"),
		Content:     rec.String("content"),
		IsAnonymous: rec.Bool("is_anonymous"),
		Status:      report.Status(rec.String("status")),
		CreatedAt:   rec.Time("created_at"),
	}
}

func (repo *reportRepository) CreateReport(ctx context.Context, r report.Report) (report.Report, error) {
	anonymous := 0
	if r.IsAnonymous {
		anonymous = 1
	}
	recs, err := repo.db.Insert(ctx, core.CollReports, core.Record{
		"student_id":   nullableID(r.StudentID),
		"content":      r.Content,
		"is_anonymous": anonymous,
		"status":       string(r.Status),
	})
	if err != nil {
		return report.Report{}, errors.Wrap(err, "inserting report")
	}
	return toReport(recs[0]), nil
}

func (repo *reportRepository) GetReport(ctx context.Context, id int64) (report.Report, error) {
	rec, err := core.SelectOne(ctx, repo.db, core.Query{
		Collection: core.CollReports,
		Filters:    []core.Filter{core.Eq("id", id)},
		Embeds:     []core.Embed{studentEmbed(false)},
	})
	if err != nil {
		if err == core.ErrNoRows {
			return report.Report{}, report.ErrNotFound
		}
		return report.Report{}, errors.Wrap(err, "selecting report")
	}
	return toReport(rec), nil
}

func (repo *reportRepository) QueryReports(ctx context.Context) ([]report.Report, error) {
	recs, err := repo.db.Select(ctx, core.Query{
		Collection: core.CollReports,
		Embeds:     []core.Embed{studentEmbed(false)},
		Orderings:  newestFirst,
	})
	if err != nil {
		return nil, errors.Wrap(err, "selecting reports")
	}
	reps := make([]report.Report, 0, len(recs))
	for _, rec := range recs {
		reps = append(reps, toReport(rec))
	}
	return reps, nil
}

func (repo *reportRepository) TransitionReport(ctx context.Context, id int64, to report.Status, from ...report.Status) (report.Report, error) {
	recs, err := repo.db.Update(ctx, core.CollReports, core.Record{"status": string(to)},
		core.Eq("id", id), core.In("status", statusValues(from)...))
	if err != nil {
		return report.Report{}, errors.Wrap(err, "updating report")
	}
	if len(recs) == 0 {
		return report.Report{}, report.ErrNotFound
	}

	rep, err := repo.GetReport(ctx, id)
	if err != nil {
		return toReport(recs[0]), nil
	}
	return rep, nil
}
