package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/apperror"
)

type fakeReportRepo struct {
	summaryFilter  SummaryFilter
	overviewFilter OverviewFilter
	overview       Overview
}

func (f *fakeReportRepo) GetSummary(ctx context.Context, flt SummaryFilter) (*Summary, error) {
	f.summaryFilter = flt
	return &Summary{From: flt.From, To: flt.To}, nil
}

func (f *fakeReportRepo) GetOverview(ctx context.Context, flt OverviewFilter) (*Overview, error) {
	f.overviewFilter = flt
	return &f.overview, nil
}

func (f *fakeReportRepo) GetJournal(ctx context.Context, flt JournalFilter) ([]JournalRow, error) {
	return nil, nil
}

var _ Repository = (*fakeReportRepo)(nil)

func newReportService(t *testing.T, repo Repository) *Service {
	t.Helper()
	engine, err := NewAlertEngine(DefaultRules())
	require.NoError(t, err)
	return NewService(repo, engine)
}

func TestSummaryPeriodDefaults(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := newReportService(t, repo)

	_, err := svc.GetSummary(context.Background(), SummaryFilter{})
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now().UTC(), repo.summaryFilter.To, 5*time.Second)
	assert.WithinDuration(t, repo.summaryFilter.To.AddDate(0, 0, -defaultSummaryDays), repo.summaryFilter.From, 5*time.Second)
}

func TestSummaryRejectsInvertedPeriod(t *testing.T) {
	svc := newReportService(t, &fakeReportRepo{})

	_, err := svc.GetSummary(context.Background(), SummaryFilter{
		From: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestGetAlertsKeepsZeroRows(t *testing.T) {
	repo := &fakeReportRepo{
		overview: Overview{Items: []OverviewItem{
			overviewItem(0, 5, 0),  // empty balance, low-stock applies
			overviewItem(50, 5, 0), // healthy
		}},
	}
	svc := newReportService(t, repo)

	alerts, err := svc.GetAlerts(context.Background(), OverviewFilter{ExcludeZero: true})
	require.NoError(t, err)

	assert.False(t, repo.overviewFilter.ExcludeZero, "alert scan must see zero balances")
	require.Len(t, alerts, 1)
	assert.Equal(t, "low_stock", alerts[0].Rule)
}

func TestOverviewLimitClamped(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := newReportService(t, repo)

	_, err := svc.GetOverview(context.Background(), OverviewFilter{Limit: 100000})
	require.NoError(t, err)
	assert.Equal(t, 1000, repo.overviewFilter.Limit)

	_, err = svc.GetOverview(context.Background(), OverviewFilter{})
	require.NoError(t, err)
	assert.Equal(t, 100, repo.overviewFilter.Limit)
}
