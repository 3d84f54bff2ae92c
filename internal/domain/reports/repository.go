package reports

import (
	"context"
)

// Repository defines report data access.
type Repository interface {
	// GetSummary aggregates movements per direction over a period.
	GetSummary(ctx context.Context, f SummaryFilter) (*Summary, error)

	// GetOverview returns balance rows joined with catalog fields.
	GetOverview(ctx context.Context, f OverviewFilter) (*Overview, error)

	// GetJournal returns movements with resolved names, newest first.
	GetJournal(ctx context.Context, f JournalFilter) ([]JournalRow, error)
}
