package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var ErrNegativeFootage = errors.New("footage must be non-negative")

var ErrConflictingDayFlags = errors.New("an entry cannot be both a full day and a half day")

type Service interface {
	RecordEntry(ctx context.Context, entry DailyEntry) (*DailyEntry, error)
	// CalculateWeek computes authoritative pay for the week containing
	// the given date.
	CalculateWeek(ctx context.Context, workerID snowflake.ID, anyDay time.Time) (*PayDetails, error)
	BonusProgress(ctx context.Context, workerID snowflake.ID, anyDay time.Time) (*BonusProgress, error)
}

type Repository interface {
	InsertEntry(ctx context.Context, entry *DailyEntry) error
	ListEntriesForWorker(ctx context.Context, workerID snowflake.ID, start, end time.Time) ([]DailyEntry, error)
	ListEntriesInRange(ctx context.Context, start, end time.Time) ([]DailyEntry, error)
}
