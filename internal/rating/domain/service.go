package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CalculateRequest struct {
	JobRef string
	Job    JobContext
	Lines  []LineInput
}

// CalculateResponse pairs the result with the resolved rates so the
// caller can build a FrozenContext for persistence.
type CalculateResponse struct {
	Result   CalculationResult
	Resolved ResolvedRates
}

type PersistRequest struct {
	SubmissionRef  string
	JobRef         string
	JobCompletedAt time.Time
	Result         CalculationResult
	Frozen         FrozenContext
	// SupersedesID marks this row as the correction of a prior
	// snapshot. The prior row is left untouched.
	SupersedesID *snowflake.ID
}

type Service interface {
	ResolveGroup(ctx context.Context, job JobContext) (snowflake.ID, error)
	ResolveRates(ctx context.Context, groupID snowflake.ID, codes []string) (*ResolvedRates, error)
	ResolveAndCalculate(ctx context.Context, req CalculateRequest) (*CalculateResponse, error)
	Persist(ctx context.Context, req PersistRequest) (*CalculatedTotal, error)
	GetCalculation(ctx context.Context, id snowflake.ID) (*CalculatedTotal, error)
	ListBySubmission(ctx context.Context, submissionRef string) ([]CalculatedTotal, error)
}

type Repository interface {
	InsertCalculatedTotal(ctx context.Context, total *CalculatedTotal) error
	FindCalculatedTotal(ctx context.Context, id snowflake.ID) (*CalculatedTotal, error)
	ListBySubmission(ctx context.Context, submissionRef string) ([]CalculatedTotal, error)
	ListByJobRefs(ctx context.Context, jobRefs []string) ([]CalculatedTotal, error)
	// ListCompletedInRange returns snapshots whose job completion date
	// falls in [start, end), excluding superseded rows.
	ListCompletedInRange(ctx context.Context, start, end time.Time) ([]CalculatedTotal, error)
}
