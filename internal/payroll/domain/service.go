package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrRecordNotFound = errors.New("payroll record not found")
	ErrReturnNotFound = errors.New("investor return not found")
)

// StatusError reports a payment status transition attempted from the
// wrong state. Raised from the conditional update, so two concurrent
// approvers cannot both win.
type StatusError struct {
	Attempted Status
	Current   Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cannot move to %s from %s", e.Attempted, e.Current)
}

type MarkRequest struct {
	RecordID   snowflake.ID
	ActorID    snowflake.ID
	ActorName  string
	PaymentRef string
}

type Service interface {
	// Aggregate recomputes the period containing anyDay from the
	// completed earnings snapshots and foreman entries, replacing the
	// prior aggregates by natural key.
	Aggregate(ctx context.Context, anyDay time.Time) (*WeeklyPayrollSummary, error)
	GetSummary(ctx context.Context, anyDay time.Time) (*WeeklyPayrollSummary, error)

	ApproveRecord(ctx context.Context, req MarkRequest) error
	MarkRecordPaid(ctx context.Context, req MarkRequest) error
	ApproveReturn(ctx context.Context, req MarkRequest) error
	MarkReturnPaid(ctx context.Context, req MarkRequest) error
}

type Repository interface {
	FindPeriodByWeekStart(ctx context.Context, weekStart time.Time) (*PayPeriod, error)
	InsertPeriod(ctx context.Context, p *PayPeriod) error

	UpsertPayrollRecord(ctx context.Context, record *PayrollRecord) error
	UpsertInvestorReturn(ctx context.Context, ret *InvestorReturn) error
	ListPayrollRecords(ctx context.Context, periodID snowflake.ID) ([]PayrollRecord, error)
	ListInvestorReturns(ctx context.Context, periodID snowflake.ID) ([]InvestorReturn, error)
	FindPayrollRecord(ctx context.Context, id snowflake.ID) (*PayrollRecord, error)
	FindInvestorReturn(ctx context.Context, id snowflake.ID) (*InvestorReturn, error)

	// TransitionRecordStatus performs the conditional update keyed on
	// the expected current status; reports rows affected.
	TransitionRecordStatus(ctx context.Context, id snowflake.ID, from, to Status, fields map[string]any) (int64, error)
	TransitionReturnStatus(ctx context.Context, id snowflake.ID, from, to Status, fields map[string]any) (int64, error)
}
