// Package taskqueue runs background jobs on a bounded worker pool.
// Producers enqueue without blocking; a full queue is an error the
// caller handles, not a stall.
package taskqueue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/groundworklabs/groundwork/internal/config"
	payrolldomain "github.com/groundworklabs/groundwork/internal/payroll/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrQueueFull   = errors.New("task queue is full")
	ErrQueueClosed = errors.New("task queue is shut down")
)

type JobKind string

const (
	JobAggregatePayroll JobKind = "payroll.aggregate"
)

type Job struct {
	Kind   JobKind
	WeekOf time.Time
}

type Params struct {
	fx.In

	Config     config.Config
	Log        *zap.Logger
	PayrollSvc payrolldomain.Service
}

type Queue struct {
	log        *zap.Logger
	payrollSvc payrolldomain.Service
	jobs       chan Job
	workers    int

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewQueue(p Params) *Queue {
	workers := p.Config.Queue.Workers
	if workers <= 0 {
		workers = 1
	}
	depth := p.Config.Queue.Depth
	if depth <= 0 {
		depth = 16
	}
	return &Queue{
		log:        p.Log.Named("taskqueue"),
		payrollSvc: p.PayrollSvc,
		jobs:       make(chan Job, depth),
		workers:    workers,
	}
}

// EnqueueAggregation schedules a payroll aggregation for the week
// containing weekOf.
func (q *Queue) EnqueueAggregation(weekOf time.Time) error {
	return q.enqueue(Job{Kind: JobAggregatePayroll, WeekOf: weekOf})
}

func (q *Queue) enqueue(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.log.Info("task queue started",
		zap.Int("workers", q.workers),
		zap.Int("depth", cap(q.jobs)))
}

// stop closes intake and waits for in-flight jobs to drain, bounded
// by ctx.
func (q *Queue) stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.log.Info("task queue drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	log := q.log.With(zap.Int("worker", id))
	for job := range q.jobs {
		if err := q.run(job); err != nil {
			log.Error("job failed",
				zap.String("kind", string(job.Kind)),
				zap.Time("week_of", job.WeekOf),
				zap.Error(err))
		}
	}
}

func (q *Queue) run(job Job) error {
	ctx := context.Background()
	switch job.Kind {
	case JobAggregatePayroll:
		_, err := q.payrollSvc.Aggregate(ctx, job.WeekOf)
		return err
	default:
		return errors.New("unknown job kind " + string(job.Kind))
	}
}

var Module = fx.Module("taskqueue",
	fx.Provide(NewQueue),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, q *Queue) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			q.start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return q.stop(ctx)
		},
	})
}
