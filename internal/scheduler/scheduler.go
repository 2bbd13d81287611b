package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"itorder/internal"
)

// Job is one independent computation, typically one generator run.
type Job struct {
	Name string
	Run  func(ctx context.Context) (*internal.TestOrderResult, error)
}

type Outcome struct {
	Name     string
	Result   *internal.TestOrderResult
	Err      error
	Duration time.Duration
}

type Scheduler struct {
	MaxParallel int
}

func New(maxParallel int) *Scheduler {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Scheduler{MaxParallel: maxParallel}
}

// Run executes jobs on a pool of at most MaxParallel workers and waits for
// all of them. Outcomes come back in job order. A failing job never stops
// the others; once ctx is done, jobs that have not started yet are
// reported with ctx.Err().
func (s *Scheduler) Run(ctx context.Context, jobs []Job) []Outcome {
	outcomes := make([]Outcome, len(jobs))
	readyCh := make(chan int, len(jobs))
	for i := range jobs {
		readyCh <- i
	}
	close(readyCh)

	workers := min(s.MaxParallel, len(jobs))
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range readyCh {
				// 各スロットは1ワーカーだけが書き込む
				outcomes[i] = runJob(ctx, jobs[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func runJob(ctx context.Context, job Job) (out Outcome) {
	out.Name = job.Name
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	ctx, span := otel.Tracer("itorder/scheduler").Start(ctx, "job "+job.Name,
		trace.WithAttributes(attribute.String("job", job.Name)),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out.Result = nil
			out.Err = fmt.Errorf("%s: panic: %v", job.Name, r)
		}
		out.Duration = time.Since(start)
		if out.Err != nil {
			span.RecordError(out.Err)
			span.SetStatus(codes.Error, out.Err.Error())
		}
	}()

	out.Result, out.Err = job.Run(ctx)
	if out.Result == nil && out.Err == nil {
		out.Err = fmt.Errorf("%s: no result", job.Name)
	}
	return out
}
