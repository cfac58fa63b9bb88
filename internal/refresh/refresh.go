// Package refresh runs a job on a cron schedule.
package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	goerrors "github.com/TudorHulban/go-errors"
	"github.com/robfig/cron/v3"

	appLog "timeful/internal/log"
)

// Job is the unit of work run on every tick. It receives a context that is
// cancelled when the scheduler stops.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a standard 5-field cron schedule. Ticks that fire
// while the previous run is still going are skipped.
type Scheduler struct {
	cron *cron.Cron
	job  Job

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// New parses the cron expression and prepares a stopped Scheduler.
func New(expr string, job Job) (*Scheduler, error) {
	if job == nil {
		return nil,
			goerrors.ErrNilInput{
				InputName: "job",
			}
	}

	schedule, errParse := cron.ParseStandard(expr)
	if errParse != nil {
		return nil,
			goerrors.ErrInvalidInput{
				Caller:     "refresh.New",
				InputName:  "expr",
				InputValue: expr,
				Issue:      errParse,
			}
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := Scheduler{
		cron: cron.New(
			cron.WithChain(
				cron.SkipIfStillRunning(cron.DiscardLogger),
			),
		),
		job:    job,
		ctx:    ctx,
		cancel: cancel,
	}

	s.cron.Schedule(schedule, cron.FuncJob(s.RunNow))

	return &s, nil
}

// Start begins ticking in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule, cancels a running job and waits for it to return.
func (s *Scheduler) Stop() {
	wait := s.cron.Stop()
	s.cancel()

	<-wait.Done()
}

// RunNow runs the job once, synchronously.
func (s *Scheduler) RunNow() {
	started := time.Now()

	err := s.job(s.ctx)

	s.mu.Lock()
	s.lastRun = started
	s.lastErr = err
	s.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		appLog.Error("refresh job failed", err, "took", time.Since(started).String())

		return
	}

	appLog.Debug("refresh job done", "took", time.Since(started).String())
}

// Last returns when the job last started and what it returned.
func (s *Scheduler) Last() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastRun, s.lastErr
}
