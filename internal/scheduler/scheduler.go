package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Func is the work a job performs on every tick.
type Func func(ctx context.Context) error

type Job struct {
	Name     string
	Interval time.Duration
	Run      Func
}

type runningJob struct {
	job    Job
	ticker *time.Ticker
	cancel context.CancelFunc

	mu      sync.Mutex
	runs    int
	lastRun time.Time
	lastErr error
}

type Scheduler struct {
	jobs   map[string]*runningJob // job name -> job
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *slog.Logger

	started bool
	pending []Job
}

func New(log *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]*runningJob),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

// Start launches every job added so far. Jobs added later start at once.
func (s *Scheduler) Start() {
	s.mu.Lock()
	s.started = true
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, job := range pending {
		s.start(job)
	}
	s.log.Info("scheduler started", slog.Int("jobs", len(pending)))
}

// Stop cancels every job and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	s.cancel()

	s.mu.Lock()
	for _, rj := range s.jobs {
		rj.ticker.Stop()
		rj.cancel()
	}
	s.jobs = make(map[string]*runningJob)
	s.started = false
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

// AddJob registers a job, replacing any job with the same name. Each job runs
// once immediately and then every Interval.
func (s *Scheduler) AddJob(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job needs a name and a func")
	}
	if job.Interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", job.Name)
	}

	s.mu.Lock()
	if !s.started {
		s.pending = append(s.pending, job)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.start(job)
	return nil
}

func (s *Scheduler) start(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[job.Name]; ok {
		existing.ticker.Stop()
		existing.cancel()
	}

	jobCtx, jobCancel := context.WithCancel(s.ctx)
	rj := &runningJob{
		job:    job,
		ticker: time.NewTicker(job.Interval),
		cancel: jobCancel,
	}
	s.jobs[job.Name] = rj

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(jobCtx, rj)
		s.loop(jobCtx, rj)
	}()

	s.log.Debug("job added", slog.String("job", job.Name), slog.Duration("interval", job.Interval))
}

func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rj, ok := s.jobs[name]; ok {
		rj.ticker.Stop()
		rj.cancel()
		delete(s.jobs, name)
		s.log.Debug("job removed", slog.String("job", name))
	}
}

func (s *Scheduler) loop(ctx context.Context, rj *runningJob) {
	defer rj.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-rj.ticker.C:
			s.execute(ctx, rj)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, rj *runningJob) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	err := rj.job.Run(ctx)

	rj.mu.Lock()
	rj.runs++
	rj.lastRun = start
	rj.lastErr = err
	rj.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		s.log.Warn("job failed", slog.String("job", rj.job.Name), slog.Any("error", err))
		return
	}
	s.log.Debug("job finished", slog.String("job", rj.job.Name), slog.Duration("took", time.Since(start)))
}

type JobStatus struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	Runs      int           `json:"runs"`
	LastRun   time.Time     `json:"last_run"`
	LastError string        `json:"last_error,omitempty"`
}

type Status struct {
	Running bool        `json:"running"`
	Jobs    []JobStatus `json:"jobs"`
}

func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{Running: s.started && s.ctx.Err() == nil, Jobs: []JobStatus{}}
	for name, rj := range s.jobs {
		rj.mu.Lock()
		js := JobStatus{Name: name, Interval: rj.job.Interval, Runs: rj.runs, LastRun: rj.lastRun}
		if rj.lastErr != nil {
			js.LastError = rj.lastErr.Error()
		}
		rj.mu.Unlock()
		st.Jobs = append(st.Jobs, js)
	}
	sort.Slice(st.Jobs, func(i, j int) bool { return st.Jobs[i].Name < st.Jobs[j].Name })
	return st
}
