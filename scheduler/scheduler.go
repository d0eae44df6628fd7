// Package scheduler drives watch mode: re-running a search on a cron
// schedule so a long-lived process keeps its sinks current.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron *cron.Cron
	spec string
	job  func(ctx context.Context)
}

func New(spec string, job func(ctx context.Context)) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		spec: spec,
		job:  job,
	}
}

// Start validates the cron spec and begins scheduling. Jobs inherit the
// given context, so cancelling it aborts an in-flight run as well as the
// schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if ctx.Err() != nil {
			return
		}
		s.job(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.spec, err)
	}
	s.cron.Start()
	log.Printf("scheduler: watching on %q", s.spec)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
