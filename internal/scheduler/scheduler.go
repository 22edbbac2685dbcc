package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/OpenCourseHub/CourseForge/internal/contentstore"
	"github.com/OpenCourseHub/CourseForge/internal/jobs"
)

// Scheduler periodically enqueues report warmups for courses edited within
// the configured window, so authors of active courses see warm caches.
type Scheduler struct {
	cron   *cron.Cron
	store  contentstore.Store
	queue  *jobs.Queue
	window time.Duration
}

func New(store contentstore.Store, queue *jobs.Queue, window time.Duration) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		store:  store,
		queue:  queue,
		window: window,
	}
}

func (s *Scheduler) Start(cronSpec string) error {
	_, err := s.cron.AddFunc(cronSpec, s.warmRecentCourses)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) warmRecentCourses() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	courses, err := s.store.RecentCourses(ctx, time.Now().Add(-s.window))
	if err != nil {
		log.Printf("scheduler: list recent courses: %v", err)
		return
	}
	for _, key := range courses {
		if _, err := s.queue.EnqueueWarmReport(key.String()); err != nil {
			log.Printf("scheduler: enqueue warm %s: %v", key, err)
		}
	}
	if len(courses) > 0 {
		log.Printf("scheduler: enqueued %d report warmups", len(courses))
	}
}
