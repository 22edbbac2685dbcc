package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// TaskReportWarm precomputes a full quality report for one course so
	// the store and VAL caches are hot when an author opens the report.
	TaskReportWarm = "report:warm"
)

// EventNotifier receives job lifecycle events for broadcast to clients.
type EventNotifier interface {
	Broadcast(event string, data interface{})
}

type Queue struct {
	client    *asynq.Client
	server    *asynq.Server
	mux       *asynq.ServeMux
	inspector *asynq.Inspector
}

func NewQueue(redisAddr string) *Queue {
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}
	client := asynq.NewClient(redisOpt)
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 3,
				"low":     1,
			},
		},
	)
	mux := asynq.NewServeMux()
	inspector := asynq.NewInspector(redisOpt)
	return &Queue{client: client, server: server, mux: mux, inspector: inspector}
}

func (q *Queue) Handle(taskType string, handler asynq.Handler) {
	q.mux.Handle(taskType, handler)
}

func (q *Queue) Start() error {
	return q.server.Start(q.mux)
}

func (q *Queue) Shutdown() {
	q.server.Shutdown()
	q.client.Close()
}

// isTaskConflict checks whether the error indicates a task ID conflict,
// using errors.Is for unwrapped sentinel values and a string fallback.
func isTaskConflict(err error) bool {
	if errors.Is(err, asynq.ErrDuplicateTask) || errors.Is(err, asynq.ErrTaskIDConflict) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "task ID conflicts") || strings.Contains(msg, "duplicate task")
}

// EnqueueUnique enqueues a task with a deterministic TaskID so the same
// course is never warmed twice concurrently. If a task with the same ID is
// already pending or active, the enqueue is silently skipped. A lingering
// completed/archived task with the same ID is deleted first.
func (q *Queue) EnqueueUnique(taskType string, payload interface{}, uniqueID string, opts ...asynq.Option) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	opts = append(opts, asynq.TaskID(uniqueID))
	task := asynq.NewTask(taskType, data, opts...)
	info, err := q.client.Enqueue(task)
	if err == nil {
		return info.ID, nil
	}

	if !isTaskConflict(err) {
		return "", fmt.Errorf("enqueue: %w", err)
	}

	// Clear any finished task occupying the ID and retry once.
	for _, queueName := range []string{"default", "low"} {
		if delErr := q.inspector.DeleteTask(queueName, uniqueID); delErr == nil {
			log.Printf("jobs: cleared finished task %s from %s", uniqueID, queueName)
			break
		}
	}
	info, err = q.client.Enqueue(task)
	if err != nil {
		if isTaskConflict(err) {
			return uniqueID, nil
		}
		return "", fmt.Errorf("enqueue retry: %w", err)
	}
	return info.ID, nil
}

// WarmReportPayload is the payload for TaskReportWarm.
type WarmReportPayload struct {
	CourseID string `json:"course_id"`
}

// EnqueueWarmReport schedules a report warmup for one course.
func (q *Queue) EnqueueWarmReport(courseID string) (string, error) {
	return q.EnqueueUnique(TaskReportWarm, WarmReportPayload{CourseID: courseID}, "warm:"+courseID, asynq.Queue("low"))
}
