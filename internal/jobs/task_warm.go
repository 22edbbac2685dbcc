package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/OpenCourseHub/CourseForge/internal/contentstore"
	"github.com/OpenCourseHub/CourseForge/internal/quality"
	"github.com/OpenCourseHub/CourseForge/internal/val"
)

// ──────── Report Warmup Handler ────────

// WarmReportHandler computes a full quality report for a course in the
// background. The report itself is discarded; the point is pulling the
// course tree through the store and priming the VAL redis cache so the
// interactive endpoint answers fast.
type WarmReportHandler struct {
	store    contentstore.Store
	videos   val.Finder
	notifier EventNotifier
}

func NewWarmReportHandler(store contentstore.Store, videos val.Finder, notifier EventNotifier) *WarmReportHandler {
	return &WarmReportHandler{store: store, videos: videos, notifier: notifier}
}

func (h *WarmReportHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload WarmReportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	key, err := contentstore.ParseCourseKey(payload.CourseID)
	if err != nil {
		return fmt.Errorf("warm report: %w", err)
	}

	taskID := "warm:" + payload.CourseID
	h.notify(taskID, "running", nil)

	start := time.Now()
	builder := quality.NewBuilder(contentstore.NewAccessor(h.store), h.videos)
	report, err := builder.Build(ctx, key, quality.Options{
		Sections:    true,
		Subsections: true,
		Units:       true,
		Videos:      true,
	})
	if err != nil {
		h.notify(taskID, "failed", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("warm report %s: %w", payload.CourseID, err)
	}

	log.Printf("warmed quality report for %s in %s (%d sections visible)",
		payload.CourseID, time.Since(start).Round(time.Millisecond), report.Sections.TotalVisible)
	h.notify(taskID, "complete", map[string]interface{}{
		"course_id":      payload.CourseID,
		"total_sections": report.Sections.TotalNumber,
	})
	return nil
}

func (h *WarmReportHandler) notify(taskID, status string, extra map[string]interface{}) {
	if h.notifier == nil {
		return
	}
	data := map[string]interface{}{
		"task_id": taskID,
		"status":  status,
	}
	for k, v := range extra {
		data[k] = v
	}
	h.notifier.Broadcast("task:update", data)
}
