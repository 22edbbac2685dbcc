package api

import (
	"errors"
	"net/http"

	"github.com/OpenCourseHub/CourseForge/internal/auth"
	"github.com/OpenCourseHub/CourseForge/internal/contentstore"
	"github.com/OpenCourseHub/CourseForge/internal/quality"
)

// ──────────────────── Course Quality Handlers ────────────────────

// GET /api/v1/courses/{course_id}/quality
//
// Boolean query parameters: sections, subsections, units, videos,
// exclude_graded. Absent means false; all=true switches every report
// section on.
func (s *Server) handleCourseQuality(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	key, err := contentstore.ParseCourseKey(r.PathValue("course_id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "malformed course id")
		return
	}

	// Permission check runs before any content-store access.
	ok, err := s.access.HasCourseAuthorAccess(r.Context(), user.UserID, key)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to check course access")
		return
	}
	if !ok {
		s.respondError(w, http.StatusForbidden, "course author access required")
		return
	}

	q := r.URL.Query()
	all := boolParam(q, "all", false)
	opts := quality.Options{
		Sections:      boolParam(q, "sections", all),
		Subsections:   boolParam(q, "subsections", all),
		Units:         boolParam(q, "units", all),
		Videos:        boolParam(q, "videos", all),
		ExcludeGraded: boolParam(q, "exclude_graded", false),
	}

	builder := quality.NewBuilder(contentstore.NewAccessor(s.store), s.videos)
	report, err := builder.Build(r.Context(), key, opts)
	if err != nil {
		if errors.Is(err, contentstore.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "course not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "failed to build quality report")
		return
	}

	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: report})
}

// POST /api/v1/courses/{course_id}/quality/warm
func (s *Server) handleWarmQuality(w http.ResponseWriter, r *http.Request) {
	key, err := contentstore.ParseCourseKey(r.PathValue("course_id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "malformed course id")
		return
	}
	taskID, err := s.queue.EnqueueWarmReport(key.String())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to enqueue warmup")
		return
	}
	s.respondJSON(w, http.StatusAccepted, Response{Success: true, Data: map[string]string{"task_id": taskID}})
}
