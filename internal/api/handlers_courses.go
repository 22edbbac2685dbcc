package api

import (
	"errors"
	"net/http"

	"github.com/OpenCourseHub/CourseForge/internal/auth"
	"github.com/OpenCourseHub/CourseForge/internal/contentstore"
)

// ──────────────────── Course Handlers ────────────────────

// GET /api/v1/courses lists the courses the caller can author. Global staff
// see the whole catalog; everyone else sees the courses they hold a role on.
func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	if user.IsStaff {
		keys, err := s.store.ListCourses(r.Context())
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, "failed to list courses")
			return
		}
		s.respondJSON(w, http.StatusOK, Response{Success: true, Data: courseIDs(keys)})
		return
	}

	ids, err := s.access.AuthorableCourseIDs(r.Context(), user.UserID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list courses")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: ids})
}

func courseIDs(keys []contentstore.CourseKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

// OutlineNode is one visible container in the course outline.
type OutlineNode struct {
	ID          string        `json:"id"`
	BlockType   string        `json:"block_type"`
	DisplayName string        `json:"display_name"`
	Children    []OutlineNode `json:"children,omitempty"`
}

// GET /api/v1/courses/{course_id}/outline returns the learner-visible
// section/subsection/unit tree.
func (s *Server) handleCourseOutline(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	key, err := contentstore.ParseCourseKey(r.PathValue("course_id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "malformed course id")
		return
	}

	ok, err := s.access.HasCourseAuthorAccess(r.Context(), user.UserID, key)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to check course access")
		return
	}
	if !ok {
		s.respondError(w, http.StatusForbidden, "course author access required")
		return
	}

	accessor := contentstore.NewAccessor(s.store)
	course, err := accessor.LoadCourse(r.Context(), key, contentstore.DepthAll)
	if err != nil {
		if errors.Is(err, contentstore.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "course not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "failed to load course")
		return
	}

	outline, err := buildOutline(r, accessor, course)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to build outline")
		return
	}
	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: outline})
}

// buildOutline descends through visible containers only, stopping above leaf
// content blocks.
func buildOutline(r *http.Request, accessor *contentstore.Accessor, node *contentstore.CourseNode) (OutlineNode, error) {
	out := OutlineNode{
		ID:          node.Key.String(),
		BlockType:   node.Key.BlockType,
		DisplayName: node.DisplayName,
	}
	children, err := accessor.GetMany(r.Context(), contentstore.ChildrenOf(node))
	if err != nil {
		return OutlineNode{}, err
	}
	for _, child := range children {
		if !child.VisibleToLearners() || child.IsLeaf() {
			continue
		}
		sub, err := buildOutline(r, accessor, child)
		if err != nil {
			return OutlineNode{}, err
		}
		out.Children = append(out.Children, sub)
	}
	return out, nil
}
