package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/planner"
	"github.com/Veraticus/hourglass/internal/service"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.planner.ListCategories(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in planner.CategoryInput
	if err := decodeJSON(r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}

	cat, err := s.planner.CreateCategory(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var patch planner.CategoryPatch
	if err := decodeJSON(r, &patch, false); err != nil {
		writeError(w, r, err)
		return
	}

	cat, err := s.planner.UpdateCategory(r.Context(), userID(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.planner.DeleteCategory(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Category deleted"})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.planner.ListProjects(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	details, err := s.planner.GetProject(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in planner.ProjectInput
	if err := decodeJSON(r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := s.planner.CreateProject(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var patch planner.ProjectPatch
	if err := decodeJSON(r, &patch, false); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := s.planner.UpdateProject(r.Context(), userID(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.planner.DeleteProject(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Project deleted"})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter service.TaskFilter
	if raw := q.Get("scheduledDate"); raw != "" {
		filter.ScheduledDate = &raw
	}
	if raw := q.Get("projectId"); raw != "" {
		filter.ProjectID = &raw
	}
	if raw := q.Get("isCompleted"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, common.NewValidationError("isCompleted", "must be true or false"))
			return
		}
		filter.IsCompleted = &completed
	}

	tasks, err := s.planner.ListTasks(r.Context(), userID(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.planner.GetTask(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in planner.TaskInput
	if err := decodeJSON(r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := s.planner.CreateTask(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch planner.TaskPatch
	if err := decodeJSON(r, &patch, false); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := s.planner.UpdateTask(r.Context(), userID(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.planner.DeleteTask(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Task deleted"})
}
