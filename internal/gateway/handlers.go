package gateway

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/officedhq/officed/internal/office"
)

const defaultRecentWindow = 50

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.roster.All())
}

func (s *Server) handleListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := s.threads.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, threads)
}

type threadRequest struct {
	Title  string   `json:"title"`
	Vision string   `json:"vision,omitempty"`
	Goals  []string `json:"goals,omitempty"`
}

func (s *Server) handleCreateThread(w http.ResponseWriter, r *http.Request) {
	var req threadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	thread, err := s.threads.Create(req.Title, req.Vision, req.Goals)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, thread)
}

func (s *Server) handleGetThread(w http.ResponseWriter, r *http.Request) {
	thread, err := s.threads.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "thread not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"thread": thread,
		"phase":  s.office.Phase(thread.ID),
	})
}

func (s *Server) handleUpdateThread(w http.ResponseWriter, r *http.Request) {
	var req threadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	thread, err := s.threads.Update(r.PathValue("id"), req.Title, req.Vision, req.Goals)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, thread)
}

type workflowRequest struct {
	Directive  string `json:"directive"`
	Attachment *struct {
		Name        string `json:"name,omitempty"`
		ContentType string `json:"contentType"`
		Data        string `json:"data"` // base64
	} `json:"attachment,omitempty"`
}

func (s *Server) handleWorkflow(w http.ResponseWriter, r *http.Request) {
	var req workflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	var attachment *office.Attachment
	if req.Attachment != nil {
		data, err := base64.StdEncoding.DecodeString(req.Attachment.Data)
		if err != nil {
			writeError(w, http.StatusBadRequest, "attachment data is not valid base64")
			return
		}
		attachment = &office.Attachment{
			Name:        req.Attachment.Name,
			ContentType: req.Attachment.ContentType,
			Data:        data,
		}
	}

	report, err := s.office.StartWorkflow(r.Context(), r.PathValue("id"), req.Directive, attachment)
	switch {
	case errors.Is(err, office.ErrEmptyDirective):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, office.ErrWorkflowRunning):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeJSON(w, http.StatusOK, report)
	}
}

type chatRequest struct {
	SenderID string   `json:"senderId"`
	Body     string   `json:"body"`
	Targets  []string `json:"targets"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.SenderID == "" {
		req.SenderID = "operator"
	}

	replies, err := s.office.SendChat(r.Context(), r.PathValue("id"), req.SenderID, req.Body, req.Targets)
	switch {
	case errors.Is(err, office.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeJSON(w, http.StatusOK, replies)
	}
}

func (s *Server) handleExecutePlan(w http.ResponseWriter, r *http.Request) {
	summary, err := s.office.ExecutePlan(r.Context(), r.PathValue("id"), r.PathValue("member"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.List(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.feed.ListAlerts(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleListTurns(w http.ResponseWriter, r *http.Request) {
	turns, err := s.feed.RecentTurns(r.PathValue("id"), recentWindow(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, turns)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.feed.RecentMessages(r.PathValue("id"), recentWindow(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.feed.ListReports(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func recentWindow(r *http.Request) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("n")); err == nil && n > 0 {
		return n
	}
	return defaultRecentWindow
}
