package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"interview-engine/internal/model"
	"interview-engine/internal/service"
)

// SessionHandler handles session lifecycle and answer submission endpoints
type SessionHandler struct {
	interviewSvc *service.InterviewService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(interviewSvc *service.InterviewService) *SessionHandler {
	return &SessionHandler{interviewSvc: interviewSvc}
}

// CreateSessionRequest is the request body for starting a session
type CreateSessionRequest struct {
	Role     string `json:"role"`
	Company  string `json:"company,omitempty"`
	Industry string `json:"industry,omitempty"`
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Role) == "" {
		writeError(w, http.StatusBadRequest, "role is required")
		return
	}

	session, err := h.interviewSvc.CreateSession(r.Context(), req.Role, req.Company, req.Industry)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session": session,
		"policy":  h.interviewSvc.Policy(session.Stage.Current),
	})
}

// GetState handles GET /v1/sessions/{sessionId}/state
func (h *SessionHandler) GetState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	session, err := h.interviewSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": session,
		"policy":  h.interviewSvc.Policy(session.Stage.Current),
	})
}

// GetAnswers handles GET /v1/sessions/{sessionId}/answers
func (h *SessionHandler) GetAnswers(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	session, err := h.interviewSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	answers, err := h.interviewSvc.Answers(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"answers": answers})
}

// SubmitAnswerRequest is the request body for one answer. Audio is a
// base64-encoded WAV file, video a base64-encoded MJPEG stream; both are
// optional and skip their analyzers when absent.
type SubmitAnswerRequest struct {
	Transcript   string             `json:"transcript"`
	Audio        []byte             `json:"audio,omitempty"`
	Video        []byte             `json:"video,omitempty"`
	QuestionMeta model.QuestionMeta `json:"questionMeta"`
}

// SubmitAnswer handles POST /v1/sessions/{sessionId}/answers
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		writeError(w, http.StatusBadRequest, "transcript is required")
		return
	}

	answer := &model.Answer{
		Transcript:   req.Transcript,
		AudioSamples: req.Audio,
		VideoFrames:  req.Video,
		QuestionMeta: req.QuestionMeta,
	}

	result, err := h.interviewSvc.SubmitAnswer(r.Context(), sessionID, answer)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "not found"):
			writeError(w, http.StatusNotFound, err.Error())
		case strings.Contains(err.Error(), "completed"):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
