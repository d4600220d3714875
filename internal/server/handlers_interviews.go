package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/rendering"
	"github.com/jonathan/interview-coach/internal/server/middleware"
	"github.com/jonathan/interview-coach/internal/types"
	"go.uber.org/zap"
)

// audioField is the multipart field carrying a recorded answer.
const audioField = "audio"

// StartInterviewRequest is the optional body of POST /interviews.
type StartInterviewRequest struct {
	Type   string         `json:"type"`
	Skills types.SkillSet `json:"skills,omitempty"`
}

// StartInterviewResponse is returned by POST /interviews.
type StartInterviewResponse struct {
	InterviewID   uuid.UUID `json:"interview_id"`
	QuestionCount int       `json:"question_count"`
	Type          string    `json:"type"`
}

// InterviewSummary is one row of the dashboard listing.
type InterviewSummary struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	CreatedAt     time.Time `json:"created_at"`
	QuestionCount int       `json:"question_count"`
}

// TranscriptRequest is the body of POST /interviews/{id}/transcripts/{index}.
type TranscriptRequest struct {
	Transcript string `json:"transcript"`
}

// ReportResponse describes a generated report.
type ReportResponse struct {
	ID           uuid.UUID `json:"id"`
	OverallScore float64   `json:"overall_score"`
	ArtifactPath string    `json:"artifact_path"`
	URL          string    `json:"url"`
	GeneratedAt  time.Time `json:"generated_at"`
}

func reportResponse(r types.Report) ReportResponse {
	return ReportResponse{
		ID:           r.ID,
		OverallScore: r.OverallScore,
		ArtifactPath: r.ArtifactPath,
		URL:          "/reports/" + filepath.Base(r.ArtifactPath),
		GeneratedAt:  r.GeneratedAt,
	}
}

func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	var req StartInterviewRequest
	if r.ContentLength != 0 && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	} else {
		req.Type = r.FormValue("interview_type")
	}

	var (
		iv  *types.Interview
		err error
	)
	if len(req.Skills) > 0 {
		iv, err = s.interviews.StartWithSkills(r.Context(), owner, req.Skills, req.Type)
	} else {
		iv, err = s.interviews.Start(r.Context(), owner, req.Type)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, StartInterviewResponse{
		InterviewID:   iv.ID,
		QuestionCount: iv.QuestionCount(),
		Type:          iv.Type,
	})
}

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	interviews, err := s.interviews.List(r.Context(), owner)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	summaries := make([]InterviewSummary, 0, len(interviews))
	for _, iv := range interviews {
		summaries = append(summaries, InterviewSummary{
			ID:            iv.ID,
			Type:          iv.Type,
			CreatedAt:     iv.CreatedAt,
			QuestionCount: iv.QuestionCount(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"interviews": summaries})
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.ownerAndID(w, r)
	if !ok {
		return
	}
	iv, err := s.interviews.Get(r.Context(), owner, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, iv)
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.ownerAndID(w, r)
	if !ok {
		return
	}
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	view, err := s.interviews.Question(r.Context(), owner, id, index)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.ownerAndID(w, r)
	if !ok {
		return
	}
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	file, err := readUpload(w, r, s.maxUpload, audioField)
	if err != nil {
		writeError(w, HTTPStatus(err), err.Error())
		return
	}

	sub, err := s.interviews.SubmitAnswer(r.Context(), owner, id, index, types.Audio{
		Data:     file.Data,
		MIMEType: file.ContentType,
		Filename: file.Filename,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleSubmitTranscript(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.ownerAndID(w, r)
	if !ok {
		return
	}
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	var req TranscriptRequest
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := s.interviews.SubmitTranscript(r.Context(), owner, id, index, req.Transcript)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.ownerAndID(w, r)
	if !ok {
		return
	}
	progress, err := s.interviews.Progress(r.Context(), owner, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.ownerAndID(w, r)
	if !ok {
		return
	}
	agg, err := s.interviews.Result(r.Context(), owner, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.ownerAndID(w, r)
	if !ok {
		return
	}
	rep, err := s.interviews.GenerateReport(r.Context(), owner, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reportResponse(*rep))
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.ownerAndID(w, r)
	if !ok {
		return
	}
	reports, err := s.interviews.Reports(r.Context(), owner, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]ReportResponse, 0, len(reports))
	for _, rep := range reports {
		out = append(out, reportResponse(rep))
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": out})
}

// handleDownloadReport serves an artifact from the report directory after checking that
// the interview encoded in its name belongs to the caller.
func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	name := r.PathValue("name")
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		writeError(w, http.StatusBadRequest, "invalid report name")
		return
	}
	id, ok := rendering.ArtifactInterviewID(name)
	if !ok {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if _, err := s.interviews.Get(r.Context(), owner, id); err != nil {
		s.fail(w, r, err)
		return
	}

	path := filepath.Join(s.reportDir, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)
}

func (s *Server) owner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	owner, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return owner, true
}

func (s *Server) ownerAndID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	owner, ok := s.owner(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid interview ID")
		return uuid.Nil, uuid.Nil, false
	}
	return owner, id, true
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid question index")
		return 0, false
	}
	return index, true
}

// fail maps err onto a status. Server errors are logged and hidden from the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		writeError(w, status, "internal error")
		return
	}
	s.logger.Debug("request rejected", zap.Error(err), zap.String("path", r.URL.Path), zap.String(logging.FieldInterviewID, r.PathValue("id")))
	writeError(w, status, err.Error())
}
