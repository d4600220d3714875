package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/server/middleware"
	"github.com/jonathan/interview-coach/internal/types"
	"go.uber.org/zap"
)

// resumeField is the multipart field carrying the résumé file.
const resumeField = "resume"

// ResumeSummary is the client view of a stored résumé.
type ResumeSummary struct {
	Filename   string         `json:"filename"`
	Skills     types.SkillSet `json:"skills"`
	UploadedAt time.Time      `json:"uploaded_at"`
}

// RegisterResponse is returned by POST /auth/register.
type RegisterResponse struct {
	User   *types.User    `json:"user"`
	Token  string         `json:"token"`
	Resume *ResumeSummary `json:"resume"`
}

func summarize(r *types.Resume) *ResumeSummary {
	return &ResumeSummary{Filename: r.OriginalFilename, Skills: r.Skills, UploadedAt: r.UploadedAt}
}

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	validator   *validator.Validate
	maxUpload   int64
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. maxUpload bounds multipart bodies in bytes.
func NewAuthHandler(userService *UserService, jwtService *JWTService, maxUpload int64, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		validator:   validator.New(),
		maxUpload:   maxUpload,
		logger:      logging.OrNop(logger),
	}
}

// Register handles multipart registration: name, email, username, password and a
// résumé file.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	file, err := readUpload(w, r, h.maxUpload, resumeField)
	if err != nil {
		writeError(w, HTTPStatus(err), err.Error())
		return
	}

	req := types.CreateUserRequest{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.ToLower(strings.TrimSpace(r.FormValue("email"))),
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, resume, err := h.userService.Register(r.Context(), &req, file.resume())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{User: user, Token: token, Resume: summarize(resume)})
}

// Login handles JSON login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.LoginResponse{User: user, Token: token})
}

// UploadResume replaces the caller's résumé.
func (h *AuthHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	file, err := readUpload(w, r, h.maxUpload, resumeField)
	if err != nil {
		writeError(w, HTTPStatus(err), err.Error())
		return
	}

	resume, err := h.userService.UploadResume(r.Context(), userID, file.resume())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(resume))
}

// GetResume returns the caller's résumé summary.
func (h *AuthHandler) GetResume(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	resume, err := h.userService.GetResume(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if resume == nil {
		writeError(w, http.StatusNotFound, "no résumé on file")
		return
	}
	writeJSON(w, http.StatusOK, summarize(resume))
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("auth request failed", zap.Error(err), zap.String("path", r.URL.Path))
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// upload is a file read from a multipart request.
type upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (u upload) resume() ResumeUpload {
	return ResumeUpload{Filename: u.Filename, Data: u.Data}
}

// readUpload parses a multipart body bounded by maxBytes and reads one file field.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64, field string) (upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return upload{}, &ErrValidation{Field: field, Message: fmt.Sprintf("upload exceeds %d bytes", maxBytes)}
		}
		return upload{}, &ErrValidation{Field: "body", Message: "expected multipart/form-data"}
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return upload{}, &ErrValidation{Field: field, Message: "file is required"}
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return upload{}, &ErrValidation{Field: field, Message: "could not read file"}
	}
	if len(data) == 0 {
		return upload{}, &ErrValidation{Field: field, Message: "file is empty"}
	}
	return upload{Filename: header.Filename, ContentType: header.Header.Get("Content-Type"), Data: data}, nil
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}
