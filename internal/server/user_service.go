package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/types"
	"go.uber.org/zap"
)

// UserStore is the persistence the user service needs.
type UserStore interface {
	CreateUserWithResume(ctx context.Context, user *types.User, resume *types.Resume) error
	GetUser(ctx context.Context, id uuid.UUID) (*types.User, error)
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	SaveResume(ctx context.Context, resume *types.Resume) error
	GetResume(ctx context.Context, userID uuid.UUID) (*types.Resume, error)
}

// ResumeParser turns an uploaded file into plain text. Failures yield "".
type ResumeParser interface {
	ExtractText(filename string, data []byte) string
}

// SkillExtractor finds known skills in résumé text.
type SkillExtractor interface {
	Extract(text string) types.SkillSet
}

// ResumeUpload is a résumé file received from a client.
type ResumeUpload struct {
	Filename string
	Data     []byte
}

// UserService provides registration, login and résumé management.
type UserService struct {
	store          UserStore
	passwordConfig *config.PasswordConfig
	parser         ResumeParser
	skills         SkillExtractor
	logger         *zap.Logger
	now            func() time.Time
}

// NewUserService creates a new UserService with the given dependencies.
func NewUserService(store UserStore, passwordConfig *config.PasswordConfig, parser ResumeParser, skills SkillExtractor, logger *zap.Logger) *UserService {
	return &UserService{
		store:          store,
		passwordConfig: passwordConfig,
		parser:         parser,
		skills:         skills,
		logger:         logging.OrNop(logger),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user and stores the parsed résumé in one transaction. Usernames
// and emails are unique.
func (s *UserService) Register(ctx context.Context, req *types.CreateUserRequest, upload ResumeUpload) (*types.User, *types.Resume, error) {
	if len(upload.Data) == 0 {
		return nil, nil, &ErrValidation{Field: "resume", Message: "file is required"}
	}

	existing, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, nil, &ErrUserAlreadyExists{Field: "username", Value: req.Username}
	}
	existing, err = s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, nil, &ErrUserAlreadyExists{Field: "email", Value: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &types.User{
		Name:         strings.TrimSpace(req.Name),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	resume := s.parseResume(upload)
	if err := s.store.CreateUserWithResume(ctx, user, resume); err != nil {
		// A concurrent registration can pass the lookups above and still collide.
		var dup *types.DuplicateError
		if errors.As(err, &dup) {
			value := req.Username
			if dup.Field == "email" {
				value = req.Email
			}
			return nil, nil, &ErrUserAlreadyExists{Field: dup.Field, Value: value}
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String(logging.FieldUserID, user.ID.String()),
		zap.Strings("skills", resume.Skills),
	)
	return user, resume, nil
}

// Login authenticates a user by username and password.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	// Unknown user and wrong password are indistinguishable to the caller.
	if user == nil || !s.passwordConfig.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	return user, nil
}

// GetUser returns a user or ErrUserNotFound.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return user, nil
}

// UploadResume replaces the user's résumé. Interviews already started keep their
// questions.
func (s *UserService) UploadResume(ctx context.Context, userID uuid.UUID, upload ResumeUpload) (*types.Resume, error) {
	if len(upload.Data) == 0 {
		return nil, &ErrValidation{Field: "resume", Message: "file is required"}
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	resume, err := s.saveResume(ctx, userID, upload)
	if err != nil {
		return nil, err
	}
	s.logger.Info("resume replaced",
		zap.String(logging.FieldUserID, userID.String()),
		zap.Strings("skills", resume.Skills),
	)
	return resume, nil
}

// GetResume returns the user's résumé or nil when none is on file.
func (s *UserService) GetResume(ctx context.Context, userID uuid.UUID) (*types.Resume, error) {
	resume, err := s.store.GetResume(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return resume, nil
}

func (s *UserService) parseResume(upload ResumeUpload) *types.Resume {
	text := s.parser.ExtractText(upload.Filename, upload.Data)
	return &types.Resume{
		OriginalFilename: upload.Filename,
		ParsedText:       text,
		Skills:           s.skills.Extract(text),
		UploadedAt:       s.now(),
	}
}

func (s *UserService) saveResume(ctx context.Context, userID uuid.UUID, upload ResumeUpload) (*types.Resume, error) {
	resume := s.parseResume(upload)
	resume.UserID = userID
	if err := s.store.SaveResume(ctx, resume); err != nil {
		return nil, fmt.Errorf("failed to save resume: %w", err)
	}
	return resume, nil
}
