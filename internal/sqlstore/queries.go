package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/types"
)

func toNanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// CreateUser inserts a user, assigning an ID and creation time when unset.
func (s *Store) CreateUser(ctx context.Context, user *types.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if err := insertUser(ctx, s.db, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// CreateUserWithResume inserts a user and their first résumé in one transaction.
// The résumé's UserID is set to the new user's ID.
func (s *Store) CreateUserWithResume(ctx context.Context, user *types.User, resume *types.Resume) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if resume.UploadedAt.IsZero() {
		resume.UploadedAt = time.Now().UTC()
	}
	resume.UserID = user.ID
	skills, err := json.Marshal(resume.Skills)
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}

	return s.inTx(ctx, "create user", func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO resumes (user_id, original_filename, parsed_text, skills, uploaded_at) VALUES (?, ?, ?, ?, ?)`,
			resume.UserID.String(), resume.OriginalFilename, resume.ParsedText, string(skills), toNanos(resume.UploadedAt),
		)
		return err
	})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertUser(ctx context.Context, q execer, user *types.User) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO users (id, name, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID.String(), user.Name, user.Username, strings.ToLower(user.Email), user.PasswordHash, toNanos(user.CreatedAt),
	)
	return duplicateUser(err)
}

// duplicateUser turns a unique key violation on the users table into a
// *types.DuplicateError. MySQL reports error 1062; SQLite reports a constraint
// failure naming the column.
func duplicateUser(err error) error {
	if err == nil {
		return nil
	}
	var (
		myErr *mysql.MySQLError
		field = "username"
	)
	switch {
	case errors.As(err, &myErr) && myErr.Number == 1062:
		// Duplicate entry 'x' for key 'users.email'
		if strings.HasSuffix(myErr.Message, "email'") {
			field = "email"
		}
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		if strings.Contains(err.Error(), "users.email") {
			field = "email"
		}
	default:
		return err
	}
	return fmt.Errorf("%w: %v", &types.DuplicateError{Field: field}, err)
}

// GetUser retrieves a user by ID, or nil if none exists.
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	return s.getUser(ctx, `id = ?`, id.String())
}

// GetUserByUsername retrieves a user by username, or nil if none exists.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	return s.getUser(ctx, `username = ?`, username)
}

// GetUserByEmail retrieves a user by email (case-insensitive), or nil if none exists.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return s.getUser(ctx, `email = ?`, strings.ToLower(email))
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*types.User, error) {
	var (
		u       types.User
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, username, email, password_hash, created_at FROM users WHERE `+where,
		arg,
	).Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = fromNanos(created)
	return &u, nil
}

// SaveResume stores the user's current résumé, replacing any previous upload.
func (s *Store) SaveResume(ctx context.Context, resume *types.Resume) error {
	if resume.UploadedAt.IsZero() {
		resume.UploadedAt = time.Now().UTC()
	}
	skills, err := json.Marshal(resume.Skills)
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}

	return s.inTx(ctx, "save resume", func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM resumes WHERE user_id = ?`, resume.UserID.String()).Scan(&exists)
		if err != nil {
			return err
		}
		if exists > 0 {
			_, err = tx.ExecContext(ctx,
				`UPDATE resumes SET original_filename = ?, parsed_text = ?, skills = ?, uploaded_at = ? WHERE user_id = ?`,
				resume.OriginalFilename, resume.ParsedText, string(skills), toNanos(resume.UploadedAt), resume.UserID.String(),
			)
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO resumes (user_id, original_filename, parsed_text, skills, uploaded_at) VALUES (?, ?, ?, ?, ?)`,
			resume.UserID.String(), resume.OriginalFilename, resume.ParsedText, string(skills), toNanos(resume.UploadedAt),
		)
		return err
	})
}

// GetResume retrieves a user's current résumé, or nil if none was uploaded.
func (s *Store) GetResume(ctx context.Context, userID uuid.UUID) (*types.Resume, error) {
	var (
		r        types.Resume
		skills   string
		uploaded int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, original_filename, parsed_text, skills, uploaded_at FROM resumes WHERE user_id = ?`,
		userID.String(),
	).Scan(&r.UserID, &r.OriginalFilename, &r.ParsedText, &skills, &uploaded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	if err := json.Unmarshal([]byte(skills), &r.Skills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resume skills: %w", err)
	}
	r.UploadedAt = fromNanos(uploaded)
	return &r, nil
}

// CreateInterview inserts an interview together with one unanswered placeholder per
// question, in a single transaction.
func (s *Store) CreateInterview(ctx context.Context, iv *types.Interview) error {
	if iv.ID == uuid.Nil {
		iv.ID = uuid.New()
	}
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now().UTC()
	}
	questions, err := json.Marshal(iv.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	return s.inTx(ctx, "create interview", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO interviews (id, owner_id, interview_type, questions, created_at) VALUES (?, ?, ?, ?, ?)`,
			iv.ID.String(), iv.OwnerID.String(), iv.Type, string(questions), toNanos(iv.CreatedAt),
		)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO answers (interview_id, question_index, question_text, answer_text, skill, max_score, updated_at)
			 VALUES (?, ?, ?, NULL, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for i, q := range iv.Questions {
			if _, err := stmt.ExecContext(ctx, iv.ID.String(), i, q.Question, q.Skill, q.MaxScore, toNanos(iv.CreatedAt)); err != nil {
				return fmt.Errorf("placeholder %d: %w", i, err)
			}
		}
		return nil
	})
}

// GetInterview retrieves an interview by ID, or nil if none exists.
func (s *Store) GetInterview(ctx context.Context, id uuid.UUID) (*types.Interview, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, interview_type, questions, created_at FROM interviews WHERE id = ?`,
		id.String(),
	)
	iv, err := scanInterview(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}
	return iv, nil
}

// ListInterviews returns an owner's interviews, newest first.
func (s *Store) ListInterviews(ctx context.Context, ownerID uuid.UUID) ([]types.Interview, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, interview_type, questions, created_at
		 FROM interviews WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var interviews []types.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		interviews = append(interviews, *iv)
	}
	return interviews, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInterview(row scanner) (*types.Interview, error) {
	var (
		iv        types.Interview
		questions string
		created   int64
	)
	if err := row.Scan(&iv.ID, &iv.OwnerID, &iv.Type, &questions, &created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(questions), &iv.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	iv.CreatedAt = fromNanos(created)
	return &iv, nil
}

const answerColumns = `id, interview_id, question_index, question_text, answer_text, skill, max_score, updated_at`

func scanAnswer(row scanner) (*types.Answer, error) {
	var (
		a       types.Answer
		text    sql.NullString
		updated int64
	)
	if err := row.Scan(&a.ID, &a.InterviewID, &a.QuestionIndex, &a.QuestionText, &text, &a.Skill, &a.MaxScore, &updated); err != nil {
		return nil, err
	}
	if text.Valid {
		a.AnswerText = &text.String
	}
	a.UpdatedAt = fromNanos(updated)
	return &a, nil
}

// GetAnswer retrieves the answer row for a question, or nil if none exists.
func (s *Store) GetAnswer(ctx context.Context, interviewID uuid.UUID, questionText string) (*types.Answer, error) {
	a, err := scanAnswer(s.db.QueryRowContext(ctx,
		`SELECT `+answerColumns+` FROM answers WHERE interview_id = ? AND question_text = ?`,
		interviewID.String(), questionText,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	return a, nil
}

// SaveAnswer writes the answer text for (interview, question text), creating the row
// when it does not exist. The latest write wins.
func (s *Store) SaveAnswer(ctx context.Context, a *types.Answer) error {
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now().UTC()
	}

	return s.inTx(ctx, "save answer", func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM answers WHERE interview_id = ? AND question_text = ?`,
			a.InterviewID.String(), a.QuestionText,
		).Scan(&id)

		switch {
		case err == nil:
			_, err = tx.ExecContext(ctx,
				`UPDATE answers SET answer_text = ?, updated_at = ? WHERE id = ?`,
				a.AnswerText, toNanos(a.UpdatedAt), id,
			)
			a.ID = id
			return err
		case errors.Is(err, sql.ErrNoRows):
			res, err := tx.ExecContext(ctx,
				`INSERT INTO answers (interview_id, question_index, question_text, answer_text, skill, max_score, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				a.InterviewID.String(), a.QuestionIndex, a.QuestionText, a.AnswerText, a.Skill, a.MaxScore, toNanos(a.UpdatedAt),
			)
			if err != nil {
				return err
			}
			a.ID, err = res.LastInsertId()
			return err
		default:
			return err
		}
	})
}

// ListAnswers returns every answer row of an interview in question order.
func (s *Store) ListAnswers(ctx context.Context, interviewID uuid.UUID) ([]types.Answer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+answerColumns+` FROM answers WHERE interview_id = ? ORDER BY question_index, id`,
		interviewID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var answers []types.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, *a)
	}
	return answers, rows.Err()
}

// AppendScore adds a score entry. Entries are never updated or removed.
func (s *Store) AppendScore(ctx context.Context, e *types.ScoreEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO score_entries (interview_id, question_index, skill, score_obtained, score_total, feedback, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.InterviewID.String(), e.QuestionIndex, e.Skill, e.ScoreObtained, e.ScoreTotal, e.Feedback, toNanos(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append score: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read score id: %w", err)
	}
	return nil
}

// ListScores returns an interview's score entries in insertion order.
func (s *Store) ListScores(ctx context.Context, interviewID uuid.UUID) ([]types.ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, interview_id, question_index, skill, score_obtained, score_total, feedback, created_at
		 FROM score_entries WHERE interview_id = ? ORDER BY id`,
		interviewID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []types.ScoreEntry
	for rows.Next() {
		var (
			e       types.ScoreEntry
			created int64
		)
		if err := rows.Scan(&e.ID, &e.InterviewID, &e.QuestionIndex, &e.Skill, &e.ScoreObtained, &e.ScoreTotal, &e.Feedback, &created); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		e.CreatedAt = fromNanos(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreateReport records a generated report artifact.
func (s *Store) CreateReport(ctx context.Context, r *types.Report) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, interview_id, overall_score, artifact_path, generated_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID.String(), r.InterviewID.String(), r.OverallScore, r.ArtifactPath, toNanos(r.GeneratedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// ListReports returns an interview's reports, oldest first.
func (s *Store) ListReports(ctx context.Context, interviewID uuid.UUID) ([]types.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, interview_id, overall_score, artifact_path, generated_at
		 FROM reports WHERE interview_id = ? ORDER BY generated_at, id`,
		interviewID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reports []types.Report
	for rows.Next() {
		var (
			r         types.Report
			generated int64
		)
		if err := rows.Scan(&r.ID, &r.InterviewID, &r.OverallScore, &r.ArtifactPath, &generated); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		r.GeneratedAt = fromNanos(generated)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to %s: begin transaction: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to %s: commit: %w", op, err)
	}
	return nil
}
