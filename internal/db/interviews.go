package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/interview-coach/internal/types"
)

// CreateInterview inserts an interview together with one unanswered placeholder per
// question, in a single transaction
func (db *DB) CreateInterview(ctx context.Context, iv *types.Interview) error {
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

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO interviews (id, owner_id, interview_type, questions, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		iv.ID, iv.OwnerID, iv.Type, questions, iv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}

	batch := &pgx.Batch{}
	for i, q := range iv.Questions {
		batch.Queue(
			`INSERT INTO answers (interview_id, question_index, question_text, skill, max_score, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			iv.ID, i, q.Question, q.Skill, q.MaxScore, iv.CreatedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to create answer placeholders: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit interview: %w", err)
	}
	return nil
}

// GetInterview retrieves an interview by ID, or nil if none exists
func (db *DB) GetInterview(ctx context.Context, id uuid.UUID) (*types.Interview, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, owner_id, interview_type, questions, created_at FROM interviews WHERE id = $1`,
		id,
	)
	iv, err := scanInterview(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}
	return iv, nil
}

// ListInterviews returns an owner's interviews, newest first
func (db *DB) ListInterviews(ctx context.Context, ownerID uuid.UUID) ([]types.Interview, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, owner_id, interview_type, questions, created_at
		 FROM interviews WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

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

func scanInterview(row pgx.Row) (*types.Interview, error) {
	var (
		iv        types.Interview
		questions []byte
	)
	if err := row.Scan(&iv.ID, &iv.OwnerID, &iv.Type, &questions, &iv.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &iv.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	return &iv, nil
}

// GetAnswer retrieves the answer row for a question, or nil if none exists
func (db *DB) GetAnswer(ctx context.Context, interviewID uuid.UUID, questionText string) (*types.Answer, error) {
	var a types.Answer
	err := db.pool.QueryRow(ctx,
		`SELECT id, interview_id, question_index, question_text, answer_text, skill, max_score, updated_at
		 FROM answers WHERE interview_id = $1 AND question_text = $2`,
		interviewID, questionText,
	).Scan(&a.ID, &a.InterviewID, &a.QuestionIndex, &a.QuestionText, &a.AnswerText, &a.Skill, &a.MaxScore, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	return &a, nil
}

// SaveAnswer writes the answer text for (interview, question text), creating the row
// when it does not exist. The latest write wins.
func (db *DB) SaveAnswer(ctx context.Context, a *types.Answer) error {
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now().UTC()
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO answers (interview_id, question_index, question_text, answer_text, skill, max_score, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (interview_id, question_text) DO UPDATE
		 SET answer_text = EXCLUDED.answer_text, updated_at = EXCLUDED.updated_at
		 RETURNING id`,
		a.InterviewID, a.QuestionIndex, a.QuestionText, a.AnswerText, a.Skill, a.MaxScore, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}
	return nil
}

// ListAnswers returns every answer row of an interview in question order
func (db *DB) ListAnswers(ctx context.Context, interviewID uuid.UUID) ([]types.Answer, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, interview_id, question_index, question_text, answer_text, skill, max_score, updated_at
		 FROM answers WHERE interview_id = $1 ORDER BY question_index, id`,
		interviewID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	var answers []types.Answer
	for rows.Next() {
		var a types.Answer
		if err := rows.Scan(&a.ID, &a.InterviewID, &a.QuestionIndex, &a.QuestionText, &a.AnswerText, &a.Skill, &a.MaxScore, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
