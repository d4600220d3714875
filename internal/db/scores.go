package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/types"
)

// AppendScore adds a score entry. Entries are never updated or removed.
func (db *DB) AppendScore(ctx context.Context, e *types.ScoreEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO score_entries (interview_id, question_index, skill, score_obtained, score_total, feedback, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		e.InterviewID, e.QuestionIndex, e.Skill, e.ScoreObtained, e.ScoreTotal, e.Feedback, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to append score: %w", err)
	}
	return nil
}

// ListScores returns an interview's score entries in insertion order
func (db *DB) ListScores(ctx context.Context, interviewID uuid.UUID) ([]types.ScoreEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, interview_id, question_index, skill, score_obtained, score_total, feedback, created_at
		 FROM score_entries WHERE interview_id = $1 ORDER BY id`,
		interviewID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	var entries []types.ScoreEntry
	for rows.Next() {
		var e types.ScoreEntry
		if err := rows.Scan(&e.ID, &e.InterviewID, &e.QuestionIndex, &e.Skill, &e.ScoreObtained, &e.ScoreTotal, &e.Feedback, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreateReport records a generated report artifact
func (db *DB) CreateReport(ctx context.Context, r *types.Report) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO reports (id, interview_id, overall_score, artifact_path, generated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.InterviewID, r.OverallScore, r.ArtifactPath, r.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// ListReports returns an interview's reports, oldest first
func (db *DB) ListReports(ctx context.Context, interviewID uuid.UUID) ([]types.Report, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, interview_id, overall_score, artifact_path, generated_at
		 FROM reports WHERE interview_id = $1 ORDER BY generated_at, id`,
		interviewID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []types.Report
	for rows.Next() {
		var r types.Report
		if err := rows.Scan(&r.ID, &r.InterviewID, &r.OverallScore, &r.ArtifactPath, &r.GeneratedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
