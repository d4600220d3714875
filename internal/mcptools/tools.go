// Package mcptools exposes the interview workflow as MCP tools so that an assistant
// can run a practice interview on behalf of one user.
package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ServerName is reported to MCP clients.
const ServerName = "interview-coach"

// listConcurrency bounds parallel progress lookups in list_interviews.
const listConcurrency = 4

// StartInput is the input of start_interview.
type StartInput struct {
	Type   string   `json:"type,omitempty" jsonschema:"Interview type, e.g. technical or behavioral (default: technical)"`
	Skills []string `json:"skills,omitempty" jsonschema:"Skills to ask about; defaults to the skills found in the stored résumé"`
}

// StartOutput is the output of start_interview.
type StartOutput struct {
	InterviewID   string `json:"interview_id"`
	QuestionCount int    `json:"question_count"`
	Type          string `json:"type"`
}

// InterviewInput identifies an interview.
type InterviewInput struct {
	InterviewID string `json:"interview_id" jsonschema:"Interview ID returned by start_interview"`
}

// QuestionInput identifies one question of an interview.
type QuestionInput struct {
	InterviewID string `json:"interview_id" jsonschema:"Interview ID returned by start_interview"`
	Index       int    `json:"index" jsonschema:"Zero-based question index"`
}

// AnswerInput is the input of submit_answer_text.
type AnswerInput struct {
	InterviewID string `json:"interview_id" jsonschema:"Interview ID returned by start_interview"`
	Index       int    `json:"index" jsonschema:"Zero-based question index"`
	Transcript  string `json:"transcript" jsonschema:"The candidate's answer as text"`
}

// ReportOutput is the output of generate_report.
type ReportOutput struct {
	ReportID     string  `json:"report_id"`
	ArtifactPath string  `json:"artifact_path"`
	OverallScore float64 `json:"overall_score"`
}

// InterviewListing is one entry of list_interviews.
type InterviewListing struct {
	InterviewID string             `json:"interview_id"`
	Type        string             `json:"type"`
	CreatedAt   time.Time          `json:"created_at"`
	State       types.SessionState `json:"state"`
	Answered    int                `json:"answered"`
	Total       int                `json:"total"`
}

// ListOutput is the output of list_interviews.
type ListOutput struct {
	Interviews []InterviewListing `json:"interviews"`
}

// ListInput is the (empty) input of list_interviews.
type ListInput struct{}

// Tools binds the interview service to a single owner.
type Tools struct {
	svc    *interview.Service
	owner  uuid.UUID
	logger *zap.Logger
}

// New returns Tools acting as owner.
func New(svc *interview.Service, owner uuid.UUID, logger *zap.Logger) *Tools {
	return &Tools{svc: svc, owner: owner, logger: logging.OrNop(logger)}
}

// NewServer builds an MCP server with every tool registered.
func NewServer(t *Tools, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	t.Register(server)
	return server
}

// Register adds the interview tools to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "start_interview",
		Description: "Start a mock interview. Questions are generated from the skills in the stored résumé unless skills are given. Returns the interview ID and the number of questions.",
	}, t.startInterview)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_question",
		Description: "Get question N of an interview. When N is past the last question the result has complete=true and no question.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.getQuestion)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "submit_answer_text",
		Description: "Record a typed answer to question N, score it and return the score, maximum and feedback.",
	}, t.submitAnswer)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_progress",
		Description: "Get the state of an interview: answered count, total and the next unanswered question index.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.getProgress)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_result",
		Description: "Get per-skill and overall scores for an interview.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.getResult)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_report",
		Description: "Render a new report for an interview and return the artifact path. Every call writes a new file.",
	}, t.generateReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_interviews",
		Description: "List the user's interviews, newest first, with their progress.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.listInterviews)
}

func (t *Tools) startInterview(ctx context.Context, _ *mcp.CallToolRequest, in StartInput) (*mcp.CallToolResult, StartOutput, error) {
	var (
		iv  *types.Interview
		err error
	)
	if len(in.Skills) > 0 {
		iv, err = t.svc.StartWithSkills(ctx, t.owner, in.Skills, in.Type)
	} else {
		iv, err = t.svc.Start(ctx, t.owner, in.Type)
	}
	if err != nil {
		return nil, StartOutput{}, t.toolError("start_interview", err)
	}
	return nil, StartOutput{InterviewID: iv.ID.String(), QuestionCount: iv.QuestionCount(), Type: iv.Type}, nil
}

func (t *Tools) getQuestion(ctx context.Context, _ *mcp.CallToolRequest, in QuestionInput) (*mcp.CallToolResult, *types.QuestionView, error) {
	id, err := parseID(in.InterviewID)
	if err != nil {
		return nil, nil, err
	}
	view, err := t.svc.Question(ctx, t.owner, id, in.Index)
	if err != nil {
		return nil, nil, t.toolError("get_question", err)
	}
	return nil, view, nil
}

func (t *Tools) submitAnswer(ctx context.Context, _ *mcp.CallToolRequest, in AnswerInput) (*mcp.CallToolResult, *types.Submission, error) {
	id, err := parseID(in.InterviewID)
	if err != nil {
		return nil, nil, err
	}
	sub, err := t.svc.SubmitTranscript(ctx, t.owner, id, in.Index, in.Transcript)
	if err != nil {
		return nil, nil, t.toolError("submit_answer_text", err)
	}
	return nil, sub, nil
}

func (t *Tools) getProgress(ctx context.Context, _ *mcp.CallToolRequest, in InterviewInput) (*mcp.CallToolResult, *types.Progress, error) {
	id, err := parseID(in.InterviewID)
	if err != nil {
		return nil, nil, err
	}
	progress, err := t.svc.Progress(ctx, t.owner, id)
	if err != nil {
		return nil, nil, t.toolError("get_progress", err)
	}
	return nil, progress, nil
}

func (t *Tools) getResult(ctx context.Context, _ *mcp.CallToolRequest, in InterviewInput) (*mcp.CallToolResult, *types.Aggregate, error) {
	id, err := parseID(in.InterviewID)
	if err != nil {
		return nil, nil, err
	}
	agg, err := t.svc.Result(ctx, t.owner, id)
	if err != nil {
		return nil, nil, t.toolError("get_result", err)
	}
	return nil, agg, nil
}

func (t *Tools) generateReport(ctx context.Context, _ *mcp.CallToolRequest, in InterviewInput) (*mcp.CallToolResult, ReportOutput, error) {
	id, err := parseID(in.InterviewID)
	if err != nil {
		return nil, ReportOutput{}, err
	}
	rep, err := t.svc.GenerateReport(ctx, t.owner, id)
	if err != nil {
		return nil, ReportOutput{}, t.toolError("generate_report", err)
	}
	return nil, ReportOutput{
		ReportID:     rep.ID.String(),
		ArtifactPath: rep.ArtifactPath,
		OverallScore: rep.OverallScore,
	}, nil
}

func (t *Tools) listInterviews(ctx context.Context, _ *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, ListOutput, error) {
	interviews, err := t.svc.List(ctx, t.owner)
	if err != nil {
		return nil, ListOutput{}, t.toolError("list_interviews", err)
	}

	out := ListOutput{Interviews: make([]InterviewListing, len(interviews))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i, iv := range interviews {
		g.Go(func() error {
			progress, err := t.svc.Progress(gctx, t.owner, iv.ID)
			if err != nil {
				return err
			}
			out.Interviews[i] = InterviewListing{
				InterviewID: iv.ID.String(),
				Type:        iv.Type,
				CreatedAt:   iv.CreatedAt,
				State:       progress.State,
				Answered:    progress.Answered,
				Total:       progress.Total,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, ListOutput{}, t.toolError("list_interviews", err)
	}
	return nil, out, nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, errors.New("interview_id must be a UUID")
	}
	return id, nil
}

// toolError keeps caller errors as they are and hides infrastructure failures behind a
// generic message after logging them.
func (t *Tools) toolError(tool string, err error) error {
	var (
		notFound      *interview.NotFoundError
		invalidIndex  *interview.InvalidIndexError
		resumeMissing *interview.ResumeMissingError
	)
	if errors.As(err, &notFound) || errors.As(err, &invalidIndex) || errors.As(err, &resumeMissing) {
		return err
	}
	t.logger.Error("tool failed", zap.String("tool", tool), zap.Error(err))
	return fmt.Errorf("%s failed", tool)
}
