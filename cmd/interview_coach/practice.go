package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/report"
	"github.com/jonathan/interview-coach/internal/store"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	practiceUser      string
	practiceType      string
	practiceSkills    []string
	practiceInterview string
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run an interview in the terminal with typed answers",
	Long: `Starts (or resumes with --interview) an interview for an existing user and asks the
questions one by one. Answers are typed instead of recorded and are scored as they are
submitted. An empty answer pauses the session; resume it later with --interview.`,
	RunE: runPractice,
}

func init() {
	practiceCmd.Flags().StringVarP(&practiceUser, "user", "u", "", "Username of the candidate (required)")
	practiceCmd.Flags().StringVarP(&practiceType, "type", "t", "", "Interview type (default: interview.default_type)")
	practiceCmd.Flags().StringSliceVarP(&practiceSkills, "skills", "s", nil, "Skills to ask about instead of the stored résumé skills")
	practiceCmd.Flags().StringVar(&practiceInterview, "interview", "", "Resume an existing interview by ID")
	_ = practiceCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(practiceCmd)
}

// prompter asks the candidate for input.
type prompter interface {
	Answer(label string) (string, error)
	Confirm(label string) (bool, error)
}

// terminalPrompter reads from the terminal with promptui.
type terminalPrompter struct{}

func (terminalPrompter) Answer(label string) (string, error) {
	p := promptui.Prompt{Label: label}
	return p.Run()
}

func (terminalPrompter) Confirm(label string) (bool, error) {
	s := promptui.Select{Label: label, Items: []string{"Yes", "No"}}
	_, choice, err := s.Run()
	if err != nil {
		return false, err
	}
	return choice == "Yes", nil
}

// errStopped marks a session paused by the candidate.
var errStopped = errors.New("stopped")

func runPractice(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), "stderr")
	if err != nil {
		return err
	}
	defer a.Close()

	owner, err := resolveUser(cmd.Context(), a.store, practiceUser)
	if err != nil {
		return err
	}

	s := &practiceSession{
		svc:    a.interviews,
		owner:  owner.ID,
		prompt: terminalPrompter{},
		out:    cmd.OutOrStdout(),
	}
	return s.run(cmd.Context(), practiceInterview, practiceType, practiceSkills)
}

// resolveUser looks a user up by username.
func resolveUser(ctx context.Context, st store.Store, username string) (*types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("--user is required")
	}
	user, err := st.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %q not found", username)
	}
	return user, nil
}

// practiceSession drives one terminal interview.
type practiceSession struct {
	svc    *interview.Service
	owner  uuid.UUID
	prompt prompter
	out    io.Writer
}

func (s *practiceSession) run(ctx context.Context, resumeID, interviewType string, skillSet []string) error {
	id, next, err := s.begin(ctx, resumeID, interviewType, skillSet)
	if err != nil {
		return err
	}

	for index := next; ; index++ {
		view, err := s.svc.Question(ctx, s.owner, id, index)
		if err != nil {
			return err
		}
		if view.Complete {
			break
		}
		if view.Answered {
			continue
		}

		fmt.Fprintf(s.out, "\nQuestion %d/%d [%s]\n%s\n", index+1, view.Total, view.Question.Skill, view.Question.Question)
		answer, err := s.prompt.Answer("Answer (empty to pause)")
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, errStopped) {
			answer, err = "", nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(answer) == "" {
			fmt.Fprintf(s.out, "\nPaused. Resume with: interview_coach practice --user %s --interview %s\n", practiceUser, id)
			return nil
		}

		sub, err := s.svc.SubmitTranscript(ctx, s.owner, id, index, answer)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Score: %d/%d\n", sub.Score, sub.MaxScore)
		if sub.Feedback != "" {
			fmt.Fprintf(s.out, "Feedback: %s\n", sub.Feedback)
		}
	}

	return s.finish(ctx, id)
}

// begin starts a new interview or resumes an existing one, returning the first
// unanswered index.
func (s *practiceSession) begin(ctx context.Context, resumeID, interviewType string, skillSet []string) (uuid.UUID, int, error) {
	if resumeID != "" {
		id, err := uuid.Parse(resumeID)
		if err != nil {
			return uuid.Nil, 0, fmt.Errorf("invalid interview id %q: %w", resumeID, err)
		}
		progress, err := s.svc.Progress(ctx, s.owner, id)
		if err != nil {
			return uuid.Nil, 0, err
		}
		fmt.Fprintf(s.out, "Resuming interview %s (%d/%d answered)\n", id, progress.Answered, progress.Total)
		return id, progress.NextIndex, nil
	}

	var (
		iv  *types.Interview
		err error
	)
	if len(skillSet) > 0 {
		iv, err = s.svc.StartWithSkills(ctx, s.owner, skillSet, interviewType)
	} else {
		iv, err = s.svc.Start(ctx, s.owner, interviewType)
	}
	if err != nil {
		var missing *interview.ResumeMissingError
		if errors.As(err, &missing) {
			return uuid.Nil, 0, fmt.Errorf("no résumé on file: upload one or pass --skills")
		}
		return uuid.Nil, 0, err
	}
	fmt.Fprintf(s.out, "Started %s interview %s with %d questions\n", iv.Type, iv.ID, iv.QuestionCount())
	return iv.ID, 0, nil
}

func (s *practiceSession) finish(ctx context.Context, id uuid.UUID) error {
	agg, err := s.svc.Result(ctx, s.owner, id)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out, "\nInterview complete.")
	for _, skill := range agg.PerSkill {
		fmt.Fprintln(s.out, "  "+report.SkillLine(skill))
	}
	fmt.Fprintln(s.out, report.OverallLine(*agg))

	ok, err := s.prompt.Confirm("Generate a report?")
	if err != nil || !ok {
		return nil
	}
	rep, err := s.svc.GenerateReport(ctx, s.owner, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Report written to %s\n", rep.ArtifactPath)
	return nil
}
