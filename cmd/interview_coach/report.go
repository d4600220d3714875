package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report <interview-id>",
	Short: "Render a new report for an interview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid interview id %q: %w", args[0], err)
		}

		a, err := setup(cmd.Context(), "stderr")
		if err != nil {
			return err
		}
		defer a.Close()

		iv, err := a.store.GetInterview(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to load interview: %w", err)
		}
		if iv == nil {
			return fmt.Errorf("interview %s not found", id)
		}

		rep, err := a.interviews.GenerateReport(cmd.Context(), iv.OwnerID, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Overall: %.1f%%\nReport:  %s\n", rep.OverallScore, rep.ArtifactPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
