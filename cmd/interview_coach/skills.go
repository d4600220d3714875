package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/interview-coach/internal/fetch"
	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/skills"
	"github.com/spf13/cobra"
)

var (
	skillsVocabulary string
	skillsJSON       bool
)

var skillsCmd = &cobra.Command{
	Use:   "skills <resume-file-or-url>",
	Short: "Extract skills from a résumé file or URL",
	Long: `Reads a PDF, DOCX, HTML or text résumé, from disk or downloaded from an http(s) URL,
and prints the skills that new interviews would be generated from. No database is needed.`,
	Args: cobra.ExactArgs(1),
	RunE: runSkills,
}

func init() {
	skillsCmd.Flags().StringVar(&skillsVocabulary, "vocabulary", "", "YAML vocabulary file (default: built-in vocabulary)")
	skillsCmd.Flags().BoolVar(&skillsJSON, "output-json", false, "Print the result as JSON")
	rootCmd.AddCommand(skillsCmd)
}

func runSkills(cmd *cobra.Command, args []string) error {
	vocab := skills.DefaultVocabulary()
	if skillsVocabulary != "" {
		loaded, err := skills.LoadVocabulary(skillsVocabulary)
		if err != nil {
			return err
		}
		vocab = loaded
	}

	extractor := ingestion.NewExtractor(nil)
	var doc *ingestion.Document
	if fetch.IsURL(args[0]) {
		remote, err := fetch.Resume(cmd.Context(), args[0], nil)
		if err != nil {
			return err
		}
		doc = extractor.Ingest(remote.Filename, remote.Data)
	} else {
		var err error
		doc, err = extractor.IngestFile(args[0])
		if err != nil {
			return err
		}
	}
	found := skills.NewExtractor(vocab).Extract(doc.Text)

	out := cmd.OutOrStdout()
	if skillsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"file":   doc.Filename,
			"format": doc.Format,
			"skills": found,
		})
	}

	fmt.Fprintf(out, "File:   %s (%s)\n", doc.Filename, doc.Format)
	fmt.Fprintf(out, "Skills: %s\n", strings.Join(found, ", "))
	return nil
}
