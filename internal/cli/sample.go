package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"resumeforge/internal/resume"
)

var sampleCover bool

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print a sample resume or cover letter",
	Long: `Print a complete sample document as JSON. The output can be edited
and passed straight back to "render".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())

		var doc any
		if sampleCover {
			letter := resume.SampleCoverLetter()
			letter.PageSize = orDefault(cfg.App.DefaultPageSize, letter.PageSize)
			doc = letter
		} else {
			r := resume.SampleResume()
			r.TemplateName = orDefault(cfg.App.DefaultTemplate, r.TemplateName)
			r.PageSize = orDefault(cfg.App.DefaultPageSize, r.PageSize)
			doc = r
		}

		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode sample: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func init() {
	sampleCmd.Flags().BoolVar(&sampleCover, "cover", false, "Print a cover letter instead of a resume")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
