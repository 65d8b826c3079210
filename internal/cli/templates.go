package cli

import (
	"github.com/spf13/cobra"

	"resumeforge/internal/common"
	"resumeforge/internal/formatters"
	"resumeforge/internal/resume"
	"resumeforge/internal/templates"
)

var templatesConfig common.CommandConfig

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the available templates",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if templatesConfig.OutputFormat == "" {
			templatesConfig.OutputFormat = cfg.App.DefaultReportFormat
		}
		return common.ValidateOutputFormat(templatesConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLoggerFromContext(cmd.Context())
		list := formatters.TemplateList{
			resume.KindResume:      templates.Resumes(nil).List(),
			resume.KindCoverLetter: templates.CoverLetters().List(),
		}
		return common.NewOutputHandler(logger, cmd.OutOrStdout()).HandleOutput(list, templatesConfig)
	},
}

func init() {
	templatesCmd.Flags().StringVar(&templatesConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	templatesCmd.Flags().StringVarP(&templatesConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
}
