package cli

import (
	"github.com/spf13/cobra"

	"resumeforge/internal/assets"
	"resumeforge/internal/common"
	"resumeforge/internal/templates"
)

var renderCmd = &cobra.Command{
	Use:   "render [data.json]",
	Short: "Render a resume or cover letter to PDF",
	Long: `Render a resume (or, with --cover, a cover letter) from a JSON file.
Pass "-" or no file to read the document from standard input. The PDF is
written to the configured output directory under a name derived from
the applicant unless --output is given, and a build report describing pages,
sidebar placement and warnings is printed in the chosen format.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if renderConfig.OutputFormat == "" {
			renderConfig.OutputFormat = cfg.App.DefaultReportFormat
		}
		if err := common.ValidateOutputFormat(renderConfig.OutputFormat, cfg.App.SupportedFormats); err != nil {
			return err
		}
		return common.ValidatePageSize(renderConfig.PageSize)
	},
	RunE: runRender,
}

var (
	renderConfig common.RenderConfig
	renderCover  bool
)

func init() {
	renderCmd.Flags().StringVarP(&renderConfig.Output, "output", "o", "", "PDF output path (default: derived from the name)")
	renderCmd.Flags().StringVar(&renderConfig.Template, "template", "", "Template name (default: the document's template_name)")
	renderCmd.Flags().StringVar(&renderConfig.PageSize, "page-size", "", "Page size: A4 or Letter (default: the document's page_size)")
	renderCmd.Flags().StringVar(&renderConfig.OutputFormat, "report", "", "Build report format: json, text, or markdown")
	renderCmd.Flags().StringVar(&renderConfig.OutputFile, "report-file", "", "Write the build report to a file instead of stdout")
	renderCmd.Flags().BoolVar(&renderCover, "cover", false, "Render a cover letter instead of a resume")

	_ = renderCmd.RegisterFlagCompletionFunc("report", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = renderCmd.RegisterFlagCompletionFunc("page-size", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return common.PageSizes, cobra.ShellCompDirectiveNoFileComp
	})
	_ = renderCmd.RegisterFlagCompletionFunc("template", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if renderCover {
			return templates.CoverLetters().Names(), cobra.ShellCompDirectiveNoFileComp
		}
		return templates.Resumes(nil).Names(), cobra.ShellCompDirectiveNoFileComp
	})
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	input := common.StdinName
	if len(args) == 1 {
		input = args[0]
	}

	rc := renderConfig
	if rc.OutputDir == "" {
		rc.OutputDir = cfg.App.OutputDir
	}

	if renderCover {
		_, err := common.RunRenderCommand(cmd.Context(), logger,
			common.CoverLetterKind(templates.CoverLetters()), rc, input, cmd.OutOrStdout())
		return err
	}

	store := assets.NewStore(cfg.Assets.Dir, cfg.Assets.Debounce, logger)
	_, err := common.RunRenderCommand(cmd.Context(), logger,
		common.ResumeKind(templates.Resumes(store)), rc, input, cmd.OutOrStdout())
	return err
}
