package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/common"
	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/resume"
)

// Subcommands keep the context of the first execution, so every test shares
// one configuration.
var testConfig = &config.Config{
	App: config.AppConfig{
		DefaultTemplate:     "professional",
		DefaultPageSize:     "Letter",
		DefaultReportFormat: "text",
		SupportedFormats:    []string{"json", "text", "markdown"},
		OutputDir:           ".",
	},
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	renderConfig = common.RenderConfig{}
	renderCover = false
	sampleCover = false
	templatesConfig = common.CommandConfig{}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	rootCmd.SetContext(withDependencies(context.Background(), testConfig, errors.Discard()))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "resumeforge version dev")
}

func TestTemplatesCommand(t *testing.T) {
	out, err := run(t, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "modern")
	assert.Contains(t, out, "cover")

	out, err = run(t, "templates", "--format", "json")
	require.NoError(t, err)
	var list map[string][]map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Len(t, list[resume.KindResume], 2)

	_, err = run(t, "templates", "--format", "yaml")
	assert.Error(t, err)
}

func TestSampleCommand(t *testing.T) {
	out, err := run(t, "sample")
	require.NoError(t, err)
	var r resume.Resume
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "professional", r.TemplateName)
	assert.Equal(t, "Letter", r.PageSize)
	assert.Equal(t, "John Doe", r.PersonalInfo.Name)

	out, err = run(t, "sample", "--cover")
	require.NoError(t, err)
	var letter resume.CoverLetter
	require.NoError(t, json.Unmarshal([]byte(out), &letter))
	assert.Equal(t, "cover", letter.TemplateName)
	assert.Equal(t, "Alex Morgan", letter.HiringManagerName)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()

	sample, err := run(t, "sample")
	require.NoError(t, err)
	input := filepath.Join(dir, "resume.json")
	require.NoError(t, os.WriteFile(input, []byte(sample), 0o600))

	pdf := filepath.Join(dir, "out", "resume.pdf")
	out, err := run(t, "render", input, "-o", pdf, "--report", "json", "--template", "modern", "--page-size", "A4")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "modern", report["template"])
	assert.Equal(t, "A4", report["page_size"])
	assert.Equal(t, pdf, report["output"])
	assert.FileExists(t, pdf)

	_, err = run(t, "render", input, "-o", pdf, "--report", "yaml")
	assert.Error(t, err)

	_, err = run(t, "render", input, "-o", pdf, "--page-size", "A3")
	assert.Error(t, err)
}

func TestRenderCoverLetterCommand(t *testing.T) {
	dir := t.TempDir()

	sample, err := run(t, "sample", "--cover")
	require.NoError(t, err)
	input := filepath.Join(dir, "letter.json")
	require.NoError(t, os.WriteFile(input, []byte(sample), 0o600))

	pdf := filepath.Join(dir, "letter.pdf")
	out, err := run(t, "render", "--cover", input, "-o", pdf)
	require.NoError(t, err)
	assert.Contains(t, out, "Template:  cover (cover_letter)")
	assert.FileExists(t, pdf)
}

func TestApplyServeOverrides(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "0.0.0.0", Port: "8000"},
	}

	v := viper.New()
	applyServeOverrides(cfg, v)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	v.Set("server.port", "9000")
	v.Set("assets.dir", "/srv/assets")
	applyServeOverrides(cfg, v)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "/srv/assets", cfg.Assets.Dir)
}
