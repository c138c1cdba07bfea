package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{t.TempDir()}})
	require.NoError(t, err)

	assert.Equal(t, "origin/main", cfg.Git.CompareBranch)
	assert.Equal(t, ".", cfg.Git.RepositoryDir)
	assert.Equal(t, 0.0, cfg.Report.FailUnder)
	assert.Empty(t, cfg.Report.HTMLPath)
	assert.Empty(t, cfg.Quality.Excludes)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `git:
  compareBranch: origin/develop
report:
  failUnder: 85.5
  htmlPath: build/report.html
quality:
  options: "--max-line-length=120"
  excludes:
    - "vendor/**"
    - "**/*_gen.py"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "diffscope.yaml"), []byte(content), 0o644))

	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, "origin/develop", cfg.Git.CompareBranch)
	assert.Equal(t, 85.5, cfg.Report.FailUnder)
	assert.Equal(t, "build/report.html", cfg.Report.HTMLPath)
	assert.Equal(t, "--max-line-length=120", cfg.Quality.Options)
	assert.Equal(t, []string{"vendor/**", "**/*_gen.py"}, cfg.Quality.Excludes)

	// Keys the file omits keep their defaults.
	assert.Equal(t, ".", cfg.Git.RepositoryDir)
}

func TestLoad_CustomFileName(t *testing.T) {
	dir := t.TempDir()
	content := "git:\n  compareBranch: origin/release\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(content), 0o644))

	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{dir}, FileName: "custom"})
	require.NoError(t, err)

	assert.Equal(t, "origin/release", cfg.Git.CompareBranch)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "diffscope.yaml"), []byte("git: [unclosed"), 0o644))

	_, err := config.Load(config.LoaderOptions{ConfigPaths: []string{dir}})
	assert.Error(t, err)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("DIFFSCOPE_TEST_OUT", "artifacts")
	dir := t.TempDir()
	content := "report:\n  htmlPath: ${DIFFSCOPE_TEST_OUT}/report.html\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "diffscope.yaml"), []byte(content), 0o644))

	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, "artifacts/report.html", cfg.Report.HTMLPath)
}

func TestLoad_UnsetEnvVarLeftIntact(t *testing.T) {
	dir := t.TempDir()
	content := "report:\n  htmlPath: ${DIFFSCOPE_TEST_UNSET_VAR}/report.html\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "diffscope.yaml"), []byte(content), 0o644))

	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, "${DIFFSCOPE_TEST_UNSET_VAR}/report.html", cfg.Report.HTMLPath)
}
