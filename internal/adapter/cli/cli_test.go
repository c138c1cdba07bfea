package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/internal/adapter/cli"
	"github.com/diffscope/diffscope/internal/config"
	"github.com/diffscope/diffscope/internal/quality"
)

type fakeProducer struct {
	diff      string
	diffErr   error
	root      string
	untracked []string
}

func (f *fakeProducer) Diff(_ context.Context, _ string) (string, error) {
	return f.diff, f.diffErr
}

func (f *fakeProducer) UntrackedFiles(_ context.Context) ([]string, error) {
	return f.untracked, nil
}

func (f *fakeProducer) Root() (string, error) {
	return f.root, nil
}

const tenLineDiff = `diff --git a/subdir/file1.py b/subdir/file1.py
new file mode 100644
--- /dev/null
+++ b/subdir/file1.py
@@ -0,0 +1,10 @@
+line 1
+line 2
+line 3
+line 4
+line 5
+line 6
+line 7
+line 8
+line 9
+line 10
`

// Cobertura output for the diffed file: lines 3 and 7 uncovered.
const coberturaEightOfTen = `<?xml version="1.0"?>
<coverage line-rate="0.8">
  <sources><source>/repo</source></sources>
  <packages><package name="subdir"><classes>
    <class filename="subdir/file1.py" name="file1">
      <lines>
        <line number="1" hits="1"/>
        <line number="2" hits="1"/>
        <line number="3" hits="0"/>
        <line number="4" hits="1"/>
        <line number="5" hits="1"/>
        <line number="6" hits="1"/>
        <line number="7" hits="0"/>
        <line number="8" hits="1"/>
        <line number="9" hits="1"/>
        <line number="10" hits="1"/>
      </lines>
    </class>
  </classes></package></packages>
</coverage>
`

type harness struct {
	out, errOut bytes.Buffer
	deps        cli.Dependencies
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{}
	h.deps = cli.Dependencies{
		Producer: &fakeProducer{diff: tenLineDiff, root: "/repo"},
		Registry: quality.DefaultRegistry(),
		Args:     cli.Arguments{OutWriter: &h.out, ErrWriter: &h.errOut},
		Defaults: config.Config{},
		Getwd:    func() (string, error) { return "/repo", nil },
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	root := cli.NewRootCommand(h.deps)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func exitCode(err error) (int, bool) {
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

func TestCover_PassesAtThreshold(t *testing.T) {
	h := newHarness(t)
	report := writeFile(t, "coverage.xml", coberturaEightOfTen)

	err := h.run(t, "cover", report, "--fail-under=80")

	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "subdir/file1.py (80%): Missing lines 3,7")
	assert.Contains(t, h.out.String(), "Coverage: 80%")
}

func TestCover_FailsBelowThreshold(t *testing.T) {
	h := newHarness(t)
	report := writeFile(t, "coverage.xml", coberturaEightOfTen)

	err := h.run(t, "cover", report, "--fail-under=90")

	code, ok := exitCode(err)
	require.True(t, ok, "expected an exit error, got %v", err)
	assert.Equal(t, 1, code)
	assert.Contains(t, h.out.String(), "Coverage: 80%")
}

func TestCover_NoThresholdAlwaysPasses(t *testing.T) {
	h := newHarness(t)
	report := writeFile(t, "coverage.xml", coberturaEightOfTen)

	assert.NoError(t, h.run(t, "cover", report))
}

func TestCover_UnrecognizedReportSchema(t *testing.T) {
	h := newHarness(t)
	report := writeFile(t, "coverage.xml", "<lcov></lcov>")

	err := h.run(t, "cover", report)

	code, ok := exitCode(err)
	require.True(t, ok)
	assert.Equal(t, 1, code)
	assert.Contains(t, h.errOut.String(), "Failure: '")
}

func TestCover_DiffFromFile(t *testing.T) {
	h := newHarness(t)
	h.deps.Producer = &fakeProducer{diffErr: errors.New("git must not run"), root: "/repo"}
	diffPath := writeFile(t, "changes.diff", tenLineDiff)
	report := writeFile(t, "coverage.xml", coberturaEightOfTen)

	err := h.run(t, "cover", report, "--diff-file="+diffPath)

	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "Coverage: 80%")
}

func TestCover_GitFailureIsHardStop(t *testing.T) {
	h := newHarness(t)
	gitErr := errors.New("fatal: bad revision 'origin/missing'")
	h.deps.Producer = &fakeProducer{diffErr: gitErr, root: "/repo"}
	report := writeFile(t, "coverage.xml", coberturaEightOfTen)

	err := h.run(t, "cover", report)

	require.ErrorIs(t, err, gitErr)
	assert.Empty(t, h.out.String(), "no report rendered on a failed diff")
}

func TestCover_HTMLReportWritten(t *testing.T) {
	h := newHarness(t)
	report := writeFile(t, "coverage.xml", coberturaEightOfTen)
	htmlPath := filepath.Join(t.TempDir(), "report.html")

	require.NoError(t, h.run(t, "cover", report, "--html-report="+htmlPath))

	data, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Diff Coverage")
}

func TestCover_IncludeUntracked(t *testing.T) {
	h := newHarness(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "extra.py"), []byte("a = 1\nb = 2\n"), 0o644))
	h.deps.Producer = &fakeProducer{diff: tenLineDiff, root: root, untracked: []string{"extra.py"}}
	h.deps.Getwd = func() (string, error) { return root, nil }
	report := writeFile(t, "coverage.xml",
		strings.Replace(coberturaEightOfTen, "<source>/repo</source>", "<source>"+root+"</source>", 1))

	require.NoError(t, h.run(t, "cover", report, "--include-untracked"))

	out := h.out.String()
	assert.Contains(t, out, "extra.py (not found in report)")
	assert.Contains(t, out, "Coverage: 80%")
}

func TestQuality_PregeneratedReport(t *testing.T) {
	h := newHarness(t)
	violations := writeFile(t, "report.txt",
		"subdir/file1.py:3:1: E302 expected 2 blank lines, got 1\n")

	err := h.run(t, "quality", violations, "--violations=pycodestyle", "--fail-under=90")

	require.NoError(t, err)
	out := h.out.String()
	assert.Contains(t, out, "Quality Report: pycodestyle")
	assert.Contains(t, out, "subdir/file1.py:3: E302 expected 2 blank lines, got 1")
	assert.Contains(t, out, "Quality: 90%")
}

func TestQuality_SubdirectoryInvocation(t *testing.T) {
	h := newHarness(t)
	h.deps.Getwd = func() (string, error) { return "/repo/subdir", nil }
	// Paths in the tool's report are relative to where it ran.
	violations := writeFile(t, "report.txt",
		"file1.py:3:1: E302 expected 2 blank lines, got 1\n")

	err := h.run(t, "quality", violations, "--violations=pycodestyle")

	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "subdir/file1.py:3: E302")
}

func TestQuality_UnrecognizedTool(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, "quality", "--violations=garbage")

	code, ok := exitCode(err)
	require.True(t, ok)
	assert.Equal(t, 1, code)
	assert.Contains(t, h.errOut.String(), "Quality tool not recognized: 'garbage'")
}

func TestQuality_ToolNotInstalled(t *testing.T) {
	h := newHarness(t)
	h.deps.Registry.Register(quality.NewNoopDriver("not_installed", []string{"py"}, []string{"not_installed"}))

	err := h.run(t, "quality", "--violations=not_installed")

	code, ok := exitCode(err)
	require.True(t, ok)
	assert.Equal(t, 1, code)
	assert.Contains(t, h.errOut.String(), "Failure: 'not_installed is not installed'")
}

func TestQuality_PregeneratedSkipsInstallCheck(t *testing.T) {
	h := newHarness(t)
	h.deps.Registry.Register(quality.NewNoopDriver("not_installed", []string{"py"}, []string{"not_installed"}))
	violations := writeFile(t, "report.txt", "")

	err := h.run(t, "quality", violations, "--violations=not_installed")

	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "Quality: 100%")
}

func TestQuality_ViolationsFlagRequired(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, "quality")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "violations")
}

func TestRoot_VersionFlag(t *testing.T) {
	h := newHarness(t)
	h.deps.Version = "v1.2.3"

	err := h.run(t, "--version")

	require.ErrorIs(t, err, cli.ErrVersionRequested)
	assert.Equal(t, "v1.2.3", strings.TrimSpace(h.out.String()))
}

func TestRoot_DefaultsFlowIntoFlags(t *testing.T) {
	h := newHarness(t)
	h.deps.Defaults.Report.FailUnder = 90.0
	report := writeFile(t, "coverage.xml", coberturaEightOfTen)

	err := h.run(t, "cover", report)

	code, ok := exitCode(err)
	require.True(t, ok, "configured fail-under should apply without the flag")
	assert.Equal(t, 1, code)
}
