package config

// Config represents the full application configuration.
type Config struct {
	Git     GitConfig     `yaml:"git"`
	Report  ReportConfig  `yaml:"report"`
	Quality QualityConfig `yaml:"quality"`
}

// GitConfig controls how the diff under inspection is produced.
type GitConfig struct {
	// CompareBranch is the diff base; the diff covers everything between it
	// and the working tree.
	CompareBranch string `yaml:"compareBranch"`
	// RepositoryDir locates the repository; defaults to the current
	// directory, with the root discovered upward from it.
	RepositoryDir string `yaml:"repositoryDir"`
}

// ReportConfig controls thresholds and artifacts.
type ReportConfig struct {
	// FailUnder is the minimum overall percentage for a passing exit code.
	// Zero means no threshold: always pass.
	FailUnder float64 `yaml:"failUnder"`
	// HTMLPath, when set, is where the HTML report is written.
	HTMLPath string `yaml:"htmlPath"`
	// CSSPath, when set, externalizes the report stylesheet to this path.
	CSSPath string `yaml:"cssPath"`
}

// QualityConfig holds defaults for quality-tool invocation.
type QualityConfig struct {
	// Options is a raw flag string passed through to the quality tool.
	Options string `yaml:"options"`
	// Excludes are glob patterns removing files from quality runs.
	Excludes []string `yaml:"excludes"`
}
