package version

// value is stamped at build time via -ldflags.
var value = "dev"

// Value returns the build version string.
func Value() string {
	return value
}
