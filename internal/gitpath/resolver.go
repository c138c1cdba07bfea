// Package gitpath reconciles the three path forms that meet in a single run:
// diff paths (always repository-root-relative), annotation-report paths
// (root-relative, invocation-relative, or absolute, depending on the tool
// that wrote the report), and the directory the process was invoked from.
// All joins elsewhere in the program happen on the root-relative slash form
// this package produces.
package gitpath

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Resolver maps reported paths to canonical root-relative form. It is a pure
// value: both inputs are fixed once per run.
type Resolver struct {
	root   string // absolute repository root
	offset string // invocation dir relative to root, "" when invoked at root
}

// NewResolver builds a resolver for a repository root and the directory the
// process was invoked from. invocation must be inside root.
func NewResolver(root, invocation string) (Resolver, error) {
	root = filepath.ToSlash(filepath.Clean(root))
	invocation = filepath.ToSlash(filepath.Clean(invocation))

	offset, err := rel(root, invocation)
	if err != nil {
		return Resolver{}, fmt.Errorf("invocation dir %s not under repository root %s", invocation, root)
	}
	return Resolver{root: root, offset: offset}, nil
}

// Root returns the absolute repository root in slash form.
func (r Resolver) Root() string {
	return r.root
}

// FromRoot canonicalizes a path already relative to the repository root.
func (r Resolver) FromRoot(reported string) string {
	return clean(reported)
}

// FromInvocation rewrites a path relative to the invocation directory into
// root-relative form by prefixing the invocation offset.
func (r Resolver) FromInvocation(reported string) string {
	reported = clean(reported)
	if r.offset == "" {
		return reported
	}
	return path.Join(r.offset, reported)
}

// FromAbsolute rewrites an absolute path into root-relative form. Paths
// outside the repository root are returned cleaned but unanchored, so a
// mismatched report fails the later join visibly instead of silently.
func (r Resolver) FromAbsolute(reported string) string {
	reported = clean(reported)
	if stripped, err := rel(r.root, reported); err == nil {
		return stripped
	}
	return strings.TrimPrefix(reported, "/")
}

// clean converts separators to slashes and removes redundant elements.
func clean(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return path.Clean(p)
}

// rel returns target relative to base ("" when equal), or an error when
// target is not under base.
func rel(base, target string) (string, error) {
	if target == base {
		return "", nil
	}
	if strings.HasPrefix(target, base+"/") {
		return strings.TrimPrefix(target, base+"/"), nil
	}
	return "", fmt.Errorf("%s is not under %s", target, base)
}
