// Package diff parses unified diff text into a changeset of files and
// added-line numbers. It understands git's file-section headers, renames,
// /dev/null markers for additions and deletions, binary-file markers,
// hunk-less sections (mode changes, pure renames), and C-style quoted
// non-ASCII paths.
package diff
