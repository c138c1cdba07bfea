package gitpath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/internal/gitpath"
)

func TestFromRoot_PassesThrough(t *testing.T) {
	r, err := gitpath.NewResolver("/repo", "/repo")
	require.NoError(t, err)

	assert.Equal(t, "src/main.py", r.FromRoot("src/main.py"))
	assert.Equal(t, "src/main.py", r.FromRoot("./src/main.py"))
	assert.Equal(t, "src/main.py", r.FromRoot("src\\main.py"))
}

func TestFromInvocation_PrefixesOffset(t *testing.T) {
	r, err := gitpath.NewResolver("/repo", "/repo/sub")
	require.NoError(t, err)

	assert.Equal(t, "sub/file1.py", r.FromInvocation("file1.py"))
	assert.Equal(t, "sub/pkg/file2.py", r.FromInvocation("pkg/file2.py"))
}

func TestFromInvocation_AtRootIsIdentity(t *testing.T) {
	r, err := gitpath.NewResolver("/repo", "/repo")
	require.NoError(t, err)

	assert.Equal(t, "file1.py", r.FromInvocation("file1.py"))
}

func TestFromAbsolute_StripsRoot(t *testing.T) {
	r, err := gitpath.NewResolver("/repo", "/repo/sub")
	require.NoError(t, err)

	assert.Equal(t, "sub/file1.py", r.FromAbsolute("/repo/sub/file1.py"))
	assert.Equal(t, "file2.py", r.FromAbsolute("/repo/file2.py"))
}

func TestFromAbsolute_OutsideRootStaysVisible(t *testing.T) {
	r, err := gitpath.NewResolver("/repo", "/repo")
	require.NoError(t, err)

	// Not silently mapped into the repository; the later join fails loudly.
	assert.Equal(t, "elsewhere/file.py", r.FromAbsolute("/elsewhere/file.py"))
}

func TestFromAbsolute_WindowsSeparators(t *testing.T) {
	r, err := gitpath.NewResolver("/code/samplediff", "/code/samplediff")
	require.NoError(t, err)

	assert.Equal(t, "Project/Program.cs", r.FromAbsolute("/code/samplediff/Project\\Program.cs"))
}

func TestNewResolver_InvocationOutsideRoot(t *testing.T) {
	_, err := gitpath.NewResolver("/repo", "/other")
	require.Error(t, err)
}
