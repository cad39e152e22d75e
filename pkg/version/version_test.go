package version_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/covscope/covscope/pkg/version"
)

func TestInitBinaryVersion_LeavesValuesUsable(t *testing.T) {
	t.Parallel()

	version.InitBinaryVersion()

	require.NotEmpty(t, version.Version)
	require.NotEmpty(t, version.Commit)
	require.NotEmpty(t, version.Date)
}
