package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnvFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.env")
	content := "# comment\nCLIPSHIP_ENV_NEW=fresh\nCLIPSHIP_ENV_KEEP=\"from-file\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CLIPSHIP_ENV_KEEP", "from-process")
	t.Cleanup(func() { _ = os.Unsetenv("CLIPSHIP_ENV_NEW") })

	LoadEnvFromFile(filepath.Join(dir, "missing.env"), path)

	require.Equal(t, "fresh", os.Getenv("CLIPSHIP_ENV_NEW"))
	require.Equal(t, "from-process", os.Getenv("CLIPSHIP_ENV_KEEP"))
}
