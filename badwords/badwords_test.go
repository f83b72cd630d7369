package badwords

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	t.Cleanup(Reset)
	Reset()
	assert.False(t, Contains("anything goes"))

	Add("Scam")
	assert.True(t, Contains("this is a SCAM!"))
	assert.True(t, Contains("scam"))
	assert.False(t, Contains("scampi for dinner"))

	assert.True(t, Remove("scam"))
	assert.False(t, Remove("scam"))
	assert.False(t, Contains("scam"))
}

func TestLoad(t *testing.T) {
	t.Cleanup(Reset)
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nfoo\n\n  Bar  \n"), 0o600))

	require.NoError(t, Load(path))
	assert.True(t, Contains("a bar b"))
	assert.True(t, Contains("foo"))
	assert.False(t, Contains("comment"))

	assert.Error(t, Load(filepath.Join(t.TempDir(), "missing.txt")))
}
