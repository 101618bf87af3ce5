package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoredNameRoundTrip(t *testing.T) {
	name := StoredName("alice", "deadbeef01", "keygenme.zip")
	assert.Equal(t, "alice+++deadbeef01+++keygenme.zip", name)

	author, hexID, filename, err := ParseStoredName(name)
	require.NoError(t, err)
	assert.Equal(t, "alice", author)
	assert.Equal(t, "deadbeef01", hexID)
	assert.Equal(t, "keygenme.zip", filename)
}

func TestStoredNameStripsPath(t *testing.T) {
	name := StoredName("alice", "deadbeef01", "../../etc/passwd")
	assert.Equal(t, "alice+++deadbeef01+++passwd", name)
}

func TestParseStoredNameMalformed(t *testing.T) {
	for _, name := range []string{"", "noseparator", "a+++b", "+++b+++c", "a++++++c"} {
		_, _, _, err := ParseStoredName(name)
		assert.Error(t, err, "name %q", name)
	}
}

func TestSaveAndRemove(t *testing.T) {
	store := New(t.TempDir())
	name := StoredName("alice", "deadbeef01", "keygenme.zip")

	require.NoError(t, store.Save("crackme", name, strings.NewReader("payload")))
	data, err := os.ReadFile(store.Path("crackme", name))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, store.Remove("crackme", name))
	_, err = os.Stat(store.Path("crackme", name))
	assert.True(t, os.IsNotExist(err))

	// Removing again is not an error.
	assert.NoError(t, store.Remove("crackme", name))
}
