package store

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONStore_WriteReadRoundTrip(t *testing.T) {
	st := NewJSONStore(t.TempDir())
	require.NoError(t, st.WriteRaw("entry/1/history.json", []byte(`{"current":[]}`), false))

	assert.True(t, st.Exists("entry/1/history.json"))
	b, err := st.ReadRaw("entry/1/history.json")
	require.NoError(t, err)
	assert.Equal(t, `{"current":[]}`, string(b))
}

func TestJSONStore_PrettyWrite(t *testing.T) {
	st := NewJSONStore(t.TempDir())
	require.NoError(t, st.WriteRaw("a.json", []byte(`{"a":1}`), true))
	b, err := st.ReadRaw("a.json")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "\n  \"a\": 1"))
}

func TestJSONStore_PrettyKeepsInvalidJSONVerbatim(t *testing.T) {
	st := NewJSONStore(t.TempDir())
	require.NoError(t, st.WriteRaw("bad.json", []byte(`not json`), true))
	b, err := st.ReadRaw("bad.json")
	require.NoError(t, err)
	assert.Equal(t, "not json", string(b))
}

func TestJSONStore_ReadMissing(t *testing.T) {
	st := NewJSONStore(t.TempDir())
	_, err := st.ReadRaw("missing.json")
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, st.Exists("missing.json"))
	assert.False(t, st.Fresh("missing.json", 0))
}

func TestJSONStore_Fresh(t *testing.T) {
	st := NewJSONStore(t.TempDir())
	require.NoError(t, st.WriteRaw("live.json", []byte(`{}`), false))

	assert.True(t, st.Fresh("live.json", 0))
	assert.True(t, st.Fresh("live.json", time.Minute))

	st.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.False(t, st.Fresh("live.json", time.Minute))
	assert.True(t, st.Fresh("live.json", 0))
}

func TestJSONStore_ReadJSON(t *testing.T) {
	st := NewJSONStore(t.TempDir())
	require.NoError(t, st.WriteRaw("x.json", []byte(`{"id":4}`), false))
	var v struct {
		ID int `json:"id"`
	}
	require.NoError(t, st.ReadJSON("x.json", &v))
	assert.Equal(t, 4, v.ID)

	require.NoError(t, st.WriteRaw("y.json", []byte(`[`), false))
	assert.ErrorContains(t, st.ReadJSON("y.json", &v), "decode y.json")
}

func TestJSONStore_OverwriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	st := NewJSONStore(dir)
	require.NoError(t, st.WriteRaw("a.json", []byte(`1`), false))
	require.NoError(t, st.WriteRaw("a.json", []byte(`2`), false))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.json", entries[0].Name())
}
