package artifacts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
)

func TestKeyedTable_MergeKeepsOrderAndReplacesInPlace(t *testing.T) {
	tbl := NewKeyedTable(1, nil)
	require.NoError(t, tbl.Parse(strings.NewReader("publish\ta\tA\r\npublish\tb\tB\n\npublish\tc\tC\n")))

	tbl.Merge(Row{"publish", "b", "B2"}, Row{"publish", "d", "D"})

	assert.Equal(t, []string{"a", "b", "c", "d"}, tbl.Keys())
	assert.Equal(t, "publish\ta\tA\npublish\tb\tB2\npublish\tc\tC\npublish\td\tD\n", string(tbl.Bytes()))
}

func TestKeyedTable_DuplicateKeysKeepFirstPositionLastValue(t *testing.T) {
	tbl := NewKeyedTable(0, nil)
	require.NoError(t, tbl.Parse(strings.NewReader("x\t1\ny\t2\nx\t3\n")))
	assert.Equal(t, []string{"x", "y"}, tbl.Keys())
	row, ok := tbl.Get("x")
	require.True(t, ok)
	assert.Equal(t, Row{"x", "3"}, row)
}

func TestKeyedTable_HeaderSkippedOnlyWhenMatching(t *testing.T) {
	header := Row{"Status", "Id"}

	tbl := NewKeyedTable(1, header)
	require.NoError(t, tbl.Parse(strings.NewReader("Status\tId\npublish\tp1\n")))
	assert.Equal(t, []string{"p1"}, tbl.Keys())
	assert.Equal(t, "Status\tId\npublish\tp1\n", string(tbl.Bytes()))

	headerless := NewKeyedTable(1, header)
	require.NoError(t, headerless.Parse(strings.NewReader("publish\tp0\npublish\tp1\n")))
	assert.Equal(t, []string{"p0", "p1"}, headerless.Keys(), "a first data row is not discarded")
}

func TestKeyedTable_ShortLineIsParseError(t *testing.T) {
	tbl := NewKeyedTable(1, nil)
	err := tbl.Parse(strings.NewReader("publish\tok\nlonely\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestKeyedTable_SanitizesFields(t *testing.T) {
	tbl := NewKeyedTable(0, nil)
	tbl.Merge(Row{"k", "multi\nline\twith tab"})
	assert.Equal(t, "k\tmulti line with tab\n", string(tbl.Bytes()))
}

func TestKeyedTable_LoadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Config", "table.tsv")

	tbl := NewKeyedTable(0, nil)
	require.NoError(t, tbl.Load(path), "missing file is an empty table")
	assert.Equal(t, 0, tbl.Len())

	tbl.Merge(Row{"a", "1"})
	require.NoError(t, tbl.Write(path))

	again := NewKeyedTable(0, nil)
	require.NoError(t, again.Load(path))
	assert.Equal(t, []string{"a"}, again.Keys())

	require.NoError(t, os.WriteFile(path, []byte("lonely\n"), 0o644))
	short := NewKeyedTable(1, nil)
	err := short.Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryArtifact))
}
