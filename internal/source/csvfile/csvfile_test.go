package csvfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/hejijunhao/labelprep/internal/source"
)

func TestDecode(t *testing.T) {
	data := []byte("id,text,final_label,annotator_1\n" +
		"a1,\"pills, cheap\",\"['drugs', 'weapon']\",drugs\n" +
		",,,\n" +
		"a2,\"two\nlines\",['games'],\n")

	tbl, err := Format{}.Decode(data, source.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "text", "final_label", "annotator_1"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)

	assert.Equal(t, 2, tbl.Rows[0].Line)
	assert.Equal(t, []string{"a1", "pills, cheap", "['drugs', 'weapon']", "drugs"}, tbl.Rows[0].Values)

	assert.Equal(t, 4, tbl.Rows[1].Line)
	assert.Equal(t, "two\nlines", tbl.Rows[1].Value(1))
}

func TestDecodeRaggedRows(t *testing.T) {
	tbl, err := Format{}.Decode([]byte("id,text,final_label\na,b\n"), source.Options{})
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "", tbl.Rows[0].Value(2))
}

func TestDecodeLegacyCharset(t *testing.T) {
	utf8 := "id,text,final_label\n1,café naïve,['drugs']\n"
	encoded, err := charmap.Windows1252.NewEncoder().String(utf8)
	require.NoError(t, err)

	tbl, err := Format{}.Decode([]byte(encoded), source.Options{Encoding: "windows-1252"})
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "café naïve", tbl.Rows[0].Value(1))
}

func TestDecodeErrors(t *testing.T) {
	_, err := Format{}.Decode(nil, source.Options{})
	assert.ErrorContains(t, err, "empty file")

	_, err = Format{}.Decode([]byte("id\n"), source.Options{Encoding: "klingon-8"})
	assert.ErrorContains(t, err, "klingon-8")
}

func TestRegistered(t *testing.T) {
	f, err := source.Get(".CSV")
	require.NoError(t, err)
	assert.IsType(t, Format{}, f)
}
