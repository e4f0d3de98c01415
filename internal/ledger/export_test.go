package ledger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	e := entry("1", "411", "701", 5000)
	e.Label = `Vente "gros"; lot 2`
	e.CompanyName = "Africanut Fish Market"

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []Entry{e}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "Date;Journal;"))
	require.Equal(t,
		`01/03/2025;OD;-;411 - Clients;701 - Ventes de produits finis;"Vente ""gros""; lot 2";5000;Africanut Fish Market;-;-`,
		lines[1])
}

func TestWriteLedgerCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLedgerCSV(&buf, Build([]Entry{entry("1", "601", "512", 1000)})))

	lines := strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 5)
	require.Equal(t, "512;Banque;01/03/2025;OD;-;entry 1;0;1000", lines[1])
	require.Equal(t, "512;Banque;;;;Total;0;1000", lines[2])
	require.Equal(t, "601;Achats de matières premières;;;;Total;1000;0", lines[4])
}

func TestWriteJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	require.Equal(t, "[]\n", buf.String())
}

func TestWriteDispatchesOnFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []Entry{entry("1", "411", "701", 5)}, "JSON"))
	var decoded []Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)

	require.ErrorIs(t, Write(&buf, nil, "xlsx"), ErrUnknownFormat)

	ct, ext, err := ContentType("ledger-csv")
	require.NoError(t, err)
	require.Equal(t, "csv", ext)
	require.Contains(t, ct, "text/csv")
}
