package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

const sampleCSV = `symbol,date,time,direction,entryPrice,exitPrice,quantity,charges,stopLoss,strategyUsed,mistakeChecklist,tags
RELIANCE,2024-01-02,09:20,Long,2450.5,2475.5,10,20,,ORB,FOMO;Early exit,breakout
TCS,2024-01-03,10:05,Short,3900,3880,5,15,3920,VWAP,,
`

func TestImportCSV(t *testing.T) {
	trades, err := ImportCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, trades, 2)

	first := trades[0]
	assert.Equal(t, "RELIANCE", first.Symbol)
	assert.Equal(t, "2450.5", first.EntryPrice)
	assert.Nil(t, first.StopLoss, "empty cells stay unset")
	assert.Nil(t, first.NetPnl, "missing columns stay unset")
	assert.Equal(t, []string{"FOMO", "Early exit"}, first.MistakeChecklist)
	assert.Equal(t, []string{"breakout"}, first.Tags)

	second := trades[1]
	assert.Equal(t, "Short", second.Direction)
	assert.Equal(t, "3920", second.StopLoss)
	assert.Nil(t, second.Tags)
}

func TestExportCSVRoundTrip(t *testing.T) {
	in := []models.RawTrade{
		{ID: "x", Symbol: "SBIN", Date: "2024-02-01", EntryPrice: 600.0, ExitPrice: 610.0, Quantity: 5.0, Tags: []any{"trend", "gap"}},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, in))

	out, err := ImportCSV(&buf)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "x", out[0].ID)
	assert.Equal(t, "600", out[0].EntryPrice)
	assert.Equal(t, []string{"trend", "gap"}, out[0].Tags)
}

func TestExportCSVKeepsPercentagesAndListEntries(t *testing.T) {
	in := []models.RawTrade{{
		ID:               "y",
		Symbol:           "INFY",
		Date:             "2024-02-02",
		GrossPnl:         1250.0,
		NetPnl:           1200.0,
		PnlPercentage:    2.4,
		MistakeChecklist: []string{"Late, chased entry", "Sized 2;1", `C:\notes`},
		Tags:             "gap,trend",
	}}

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, in))

	out, err := ImportCSV(&buf)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "1250", out[0].GrossPnl)
	assert.Equal(t, "2.4", out[0].PnlPercentage)
	assert.Equal(t, []string{"Late, chased entry", "Sized 2;1", `C:\notes`}, out[0].MistakeChecklist)
	assert.Equal(t, []string{"gap", "trend"}, out[0].Tags)
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "trades.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0644))
	trades, err := ImportFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, trades, 2)

	jsonPath := filepath.Join(dir, "trades.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"trades":[{"symbol":"TCS","date":"2024-01-02","netPnl":10}]}`), 0644))
	trades, err = ImportFile(jsonPath)
	require.NoError(t, err)
	assert.Len(t, trades, 1)

	txtPath := filepath.Join(dir, "trades.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("nope"), 0644))
	_, err = ImportFile(txtPath)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)
}
