package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Title:    "Weekly Timetable",
		Subtitle: "Fitness 98.00",
		Headers:  []string{"Day", "Start", "End", "Subject"},
		Rows: [][]string{
			{"Monday", "09:00", "10:00", "CS101 Data Structures"},
			{"Tuesday", "11:00", "12:00", "CS102 Algorithms, Advanced"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	format, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, format)
	assert.Equal(t, "application/pdf", format.ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestCSVRendererQuotesValues(t *testing.T) {
	out, err := Render(FormatCSV, sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "Day,Start,End,Subject\nMonday,09:00,10:00,CS101 Data Structures\nTuesday,11:00,12:00,\"CS102 Algorithms, Advanced\"\n", string(out))
}

func TestCSVRendererRejectsRaggedRows(t *testing.T) {
	table := sampleTable()
	table.Rows = append(table.Rows, []string{"Friday"})
	_, err := NewCSVRenderer().Render(table)
	assert.Error(t, err)
}

func TestPDFRendererProducesDocument(t *testing.T) {
	out, err := Render(FormatPDF, sampleTable())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderersRequireHeaders(t *testing.T) {
	_, err := Render(FormatCSV, Table{})
	assert.Error(t, err)
	_, err = Render(FormatPDF, Table{})
	assert.Error(t, err)
}
