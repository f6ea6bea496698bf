package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Date", "Élève", "Statut"},
		Rows: []map[string]string{
			{"Date": "01/03/2024", "Élève": "Amani Kabila", "Statut": "Présent"},
			{"Date": "01/03/2024", "Élève": "Benoît Ilunga", "Statut": "En retard"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Date", "Élève", "Statut"}, records[0])
	assert.Equal(t, []string{"01/03/2024", "Benoît Ilunga", "En retard"}, records[2])
}

func TestCSVExporterSeparatorAndBOM(t *testing.T) {
	out, err := NewCSVExporter(WithSeparator(';'), WithBOM()).Render(sampleDataset())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, utf8BOM))

	r := csv.NewReader(bytes.NewReader(out[len(utf8BOM):]))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Présent", records[1][2])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Présences - 6A")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	_, err = NewPDFExporter().Render(Dataset{}, "")
	require.Error(t, err)
}
