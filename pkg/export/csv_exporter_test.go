package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	payload, err := exporter.Render(Dataset{
		Headers: []string{"Date", "Class", "Student", "Status"},
		Rows: [][]string{
			{"2026-03-10", "Math 101", "Alice Chen", "present"},
			{"2026-03-10", "Math 101", "Diaz, Bob", "absent"},
		},
	})
	require.NoError(t, err)

	want := "Date,Class,Student,Status\n" +
		"2026-03-10,Math 101,Alice Chen,present\n" +
		"2026-03-10,Math 101,\"Diaz, Bob\",absent\n"
	assert.Equal(t, want, string(payload))
}

func TestCSVExporterRejectsRaggedRows(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{
		Headers: []string{"A", "B"},
		Rows:    [][]string{{"only one cell"}},
	})
	require.Error(t, err)
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()

	payload, err := exporter.Render(Dataset{
		Headers: []string{"Date", "Class", "Student", "Status"},
		Rows:    [][]string{{"2026-03-10", "Math 101", "Alice Chen", "present"}},
	}, "Attendance Records")
	require.NoError(t, err)
	assert.True(t, len(payload) > 0)
	assert.Equal(t, "%PDF", string(payload[:4]))
}
