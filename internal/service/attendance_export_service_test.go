package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
	"github.com/Junior-NGOY/masomo-sub003/internal/repository"
	appErrors "github.com/Junior-NGOY/masomo-sub003/pkg/errors"
)

func seedRecords(t *testing.T, store *repository.MemoryStore, records ...models.DailyAttendanceRecord) {
	t.Helper()
	require.NoError(t, store.WithinTx(context.Background(), func(tx repository.AttendanceTx) error {
		for i := range records {
			if _, err := tx.UpsertRecord(context.Background(), &records[i]); err != nil {
				return err
			}
		}
		return nil
	}))
}

func newExportServiceForTest(t *testing.T, store *repository.MemoryStore) *AttendanceExportService {
	t.Helper()
	kinshasa := time.FixedZone("WAT", 3600)
	svc := NewAttendanceExportService(store, nil, nil, kinshasa, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 3, 20, 9, 0, 0, 0, kinshasa) }
	return svc
}

func TestStatusLabelRoundTrip(t *testing.T) {
	for _, status := range models.AttendanceStatuses {
		label := StatusLabel(status)
		back, ok := ParseStatusLabel(label)
		require.True(t, ok, label)
		assert.Equal(t, status, back)
	}
	assert.Equal(t, "Présent", StatusLabel(models.AttendanceStatusPresent))
	assert.Equal(t, "En retard", StatusLabel(models.AttendanceStatusLate))
	_, ok := ParseStatusLabel("Malade")
	assert.False(t, ok)
}

func TestExportRangeRoundTrip(t *testing.T) {
	store := repository.NewMemoryStore()
	at := time.Date(2024, 3, 4, 7, 30, 0, 0, time.UTC)
	arrival := "08:10"
	source := []models.DailyAttendanceRecord{
		{StudentID: "s1", StudentName: "Amani", ClassName: "6A", Date: "2024-03-04", Status: models.AttendanceStatusPresent, RecordedByName: "Mme Kabila", RecordedAt: at},
		{StudentID: "s2", StudentName: "Baraka", ClassName: "6A", Date: "2024-03-04", Status: models.AttendanceStatusAbsent, RecordedByName: "Mme Kabila", RecordedAt: at, ParentNotified: true},
		{StudentID: "s3", StudentName: "Chance", ClassName: "6A", Date: "2024-03-05", Status: models.AttendanceStatusLate, ArrivalTime: &arrival, RecordedByName: "Mme Kabila", RecordedAt: at},
		{StudentID: "s4", StudentName: "Dieudonné", ClassName: "6B", Date: "2024-03-05", Status: models.AttendanceStatusExcused, RecordedByName: "M. Ilunga", RecordedAt: at},
		{StudentID: "s5", StudentName: "Esther", ClassName: "6A", Date: "2024-02-28", Status: models.AttendanceStatusPresent, RecordedByName: "Mme Kabila", RecordedAt: at},
	}
	seedRecords(t, store, source...)
	svc := newExportServiceForTest(t, store)

	rows, window, err := svc.ExportRange(context.Background(), "", "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", window.StartDate)
	require.Len(t, rows, 4)

	type triple struct {
		studentID string
		date      string
		status    models.AttendanceStatus
	}
	want := map[triple]bool{}
	for _, r := range source[:4] {
		want[triple{r.StudentID, r.Date, r.Status}] = true
	}
	for _, row := range rows {
		status, ok := ParseStatusLabel(row.Status)
		require.True(t, ok)
		assert.True(t, want[triple{row.StudentID, row.Date, status}], "unexpected row %+v", row)
	}

	assert.Equal(t, "s1", rows[0].StudentID)
	assert.Equal(t, "04/03/2024 08:30", rows[0].RecordedAt)
	assert.Equal(t, "Non", rows[0].ParentNotified)
	assert.Equal(t, "Oui", rows[1].ParentNotified)
	assert.Equal(t, "08:10", rows[2].ArrivalTime)
	assert.Equal(t, "6B", rows[3].ClassName)
}

func TestExportRangeDefaultsAndValidation(t *testing.T) {
	svc := newExportServiceForTest(t, repository.NewMemoryStore())

	window, err := svc.ResolveRange(" 6A ", "", "")
	require.NoError(t, err)
	assert.Equal(t, ExportRange{ClassName: "6A", StartDate: "2024-03-01", EndDate: "2024-03-20"}, window)

	_, err = svc.ResolveRange("", "2024-03-10", "2024-03-01")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.ResolveRange("", "03/01/2024", "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestRenderFormats(t *testing.T) {
	store := repository.NewMemoryStore()
	seedRecords(t, store, models.DailyAttendanceRecord{
		StudentID: "s1", StudentName: "Amani", ClassName: "6A", Date: "2024-03-04",
		Status: models.AttendanceStatusExcused, RecordedByName: "Mme Kabila", RecordedAt: time.Now(),
	})
	svc := newExportServiceForTest(t, store)
	window := ExportRange{ClassName: "6A", StartDate: "2024-03-01", EndDate: "2024-03-31"}

	csvOut, err := svc.Render(context.Background(), models.ExportFormatCSV, window)
	require.NoError(t, err)
	assert.Equal(t, 1, csvOut.Rows)
	assert.Equal(t, "presences_6A_2024-03-01_2024-03-31.csv", csvOut.Filename)
	assert.Contains(t, csvOut.ContentType, "text/csv")
	body := string(csvOut.Body)
	assert.True(t, strings.Contains(body, "Excusé"))
	assert.True(t, strings.Contains(body, "Élève"))

	pdfOut, err := svc.Render(context.Background(), models.ExportFormatPDF, window)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdfOut.ContentType)
	assert.True(t, strings.HasPrefix(string(pdfOut.Body), "%PDF"))

	_, err = svc.Render(context.Background(), models.ExportFormat("xlsx"), window)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "na", sanitizeFilename(""))
	assert.Equal(t, "6e_A-B", sanitizeFilename("6e A/B"))
	assert.Equal(t, "Sixième", sanitizeFilename("Sixième"))

	long := sanitizeFilename("a" + strings.Repeat("é", 80))
	assert.True(t, utf8.ValidString(long))
	assert.Len(t, long, 99)
	assert.True(t, strings.HasSuffix(long, "é"))

	ascii := sanitizeFilename(strings.Repeat("x", 150))
	assert.Len(t, ascii, maxFilenameScope)
}
