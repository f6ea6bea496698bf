package dto

import (
	"time"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
)

// OpenSessionRequest captures POST /attendance/sessions payload. The teacher
// is taken from the bearer token.
type OpenSessionRequest struct {
	ClassName string `json:"className" binding:"required"`
	Date      string `json:"date,omitempty"`
}

// RecordStatusRequest captures POST /attendance/sessions/:id/records payload.
type RecordStatusRequest struct {
	StudentID   string  `json:"studentId" binding:"required"`
	StudentName string  `json:"studentName"`
	ClassName   string  `json:"className,omitempty"`
	Date        string  `json:"date,omitempty"`
	Status      string  `json:"status" binding:"required"`
	Notes       *string `json:"notes,omitempty"`
	ArrivalTime *string `json:"arrivalTime,omitempty"`
}

// BulkRecordItem is one student of a bulk write.
type BulkRecordItem struct {
	StudentID   string  `json:"studentId"`
	StudentName string  `json:"studentName"`
	Status      string  `json:"status"`
	Notes       *string `json:"notes,omitempty"`
	ArrivalTime *string `json:"arrivalTime,omitempty"`
}

// RecordBulkRequest captures POST /attendance/sessions/:id/records/bulk payload.
type RecordBulkRequest struct {
	Items []BulkRecordItem `json:"items" binding:"required"`
}

// CompleteSessionRequest captures POST /attendance/sessions/:id/complete
// payload. An empty body completes with auto-marking enabled.
type CompleteSessionRequest struct {
	MarkUnmarkedAsAbsent *bool   `json:"markUnmarkedAsAbsent,omitempty"`
	Notes                *string `json:"notes,omitempty"`
}

// ExportJobRequest captures POST /attendance/exports payload.
type ExportJobRequest struct {
	Format    models.ExportFormat `json:"format"`
	ClassName *string             `json:"className,omitempty"`
	StartDate string              `json:"startDate,omitempty"`
	EndDate   string              `json:"endDate,omitempty"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportJobStatusResponse exposes job progress metadata.
type ExportJobStatusResponse struct {
	ID         string                 `json:"id"`
	Format     models.ExportFormat    `json:"format"`
	Params     models.ExportJobParams `json:"params"`
	Status     models.ExportStatus    `json:"status"`
	Progress   int                    `json:"progress"`
	ResultURL  *string                `json:"resultUrl,omitempty"`
	Error      *string                `json:"error,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
	FinishedAt *time.Time             `json:"finishedAt,omitempty"`
}
