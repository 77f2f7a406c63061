package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/karandomguy/Store-Monitoring-System/internal/domain/entity"
	"github.com/karandomguy/Store-Monitoring-System/internal/domain/usecase"
)

type ReportUseCase interface {
	TriggerReport(ctx context.Context) (*entity.Report, error)
	GetReport(ctx context.Context, reportID string) (*usecase.ReportResult, error)
	GetReportStatus(ctx context.Context, reportID string) (*entity.Report, error)
}

type ReportHandler struct {
	UseCase ReportUseCase
}

func NewReportHandler(u ReportUseCase) *ReportHandler {
	return &ReportHandler{UseCase: u}
}

// TriggerReport starts report generation and returns the id to poll.
func (h *ReportHandler) TriggerReport(c *gin.Context) {
	report, err := h.UseCase.TriggerReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report_id": report.ReportID})
}

// GetReport returns "Running" while the job is in flight, a download
// URL once it is Complete, or the failure message.
func (h *ReportHandler) GetReport(c *gin.Context) {
	reportID := c.Param("report_id")
	res, err := h.UseCase.GetReport(c.Request.Context(), reportID)
	if err != nil {
		if errors.Is(err, entity.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch res.Status {
	case entity.StatusComplete:
		c.JSON(http.StatusOK, gin.H{"status": res.Status, "report_url": res.ReportURL})
	case entity.StatusFailed:
		c.JSON(http.StatusOK, gin.H{"status": res.Status, "error_message": res.ErrorMessage})
	default:
		c.JSON(http.StatusOK, gin.H{"status": entity.StatusRunning})
	}
}

// GetReportStatus exposes the full report record for diagnostics.
func (h *ReportHandler) GetReportStatus(c *gin.Context) {
	reportID := c.Param("report_id")
	report, err := h.UseCase.GetReportStatus(c.Request.Context(), reportID)
	if err != nil {
		if errors.Is(err, entity.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}
