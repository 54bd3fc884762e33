package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ledger-recon-engine/internal/matcher"
	"ledger-recon-engine/internal/service"
	"ledger-recon-engine/pkg/logger"
	"ledger-recon-engine/pkg/response"
)

type ReconciliationHandler struct {
	service service.ReconciliationService
}

func NewReconciliationHandler(service service.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{service: service}
}

type ReconcileRequest struct {
	BankFilePaths   []string `json:"bank_file_paths" binding:"required,min=1"`
	LedgerFilePaths []string `json:"ledger_file_paths" binding:"required,min=1"`
	Mode            string   `json:"mode"`
	Stream          bool     `json:"stream"`
}

// Reconcile godoc
// @Summary Perform reconciliation
// @Description Reconcile bank statements against ledger entries
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param request body ReconcileRequest true "Reconciliation request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/reconcile [post]
func (h *ReconciliationHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithError(err).Error("Invalid request")
		response.ValidationError(c, err.Error())
		return
	}

	mode := matcher.ModeAccuracy
	if req.Mode != "" {
		mode = matcher.Mode(req.Mode)
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"bank_files":   req.BankFilePaths,
		"ledger_files": req.LedgerFilePaths,
		"mode":         mode,
	}).Info("Starting reconciliation")

	if req.Stream {
		h.reconcileStreaming(c, req, mode)
		return
	}

	result, err := h.service.Reconcile(req.BankFilePaths, req.LedgerFilePaths, mode, nil)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Reconciliation failed")
		if errors.Is(err, matcher.ErrInvalidInput) {
			response.ValidationError(c, err.Error())
			return
		}
		response.InternalError(c, "Reconciliation failed", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Reconciliation completed successfully", result)
}

// reconcileStreaming relays matcher progress over Server-Sent Events while
// the reconciliation runs on a background goroutine, then emits the final
// result as a terminal "done" event.
func (h *ReconciliationHandler) reconcileStreaming(c *gin.Context, req ReconcileRequest, mode matcher.Mode) {
	progressCh := make(chan int, len(matcher.ProgressSteps()))
	resultCh := make(chan streamOutcome, 1)

	go func() {
		result, err := h.service.Reconcile(req.BankFilePaths, req.LedgerFilePaths, mode, func(percent int) {
			progressCh <- percent
		})
		close(progressCh)
		resultCh <- streamOutcome{result: result, err: err}
	}()

	c.Stream(func(w gin.ResponseWriter) bool {
		percent, open := <-progressCh
		if !open {
			outcome := <-resultCh
			if outcome.err != nil {
				c.SSEvent("error", outcome.err.Error())
				return false
			}
			c.SSEvent("done", outcome.result)
			return false
		}
		c.SSEvent("progress", percent)
		return true
	})
}

type streamOutcome struct {
	result interface{}
	err    error
}

// GetJobStatus godoc
// @Summary Get reconciliation job status
// @Description Get the status of a reconciliation job by ID
// @Tags reconciliation
// @Produce json
// @Param job_id path string true "Job ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/reconcile/jobs/{job_id} [get]
func (h *ReconciliationHandler) GetJobStatus(c *gin.Context) {
	jobID := c.Param("job_id")

	job, err := h.service.GetJobStatus(jobID)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("job_id", jobID).Error("Job not found")
		response.NotFound(c, "Job not found")
		return
	}

	response.Success(c, http.StatusOK, "Job status retrieved successfully", job)
}

// GetJobSummary godoc
// @Summary Get reconciliation job summary
// @Description Get the detailed summary of a reconciliation job by ID
// @Tags reconciliation
// @Produce json
// @Param job_id path string true "Job ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/reconcile/jobs/{job_id}/summary [get]
func (h *ReconciliationHandler) GetJobSummary(c *gin.Context) {
	jobID := c.Param("job_id")

	summary, err := h.service.GetJobSummary(jobID)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("job_id", jobID).Error("Failed to get job summary")
		response.NotFound(c, "Job not found")
		return
	}

	response.Success(c, http.StatusOK, "Job summary retrieved successfully", summary)
}
