package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledger-recon-engine/internal/domain"
	"ledger-recon-engine/internal/service"
	"ledger-recon-engine/pkg/logger"
	"ledger-recon-engine/pkg/response"
)

// TransactionHandler exposes a standalone parse/preview endpoint so a
// client can validate a CSV file's shape before submitting it as part of a
// /reconcile request.
type TransactionHandler struct {
	ingest    service.IngestService
	batchSize int
}

func NewTransactionHandler(ingest service.IngestService, batchSize int) *TransactionHandler {
	return &TransactionHandler{ingest: ingest, batchSize: batchSize}
}

type ParseTransactionsRequest struct {
	Side      string   `json:"side" binding:"required,oneof=BANK LEDGER"`
	FilePaths []string `json:"file_paths" binding:"required,min=1"`
}

// ParseTransactions godoc
// @Summary Parse transaction CSV files
// @Description Parse one side's CSV files and return the decoded transactions, without reconciling them
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body ParseTransactionsRequest true "Files to parse"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/transactions/parse [post]
func (h *TransactionHandler) ParseTransactions(c *gin.Context) {
	var req ParseTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithError(err).Error("Invalid request")
		response.ValidationError(c, err.Error())
		return
	}

	txs, err := h.ingest.ParseFiles(domain.Side(req.Side), req.FilePaths, h.batchSize)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to parse transactions")
		response.InternalError(c, "Failed to parse transactions", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Transactions parsed successfully", map[string]interface{}{
		"count":        len(txs),
		"transactions": txs,
	})
}
