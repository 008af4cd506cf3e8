package handler

import (
	"context"
	"net/http"

	"github.com/iho/bankist/internal/adapter/http/dto"
	"github.com/iho/bankist/internal/domain"
	"github.com/iho/bankist/internal/usecase"
)

// TransferService defines the transfer operation used by TransferHandler.
type TransferService interface {
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transfer, error)
}

// TransferHandler handles transfer HTTP requests.
type TransferHandler struct {
	transferUC TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC TransferService) *TransferHandler {
	return &TransferHandler{transferUC: transferUC}
}

// Create sends money from the logged-in account.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	transfer, err := h.transferUC.Transfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(transfer))
}
