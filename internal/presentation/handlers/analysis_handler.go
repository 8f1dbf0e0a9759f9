package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-analyzer/internal/application/services"
)

const maxRequestBodyBytes = 1 << 20

// AnalysisHandler handles HTTP requests for wallet analyses
type AnalysisHandler struct {
	service *services.AnalysisService
	logger  *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *services.AnalysisService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  logger,
	}
}

// AnalyzeRequest is the body of POST /api/v1/analyze.
// tokenAddress is accepted as an alias of token_address.
type AnalyzeRequest struct {
	Wallet            string `json:"wallet"`
	TokenAddress      string `json:"token_address"`
	TokenAddressCamel string `json:"tokenAddress"`
}

func (req AnalyzeRequest) token() string {
	if req.TokenAddress != "" {
		return req.TokenAddress
	}
	return req.TokenAddressCamel
}

// RegisterRoutes registers the analysis routes
func (h *AnalysisHandler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.Analyze)
}

// Analyze handles POST /api/v1/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	wallet := strings.TrimSpace(req.Wallet)
	token := strings.TrimSpace(req.token())

	response, err := h.service.Analyze(ctx, wallet, token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingAddress):
			h.respondError(w, http.StatusBadRequest, "Wallet and token address are required")
		case errors.Is(err, services.ErrInvalidWalletAddress):
			h.respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		case errors.Is(err, services.ErrInvalidTokenAddress):
			h.respondError(w, http.StatusBadRequest, "Invalid token address format")
		default:
			h.logger.Error("Failed to analyze wallet",
				zap.Error(err),
				zap.String("wallet", wallet),
				zap.String("token", token),
			)
			h.respondError(w, http.StatusInternalServerError, "Failed to analyze wallet")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

func (h *AnalysisHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *AnalysisHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
