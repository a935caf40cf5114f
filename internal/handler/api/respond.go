package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stroymart/backend/internal/domain"
	"github.com/stroymart/backend/internal/middleware"
)

// errorResponse is the JSON body every failed request gets.
type errorResponse struct {
	Error     string `json:"error"`
	ProductID int64  `json:"productId,omitempty"`
	Available int32  `json:"available,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps domain error codes onto HTTP statuses. Internal
// errors are logged and hidden behind a generic message; everything
// else surfaces its domain message.
func respondError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	body := errorResponse{Error: domain.ErrorMessage(err)}

	var status int
	switch domain.ErrorCode(err) {
	case domain.EINVALID:
		status = http.StatusBadRequest
	case domain.ENOTFOUND:
		status = http.StatusNotFound
	case domain.ECONFLICT:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		body.Error = "Internal server error"
	}

	var stockErr *domain.StockError
	if errors.As(err, &stockErr) {
		body.ProductID = stockErr.ProductID
		body.Available = stockErr.Available
	}

	respondJSON(w, status, body)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Invalid("api.decode", "invalid request body")
	}
	return nil
}
