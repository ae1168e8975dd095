package responses

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/guirluz/rental-backend/internal/utils/errs"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"go.uber.org/zap"
)

// Envelope is the uniform body every endpoint returns.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func DoJSONResponse(w http.ResponseWriter, statusCode int, message string, data any) {
	body, err := json.Marshal(Envelope{
		Status:  statusCode,
		Message: message,
		Data:    data,
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		logger.Error("failed to marshal response",
			zap.String("function", "DoJSONResponse"),
			zap.Error(err),
		)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(statusCode)

	if _, err := w.Write(body); err != nil {
		logger.Error("failed to write response",
			zap.String("function", "DoJSONResponse"),
			zap.Error(err),
		)
	}
}

func DoBadResponseAndLog(w http.ResponseWriter, statusCode int, message string) {
	DoJSONResponse(w, statusCode, message, nil)

	logger.Warn("bad response",
		zap.Int("status", statusCode),
		zap.String("message", message),
	)
}

func ResponseErrorAndLog(w http.ResponseWriter, err error, funcName string) {
	switch {
	case errors.Is(err, errs.ErrTaskNotFound):
		DoBadResponseAndLog(w, http.StatusNotFound, "task not found")

	case errors.Is(err, errs.ErrUserNotFound):
		DoBadResponseAndLog(w, http.StatusNotFound, "user not found")

	case errors.Is(err, errs.ErrEmailTaken):
		DoBadResponseAndLog(w, http.StatusBadRequest, "email is already registered")

	case errors.Is(err, errs.ErrInvalidCredentials):
		DoBadResponseAndLog(w, http.StatusBadRequest, "invalid email or password")

	case errors.Is(err, errs.ErrInvalidToken):
		DoBadResponseAndLog(w, http.StatusUnauthorized, "invalid or expired token")

	case errors.Is(err, errs.ErrInvalidFileType):
		DoBadResponseAndLog(w, http.StatusBadRequest, "unsupported file format, only XLS/XLSX")

	case errors.Is(err, errs.ErrNoValidSheets):
		DoBadResponseAndLog(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, errs.ErrEmptyFields):
		DoBadResponseAndLog(w, http.StatusBadRequest, err.Error())

	default:
		DoBadResponseAndLog(w, http.StatusInternalServerError, "internal error")
		logger.Error(funcName,
			zap.String("error", err.Error()),
		)
	}
}
