package helpers

import (
	"encoding/json"
	"net/http"

	"tourbook/internal/apperrors"
	"tourbook/internal/logger"

	"go.uber.org/zap"
)

// ErrorResponse - единый формат ошибок: {"status":"fail|error","message":"..."}.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.Warn("Ошибка записи JSON-ответа", zap.Error(err))
	}
}

// Success оборачивает data в {"status":"success","data":...}.
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, SuccessResponse{Status: "success", Data: data})
}

// List - то же, что Success, плюс количество элементов.
func List(w http.ResponseWriter, n int, data any) {
	JSON(w, http.StatusOK, SuccessResponse{Status: "success", Results: &n, Data: data})
}

func Error(w http.ResponseWriter, status int, errMsg string) {
	text := "fail"
	if status >= http.StatusInternalServerError {
		text = "error"
	}
	JSON(w, status, ErrorResponse{Status: text, Message: errMsg})
}

// WriteError отдаёт операционные ошибки как есть, остальные - общим 500 без подробностей.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.WithCtx(r.Context())

	if ae, ok := apperrors.As(err); ok {
		if ae.Status >= http.StatusInternalServerError {
			log.Error("Операционная ошибка", zap.String("kind", string(ae.Kind)), zap.Error(err))
		} else {
			log.Debug("Ошибка клиента", zap.String("kind", string(ae.Kind)), zap.Error(err))
		}
		JSON(w, ae.Status, ErrorResponse{Status: ae.StatusText(), Message: ae.Message})
		return
	}

	log.Error("Непредвиденная ошибка", zap.String("path", r.URL.Path), zap.Error(err))
	Error(w, http.StatusInternalServerError, "Something went very wrong!")
}
