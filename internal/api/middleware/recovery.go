package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/matchcore/orderbook/internal/api/logger"
	"github.com/matchcore/orderbook/internal/api/models"
)

// Recovery converts a panic below it into a 500 response. The matching core
// panics only on internal book corruption, so the full stack goes to the
// log before the client sees a generic failure.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			cause := recover()
			if cause == nil {
				return
			}
			logger.Error("Panic recovered", map[string]interface{}{
				"panic":  fmt.Sprintf("%v", cause),
				"method": r.Method,
				"path":   r.URL.Path,
				"stack":  string(debug.Stack()),
			})
			writeInternalError(w)
		}()

		next.ServeHTTP(w, r)
	})
}

func writeInternalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(models.BaseResponse{
		Success:   false,
		Timestamp: time.Now().UTC(),
		Message:   "Internal server error",
		Error: &models.APIError{
			Code:    models.ErrInternalError,
			Message: "An unexpected error occurred",
		},
	})
}
