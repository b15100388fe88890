// Package handler はHTTP APIのハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bisoye/docvault/internal/model"
)

// storeErrorResponse はエラーレスポンスのJSON表現。
type storeErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeJSONResponse は結果をJSONで書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeStoreErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeStoreErrorResponse(w http.ResponseWriter, statusCode int, storeErr *model.StoreError) {
	writeJSONResponse(w, statusCode, storeErrorResponse{
		Code:     storeErr.Code,
		Message:  storeErr.Message,
		Category: storeErr.Category,
		Action:   storeErr.Action,
	})
}

// mapStoreErrorToHTTPStatus はエラーコードをHTTPステータスコードに対応付ける。
func mapStoreErrorToHTTPStatus(storeErr *model.StoreError) int {
	switch storeErr.Code {
	case model.ErrCodeValidation, model.ErrCodeInvalidDate:
		return http.StatusBadRequest
	case model.ErrCodeConstraintViolation:
		return http.StatusConflict
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var storeErr *model.StoreError
	if errors.As(err, &storeErr) {
		writeStoreErrorResponse(w, mapStoreErrorToHTTPStatus(storeErr), storeErr)
		return
	}

	// StoreError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeStoreErrorResponse(w, http.StatusInternalServerError, &model.StoreError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// parseLimitParam はクエリ文字列のlimitパラメータを解釈する。
// 省略時は負値（無制限）を返す。負値や非数値は400相当のエラーとして扱う。
func parseLimitParam(r *http.Request) (int, *model.StoreError) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return -1, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, &model.StoreError{
			Code:     model.ErrCodeValidation,
			Message:  "limitは0以上の整数で指定してください。",
			Category: "validation",
			Action:   "limitクエリパラメータを確認してください。",
		}
	}
	return limit, nil
}
