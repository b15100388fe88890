package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bisoye/docvault/internal/model"
)

// DocumentServiceInterface はドキュメントハンドラーが必要とするサービスインターフェース。
type DocumentServiceInterface interface {
	Create(ctx context.Context, content, permittedRole string) (*model.Document, error)
	GetAll(ctx context.Context, limit int) ([]model.DocumentView, error)
	GetAllByRole(ctx context.Context, role string, limit int) ([]model.DocumentView, error)
	GetAllByDate(ctx context.Context, date string, limit int) ([]model.DocumentView, error)
	DropAll(ctx context.Context) error
}

// DocumentHandler はドキュメント管理のHTTPハンドラー。
type DocumentHandler struct {
	service DocumentServiceInterface
}

// NewDocumentHandler はDocumentHandlerを生成する。
func NewDocumentHandler(service DocumentServiceInterface) *DocumentHandler {
	return &DocumentHandler{
		service: service,
	}
}

// createDocumentRequest はドキュメント作成リクエストのボディ。
// dateCreatedはサーバー側で付与するため受け付けない。
type createDocumentRequest struct {
	Content   string `json:"content"`
	Permitted string `json:"permitted"`
}

// CreateDocument はドキュメントを作成する。作成日はサーバーの現在日付で刻印する。
// POST /api/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStoreErrorResponse(w, http.StatusBadRequest, &model.StoreError{
			Code:     model.ErrCodeValidation,
			Message:  "リクエストボディをJSONとして解釈できません。",
			Category: "validation",
			Action:   "リクエストボディの形式を確認してください。",
		})
		return
	}

	doc, err := h.service.Create(r.Context(), req.Content, req.Permitted)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, doc.View())
}

// ListDocuments は全ドキュメントを新しい順で返す。
// limitクエリパラメータで件数を制限できる。
// GET /api/documents?limit=N
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit, storeErr := parseLimitParam(r)
	if storeErr != nil {
		writeStoreErrorResponse(w, http.StatusBadRequest, storeErr)
		return
	}

	docs, err := h.service.GetAll(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, docs)
}

// ListDocumentsByRole は閲覧許可ロールで絞り込んだドキュメントを新しい順で返す。
// GET /api/documents/role/{role}?limit=N
func (h *DocumentHandler) ListDocumentsByRole(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")

	limit, storeErr := parseLimitParam(r)
	if storeErr != nil {
		writeStoreErrorResponse(w, http.StatusBadRequest, storeErr)
		return
	}

	docs, err := h.service.GetAllByRole(r.Context(), role, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, docs)
}

// ListDocumentsByDate は作成日で絞り込んだドキュメントを新しい順で返す。
// 日付は刻印時と同じ正規化を通してから比較する。
// GET /api/documents/date/{date}?limit=N
func (h *DocumentHandler) ListDocumentsByDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	limit, storeErr := parseLimitParam(r)
	if storeErr != nil {
		writeStoreErrorResponse(w, http.StatusBadRequest, storeErr)
		return
	}

	docs, err := h.service.GetAllByDate(r.Context(), date, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, docs)
}

// DropDocuments は全ドキュメントを削除する。
// DELETE /api/documents
func (h *DocumentHandler) DropDocuments(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DropAll(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
