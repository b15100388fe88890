package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bisoye/docvault/internal/model"
)

// RoleServiceInterface はロールハンドラーが必要とするサービスインターフェース。
type RoleServiceInterface interface {
	AddRole(ctx context.Context, title string) (*model.Role, error)
	ListRoles(ctx context.Context) ([]*model.Role, error)
	DropAll(ctx context.Context) error
}

// RoleHandler はロール管理のHTTPハンドラー。
type RoleHandler struct {
	service RoleServiceInterface
}

// NewRoleHandler はRoleHandlerを生成する。
func NewRoleHandler(service RoleServiceInterface) *RoleHandler {
	return &RoleHandler{
		service: service,
	}
}

// createRoleRequest はロール作成リクエストのボディ。
type createRoleRequest struct {
	Title string `json:"title"`
}

// roleResponse はロールのJSON表現。
type roleResponse struct {
	Title string `json:"title"`
}

// CreateRole はロールを作成する。既存タイトルと重複する場合は409を返す。
// POST /api/roles
func (h *RoleHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStoreErrorResponse(w, http.StatusBadRequest, &model.StoreError{
			Code:     model.ErrCodeValidation,
			Message:  "リクエストボディをJSONとして解釈できません。",
			Category: "validation",
			Action:   "リクエストボディの形式を確認してください。",
		})
		return
	}

	role, err := h.service.AddRole(r.Context(), strings.TrimSpace(req.Title))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, roleResponse{Title: role.Title})
}

// ListRoles は全ロールを格納順で返す。
// GET /api/roles
func (h *RoleHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]roleResponse, len(roles))
	for i, role := range roles {
		results[i] = roleResponse{Title: role.Title}
	}

	writeJSONResponse(w, http.StatusOK, results)
}

// DropRoles は全ロールを削除する。依存する行が残っている場合は失敗する。
// DELETE /api/roles
func (h *RoleHandler) DropRoles(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DropAll(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
