package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bisoye/docvault/internal/model"
	"github.com/bisoye/docvault/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	Create(ctx context.Context, first, last, roleTitle string) (user.Status, error)
	GetAll(ctx context.Context) ([]*model.User, error)
	GetOne(ctx context.Context, name string) (*model.User, error)
	DropAll(ctx context.Context) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// createUserRequest はユーザー作成リクエストのボディ。
type createUserRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Role      string `json:"role"`
}

// createUserResponse はユーザー作成結果のJSON表現。
// ステータス文字列をそのまま返す。
type createUserResponse struct {
	Status string `json:"status"`
}

// userResponse はユーザーのJSON表現。
type userResponse struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Role      string `json:"role"`
}

// CreateUser はユーザーを作成する。検証結果はステータス文字列として返し、
// 検証で弾かれた場合も200でステータスを返す（エラーレスポンスにはしない）。
// POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStoreErrorResponse(w, http.StatusBadRequest, &model.StoreError{
			Code:     model.ErrCodeValidation,
			Message:  "リクエストボディをJSONとして解釈できません。",
			Category: "validation",
			Action:   "リクエストボディの形式を確認してください。",
		})
		return
	}

	status, err := h.service.Create(r.Context(), req.Firstname, req.Lastname, req.Role)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	statusCode := http.StatusOK
	if status == user.StatusCreated {
		statusCode = http.StatusCreated
	}

	writeJSONResponse(w, statusCode, createUserResponse{Status: string(status)})
}

// ListUsers は全ユーザーを格納順で返す。
// GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]userResponse, len(users))
	for i, u := range users {
		results[i] = userResponse{
			Firstname: u.Firstname,
			Lastname:  u.Lastname,
			Role:      u.Role,
		}
	}

	writeJSONResponse(w, http.StatusOK, results)
}

// GetUser は名前のあいまい一致でユーザーを1件検索する。
// nameはフルネーム（空白区切り）または単一の名前を受け付ける。
// GET /api/users/search?name=...
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	u, err := h.service.GetOne(r.Context(), name)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if u == nil {
		writeStoreErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError(name))
		return
	}

	writeJSONResponse(w, http.StatusOK, userResponse{
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Role:      u.Role,
	})
}

// DropUsers は全ユーザーを削除する。
// DELETE /api/users
func (h *UserHandler) DropUsers(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DropAll(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
