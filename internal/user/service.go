// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bisoye/docvault/internal/model"
	"github.com/bisoye/docvault/internal/repository"
)

// Status はユーザー作成の結果を表す、呼び出し側に返す短い定型文字列。
// バリデーション結果はフォールトではなく戻り値の検査で区別する契約。
type Status string

const (
	// StatusCreated はユーザーが新規作成されたことを示す。
	StatusCreated Status = "User created"
	// StatusAlreadyExists は同姓同名のユーザーが既に存在し、書き込みを行わなかったことを示す。
	StatusAlreadyExists Status = "User already exists"
	// StatusInvalidRole はロールが未指定であることを示す。
	StatusInvalidRole Status = "Invalid role"
	// StatusInvalidName はfirstnameまたはlastnameが未指定であることを示す。
	StatusInvalidName Status = "Invalid, firstname or lastname"
)

// RoleEnsurer は参照先ロールの存在保証インターフェース。
type RoleEnsurer interface {
	EnsureRole(ctx context.Context, title string) (*model.Role, error)
}

// Metrics はユーザー操作のメトリクス記録インターフェース。
type Metrics interface {
	RecordUserCreated(status string)
}

// Service はユーザー管理のサービス層。
type Service struct {
	repo    repository.UserRepository
	roles   RoleEnsurer
	metrics Metrics
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよい（記録をスキップする）。
func NewService(repo repository.UserRepository, roles RoleEnsurer, metrics Metrics) *Service {
	return &Service{
		repo:    repo,
		roles:   roles,
		metrics: metrics,
	}
}

// Create はユーザーを作成する。
// 検査順序の契約: ロールの指定有無を先に、次に名前の指定有無を検査する。
// ロール解決（find-or-create）を待ってから重複チェックと挿入に進むことで、
// 参照先ロールが必ず存在する状態でユーザー行が作られる。
// 同姓同名のユーザーが既にいれば書き込みを行わずStatusAlreadyExistsを返す。
func (s *Service) Create(ctx context.Context, first, last, roleTitle string) (Status, error) {
	if roleTitle == "" {
		s.recordCreated(StatusInvalidRole)
		return StatusInvalidRole, nil
	}
	if first == "" || last == "" {
		s.recordCreated(StatusInvalidName)
		return StatusInvalidName, nil
	}

	if _, err := s.roles.EnsureRole(ctx, roleTitle); err != nil {
		return "", fmt.Errorf("参照先ロールの解決に失敗しました: %w", err)
	}

	existing, err := s.repo.FindByFullName(ctx, first, last)
	if err != nil {
		return "", fmt.Errorf("既存ユーザーの確認に失敗しました: %w", err)
	}
	if existing != nil {
		s.recordCreated(StatusAlreadyExists)
		return StatusAlreadyExists, nil
	}

	newUser := &model.User{
		ID:        uuid.New().String(),
		Firstname: first,
		Lastname:  last,
		Role:      roleTitle,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		return "", fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("user created",
		slog.String("firstname", first),
		slog.String("lastname", last),
		slog.String("role", roleTitle),
	)
	s.recordCreated(StatusCreated)
	return StatusCreated, nil
}

// GetAll は全ユーザーを挿入順で返す。
func (s *Service) GetAll(ctx context.Context) ([]*model.User, error) {
	return s.repo.List(ctx)
}

// GetOne は名前のあいまい一致でユーザーを1件解決する。
// 入力を空白で最大2トークンに分割し、入力全体・各トークンのいずれかが
// firstnameまたはlastnameに一致するユーザーを返す。
// 単一の名前でも "first last" 形式のフルネームでも引ける。
// 見つからない場合は (nil, nil) を返す（フォールトにしない）。
func (s *Service) GetOne(ctx context.Context, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	tokens := strings.Fields(name)
	first := tokens[0]
	second := ""
	if len(tokens) > 1 {
		second = tokens[1]
	}

	found, err := s.repo.FindByNameTokens(ctx, name, first, second)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	return found, nil
}

// DropAll は全ユーザーを削除する。
// クリア順序の契約上、ロールのクリアより先に呼ぶこと。
func (s *Service) DropAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("ユーザーのクリアに失敗しました: %w", err)
	}
	return nil
}

// recordCreated はメトリクスコレクタ未設定時の記録をスキップする。
func (s *Service) recordCreated(status Status) {
	if s.metrics != nil {
		s.metrics.RecordUserCreated(string(status))
	}
}
