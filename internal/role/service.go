// Package role はロールの解決・管理のドメインロジックを提供する。
package role

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bisoye/docvault/internal/model"
	"github.com/bisoye/docvault/internal/repository"
)

// Metrics はロール操作のメトリクス記録インターフェース。
type Metrics interface {
	RecordRoleEnsured(created bool)
}

// Service はロール解決・管理のサービス層。
// ユーザー作成とドキュメント作成の双方から、参照先ロールの存在保証に使われる。
type Service struct {
	repo    repository.RoleRepository
	metrics Metrics
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよい（記録をスキップする）。
func NewService(repo repository.RoleRepository, metrics Metrics) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
	}
}

// EnsureRole はタイトル完全一致でロールを検索し、なければ作成して返す（find-or-create）。
// check-then-createの競合に敗れた場合、一意制約違反は「既にロールが存在する」
// ものとして扱い、確定した既存行を取得して返す。呼び出し側にはエラーとして見せない。
// 同一タイトルに対して何度呼んでも同じ行が返り、行は1つしか存在しない。
func (s *Service) EnsureRole(ctx context.Context, title string) (*model.Role, error) {
	if title == "" {
		return nil, model.NewValidationError("title")
	}

	existing, err := s.repo.FindByTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("ロールの解決に失敗しました: %w", err)
	}
	if existing != nil {
		s.recordEnsured(false)
		return existing, nil
	}

	newRole := &model.Role{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, newRole); err != nil {
		if repository.IsUniqueViolation(err) {
			// 競合に敗れた側。勝者が作成した行を取得して返す。
			slog.Info("role already installed by concurrent create",
				slog.String("title", title),
			)
			winner, findErr := s.repo.FindByTitle(ctx, title)
			if findErr != nil {
				return nil, fmt.Errorf("競合後のロール再取得に失敗しました: %w", findErr)
			}
			if winner == nil {
				return nil, model.NewRoleNotFoundError(title)
			}
			s.recordEnsured(false)
			return winner, nil
		}
		return nil, fmt.Errorf("ロールの作成に失敗しました: %w", err)
	}

	slog.Info("role created",
		slog.String("title", title),
	)
	s.recordEnsured(true)
	return newRole, nil
}

// AddRole は管理用途のロール明示作成。
// タイトル重複時は制約違反をエラー値として呼び出し側に返す（EnsureRoleと異なり吸収しない）。
func (s *Service) AddRole(ctx context.Context, title string) (*model.Role, error) {
	if title == "" {
		return nil, model.NewValidationError("title")
	}

	newRole := &model.Role{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, newRole); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, model.NewDuplicateRoleError(title)
		}
		return nil, fmt.Errorf("ロールの作成に失敗しました: %w", err)
	}

	return newRole, nil
}

// ListRoles は全ロールを挿入順で返す。
func (s *Service) ListRoles(ctx context.Context) ([]*model.Role, error) {
	return s.repo.List(ctx)
}

// DropAll は全ロールを削除する。
// クリア順序の契約: documentsとusersを先にクリアしてから呼ぶこと。
// 依存が残っている状態での呼び出しは外部キー制約違反になる。
func (s *Service) DropAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return fmt.Errorf("依存エンティティが残っているためロールをクリアできません（documents/usersを先にクリアしてください）: %w", err)
		}
		return fmt.Errorf("ロールのクリアに失敗しました: %w", err)
	}
	return nil
}

// recordEnsured はメトリクスコレクタ未設定時の記録をスキップする。
func (s *Service) recordEnsured(created bool) {
	if s.metrics != nil {
		s.metrics.RecordRoleEnsured(created)
	}
}
