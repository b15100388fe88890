// Package document はドキュメントの作成・検索のドメインロジックを提供する。
package document

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bisoye/docvault/internal/model"
	"github.com/bisoye/docvault/internal/repository"
)

// Sanitizer はドキュメント本文のサニタイズインターフェース。
type Sanitizer interface {
	Sanitize(raw string) string
}

// RoleEnsurer は参照先ロールの存在保証インターフェース。
type RoleEnsurer interface {
	EnsureRole(ctx context.Context, title string) (*model.Role, error)
}

// Metrics はドキュメント操作のメトリクス記録インターフェース。
type Metrics interface {
	RecordDocumentCreated()
}

// Service はドキュメント管理のサービス層。
// 作成時の日付採番・ロール解決と、3種類の問い合わせ
// （全件・許可ロール別・作成日付別）を提供する。
type Service struct {
	repo      repository.DocumentRepository
	roles     RoleEnsurer
	sanitizer Sanitizer
	metrics   Metrics

	// now は作成日付の採番に使う。テストで固定時刻を注入するためフィールドにしている。
	now func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// sanitizerとmetricsはnilでもよい（それぞれ素通し・記録スキップになる）。
func NewService(repo repository.DocumentRepository, roles RoleEnsurer, sanitizer Sanitizer, metrics Metrics) *Service {
	return &Service{
		repo:      repo,
		roles:     roles,
		sanitizer: sanitizer,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Create はドキュメントを作成して返す。
// date_createdはサーバー側で現在のカレンダー日付を "YYYY-M-D" 形式
// （月は1始まり、日は暦日そのまま）で採番する。クライアントからは指定できない。
// ロール解決を待ってから挿入するため、許可ロールは挿入時点で必ず存在する。
// 失敗は握りつぶさず明示的なエラーとして返す。
func (s *Service) Create(ctx context.Context, content, permittedRole string) (*model.Document, error) {
	if content == "" {
		return nil, model.NewValidationError("content")
	}
	if permittedRole == "" {
		return nil, model.NewValidationError("permitted")
	}

	if s.sanitizer != nil {
		content = s.sanitizer.Sanitize(content)
	}

	if _, err := s.roles.EnsureRole(ctx, permittedRole); err != nil {
		return nil, fmt.Errorf("許可ロールの解決に失敗しました: %w", err)
	}

	createdAt := s.now()
	doc := &model.Document{
		ID:          uuid.New().String(),
		Content:     content,
		Permitted:   permittedRole,
		DateCreated: model.FormatCalendarDate(createdAt),
		CreatedAt:   createdAt,
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("ドキュメントの作成に失敗しました: %w", err)
	}

	slog.Info("document created",
		slog.String("permitted", permittedRole),
		slog.String("date_created", doc.DateCreated),
	)
	if s.metrics != nil {
		s.metrics.RecordDocumentCreated()
	}
	return doc, nil
}

// GetAll は全ドキュメントを新しい順・limit件数までで返す。
// 結果は公開用射影（content, permitted, dateCreated）のみ。limitは負値で無制限。
func (s *Service) GetAll(ctx context.Context, limit int) ([]model.DocumentView, error) {
	return s.repo.List(ctx, limit)
}

// GetAllByRole は許可ロールが一致するドキュメントを新しい順・limit件数までで返す。
func (s *Service) GetAllByRole(ctx context.Context, role string, limit int) ([]model.DocumentView, error) {
	return s.repo.ListByPermitted(ctx, role, limit)
}

// GetAllByDate は作成日付が一致するドキュメントを新しい順・limit件数までで返す。
// 入力日付は作成時の採番と同じ形式に正規化してから照合する。
func (s *Service) GetAllByDate(ctx context.Context, date string, limit int) ([]model.DocumentView, error) {
	normalized, err := model.NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByDate(ctx, normalized, limit)
}

// DropAll は全ドキュメントを削除する。
// クリア順序の契約上、ロールのクリアより先に呼ぶこと。
func (s *Service) DropAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("ドキュメントのクリアに失敗しました: %w", err)
	}
	return nil
}
