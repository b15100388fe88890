// Package fixtures は開発・デモ用の初期データ投入を提供する。
package fixtures

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bisoye/docvault/internal/model"
	"github.com/bisoye/docvault/internal/user"
)

//go:embed fixtures.json
var fixturesJSON []byte

// fixtureUser は投入するユーザーの定義。
type fixtureUser struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Role      string `json:"role"`
}

// fixtureDocument は投入するドキュメントの定義。
type fixtureDocument struct {
	Content   string `json:"content"`
	Permitted string `json:"permitted"`
}

// fixtureData は埋め込みJSONの全体構造。
// documentsは投入順がそのまま格納順になるため、古い順に並べる。
type fixtureData struct {
	Roles     []string          `json:"roles"`
	Users     []fixtureUser     `json:"users"`
	Documents []fixtureDocument `json:"documents"`
}

// RoleSeeder はロール投入に必要なインターフェース。
type RoleSeeder interface {
	AddRole(ctx context.Context, title string) (*model.Role, error)
	DropAll(ctx context.Context) error
}

// UserSeeder はユーザー投入に必要なインターフェース。
type UserSeeder interface {
	Create(ctx context.Context, firstname, lastname, roleTitle string) (user.Status, error)
	DropAll(ctx context.Context) error
}

// DocumentSeeder はドキュメント投入に必要なインターフェース。
type DocumentSeeder interface {
	Create(ctx context.Context, content, permitted string) (*model.Document, error)
	DropAll(ctx context.Context) error
}

// Seed は既存データをすべて削除してから初期データを投入する。
// 削除はドキュメント・ユーザー・ロールの順で行う。
// ロールを先に消すと参照整合性違反になるため、この順序を変えてはならない。
func Seed(ctx context.Context, roles RoleSeeder, users UserSeeder, documents DocumentSeeder) error {
	var data fixtureData
	if err := json.Unmarshal(fixturesJSON, &data); err != nil {
		return fmt.Errorf("初期データの読み込みに失敗しました: %w", err)
	}

	if err := documents.DropAll(ctx); err != nil {
		return fmt.Errorf("既存ドキュメントの削除に失敗しました: %w", err)
	}
	if err := users.DropAll(ctx); err != nil {
		return fmt.Errorf("既存ユーザーの削除に失敗しました: %w", err)
	}
	if err := roles.DropAll(ctx); err != nil {
		return fmt.Errorf("既存ロールの削除に失敗しました: %w", err)
	}

	for _, title := range data.Roles {
		if _, err := roles.AddRole(ctx, title); err != nil {
			return fmt.Errorf("ロール %q の投入に失敗しました: %w", title, err)
		}
	}

	for _, u := range data.Users {
		status, err := users.Create(ctx, u.Firstname, u.Lastname, u.Role)
		if err != nil {
			return fmt.Errorf("ユーザー %s %s の投入に失敗しました: %w", u.Firstname, u.Lastname, err)
		}
		if status != user.StatusCreated {
			return fmt.Errorf("ユーザー %s %s の投入結果が不正です: %s", u.Firstname, u.Lastname, status)
		}
	}

	for _, d := range data.Documents {
		if _, err := documents.Create(ctx, d.Content, d.Permitted); err != nil {
			return fmt.Errorf("ドキュメント投入に失敗しました: %w", err)
		}
	}

	slog.Info("fixtures seeded",
		slog.Int("roles", len(data.Roles)),
		slog.Int("users", len(data.Users)),
		slog.Int("documents", len(data.Documents)),
	)

	return nil
}
