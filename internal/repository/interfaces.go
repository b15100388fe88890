// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/bisoye/docvault/internal/model"
)

// RoleRepository はロールデータの永続化インターフェース。
type RoleRepository interface {
	// FindByTitle はタイトル完全一致でロールを取得する。見つからない場合はnilを返す。
	FindByTitle(ctx context.Context, title string) (*model.Role, error)

	// Create はロールを作成する。タイトル重複時は一意制約違反を返す
	// （IsUniqueViolationで判別できる）。
	Create(ctx context.Context, role *model.Role) error

	// List は全ロールを挿入順で返す。
	List(ctx context.Context) ([]*model.Role, error)

	// DeleteAll は全ロールを削除する。
	// usersまたはdocumentsが参照中の場合は外部キー制約違反になるため、
	// 呼び出し側は依存エンティティを先にクリアすること。
	DeleteAll(ctx context.Context) error
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByFullName はfirstnameとlastnameの完全一致でユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByFullName(ctx context.Context, firstname, lastname string) (*model.User, error)

	// FindByNameTokens は入力文字列全体または分割トークンが
	// firstnameかlastnameに一致する最初のユーザーを返す。見つからない場合はnilを返す。
	// 複数一致時のタイブレークは未規定（最初の一致を返す）。
	FindByNameTokens(ctx context.Context, full, first, second string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// List は全ユーザーを挿入順で返す。
	List(ctx context.Context) ([]*model.User, error)

	// DeleteAll は全ユーザーを削除する。
	DeleteAll(ctx context.Context) error
}

// DocumentRepository はドキュメントデータの永続化インターフェース。
// List系はいずれも新しい順（挿入順の降順）で返し、
// 公開用射影（content, permitted, dateCreated）のみを取得する。
// limitは負値で無制限、0で空、正値でその件数まで。
type DocumentRepository interface {
	// Create はドキュメントを作成する。
	Create(ctx context.Context, doc *model.Document) error

	// List は全ドキュメントを新しい順で返す。
	List(ctx context.Context, limit int) ([]model.DocumentView, error)

	// ListByPermitted は許可ロールが一致するドキュメントを新しい順で返す。
	ListByPermitted(ctx context.Context, role string, limit int) ([]model.DocumentView, error)

	// ListByDate は作成日付（正規化済み "YYYY-M-D"）が一致するドキュメントを新しい順で返す。
	ListByDate(ctx context.Context, date string, limit int) ([]model.DocumentView, error)

	// DeleteAll は全ドキュメントを削除する。
	DeleteAll(ctx context.Context) error
}
