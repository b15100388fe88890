package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bisoye/docvault/internal/model"
)

// PostgresRoleRepo はPostgreSQLを使用したロールリポジトリ。
type PostgresRoleRepo struct {
	db *sql.DB
}

// NewPostgresRoleRepo はPostgresRoleRepoを生成する。
func NewPostgresRoleRepo(db *sql.DB) *PostgresRoleRepo {
	return &PostgresRoleRepo{db: db}
}

// FindByTitle はタイトル完全一致でロールを取得する。見つからない場合はnilを返す。
func (r *PostgresRoleRepo) FindByTitle(ctx context.Context, title string) (*model.Role, error) {
	role := &model.Role{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, created_at FROM roles WHERE title = $1`,
		title,
	).Scan(&role.ID, &role.Title, &role.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ロールの検索に失敗しました: %w", err)
	}

	return role, nil
}

// Create はロールを作成する。
// タイトル重複時のエラーはラップして返す（IsUniqueViolationで判別可能）。
func (r *PostgresRoleRepo) Create(ctx context.Context, role *model.Role) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roles (id, title, created_at) VALUES ($1, $2, $3)`,
		role.ID, role.Title, role.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ロールの作成に失敗しました: %w", err)
	}
	return nil
}

// List は全ロールを挿入順で返す。
func (r *PostgresRoleRepo) List(ctx context.Context) ([]*model.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, created_at FROM roles ORDER BY seq ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ロール一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var roles []*model.Role
	for rows.Next() {
		role := &model.Role{}
		if err := rows.Scan(&role.ID, &role.Title, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("ロール行の読み取りに失敗しました: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ロール一覧の走査に失敗しました: %w", err)
	}

	return roles, nil
}

// DeleteAll は全ロールを削除する。
// 依存エンティティ（users, documents）が残っている場合は外部キー制約違反になる。
func (r *PostgresRoleRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM roles`); err != nil {
		return fmt.Errorf("ロールの全削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ RoleRepository = (*PostgresRoleRepo)(nil)
