package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bisoye/docvault/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByFullName はfirstnameとlastnameの完全一致でユーザーを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByFullName(ctx context.Context, firstname, lastname string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, firstname, lastname, role, created_at
		 FROM users WHERE firstname = $1 AND lastname = $2`,
		firstname, lastname,
	).Scan(&user.ID, &user.Firstname, &user.Lastname, &user.Role, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}

	return user, nil
}

// FindByNameTokens は入力全体または分割トークンがfirstname/lastnameに一致する
// 最初のユーザーを返す。見つからない場合はnilを返す。
// 条件はOR結合で、一致順のタイブレークは未規定（挿入順の先頭を返す）。
func (r *PostgresUserRepo) FindByNameTokens(ctx context.Context, full, first, second string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, firstname, lastname, role, created_at
		 FROM users
		 WHERE firstname IN ($1, $2, $3) OR lastname IN ($1, $2, $3)
		 ORDER BY seq ASC
		 LIMIT 1`,
		full, first, second,
	).Scan(&user.ID, &user.Firstname, &user.Lastname, &user.Role, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("名前によるユーザーの検索に失敗しました: %w", err)
	}

	return user, nil
}

// Create はユーザーを作成する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, firstname, lastname, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Firstname, user.Lastname, user.Role, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}
	return nil
}

// List は全ユーザーを挿入順で返す。
func (r *PostgresUserRepo) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, firstname, lastname, role, created_at
		 FROM users ORDER BY seq ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(&user.ID, &user.Firstname, &user.Lastname, &user.Role, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("ユーザー行の読み取りに失敗しました: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ユーザー一覧の走査に失敗しました: %w", err)
	}

	return users, nil
}

// DeleteAll は全ユーザーを削除する。
func (r *PostgresUserRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("ユーザーの全削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
