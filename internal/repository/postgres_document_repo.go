package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bisoye/docvault/internal/model"
)

// PostgresDocumentRepo はPostgreSQLを使用したドキュメントリポジトリ。
type PostgresDocumentRepo struct {
	db *sql.DB
}

// NewPostgresDocumentRepo はPostgresDocumentRepoを生成する。
func NewPostgresDocumentRepo(db *sql.DB) *PostgresDocumentRepo {
	return &PostgresDocumentRepo{db: db}
}

// Create はドキュメントを作成する。
func (r *PostgresDocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, content, permitted, date_created, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		doc.ID, doc.Content, doc.Permitted, doc.DateCreated, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ドキュメントの作成に失敗しました: %w", err)
	}
	return nil
}

// List は全ドキュメントを新しい順で返す。
// 公開用射影（content, permitted, date_created）のみを取得する。
func (r *PostgresDocumentRepo) List(ctx context.Context, limit int) ([]model.DocumentView, error) {
	query := `SELECT content, permitted, date_created
	          FROM documents ORDER BY seq DESC` + limitClause(limit)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ドキュメント一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanDocumentViews(rows)
}

// ListByPermitted は許可ロールが一致するドキュメントを新しい順で返す。
func (r *PostgresDocumentRepo) ListByPermitted(ctx context.Context, role string, limit int) ([]model.DocumentView, error) {
	query := `SELECT content, permitted, date_created
	          FROM documents WHERE permitted = $1 ORDER BY seq DESC` + limitClause(limit)

	rows, err := r.db.QueryContext(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("ロールによるドキュメントの検索に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanDocumentViews(rows)
}

// ListByDate は作成日付が一致するドキュメントを新しい順で返す。
// dateは正規化済みの "YYYY-M-D" 形式であること。
func (r *PostgresDocumentRepo) ListByDate(ctx context.Context, date string, limit int) ([]model.DocumentView, error) {
	query := `SELECT content, permitted, date_created
	          FROM documents WHERE date_created = $1 ORDER BY seq DESC` + limitClause(limit)

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("日付によるドキュメントの検索に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanDocumentViews(rows)
}

// DeleteAll は全ドキュメントを削除する。
func (r *PostgresDocumentRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("ドキュメントの全削除に失敗しました: %w", err)
	}
	return nil
}

// scanDocumentViews は射影クエリの結果行をDocumentViewのスライスに変換する。
func scanDocumentViews(rows *sql.Rows) ([]model.DocumentView, error) {
	var views []model.DocumentView
	for rows.Next() {
		var v model.DocumentView
		if err := rows.Scan(&v.Content, &v.Permitted, &v.DateCreated); err != nil {
			return nil, fmt.Errorf("ドキュメント行の読み取りに失敗しました: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ドキュメント一覧の走査に失敗しました: %w", err)
	}
	return views, nil
}

// compile-time interface check
var _ DocumentRepository = (*PostgresDocumentRepo)(nil)
