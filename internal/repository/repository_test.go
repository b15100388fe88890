package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

// PostgresRoleRepoはRoleRepositoryインターフェースを満たすことを検証
func TestPostgresRoleRepo_ImplementsInterface(t *testing.T) {
	var _ RoleRepository = (*PostgresRoleRepo)(nil)
}

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// PostgresDocumentRepoはDocumentRepositoryインターフェースを満たすことを検証
func TestPostgresDocumentRepo_ImplementsInterface(t *testing.T) {
	var _ DocumentRepository = (*PostgresDocumentRepo)(nil)
}

// 各コンストラクタが正しく初期化されることを検証
func TestConstructors_Initialize(t *testing.T) {
	if NewPostgresRoleRepo(nil) == nil {
		t.Error("expected non-nil role repo")
	}
	if NewPostgresUserRepo(nil) == nil {
		t.Error("expected non-nil user repo")
	}
	if NewPostgresDocumentRepo(nil) == nil {
		t.Error("expected non-nil document repo")
	}
}

// IsUniqueViolationがpqの一意制約違反コードを正しく判別することを検証
func TestIsUniqueViolation(t *testing.T) {
	uniqueErr := &pq.Error{Code: pq.ErrorCode("23505")}
	if !IsUniqueViolation(uniqueErr) {
		t.Error("expected 23505 to be a unique violation")
	}

	// ラップされていても判別できること
	wrapped := fmt.Errorf("ロールの作成に失敗しました: %w", uniqueErr)
	if !IsUniqueViolation(wrapped) {
		t.Error("expected wrapped 23505 to be a unique violation")
	}

	fkErr := &pq.Error{Code: pq.ErrorCode("23503")}
	if IsUniqueViolation(fkErr) {
		t.Error("23503 is not a unique violation")
	}

	if IsUniqueViolation(errors.New("plain error")) {
		t.Error("plain error is not a unique violation")
	}
	if IsUniqueViolation(nil) {
		t.Error("nil is not a unique violation")
	}
}

// IsForeignKeyViolationが外部キー制約違反コードを正しく判別することを検証
func TestIsForeignKeyViolation(t *testing.T) {
	fkErr := &pq.Error{Code: pq.ErrorCode("23503")}
	if !IsForeignKeyViolation(fkErr) {
		t.Error("expected 23503 to be a foreign key violation")
	}

	wrapped := fmt.Errorf("ロールの全削除に失敗しました: %w", fkErr)
	if !IsForeignKeyViolation(wrapped) {
		t.Error("expected wrapped 23503 to be a foreign key violation")
	}

	if IsForeignKeyViolation(&pq.Error{Code: pq.ErrorCode("23505")}) {
		t.Error("23505 is not a foreign key violation")
	}
}

// limitClauseの境界値: 負値は無制限、0は空結果、正値は件数指定
func TestLimitClause(t *testing.T) {
	tests := []struct {
		limit int
		want  string
	}{
		{limit: -1, want: ""},
		{limit: 0, want: " LIMIT 0"},
		{limit: 2, want: " LIMIT 2"},
		{limit: 100, want: " LIMIT 100"},
	}

	for _, tt := range tests {
		if got := limitClause(tt.limit); got != tt.want {
			t.Errorf("limitClause(%d) = %q, want %q", tt.limit, got, tt.want)
		}
	}
}
