package repository

import (
	"errors"

	"github.com/lib/pq"
)

// pqUniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const pqUniqueViolation = "23505"

// pqForeignKeyViolation はPostgreSQLの外部キー制約違反のエラーコード。
const pqForeignKeyViolation = "23503"

// IsUniqueViolation はエラーが一意制約違反（ラップ済みを含む）かどうかを判定する。
// ロールのfind-or-createで競合に敗れた側はこの判定で「既に存在する」扱いにできる。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return false
}

// IsForeignKeyViolation はエラーが外部キー制約違反かどうかを判定する。
// 依存エンティティより先にロールをクリアした場合に発生する。
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqForeignKeyViolation
	}
	return false
}
