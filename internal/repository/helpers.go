package repository

import "fmt"

// limitClause はlimit指定からSQLのLIMIT句を構築する。
// 負値は無制限（句なし）、0以上はその件数で打ち切る。
func limitClause(limit int) string {
	if limit < 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}
