package model

import (
	"fmt"
	"time"
)

// dateLayouts はNormalizeDateが受理する入力レイアウト。
var dateLayouts = []string{
	"2006-1-2",
	"2006-01-02",
	"2006/1/2",
	time.RFC3339,
}

// FormatCalendarDate は時刻を "YYYY-M-D" 形式の日付文字列に整形する。
// 月は1始まり、日はその月の日付をそのまま使う
// （曜日由来の値は使わない。詳細はdocument側の回帰テストを参照）。
func FormatCalendarDate(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month()), t.Day())
}

// NormalizeDate は入力日付文字列を作成時の採番と同一の "YYYY-M-D" 形式に正規化する。
// 解釈できない入力にはINVALID_DATEエラーを返す。
func NormalizeDate(input string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return FormatCalendarDate(t), nil
		}
	}
	return "", NewInvalidDateError(input)
}
