// Package model はドメインモデルを定義する。
package model

import "time"

// Document はストアに保存されるドキュメントを表す。
// Permittedは閲覧を許可された唯一のRoleのタイトルを参照する。
// DateCreatedはサーバー側で採番される "YYYY-M-D" 形式のカレンダー日付文字列。
type Document struct {
	ID          string
	Content     string
	Permitted   string
	DateCreated string
	CreatedAt   time.Time
}

// DocumentView は問い合わせ結果として外部に公開する射影。
// 内部ID・タイムスタンプは含めない。
type DocumentView struct {
	Content     string `json:"content"`
	Permitted   string `json:"permitted"`
	DateCreated string `json:"dateCreated"`
}

// View はDocumentを公開用の射影に変換する。
func (d *Document) View() DocumentView {
	return DocumentView{
		Content:     d.Content,
		Permitted:   d.Permitted,
		DateCreated: d.DateCreated,
	}
}
