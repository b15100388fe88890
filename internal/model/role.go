// Package model はドメインモデルを定義する。
package model

import "time"

// Role は閲覧権限の単位となるロールを表す。
// Titleが自然キーであり、UserとDocumentはTitle経由でRoleを参照する。
type Role struct {
	ID        string
	Title     string
	CreatedAt time.Time
}
