// Package model はドメインモデルを定義する。
package model

import "time"

// User はドキュメントストアの利用ユーザーを表す。
// Roleは既存Roleのタイトルを参照する（多対一）。
// firstname+lastnameの組は実質的な一意キーとして扱う
// （ストア側の制約ではなくサービス層の事前チェックで担保する）。
type User struct {
	ID        string
	Firstname string
	Lastname  string
	Role      string
	CreatedAt time.Time
}
