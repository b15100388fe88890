// Package model はドメインモデルを定義する。
package model

import "fmt"

// StoreError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type StoreError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, constraint, notfound, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *StoreError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeConstraintViolation = "CONSTRAINT_VIOLATION"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeInvalidDate         = "INVALID_DATE"
)

// NewValidationError は必須属性欠落エラーを生成する。
func NewValidationError(field string) *StoreError {
	return &StoreError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("必須属性が指定されていません: %s", field),
		Category: "validation",
		Action:   "欠けている属性を指定して再度実行してください。",
	}
}

// NewDuplicateRoleError はRoleタイトルの一意制約違反エラーを生成する。
func NewDuplicateRoleError(title string) *StoreError {
	return &StoreError{
		Code:     ErrCodeConstraintViolation,
		Message:  fmt.Sprintf("同じタイトルのロールが既に存在します: %s", title),
		Category: "constraint",
		Action:   "別のタイトルを指定するか、既存のロールをそのまま利用してください。",
	}
}

// NewRoleNotFoundError はロール未検出エラーを生成する。
func NewRoleNotFoundError(title string) *StoreError {
	return &StoreError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("指定されたロールが見つかりません: %s", title),
		Category: "notfound",
		Action:   "ロールのタイトルを確認してください。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError(name string) *StoreError {
	return &StoreError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", name),
		Category: "notfound",
		Action:   "名前（first、lastまたはフルネーム）を確認してください。",
	}
}

// NewInvalidDateError は解釈できない日付入力のエラーを生成する。
func NewInvalidDateError(input string) *StoreError {
	return &StoreError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("日付として解釈できません: %s", input),
		Category: "validation",
		Action:   "YYYY-M-D 形式（例: 2024-3-7）で指定してください。",
	}
}
