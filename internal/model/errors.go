// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// エラー種別。APIError.Kind に設定され、errors.Is で判定できる。
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrConflict          = errors.New("conflict")
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, lecture, enrollment, payment
	Action   string // ユーザー向け対処方法
	Kind     error  // エラー種別（ErrNotFound 等）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap はエラー種別を返し、errors.Is(err, ErrNotFound) のような判定を可能にする。
func (e *APIError) Unwrap() error {
	return e.Kind
}

// 定義済みエラーコード
const (
	ErrCodeMentorNotFound     = "MENTOR_NOT_FOUND"
	ErrCodeMenteeNotFound     = "MENTEE_NOT_FOUND"
	ErrCodeLectureNotFound    = "LECTURE_NOT_FOUND"
	ErrCodeEnrollmentNotFound = "ENROLLMENT_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	ErrCodeLectureFull        = "LECTURE_FULL"
	ErrCodeAlreadyEnrolled    = "ALREADY_ENROLLED"
)

// NewMentorNotFoundError はメンター未検出エラーを生成する。
// 講義作成時に使用され、NotFoundの一種として扱われる。
func NewMentorNotFoundError(mentorID string) *APIError {
	return &APIError{
		Code:     ErrCodeMentorNotFound,
		Message:  fmt.Sprintf("指定されたメンターが見つかりません: %s", mentorID),
		Category: "lecture",
		Action:   "メンターIDを確認してください。",
		Kind:     ErrNotFound,
	}
}

// NewMenteeNotFoundError はメンティー未検出エラーを生成する。
func NewMenteeNotFoundError(menteeID string) *APIError {
	return &APIError{
		Code:     ErrCodeMenteeNotFound,
		Message:  fmt.Sprintf("指定されたメンティーが見つかりません: %s", menteeID),
		Category: "enrollment",
		Action:   "メンティーIDを確認してください。",
		Kind:     ErrNotFound,
	}
}

// NewLectureNotFoundError は講義未検出エラーを生成する。
func NewLectureNotFoundError(lectureID string) *APIError {
	return &APIError{
		Code:     ErrCodeLectureNotFound,
		Message:  fmt.Sprintf("指定された講義が見つかりません: %s", lectureID),
		Category: "lecture",
		Action:   "講義IDを確認してください。",
		Kind:     ErrNotFound,
	}
}

// NewEnrollmentNotFoundError は申込未検出エラーを生成する。
func NewEnrollmentNotFoundError(menteeID, lectureID string) *APIError {
	return &APIError{
		Code:     ErrCodeEnrollmentNotFound,
		Message:  fmt.Sprintf("申込が見つかりません: mentee=%s lecture=%s", menteeID, lectureID),
		Category: "enrollment",
		Action:   "申込済みの講義か確認してください。",
		Kind:     ErrNotFound,
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
		Kind:     ErrNotFound,
	}
}

// NewInsufficientFundsError はポイント残高不足エラーを生成する。
func NewInsufficientFundsError(menteeName, lectureTitle string) *APIError {
	return &APIError{
		Code:     ErrCodeInsufficientFunds,
		Message:  fmt.Sprintf("メンティー「%s」のポイントが不足しているため、講義「%s」に申し込めません。", menteeName, lectureTitle),
		Category: "payment",
		Action:   "ポイントを追加してから再度お申し込みください。",
		Kind:     ErrInsufficientFunds,
	}
}

// NewLectureFullError は講義の定員到達エラーを生成する。
func NewLectureFullError(lectureTitle string, capacity int) *APIError {
	return &APIError{
		Code:     ErrCodeLectureFull,
		Message:  fmt.Sprintf("講義「%s」は定員（%d名）に達しています。", lectureTitle, capacity),
		Category: "enrollment",
		Action:   "他の講義をお選びください。",
		Kind:     ErrConflict,
	}
}

// NewAlreadyEnrolledError は同一講義への重複申込エラーを生成する。
func NewAlreadyEnrolledError(menteeName, lectureTitle string) *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyEnrolled,
		Message:  fmt.Sprintf("メンティー「%s」は講義「%s」に申込済みです。", menteeName, lectureTitle),
		Category: "enrollment",
		Action:   "申込内容を確認してください。",
		Kind:     ErrConflict,
	}
}
