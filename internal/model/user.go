// Package model はドメインモデルを定義する。
package model

import "time"

// RoleUser はOAuthログインで自動作成されたユーザーのロール。
const RoleUser = "ROLE_USER"

// User はKakaoログインで作成されるサービス利用ユーザーを表す。
// 初回ログイン時にKakaoアカウントのメールアドレスをキーとして作成される。
type User struct {
	ID                string
	KakaoID           int64
	KakaoEmail        string
	KakaoNickname     string
	KakaoProfileImage string
	Role              string
	CreatedAt         time.Time
}

// Mentor は講義を開講するユーザーを表す。
type Mentor struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Mentee は講義に申し込むユーザーを表す。
// Pointは申込時にのみ減算される。
type Mentee struct {
	ID        string
	Name      string
	Email     string
	Point     int
	CreatedAt time.Time
}
