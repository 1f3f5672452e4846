package model

import "time"

// Enrollment はメンティーの講義申込を表す。
// MentorIDは作成時点の講義のメンターを複製したもの。
// 作成後に更新されることはなく、取消時に削除される。
type Enrollment struct {
	ID        string
	MenteeID  string
	LectureID string
	MentorID  string
	CreatedAt time.Time
}

// Company は職歴として登録される会社情報を表す。
// 講義ドメインとの関連は持たない。
type Company struct {
	ID          string
	CompanyName string
	WorkType    string
	Position    string
	StartDate   string
	EndDate     *string // 在籍中の場合はnil
}
