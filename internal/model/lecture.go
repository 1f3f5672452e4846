package model

import "time"

// LectureStatus は講義の募集状態を表す。
type LectureStatus string

const (
	// LectureStatusNotStarted は募集開始前の状態。
	LectureStatusNotStarted LectureStatus = "NOT_STARTED"
	// LectureStatusRecruiting は募集中の状態。
	LectureStatusRecruiting LectureStatus = "RECRUITING"
	// LectureStatusRecruitmentEnded は募集期間終了または定員到達の状態。
	LectureStatusRecruitmentEnded LectureStatus = "RECRUITMENT_ENDED"
)

// Lecture はメンターが開講する講義を表す。
// Statusは (現在時刻, 募集期間, 定員, 申込数) から導出される値のキャッシュであり、
// 独立した状態ではない。
type Lecture struct {
	ID                   string
	Title                string
	RecruitmentStartDate time.Time
	RecruitmentEndDate   time.Time
	Capacity             int
	Fee                  int
	LectureStartDate     time.Time
	LectureEndDate       time.Time
	MentorID             string
	MentorName           string
	Status               LectureStatus
	TeamURL              string
	CreatedAt            time.Time
}

// LectureSpec は講義作成時の入力。値の範囲検証は行わない。
type LectureSpec struct {
	Title                string
	RecruitmentStartDate time.Time
	RecruitmentEndDate   time.Time
	Capacity             int
	Fee                  int
	LectureStartDate     time.Time
	LectureEndDate       time.Time
	TeamURL              string
}

// LectureWithCount は講義と現在の申込数を結合した構造体。
type LectureWithCount struct {
	Lecture
	EnrolledCount int
}

// DeriveLectureStatus は募集状態を導出する純粋関数。
//
// 判定順序:
//  1. now が募集終了日時以降 → RECRUITMENT_ENDED
//  2. 募集期間内（両端を含まない）で申込数が定員以上 → RECRUITMENT_ENDED
//  3. 募集期間内で申込数が定員未満 → RECRUITING
//  4. それ以外（募集開始前） → NOT_STARTED
func DeriveLectureStatus(now, recruitmentStart, recruitmentEnd time.Time, capacity, enrolled int) LectureStatus {
	if !now.Before(recruitmentEnd) {
		return LectureStatusRecruitmentEnded
	}
	if now.After(recruitmentStart) {
		if enrolled >= capacity {
			return LectureStatusRecruitmentEnded
		}
		return LectureStatusRecruiting
	}
	return LectureStatusNotStarted
}

// StatusAt は講義の募集状態を指定時刻と申込数で導出する。
func (l *Lecture) StatusAt(now time.Time, enrolled int) LectureStatus {
	return DeriveLectureStatus(now, l.RecruitmentStartDate, l.RecruitmentEndDate, l.Capacity, enrolled)
}
