// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/lecturehub/internal/model"
)

// MentorRepository はメンターデータの永続化インターフェース。
type MentorRepository interface {
	// Create はメンターを作成する。
	Create(ctx context.Context, mentor *model.Mentor) error

	// FindByID は指定IDのメンターを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Mentor, error)
}

// MenteeRepository はメンティーデータの永続化インターフェース。
type MenteeRepository interface {
	// Create はメンティーを作成する。
	Create(ctx context.Context, mentee *model.Mentee) error

	// FindByID は指定IDのメンティーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Mentee, error)

	// FindByIDForUpdate は指定IDのメンティーを行ロック付きで取得する。
	// トランザクション内でのみ意味を持つ。見つからない場合はnilを返す。
	FindByIDForUpdate(ctx context.Context, id string) (*model.Mentee, error)

	// UpdatePoint はメンティーのポイント残高を更新する。
	UpdatePoint(ctx context.Context, id string, point int) error
}

// LectureRepository は講義データの永続化インターフェース。
type LectureRepository interface {
	// Create は講義を作成する。
	Create(ctx context.Context, lecture *model.Lecture) error

	// FindByID は指定IDの講義を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Lecture, error)

	// FindByIDForUpdate は指定IDの講義を行ロック付きで取得する。
	// 同一講義への申込はこのロックで直列化される。見つからない場合はnilを返す。
	FindByIDForUpdate(ctx context.Context, id string) (*model.Lecture, error)

	// ListAll は全講義を作成日時の昇順で返す。
	ListAll(ctx context.Context) ([]*model.Lecture, error)

	// ListWithEnrollmentCount は全講義を現在の申込数付きで返す。
	ListWithEnrollmentCount(ctx context.Context) ([]model.LectureWithCount, error)

	// CountEnrolledMentees は指定講義の申込数を返す。
	CountEnrolledMentees(ctx context.Context, lectureID string) (int, error)

	// UpdateStatus は講義の募集状態を更新する。
	UpdateStatus(ctx context.Context, id string, status model.LectureStatus) error
}

// EnrollmentRepository は講義申込データの永続化インターフェース。
type EnrollmentRepository interface {
	// Create は申込を作成する。
	// UNIQUE(mentee_id, lecture_id)制約に違反した場合はエラーを返す。
	Create(ctx context.Context, enrollment *model.Enrollment) error

	// FindByMenteeAndLecture はメンティーIDと講義IDで申込を検索する。見つからない場合はnilを返す。
	FindByMenteeAndLecture(ctx context.Context, menteeID, lectureID string) (*model.Enrollment, error)

	// Delete は指定IDの申込を削除する。
	Delete(ctx context.Context, id string) error
}

// UserRepository はKakaoログインユーザーの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByKakaoID はKakaoの会員IDでユーザーを検索する。見つからない場合はnilを返す。
	FindByKakaoID(ctx context.Context, kakaoID int64) (*model.User, error)

	// FindByEmail はKakaoアカウントのメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error
}

// CompanyRepository は職歴の会社情報の永続化インターフェース。
type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	FindByID(ctx context.Context, id string) (*model.Company, error)
	List(ctx context.Context) ([]*model.Company, error)
	Delete(ctx context.Context, id string) error
}
