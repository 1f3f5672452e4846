// Package memory はrepositoryインターフェースのインメモリ実装を提供する。
// サービス層のテストやデータベースなしでの動作確認に使用する。
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hitoshi/lecturehub/internal/model"
	"github.com/hitoshi/lecturehub/internal/repository"
)

type state struct {
	mentors     map[string]model.Mentor
	mentees     map[string]model.Mentee
	lectures    map[string]model.Lecture
	enrollments map[string]model.Enrollment
	users       map[string]model.User
	companies   map[string]model.Company
}

func newState() *state {
	return &state{
		mentors:     map[string]model.Mentor{},
		mentees:     map[string]model.Mentee{},
		lectures:    map[string]model.Lecture{},
		enrollments: map[string]model.Enrollment{},
		users:       map[string]model.User{},
		companies:   map[string]model.Company{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.mentors {
		c.mentors[k] = v
	}
	for k, v := range s.mentees {
		c.mentees[k] = v
	}
	for k, v := range s.lectures {
		c.lectures[k] = v
	}
	for k, v := range s.enrollments {
		c.enrollments[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.companies {
		c.companies[k] = v
	}
	return c
}

// Store はインメモリのデータストア。
// WithinTxは状態のスナップショット上でfnを実行し、成功時のみ置き換える。
// トランザクションはストア全体で直列化される。
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore は空のStoreを生成する。
func NewStore() *Store {
	return &Store{state: newState()}
}

// WithinTx はスナップショットに束縛されたリポジトリ群でfnを実行する。
// fnがエラーを返した場合、fn内の書き込みはすべて破棄される。
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos *repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	working := s.state.clone()
	if err := fn(ctx, newRepositories(working)); err != nil {
		return err
	}
	s.state = working
	return nil
}

func newRepositories(st *state) *repository.Repositories {
	return &repository.Repositories{
		Mentors:     &mentorRepo{st: st},
		Mentees:     &menteeRepo{st: st},
		Lectures:    &lectureRepo{st: st},
		Enrollments: &enrollmentRepo{st: st},
		Users:       &userRepo{st: st},
		Companies:   &companyRepo{st: st},
	}
}

type mentorRepo struct{ st *state }

func (r *mentorRepo) Create(_ context.Context, m *model.Mentor) error {
	if _, ok := r.st.mentors[m.ID]; ok {
		return fmt.Errorf("duplicate mentor id: %s", m.ID)
	}
	r.st.mentors[m.ID] = *m
	return nil
}

func (r *mentorRepo) FindByID(_ context.Context, id string) (*model.Mentor, error) {
	m, ok := r.st.mentors[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

type menteeRepo struct{ st *state }

func (r *menteeRepo) Create(_ context.Context, m *model.Mentee) error {
	if _, ok := r.st.mentees[m.ID]; ok {
		return fmt.Errorf("duplicate mentee id: %s", m.ID)
	}
	r.st.mentees[m.ID] = *m
	return nil
}

func (r *menteeRepo) FindByID(_ context.Context, id string) (*model.Mentee, error) {
	m, ok := r.st.mentees[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// FindByIDForUpdate はトランザクションがストア全体で直列化されるためFindByIDと同じ。
func (r *menteeRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.Mentee, error) {
	return r.FindByID(ctx, id)
}

func (r *menteeRepo) UpdatePoint(_ context.Context, id string, point int) error {
	m, ok := r.st.mentees[id]
	if !ok {
		return fmt.Errorf("メンティーが見つかりません: %s", id)
	}
	if point < 0 {
		return fmt.Errorf("point must not be negative: %d", point)
	}
	m.Point = point
	r.st.mentees[id] = m
	return nil
}

type lectureRepo struct{ st *state }

func (r *lectureRepo) Create(_ context.Context, l *model.Lecture) error {
	if _, ok := r.st.lectures[l.ID]; ok {
		return fmt.Errorf("duplicate lecture id: %s", l.ID)
	}
	if _, ok := r.st.mentors[l.MentorID]; !ok {
		return fmt.Errorf("mentor does not exist: %s", l.MentorID)
	}
	r.st.lectures[l.ID] = *l
	return nil
}

func (r *lectureRepo) FindByID(_ context.Context, id string) (*model.Lecture, error) {
	l, ok := r.st.lectures[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *lectureRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.Lecture, error) {
	return r.FindByID(ctx, id)
}

func (r *lectureRepo) ListAll(_ context.Context) ([]*model.Lecture, error) {
	lectures := make([]*model.Lecture, 0, len(r.st.lectures))
	for _, l := range r.st.lectures {
		l := l
		lectures = append(lectures, &l)
	}
	sort.Slice(lectures, func(i, j int) bool {
		if lectures[i].CreatedAt.Equal(lectures[j].CreatedAt) {
			return lectures[i].ID < lectures[j].ID
		}
		return lectures[i].CreatedAt.Before(lectures[j].CreatedAt)
	})
	return lectures, nil
}

func (r *lectureRepo) ListWithEnrollmentCount(ctx context.Context) ([]model.LectureWithCount, error) {
	lectures, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]model.LectureWithCount, len(lectures))
	for i, l := range lectures {
		results[i] = model.LectureWithCount{Lecture: *l, EnrolledCount: r.count(l.ID)}
	}
	return results, nil
}

func (r *lectureRepo) CountEnrolledMentees(_ context.Context, lectureID string) (int, error) {
	return r.count(lectureID), nil
}

func (r *lectureRepo) count(lectureID string) int {
	n := 0
	for _, e := range r.st.enrollments {
		if e.LectureID == lectureID {
			n++
		}
	}
	return n
}

func (r *lectureRepo) UpdateStatus(_ context.Context, id string, status model.LectureStatus) error {
	l, ok := r.st.lectures[id]
	if !ok {
		return fmt.Errorf("講義が見つかりません: %s", id)
	}
	l.Status = status
	r.st.lectures[id] = l
	return nil
}

type enrollmentRepo struct{ st *state }

// Create はUNIQUE(mentee_id, lecture_id)制約を再現する。
func (r *enrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	for _, existing := range r.st.enrollments {
		if existing.MenteeID == e.MenteeID && existing.LectureID == e.LectureID {
			return fmt.Errorf("duplicate enrollment: mentee=%s lecture=%s", e.MenteeID, e.LectureID)
		}
	}
	r.st.enrollments[e.ID] = *e
	return nil
}

func (r *enrollmentRepo) FindByMenteeAndLecture(_ context.Context, menteeID, lectureID string) (*model.Enrollment, error) {
	for _, e := range r.st.enrollments {
		if e.MenteeID == menteeID && e.LectureID == lectureID {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

func (r *enrollmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.st.enrollments[id]; !ok {
		return fmt.Errorf("申込が見つかりません: %s", id)
	}
	delete(r.st.enrollments, id)
	return nil
}

type userRepo struct{ st *state }

func (r *userRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) FindByKakaoID(_ context.Context, kakaoID int64) (*model.User, error) {
	for _, u := range r.st.users {
		if u.KakaoID == kakaoID {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.st.users {
		if u.KakaoEmail == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.st.users {
		if existing.KakaoEmail == u.KakaoEmail {
			return fmt.Errorf("duplicate kakao email: %s", u.KakaoEmail)
		}
	}
	r.st.users[u.ID] = *u
	return nil
}

type companyRepo struct{ st *state }

func (r *companyRepo) Create(_ context.Context, c *model.Company) error {
	r.st.companies[c.ID] = *c
	return nil
}

func (r *companyRepo) FindByID(_ context.Context, id string) (*model.Company, error) {
	c, ok := r.st.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *companyRepo) List(_ context.Context) ([]*model.Company, error) {
	companies := make([]*model.Company, 0, len(r.st.companies))
	for _, c := range r.st.companies {
		c := c
		companies = append(companies, &c)
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].ID < companies[j].ID })
	return companies, nil
}

func (r *companyRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.st.companies[id]; !ok {
		return fmt.Errorf("会社情報が見つかりません: %s", id)
	}
	delete(r.st.companies, id)
	return nil
}

// compile-time interface check
var (
	_ repository.Transactor           = (*Store)(nil)
	_ repository.MentorRepository     = (*mentorRepo)(nil)
	_ repository.MenteeRepository     = (*menteeRepo)(nil)
	_ repository.LectureRepository    = (*lectureRepo)(nil)
	_ repository.EnrollmentRepository = (*enrollmentRepo)(nil)
	_ repository.UserRepository       = (*userRepo)(nil)
	_ repository.CompanyRepository    = (*companyRepo)(nil)
)
