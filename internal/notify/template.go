package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"io"
	"text/template"
	"time"
)

var (
	enrollmentSubjectTmpl = template.Must(template.New("subject").Parse(
		`{{.MenteeName}}님 {{.LectureTitle}}의 신청이 완료되었습니다.`))

	enrollmentTextTmpl = template.Must(template.New("text").Parse(
		`{{.Month}}월 {{.Day}}일에 {{.TeamURL}} 로 접속해주세요.`))

	// 差し込み値は文脈に応じてエスケープされ、送信時にさらにサニタイズされる
	enrollmentHTMLTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(
		`<p><strong>{{.LectureTitle}}</strong></p>` +
			`<p>{{.Month}}월 {{.Day}}일에 <a href="{{.TeamURL}}">{{.TeamURL}}</a> 로 접속해주세요.</p>`))
)

// EnrollmentConfirmation は申込完了通知の差し込み値。
type EnrollmentConfirmation struct {
	To               string
	MenteeName       string
	LectureTitle     string
	LectureStartDate time.Time
	TeamURL          string
}

type enrollmentView struct {
	MenteeName   string
	LectureTitle string
	Month        int
	Day          int
	TeamURL      string
}

// RenderEnrollmentConfirmation は申込完了通知のメッセージを組み立てる。
// 件名はメンティー名と講義名、本文は講義開始の月日とチームURLを含む。
func RenderEnrollmentConfirmation(c EnrollmentConfirmation) (Message, error) {
	v := enrollmentView{
		MenteeName:   c.MenteeName,
		LectureTitle: c.LectureTitle,
		Month:        int(c.LectureStartDate.Month()),
		Day:          c.LectureStartDate.Day(),
		TeamURL:      c.TeamURL,
	}

	subject, err := execute(enrollmentSubjectTmpl, v)
	if err != nil {
		return Message{}, err
	}
	text, err := execute(enrollmentTextTmpl, v)
	if err != nil {
		return Message{}, err
	}
	html, err := execute(enrollmentHTMLTmpl, v)
	if err != nil {
		return Message{}, err
	}

	return Message{To: c.To, Subject: subject, Text: text, HTML: html}, nil
}

type executor interface {
	Name() string
	Execute(w io.Writer, data any) error
}

func execute(t executor, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}
