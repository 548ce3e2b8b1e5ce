package notify

import (
	"bytes"
	"html/template"
	"time"
)

// ContactNotification 是通过校验的联系表单原始内容，渲染时统一转义。
type ContactNotification struct {
	SubmissionID string
	Name         string
	Email        string
	Phone        string
	Company      string
	Message      string
	SourcePage   string
	SubmittedAt  time.Time
}

var contactEmailTemplate = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2937;">
  <h2>網站聯絡表單</h2>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><th align="left">姓名</th><td>{{.Name}}</td></tr>
    <tr><th align="left">Email</th><td><a href="mailto:{{.Email}}">{{.Email}}</a></td></tr>
    {{- if .Phone}}
    <tr><th align="left">電話</th><td>{{.Phone}}</td></tr>
    {{- end}}
    {{- if .Company}}
    <tr><th align="left">公司</th><td>{{.Company}}</td></tr>
    {{- end}}
    {{- if .SourcePage}}
    <tr><th align="left">來源頁面</th><td>{{.SourcePage}}</td></tr>
    {{- end}}
  </table>
  <h3>訊息內容</h3>
  <div style="white-space: pre-wrap;">{{.Message}}</div>
  <p style="color: #6b7280; font-size: 12px;">{{.SubmissionID}} · {{.SubmittedAt.UTC.Format "2006-01-02 15:04:05"}} UTC</p>
</body>
</html>
`))


// BuildContactEmail 生成发送给业务窗口的通知邮件。
func BuildContactEmail(from, to string, n ContactNotification) (Message, error) {
	var buf bytes.Buffer
	if err := contactEmailTemplate.Execute(&buf, n); err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      []string{to},
		Subject: "[網站表單] " + n.Name + " 的來信",
		HTML:    buf.String(),
	}, nil
}
