package mail

import (
	"bytes"
	"html/template"
	"strings"
)

var invitationHTML = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>{{.Title}}</h2>
    <p>{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
    <p style="text-align: center;">
      <a href="{{.URL}}" style="display: inline-block; background: #667eea; color: #fff; padding: 12px 30px; text-decoration: none; border-radius: 8px;">Open survey</a>
    </p>
    <p style="color: #6b7280; font-size: 13px;">This link can be used once.</p>
  </div>
</body>
</html>`))

// InvitationMessage 生成邀请邮件，text 为纯文本正文
func InvitationMessage(to, title, url, text string) (Message, error) {
	var buf bytes.Buffer
	err := invitationHTML.Execute(&buf, struct {
		Title string
		URL   string
		Lines []string
	}{title, url, strings.Split(text, "\n")})
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: "Invitation: " + title,
		Text:    text,
		HTML:    buf.String(),
	}, nil
}
