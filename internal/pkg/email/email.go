package email

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/qs3c/skill_exchange_server/config"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	cfg  *config.EmailConfig
	send sendFunc
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg, send: smtp.SendMail}
}

// Enabled 未配置 SMTP 主机时不发送邮件
func (s *Service) Enabled() bool {
	return s.cfg != nil && s.cfg.SMTPHost != ""
}

// SendRequestCreated 通知导师收到新的辅导请求
func (s *Service) SendRequestCreated(to, tutorName, studentName, skillName string, duration int, message string) error {
	subject := fmt.Sprintf("New tutoring request for %s", skillName)
	content := fmt.Sprintf(`
        <p>Hi %s,</p>
        <p><strong>%s</strong> would like a %d-minute session on <strong>%s</strong>.</p>
        %s
        <p>Open SkillXchange to accept or decline the request.</p>`,
		esc(tutorName), esc(studentName), duration, esc(skillName), quote(message))

	return s.sendHTML(to, subject, layout("New tutoring request", content))
}

// SendRequestAccepted 通知学生请求已被接受并已扣费
func (s *Service) SendRequestAccepted(to, studentName, tutorName, skillName string, cost int, tutorMessage string) error {
	subject := fmt.Sprintf("%s accepted your tutoring request", tutorName)
	content := fmt.Sprintf(`
        <p>Hi %s,</p>
        <p><strong>%s</strong> accepted your request for <strong>%s</strong>.</p>
        <p>%d skillcoins have been transferred to your tutor.</p>
        %s`,
		esc(studentName), esc(tutorName), esc(skillName), cost, quote(tutorMessage))

	return s.sendHTML(to, subject, layout("Request accepted", content))
}

// SendRequestRejected 通知学生请求被拒绝
func (s *Service) SendRequestRejected(to, studentName, tutorName, skillName, tutorMessage string) error {
	subject := fmt.Sprintf("Update on your %s tutoring request", skillName)
	content := fmt.Sprintf(`
        <p>Hi %s,</p>
        <p><strong>%s</strong> declined your request for <strong>%s</strong>. No skillcoins were charged.</p>
        %s`,
		esc(studentName), esc(tutorName), esc(skillName), quote(tutorMessage))

	return s.sendHTML(to, subject, layout("Request declined", content))
}

func esc(s string) string {
	return html.EscapeString(s)
}

func quote(message string) string {
	if strings.TrimSpace(message) == "" {
		return ""
	}
	return fmt.Sprintf(`<blockquote style="border-left: 3px solid #e5e7eb; padding-left: 12px; color: #4b5563;">%s</blockquote>`, esc(message))
}

func layout(title, content string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">%s</h2>
        %s
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This email was sent automatically by SkillXchange.</p>
    </div>
</body>
</html>
`, esc(title), content)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	headers := [][2]string{
		{"From", s.cfg.From},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return s.send(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
