package mailer

import (
	"fmt"

	"github.com/osteele/liquid"
)

// 通知邮件模板（Liquid 语法）
//
// 新建邮箱和重置密码的邮件必须带上明文密码，
// 这是唯一一次向用户传递密码的机会，密码本身不落库。
const (
	newAccountTemplate = `<html>
<body>
<p>Hello {{ firstname }} {{ name }},</p>
<p>Your mailbox <strong>{{ email }}</strong> has been created.</p>
<p>Your password is: <strong>{{ password }}</strong></p>
<p>Please change it after your first login.</p>
</body>
</html>`

	passwordResetTemplate = `<html>
<body>
<p>Hello {{ firstname }} {{ name }},</p>
<p>The password of your mailbox <strong>{{ email }}</strong> has been reset.</p>
<p>Your new password is: <strong>{{ password }}</strong></p>
</body>
</html>`

	forgotPasswordTemplate = `<html>
<body>
<p>Hello,</p>
<p>A password reset has been requested for your account <strong>{{ email }}</strong>.</p>
<p><a href="{{ reset_url }}/{{ token }}">Click here to choose a new password</a></p>
<p>This link expires in {{ ttl }}. If you did not request a reset, ignore this email.</p>
</body>
</html>`
)

var engine = liquid.NewEngine()

func render(template string, bindings liquid.Bindings) (string, error) {
	out, err := engine.ParseAndRenderString(template, bindings)
	if err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return out, nil
}

// NewAccountMessage 生成新邮箱创建通知
func NewAccountMessage(name, firstname, email, password string) (*Message, error) {
	html, err := render(newAccountTemplate, liquid.Bindings{
		"name":      name,
		"firstname": firstname,
		"email":     email,
		"password":  password,
	})
	if err != nil {
		return nil, err
	}

	return &Message{
		To:      []string{email},
		Subject: "Your new mailbox " + email,
		HTML:    html,
	}, nil
}

// PasswordResetMessage 生成邮箱密码重置通知
func PasswordResetMessage(name, firstname, email, password string) (*Message, error) {
	html, err := render(passwordResetTemplate, liquid.Bindings{
		"name":      name,
		"firstname": firstname,
		"email":     email,
		"password":  password,
	})
	if err != nil {
		return nil, err
	}

	return &Message{
		To:      []string{email},
		Subject: "Password reset for " + email,
		HTML:    html,
	}, nil
}

// ForgotPasswordMessage 生成管理账号找回密码邮件
func ForgotPasswordMessage(email, resetURL, token, ttl string) (*Message, error) {
	html, err := render(forgotPasswordTemplate, liquid.Bindings{
		"email":     email,
		"reset_url": resetURL,
		"token":     token,
		"ttl":       ttl,
	})
	if err != nil {
		return nil, err
	}

	return &Message{
		To:      []string{email},
		Subject: "Password reset request",
		HTML:    html,
	}, nil
}
