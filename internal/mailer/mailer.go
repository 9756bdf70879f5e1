package mailer

import "context"

// Message 一封待发送的通知邮件
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Mailer 通知邮件发送接口
//
// 实现：SESMailer（生产）、LogMailer（开发模式只写日志）。
// 发送失败的错误原样向上传递，调用方不做重试。
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}
