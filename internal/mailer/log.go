package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer 开发模式邮件发送器，只把邮件写入日志
type LogMailer struct {
	log *zap.Logger
}

// NewLogMailer 创建日志发送器
func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// Send 把邮件内容写入日志
func (m *LogMailer) Send(_ context.Context, msg *Message) error {
	m.log.Info("notification email (log driver)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("html", msg.HTML),
	)
	return nil
}
