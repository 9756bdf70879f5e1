package mailer

import (
	"context"

	"github.com/hmicael/email-api/internal/monitoring"
)

// InstrumentedMailer 在邮件发送结果上记录监控指标
type InstrumentedMailer struct {
	next    Mailer
	metrics *monitoring.Metrics
}

// NewInstrumentedMailer 包装一个发送器并记录指标
func NewInstrumentedMailer(next Mailer, metrics *monitoring.Metrics) *InstrumentedMailer {
	return &InstrumentedMailer{next: next, metrics: metrics}
}

// Send 委托给底层发送器并记录成功或失败
func (m *InstrumentedMailer) Send(ctx context.Context, msg *Message) error {
	if err := m.next.Send(ctx, msg); err != nil {
		m.metrics.RecordEmailFailed()
		return err
	}
	m.metrics.RecordEmailSent()
	return nil
}
