package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"github.com/hmicael/email-api/internal/config"
)

// SESMailer 通过 AWS SES v2 发送通知邮件
type SESMailer struct {
	client *sesv2.Client
	from   string
	log    *zap.Logger
}

// NewSESMailer 创建 SES 发送器
//
// 配置了 AccessKey/SecretKey 时使用静态凭证，
// 否则走默认凭证链（环境变量、实例角色等）。
func NewSESMailer(ctx context.Context, cfg config.MailerConfig, log *zap.Logger) (*SESMailer, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &SESMailer{
		client: sesv2.NewFromConfig(awsCfg),
		from:   cfg.From,
		log:    log,
	}, nil
}

// Send 发送一封邮件
func (m *SESMailer) Send(ctx context.Context, msg *Message) error {
	body := &types.Body{
		Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
	}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination:      &types.Destination{ToAddresses: msg.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	}

	out, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.log.Info("notification email sent",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("messageId", aws.ToString(out.MessageId)),
	)
	return nil
}
