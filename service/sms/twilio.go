package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/TIANLI0/BlindSight/config"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// messageCreator twilio 客户端中发送短信的部分
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender 通过 Twilio 把短信发给固定的紧急联系人
type TwilioSender struct {
	api  messageCreator
	from string
	to   string
}

func NewTwilioSender(cfg *config.SMSConfig) (*TwilioSender, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, errors.New("twilio credentials are not configured")
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, errors.New("sms from/to numbers are not configured")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioSender{api: client.Api, from: cfg.From, to: cfg.To}, nil
}

// Send twilio-go 不支持 context，调用前检查是否已取消
func (s *TwilioSender) Send(ctx context.Context, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(s.to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}

	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}
