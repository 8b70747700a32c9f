package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/TIANLI0/BlindSight/utils"
	"go.uber.org/zap"
)

// Location 求助者位置
type Location struct {
	Latitude  string
	Longitude string
	Address   string
}

type AlertService struct {
	sender SMSSender
}

func NewAlertService(sender SMSSender) *AlertService {
	return &AlertService{sender: sender}
}

// SendDistress 向紧急联系人发送求助短信，返回消息ID
func (s *AlertService) SendDistress(ctx context.Context, loc Location) (string, error) {
	if strings.TrimSpace(loc.Latitude) == "" || strings.TrimSpace(loc.Longitude) == "" {
		return "", invalidInput("missing coordinates", nil)
	}

	sid, err := s.sender.Send(ctx, DistressMessage(loc))
	if err != nil {
		utils.Logger.Error("failed to send distress sms", zap.Error(err))
		return "", upstreamUnavailable("sms gateway", err)
	}

	utils.Logger.Info("distress sms sent", zap.String("sid", sid))
	return sid, nil
}

// DistressMessage 求助短信正文
func DistressMessage(loc Location) string {
	return fmt.Sprintf(`

ALERT: Visually Impaired Distress 🚨


Location: %s

Coordinates: Latitude %s, Longitude %s


This is an automated alert. A visually impaired person is in distress at the above location. Immediate assistance required.

BlindSight AI`, loc.Address, loc.Latitude, loc.Longitude)
}
