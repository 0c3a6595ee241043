package whatsapp

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/cashrecon/internal/config"
	client "github.com/mamadbah2/cashrecon/pkg/clients/whatsapp"
)

// ErrNotificationsDisabled is returned when no WhatsApp credentials are configured.
var ErrNotificationsDisabled = errors.New("whatsapp notifications disabled")

// Notifier delivers reconciliation messages to the store manager.
type Notifier interface {
	NotifyManager(ctx context.Context, message string) error
}

// MetaWhatsAppService is the production Notifier backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg    config.WhatsAppConfig
	client client.Client
	logger *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. A nil client disables delivery.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, c client.Client, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaWhatsAppService{cfg: cfg, client: c, logger: logger}
}

// NotifyManager sends message to the configured manager phone.
func (s *MetaWhatsAppService) NotifyManager(ctx context.Context, message string) error {
	if s.client == nil || !s.cfg.Enabled() {
		s.logger.Debug("skipping manager notification", zap.Int("length", len(message)))
		return ErrNotificationsDisabled
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	resp, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   s.cfg.ManagerPhone,
		Body: message,
	})
	if err != nil {
		return err
	}

	messageID := ""
	if resp != nil && len(resp.Messages) > 0 {
		messageID = resp.Messages[0].ID
	}
	s.logger.Info("manager notified", zap.String("message_id", messageID))
	return nil
}
