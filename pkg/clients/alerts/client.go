package alerts

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/keystonepos/backend/internal/config"
	"github.com/keystonepos/backend/internal/domain/models"
)

// Client posts inventory alerts to an external webhook.
type Client interface {
	SendLowStockAlert(ctx context.Context, items []models.LowStockItem) error
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook alert client using the provided configuration.
func NewClient(cfg config.AlertsConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	if cfg.Token != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Token))
	}

	return &WebhookClient{
		httpClient: restyClient,
		url:        cfg.WebhookURL,
	}
}

// lowStockPayload is the webhook body for a low-stock notification.
type lowStockPayload struct {
	Type   string                `json:"type"`
	Items  []models.LowStockItem `json:"items"`
	SentAt time.Time             `json:"sent_at"`
}

// SendLowStockAlert posts the flagged items to the configured webhook.
// Nothing is sent when the item list is empty.
func (c *WebhookClient) SendLowStockAlert(ctx context.Context, items []models.LowStockItem) error {
	if len(items) == 0 {
		return nil
	}

	payload := lowStockPayload{
		Type:   "low_stock",
		Items:  items,
		SentAt: time.Now().UTC(),
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send low stock alert: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("alert webhook error: status=%d", resp.StatusCode())
	}

	return nil
}
