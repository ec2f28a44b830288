package execution

import (
	"context"
	"fmt"
	"time"

	"TradeGate/internal/domain/models"
	pkghttp "TradeGate/pkg/http"
)

// WebhookBroker posts orders to a configured HTTP endpoint. It is the
// capability transport for venues that accept plain JSON order
// submissions; anything protocol-specific stays on the far side of the
// endpoint.
type WebhookBroker struct {
	name     string
	endpoint string
	apiKey   string
	client   *pkghttp.Client
}

// NewWebhookBroker creates a broker posting to the given endpoint.
func NewWebhookBroker(name, endpoint, apiKey string, timeout time.Duration) *WebhookBroker {
	return &WebhookBroker{
		name:     name,
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
	}
}

func (b *WebhookBroker) Name() string { return b.name }

type webhookOrderResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason"`
}

// PlaceOrder submits the order and treats anything but an accepted
// response as a broker failure.
func (b *WebhookBroker) PlaceOrder(ctx context.Context, kind models.SignalKind, size float64, symbol string) error {
	headers := map[string]string{}
	if b.apiKey != "" {
		headers["Authorization"] = "Bearer " + b.apiKey
	}

	var resp webhookOrderResponse
	err := b.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:  pkghttp.MethodPost,
		URL:     b.endpoint,
		Headers: headers,
		Body: map[string]interface{}{
			"symbol": symbol,
			"side":   kind,
			"size":   size,
			"ts":     time.Now().Unix(),
		},
	}, &resp)
	if err != nil {
		return &models.BrokerError{Broker: b.name, Err: err}
	}
	if !resp.Accepted {
		return &models.BrokerError{Broker: b.name, Err: fmt.Errorf("order declined: %s", resp.Reason)}
	}
	return nil
}
