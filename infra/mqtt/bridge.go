package mqtt

import (
	"fmt"
	"strings"

	"github.com/procuro/rfqmatch/core/model"
	"github.com/procuro/rfqmatch/core/notify"
	"github.com/procuro/rfqmatch/infra/logger"
)

// payloadPublisher is the transport dependency of the bridge.
type payloadPublisher interface {
	PublishPayload(topic string, payload []byte) error
}

// Bridge mirrors domain events onto MQTT topics. It implements
// notify.Publisher so it can sit next to the websocket dispatcher on the
// same event bus. One message is published per target user on
// <prefix>/users/<userID>/<kind>.
type Bridge struct {
	client payloadPublisher
	prefix string
	log    logger.Logger
}

// NewBridge creates a bridge over the given client. An empty prefix
// defaults to "rfq".
func NewBridge(client payloadPublisher, prefix string, log logger.Logger) *Bridge {
	if prefix == "" {
		prefix = "rfq"
	}
	return &Bridge{client: client, prefix: strings.TrimSuffix(prefix, "/"), log: log}
}

var _ notify.Publisher = (*Bridge)(nil)

// Publish encodes the event once and publishes it to every target user's
// topic. Best effort: broker failures are logged and dropped.
func (b *Bridge) Publish(ev model.DomainEvent) {
	if len(ev.UserIDs) == 0 {
		return
	}
	payload, err := notify.Encode(ev)
	if err != nil {
		b.log.Errorf("encode %s event: %v", ev.Kind, err)
		return
	}
	for _, userID := range ev.UserIDs {
		topic := fmt.Sprintf("%s/users/%s/%s", b.prefix, userID, ev.Kind)
		if err := b.client.PublishPayload(topic, payload); err != nil {
			b.log.Errorf("publish to %s: %v", topic, err)
		}
	}
}
