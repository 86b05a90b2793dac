package mqtt

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procuro/rfqmatch/core/model"
	"github.com/procuro/rfqmatch/infra/logger"
)

type fakePublisher struct {
	messages map[string][]byte
	failAll  bool
}

func (f *fakePublisher) PublishPayload(topic string, payload []byte) error {
	if f.failAll {
		return errors.New("broker down")
	}
	if f.messages == nil {
		f.messages = map[string][]byte{}
	}
	f.messages[topic] = payload
	return nil
}

func TestBridgePublishesPerUser(t *testing.T) {
	fp := &fakePublisher{}
	b := NewBridge(fp, "rfq", logger.NopLogger{})

	b.Publish(model.NewEvent(model.EventMatchFound, map[string]any{"matchId": "m-1"}, "s-1", "s-2"))

	require.Len(t, fp.messages, 2)
	payload, ok := fp.messages["rfq/users/s-1/match-found"]
	require.True(t, ok)
	var wire struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &wire))
	assert.Equal(t, "match-found", wire.Type)
	assert.Equal(t, "m-1", wire.Data["matchId"])
	assert.Contains(t, fp.messages, "rfq/users/s-2/match-found")
}

func TestBridgeDefaultPrefix(t *testing.T) {
	fp := &fakePublisher{}
	b := NewBridge(fp, "", logger.NopLogger{})

	b.Publish(model.NewEvent(model.EventNewQuote, nil, "u-1"))

	assert.Contains(t, fp.messages, "rfq/users/u-1/new-quote")
}

func TestBridgeNoTargetsIsNoop(t *testing.T) {
	fp := &fakePublisher{}
	b := NewBridge(fp, "rfq", logger.NopLogger{})

	b.Publish(model.NewEvent(model.EventNewMessage, map[string]any{"x": 1}))

	assert.Empty(t, fp.messages)
}

func TestBridgeBrokerFailureDoesNotPanic(t *testing.T) {
	fp := &fakePublisher{failAll: true}
	b := NewBridge(fp, "rfq", logger.NopLogger{})

	b.Publish(model.NewEvent(model.EventMatchFound, nil, "s-1"))

	assert.Empty(t, fp.messages)
}
