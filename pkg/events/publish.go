package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"
)

// PublisherManager distributes chat events to a set of watermill publishers.
// You "subscribe" a publisher to a topic; Publish then fans a message out to
// every publisher registered for that topic, stamping a sequence number in
// the order messages are handled.
type PublisherManager struct {
	publishers     map[string][]message.Publisher
	sequenceNumber uint64
	mu             sync.Mutex
}

func NewPublisherManager() *PublisherManager {
	return &PublisherManager{
		publishers: make(map[string][]message.Publisher),
	}
}

func (m *PublisherManager) SubscribePublisher(topic string, pub message.Publisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishers[topic] = append(m.publishers[topic], pub)
}

// Publish serializes the event and distributes it to all publishers on the
// given topic.
func (m *PublisherManager) Publish(topic string, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), b)
	msg.Metadata.Set("sequence_number", fmt.Sprintf("%d", m.sequenceNumber))
	m.sequenceNumber++

	for _, pub := range m.publishers[topic] {
		if err := pub.Publish(topic, msg); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("failed to publish chat event")
		}
	}
	return nil
}

// PublishBlind publishes and only logs failures. Event delivery is never
// allowed to fail a turn.
func (m *PublisherManager) PublishBlind(topic string, e Event) {
	if err := m.Publish(topic, e); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("failed to publish chat event")
	}
}
