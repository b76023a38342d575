package edge

import (
	"context"
	"fmt"

	"github.com/nerrad567/gray-logic-timedata/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-timedata/internal/ingest"
)

// MessageSource is the subscribe side of the MQTT client.
type MessageSource interface {
	Subscribe(filter string, qos byte, handler mqtt.MessageHandler) error
}

// BatchIngestor accepts raw batch payloads.
type BatchIngestor interface {
	IngestJSON(ctx context.Context, edgeName string, kind ingest.Kind, payload []byte)
}

// Subscriber bridges edge MQTT topics to the ingestion router and the
// live value cache.
type Subscriber struct {
	source   MessageSource
	ingestor BatchIngestor
	live     *LiveCache
	qos      byte
	logger   Logger

	// ctx is the base context handed to the ingestor; set by Start.
	ctx context.Context
}

// NewSubscriber creates a subscriber. live may be nil, in which case
// current-value messages are discarded.
func NewSubscriber(source MessageSource, ingestor BatchIngestor, live *LiveCache, qos byte) *Subscriber {
	return &Subscriber{
		source:   source,
		ingestor: ingestor,
		live:     live,
		qos:      qos,
		logger:   noopLogger{},
		ctx:      context.Background(),
	}
}

// SetLogger sets the logger.
func (s *Subscriber) SetLogger(logger Logger) {
	s.logger = logger
}

// Start subscribes to every edge data topic. Messages received after ctx
// is cancelled are still delivered but ingested with a cancelled context.
func (s *Subscriber) Start(ctx context.Context) error {
	s.ctx = ctx
	filter := mqtt.Topics{}.AllEdgeData()
	if err := s.source.Subscribe(filter, s.qos, s.HandleMessage); err != nil {
		return fmt.Errorf("subscribing to %s: %w", filter, err)
	}
	s.logger.Info("edge subscriber started", "filter", filter)
	return nil
}

// HandleMessage dispatches one MQTT message by topic kind.
func (s *Subscriber) HandleMessage(topic string, payload []byte) error {
	name, kind, ok := mqtt.Topics{}.ParseEdgeData(topic)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnexpectedTopic, topic)
	}
	if _, ok := ParseName(name); !ok {
		return fmt.Errorf("%w: %q", ErrMalformedEdgeID, name)
	}

	if kind == mqtt.KindCurrent {
		if s.live == nil {
			return nil
		}
		// An empty payload clears the retained message of an edge that
		// went away.
		if len(payload) == 0 {
			s.live.Forget(name)
			s.logger.Debug("live values cleared", "edge", name)
			return nil
		}
		return s.live.UpdateJSON(name, payload)
	}

	batchKind, ok := ingest.ParseKind(kind)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnexpectedTopic, topic)
	}
	s.ingestor.IngestJSON(s.ctx, name, batchKind, payload)
	return nil
}
