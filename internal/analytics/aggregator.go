package analytics

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/daye10/textsearch/pkg/config"
	"github.com/daye10/textsearch/pkg/kafka"
)

// Aggregator consumes the analytics topic and folds events into a Store.
type Aggregator struct {
	consumer *kafka.Consumer
	store    *Store
	logger   *slog.Logger
}

// NewAggregator creates an Aggregator with its own consumer on the
// analytics topic.
func NewAggregator(cfg config.KafkaConfig, store *Store) *Aggregator {
	a := &Aggregator{
		store:  store,
		logger: slog.Default().With("component", "analytics-aggregator"),
	}
	a.consumer = kafka.NewConsumer(cfg, cfg.Topics.AnalyticsEvents, a.handle)
	return a
}

// Start runs the consume loop until ctx is cancelled.
func (a *Aggregator) Start(ctx context.Context) error {
	return a.consumer.Start(ctx)
}

// Store returns the backing stats store.
func (a *Aggregator) Store() *Store {
	return a.store
}

// handle decodes one event. Events are typed by their "type" field; unknown
// types are logged and dropped.
func (a *Aggregator) handle(ctx context.Context, key, value []byte) error {
	var envelope struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(value, &envelope); err != nil {
		a.logger.Error("undecodable analytics event", "error", err)
		return nil
	}
	switch envelope.Type {
	case EventSearch, EventBooleanAnd, EventSuggest, EventZeroResult:
		ev, err := kafka.DecodeJSON[QueryEvent](value)
		if err != nil {
			a.logger.Error("undecodable query event", "error", err)
			return nil
		}
		a.store.RecordQuery(ev)
	case EventRebuild:
		ev, err := kafka.DecodeJSON[RebuildEvent](value)
		if err != nil {
			a.logger.Error("undecodable rebuild event", "error", err)
			return nil
		}
		a.store.RecordRebuild(ev)
	default:
		a.logger.Warn("unknown analytics event type", "type", envelope.Type)
	}
	return nil
}
