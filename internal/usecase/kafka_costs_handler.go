package usecase

import (
	"context"
	"encoding/json"
	"time"

	"CostCast/internal/domain/models"
	domrepo "CostCast/internal/domain/repository"
	pkgkafka "CostCast/pkg/kafka"
)

// KafkaCostsHandler consumes cost observations from Kafka and writes
// them to storage.
type KafkaCostsHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaCostsHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaCostsHandler {
	return &KafkaCostsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaCostsHandler) Topic() string { return h.topic }

func (h *KafkaCostsHandler) Handle(ctx context.Context, b []byte) error {
	var o models.CostObservation
	if err := json.Unmarshal(b, &o); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if o.Timestamp > 1e11 { // ms
		o.Timestamp = o.Timestamp / 1000
	}
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(o.Timestamp, 0)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &o)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordObservation("clickhouse", o.Account)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaCostsHandler)(nil)
