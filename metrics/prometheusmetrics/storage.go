package prometheusmetrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cshum/imgixset"
	"go.uber.org/zap"
)

type instrumentedStorage struct {
	imgixset.Storage
	name    string
	metrics *PrometheusMetrics
}

// InstrumentStorage wraps storage, recording latency and status of every operation
func (s *PrometheusMetrics) InstrumentStorage(storage imgixset.Storage) imgixset.Storage {
	if storage == nil {
		return nil
	}
	return &instrumentedStorage{
		Storage: storage,
		name:    strings.TrimPrefix(fmt.Sprintf("%T", storage), "*"),
		metrics: s,
	}
}

func (s *instrumentedStorage) observe(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start)
	s.metrics.StorageDuration.WithLabelValues(s.name, operation, status).Observe(duration.Seconds())
	s.metrics.Logger.Debug("storage",
		zap.String("storage", s.name),
		zap.String("operation", operation),
		zap.String("status", status),
		zap.Duration("took", duration))
}

func (s *instrumentedStorage) Get(ctx context.Context, key string) (blob *imgixset.Blob, err error) {
	start := time.Now()
	blob, err = s.Storage.Get(ctx, key)
	s.observe("get", start, err)
	return
}

func (s *instrumentedStorage) Put(ctx context.Context, key string, blob *imgixset.Blob) (err error) {
	start := time.Now()
	err = s.Storage.Put(ctx, key, blob)
	s.observe("put", start, err)
	return
}

func (s *instrumentedStorage) Delete(ctx context.Context, key string) (err error) {
	start := time.Now()
	err = s.Storage.Delete(ctx, key)
	s.observe("delete", start, err)
	return
}

func (s *instrumentedStorage) Stat(ctx context.Context, key string) (stat *imgixset.Stat, err error) {
	start := time.Now()
	stat, err = s.Storage.Stat(ctx, key)
	s.observe("stat", start, err)
	return
}
