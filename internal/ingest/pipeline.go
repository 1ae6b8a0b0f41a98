package ingest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"bunasiem/internal/logger"
	"bunasiem/internal/metrics"
	"bunasiem/internal/rules"
	"bunasiem/internal/store"
	"bunasiem/pkg/models"
)

// AlertSink receives alerts fired during ingestion. Sink failures are
// reported but never fail the ingestion call itself.
type AlertSink interface {
	WriteAlerts(alerts []*models.Alert) error
}

// Config configures the ingestion pipeline.
type Config struct {
	SuspiciousIPs []string
}

// Pipeline normalizes payloads, evaluates the rule catalog and maintains
// the bounded retention buffer. A single mutex serializes the
// read-modify-write of buffer and id counter, so no two ingestions can
// observe partial state.
type Pipeline struct {
	mu      sync.Mutex
	catalog *rules.Catalog
	backing store.Store
	ipSet   map[string]struct{}
	sink    AlertSink
	metrics *metrics.Metrics
	nextID  int64
	now     func() time.Time
}

// NewPipeline creates a pipeline over the given catalog and store.
func NewPipeline(catalog *rules.Catalog, backing store.Store, cfg Config, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		catalog: catalog,
		backing: backing,
		ipSet:   rules.BuildIPSet(cfg.SuspiciousIPs),
		metrics: m,
		now:     time.Now,
	}
}

// SetAlertSink attaches an optional alert sink. Call before ingesting.
func (p *Pipeline) SetAlertSink(sink AlertSink) {
	p.sink = sink
}

// Ingest runs one payload through normalize, evaluate and append. The
// append is all-or-nothing: a normalization or evaluation failure leaves
// buffer and id counter untouched, and the failed call does not consume
// an id. The returned result always carries the outcome; the error is
// non-nil exactly when Success is false.
func (p *Pipeline) Ingest(raw map[string]interface{}) (*models.IngestResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	rec, err := normalize(raw, p.nextID+1, now)
	if err != nil {
		p.metrics.IncIngestError("normalization")
		logger.Warnf("Ingestion rejected: %v", err)
		return &models.IngestResult{Success: false, Error: err.Error()}, err
	}

	ctx := rules.DeriveContext(now, p.ipSet)
	alert, err := p.catalog.Evaluate(rec, ctx)
	if err != nil {
		p.metrics.IncIngestError("evaluation")
		var evalErr *rules.EvaluationError
		if errors.As(err, &evalErr) {
			logger.Errorf("Rule %q failed during evaluation: %v", evalErr.Rule, evalErr.Err)
		} else {
			logger.Errorf("Evaluation failed: %v", err)
		}
		return &models.IngestResult{Success: false, Error: err.Error()}, err
	}

	if alert != nil {
		rec.AttachAlert(alert)
	}

	before, err := p.backing.Count()
	if err != nil {
		p.metrics.IncIngestError("store")
		return &models.IngestResult{Success: false, Error: err.Error()}, err
	}
	if err := p.backing.Append(rec); err != nil {
		p.metrics.IncIngestError("store")
		logger.Errorf("Failed to append log record: %v", err)
		return &models.IngestResult{Success: false, Error: err.Error()}, err
	}
	after, err := p.backing.Count()
	if err == nil && after != before+1 {
		p.metrics.IncBufferTrim()
		logger.Infof("Retention buffer trimmed: %d -> %d records", before, after)
	}

	p.nextID++
	p.metrics.IncIngested()

	if alert != nil {
		p.metrics.IncAlert(alert.RuleName, alert.Severity)
		logger.Warnf("ALERT: %s - Severity: %s (log %d)", alert.Message, alert.Severity, rec.ID)
		if p.sink != nil {
			if err := p.sink.WriteAlerts([]*models.Alert{alert}); err != nil {
				p.metrics.IncSinkError()
				logger.Errorf("Alert sink write failed: %v", err)
			}
		}
	}

	logger.Debugf("Log ingested: %s - %s (id=%d)", rec.Source, rec.EventType, rec.ID)
	return &models.IngestResult{
		Success:  true,
		LogID:    rec.ID,
		HasAlert: alert != nil,
		Alert:    alert,
	}, nil
}

// GetLogs returns records matching the filter, newest-ingested-first,
// plus the total matched count.
func (p *Pipeline) GetLogs(f store.Filter) ([]*models.LogRecord, int, error) {
	return p.backing.Query(f)
}

// GetStats summarizes the retention buffer.
func (p *Pipeline) GetStats() (*models.LogStats, error) {
	return p.backing.Stats()
}

// Reset clears the buffer and id counter. Test hook only; there is no
// reset path in normal operation short of a process restart.
func (p *Pipeline) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.backing.Reset(); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	p.nextID = 0
	return nil
}

// SetClock overrides the wall clock. Test hook only.
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
}
