package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"bunasiem/pkg/models"
)

// NormalizationError reports a malformed or unusable payload. It is
// local to one ingestion call and never mutates shared state.
type NormalizationError struct {
	Field string
	Err   error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize field %q: %v", e.Field, e.Err)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

// timeLayouts are accepted event-time encodings, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// normalize turns an arbitrary payload into a canonical LogRecord. The
// id is the caller's candidate id; missing source defaults to "unknown",
// missing severity to "low", missing event time to the ingestion time.
func normalize(raw map[string]interface{}, id int64, now time.Time) (*models.LogRecord, error) {
	if raw == nil {
		return nil, &NormalizationError{Field: "payload", Err: fmt.Errorf("payload is nil")}
	}

	rec := &models.LogRecord{
		ID:           id,
		Source:       stringField(raw, "source"),
		EventType:    stringField(raw, "eventType", "event_type"),
		SourceIP:     stringField(raw, "sourceIp", "source_ip", "sourceIPAddress"),
		User:         stringField(raw, "user", "username"),
		ErrorMessage: stringField(raw, "errorMessage", "error_message"),
		Location:     stringField(raw, "location"),
		IngestedAt:   now,
	}

	if rec.Source == "" {
		rec.Source = models.SourceUnknown
	}
	rec.Severity = models.NormalizeSeverity(stringField(raw, "severity"))

	eventTime, err := timeField(raw, now, "eventTime", "event_time")
	if err != nil {
		return nil, err
	}
	rec.EventTime = eventTime

	bytes, err := intField(raw, "bytesTransferred", "bytes_transferred")
	if err != nil {
		return nil, err
	}
	rec.BytesTransferred = bytes

	return rec, nil
}

// stringField returns the first present key coerced to a string.
func stringField(raw map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			return val
		case fmt.Stringer:
			return val.String()
		default:
			return fmt.Sprintf("%v", val)
		}
	}
	return ""
}

func timeField(raw map[string]interface{}, fallback time.Time, keys ...string) (time.Time, error) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case time.Time:
			return val, nil
		case string:
			for _, layout := range timeLayouts {
				if ts, err := time.Parse(layout, val); err == nil {
					return ts, nil
				}
			}
			return time.Time{}, &NormalizationError{Field: key, Err: fmt.Errorf("unparseable timestamp %q", val)}
		default:
			return time.Time{}, &NormalizationError{Field: key, Err: fmt.Errorf("unsupported timestamp type %T", v)}
		}
	}
	return fallback, nil
}

func intField(raw map[string]interface{}, keys ...string) (int64, error) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case int:
			return int64(val), nil
		case int64:
			return val, nil
		case float64:
			return int64(val), nil
		case json.Number:
			n, err := val.Int64()
			if err != nil {
				return 0, &NormalizationError{Field: key, Err: err}
			}
			return n, nil
		case string:
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return 0, &NormalizationError{Field: key, Err: fmt.Errorf("non-numeric value %q", val)}
			}
			return n, nil
		default:
			return 0, &NormalizationError{Field: key, Err: fmt.Errorf("unsupported numeric type %T", v)}
		}
	}
	return 0, nil
}
