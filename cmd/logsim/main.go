package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// logsim emits synthetic security-log payloads, either POSTed to the
// ingestion API or LPUSHed onto the Redis input list. It reproduces the
// demo feeds: cloud audit trail logins, identity-provider sign-ins,
// telecom network access and large data transfers.

type generator struct {
	rng *rand.Rand
}

func newGenerator(seed int64) *generator {
	return &generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *generator) next() map[string]interface{} {
	now := time.Now().UTC().Format(time.RFC3339)

	switch g.rng.Intn(5) {
	case 0:
		payload := map[string]interface{}{
			"source":    "cloud-audit-trail",
			"eventType": "console-login",
			"user":      "admin@bunasiem.et",
			"sourceIp":  fmt.Sprintf("196.188.34.%d", g.rng.Intn(255)),
			"eventTime": now,
			"severity":  "low",
		}
		if g.rng.Intn(3) == 0 {
			payload["errorMessage"] = "Failed password for admin"
		}
		return payload
	case 1:
		return map[string]interface{}{
			"source":    "identity-provider",
			"eventType": "sign-in",
			"user":      "tsegay@bunasiem.et",
			"sourceIp":  fmt.Sprintf("196.188.56.%d", g.rng.Intn(255)),
			"eventTime": now,
			"severity":  "medium",
		}
	case 2:
		return map[string]interface{}{
			"source":    "telecom-nas",
			"eventType": "network-access",
			"user":      "user@ethiotelecom.et",
			"sourceIp":  fmt.Sprintf("10.10.%d.%d", g.rng.Intn(255), g.rng.Intn(255)),
			"eventTime": now,
			"severity":  "low",
			"location":  "Addis Ababa",
		}
	case 3:
		return map[string]interface{}{
			"source":           "firewall",
			"eventType":        "data-transfer",
			"sourceIp":         fmt.Sprintf("196.188.34.%d", g.rng.Intn(255)),
			"bytesTransferred": g.rng.Intn(3_000_000),
			"eventTime":        now,
			"severity":         "low",
		}
	default:
		return map[string]interface{}{
			"source":    "ids",
			"eventType": "network-access",
			"sourceIp":  fmt.Sprintf("172.16.%d.%d", g.rng.Intn(255), g.rng.Intn(255)),
			"eventTime": now,
			"severity":  "low",
		}
	}
}

func postPayload(client *http.Client, target string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	resp, err := client.Post(target, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post payload: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("ingestion returned %s", resp.Status)
	}
	return nil
}

func pushPayload(ctx context.Context, client *redis.Client, key string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := client.LPush(ctx, key, body).Err(); err != nil {
		return fmt.Errorf("lpush payload: %w", err)
	}
	return nil
}

func main() {
	mode := flag.String("mode", "http", "Delivery mode: http or redis")
	target := flag.String("target", "http://127.0.0.1:8080/api/logs", "Ingestion API URL (http mode)")
	redisAddr := flag.String("redis-addr", "127.0.0.1:6379", "Redis address (redis mode)")
	redisKey := flag.String("redis-key", "security_logs", "Redis list key (redis mode)")
	count := flag.Int("count", 100, "Number of payloads to emit")
	interval := flag.Duration("interval", 100*time.Millisecond, "Delay between payloads")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	gen := newGenerator(*seed)
	ctx := context.Background()

	var send func(map[string]interface{}) error
	switch *mode {
	case "http":
		client := &http.Client{Timeout: 5 * time.Second}
		send = func(payload map[string]interface{}) error {
			return postPayload(client, *target, payload)
		}
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: *redisAddr})
		defer client.Close()
		send = func(payload map[string]interface{}) error {
			return pushPayload(ctx, client, *redisKey, payload)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown mode: %s\n", *mode)
		os.Exit(2)
	}

	sent := 0
	for i := 0; i < *count; i++ {
		if err := send(gen.next()); err != nil {
			fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
			continue
		}
		sent++
		if *interval > 0 && i < *count-1 {
			time.Sleep(*interval)
		}
	}

	fmt.Printf("emitted %d/%d payloads (mode=%s)\n", sent, *count, *mode)
}
