package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/go-cmp/cmp"
	"github.com/streadway/amqp"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

func sampleReport() entities.InventoryReport {
	return entities.InventoryReport{
		Target:      "10.0.0.1",
		Platform:    "mlx",
		CollectedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		PortChannels: []entities.LagRecord{{
			Name:           "po50",
			Mode:           entities.ModeDynamic,
			Deployed:       true,
			AggregateID:    50,
			IfIndex:        120,
			AggregatorType: "standard",
		}},
	}
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf)
	if err := w.Publish(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Publish() unexpected error: %v", err)
	}
	var got entities.InventoryReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(sampleReport(), got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), "\n  \"target\"") {
		t.Errorf("output is not indented:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "\"aggregator_mode\": \"dynamic\"") {
		t.Errorf("output lacks aggregator_mode:\n%s", buf.String())
	}
}

func TestJSONWriterConcurrentPublish(t *testing.T) {
	const publishers = 16
	var buf bytes.Buffer
	w := NewJSONWriter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Publish(context.Background(), sampleReport()); err != nil {
				t.Errorf("Publish() unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	dec := json.NewDecoder(&buf)
	count := 0
	for {
		var got entities.InventoryReport
		err := dec.Decode(&got)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("interleaved output after %d reports: %v", count, err)
		}
		if diff := cmp.Diff(sampleReport(), got); diff != "" {
			t.Errorf("report %d mismatch (-want +got):\n%s", count, diff)
		}
		count++
	}
	if count != publishers {
		t.Errorf("decoded %d reports, want %d", count, publishers)
	}
}

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type fakeConn struct{ closed bool }

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher(t *testing.T) {
	tests := []struct {
		name       string
		routingKey string
		wantKey    string
	}{
		{name: "configured key", routingKey: "inventory", wantKey: "inventory"},
		{name: "per target key", wantKey: "switchkit.inventory.10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &fakeChannel{}
			p := newAMQPPublisher(&fakeConn{}, ch, "switches", tt.routingKey, nil)
			if err := p.Publish(context.Background(), sampleReport()); err != nil {
				t.Fatalf("Publish() unexpected error: %v", err)
			}
			if ch.exchange != "switches" || ch.key != tt.wantKey {
				t.Errorf("published to %s/%s, want switches/%s", ch.exchange, ch.key, tt.wantKey)
			}
			if ch.msg.ContentType != "application/json" || ch.msg.DeliveryMode != amqp.Persistent {
				t.Errorf("unexpected publishing headers: %+v", ch.msg)
			}
			if !ch.msg.Timestamp.Equal(sampleReport().CollectedAt) {
				t.Errorf("Timestamp = %v", ch.msg.Timestamp)
			}
		})
	}
}

func TestAMQPPublisherErrors(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	conn := &fakeConn{}
	p := newAMQPPublisher(conn, ch, "", "", nil)
	if err := p.Publish(context.Background(), sampleReport()); !errors.Is(err, amqp.ErrClosed) {
		t.Errorf("Publish() error = %v, want amqp.ErrClosed", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Publish(ctx, sampleReport()); !errors.Is(err, context.Canceled) {
		t.Errorf("Publish() error = %v, want context.Canceled", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}
	if !ch.closed || !conn.closed {
		t.Error("Close() did not release channel and connection")
	}
}

type fakeRedis struct {
	store  map[string]string
	ttl    time.Duration
	err    error
	closed bool
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.store[key] = string(value.([]byte))
	f.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.store[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisPublisherRoundTrip(t *testing.T) {
	client := &fakeRedis{store: map[string]string{}}
	p := newRedisPublisher(client, "switchkit:inventory:", time.Hour, nil)
	ctx := context.Background()

	if err := p.Publish(ctx, sampleReport()); err != nil {
		t.Fatalf("Publish() unexpected error: %v", err)
	}
	if _, ok := client.store["switchkit:inventory:10.0.0.1"]; !ok {
		t.Fatalf("report not stored under prefixed key: %v", client.store)
	}
	if client.ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", client.ttl)
	}

	got, err := p.Latest(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("Latest() unexpected error: %v", err)
	}
	if diff := cmp.Diff(sampleReport(), got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}

	if _, err := p.Latest(ctx, "10.0.0.2"); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Latest(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRedisPublisherErrors(t *testing.T) {
	client := &fakeRedis{store: map[string]string{"k:bad": "{"}, err: errors.New("connection refused")}
	p := newRedisPublisher(client, "k:", 0, nil)
	ctx := context.Background()

	if err := p.Publish(ctx, sampleReport()); err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Publish() error = %v, want connection refused", err)
	}
	if _, err := p.Latest(ctx, "bad"); !errors.Is(err, entities.ErrMalformedPayload) {
		t.Errorf("Latest(bad) error = %v, want ErrMalformedPayload", err)
	}
	p.Close()
	if !client.closed {
		t.Error("Close() did not close the client")
	}
}
