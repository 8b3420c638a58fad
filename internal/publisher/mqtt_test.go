package publisher

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/theirongolddev/acumon/internal/config"
)

type fakeToken struct {
	err  error
	done bool
}

func (t *fakeToken) Wait() bool                     { return t.done }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.done }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  string
}

// fakeClient implements the subset of mqtt.Client the publisher uses.
type fakeClient struct {
	mqtt.Client
	token        *fakeToken
	sent         []published
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic, qos, retained, string(payload.([]byte))})
	return c.token
}

func (c *fakeClient) Connect() mqtt.Token { return c.token }

func (c *fakeClient) IsConnected() bool { return !c.disconnected }

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestPublishRetainedSnapshot(t *testing.T) {
	c := &fakeClient{token: &fakeToken{done: true}}
	p := newWithClient(c, "home/acumon")

	raw := json.RawMessage(`{"credit_used":"40 ACUs"}`)
	if err := p.Publish(raw); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(c.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(c.sent))
	}
	got := c.sent[0]
	if got.topic != "home/acumon/snapshot" {
		t.Errorf("topic = %q", got.topic)
	}
	if !got.retained || got.qos != 1 {
		t.Errorf("retained=%v qos=%d, want retained qos 1", got.retained, got.qos)
	}
	if got.payload != string(raw) {
		t.Errorf("payload = %s", got.payload)
	}
}

func TestPublishErrors(t *testing.T) {
	c := &fakeClient{token: &fakeToken{done: true, err: errors.New("broker gone")}}
	p := newWithClient(c, "acumon")
	if err := p.Publish(json.RawMessage(`{}`)); err == nil || !strings.Contains(err.Error(), "broker gone") {
		t.Fatalf("err = %v, want broker error", err)
	}

	c = &fakeClient{token: &fakeToken{done: false}}
	p = newWithClient(c, "acumon")
	if err := p.Publish(json.RawMessage(`{}`)); err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("err = %v, want timeout", err)
	}

	if err := p.Publish(json.RawMessage(`{nope`)); err == nil {
		t.Fatal("invalid JSON should not be published")
	}
}

func TestClose(t *testing.T) {
	c := &fakeClient{token: &fakeToken{done: true}}
	p := newWithClient(c, "acumon")
	p.Close()
	if !c.disconnected {
		t.Fatal("Close should disconnect")
	}
}

func TestNewRequiresBroker(t *testing.T) {
	if _, err := New(config.MQTTConfig{Enabled: true}); err == nil {
		t.Fatal("New without broker should fail")
	}
}

func TestConnectTimesOut(t *testing.T) {
	c := &fakeClient{token: &fakeToken{done: false}}
	err := connect(c, 10*time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "no connection") {
		t.Fatalf("err = %v, want connect timeout", err)
	}
	if !c.disconnected {
		t.Error("client should stop retrying after the timeout")
	}
}

func TestConnectError(t *testing.T) {
	c := &fakeClient{token: &fakeToken{done: true, err: errors.New("not authorized")}}
	if err := connect(c, time.Second); err == nil || !strings.Contains(err.Error(), "not authorized") {
		t.Fatalf("err = %v, want broker error", err)
	}
	if err := connect(&fakeClient{token: &fakeToken{done: true}}, time.Second); err != nil {
		t.Fatalf("connect: %v", err)
	}
}
