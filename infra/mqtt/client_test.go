package mqtt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/cevcharge/core/charging"
	coremon "github.com/kilianp07/cevcharge/core/monitoring"
	coremqtt "github.com/kilianp07/cevcharge/core/mqtt"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	caFile = filepath.Join(dir, "ca.pem")
	for path, data := range map[string][]byte{certFile: certPEM, keyFile: keyPEM, caFile: certPEM} {
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return
}

func useMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func order() coremqtt.ScheduleOrder {
	return coremqtt.ScheduleOrder{
		RunID: "run-1",
		Schedule: charging.VehicleSchedule{
			Location: "Site1", Vehicle: "EV1",
			StartSlot: 4, EndSlot: 5, PowerKW: 40, EnergyKWh: 15,
		},
	}
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestLoadTLSConfigMissingFiles(t *testing.T) {
	if _, err := (Config{UseTLS: true}).LoadTLSConfig(); err == nil {
		t.Fatal("expected error without certificate paths")
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.TopicPrefix != "mcs" || cfg.MaxRetries != 3 || cfg.BackoffMS != 100 || cfg.ClientID != "cevcharge" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled config must be valid: %v", err)
	}
	cfg.Broker = "tcp://localhost:1883"
	cfg.QoS = 3
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected qos error")
	}
	cfg.QoS = 1
	cfg.TopicPrefix = "mcs/#"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected wildcard error")
	}
	cfg.TopicPrefix = "mcs"
	cfg.UseTLS = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected tls error")
	}
}

func TestScheduleTopic(t *testing.T) {
	cfg := Config{TopicPrefix: "fleet"}
	if got := cfg.ScheduleTopic("Site1", "EV1"); got != "fleet/Site1/EV1/schedule" {
		t.Fatalf("topic = %s", got)
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func TestLWTConfigured(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	cli, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", LWTTopic: "lwt", LWTPayload: "bye", QoS: 1})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if !mc.opts.WillEnabled {
		t.Fatalf("will not enabled")
	}
	if mc.opts.WillTopic != "lwt" || string(mc.opts.WillPayload) != "bye" {
		t.Fatalf("will options incorrect")
	}
	cli.Disconnect()
	if len(mc.published) != 0 {
		t.Fatalf("unexpected publish on disconnect")
	}
}

func TestPublishSchedule(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	cli, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", QoS: 2, TopicPrefix: "mcs"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	cmdID, err := cli.PublishSchedule(context.Background(), order())
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(mc.published))
	}
	got := mc.published[0]
	if got.topic != "mcs/Site1/EV1/schedule" || got.qos != 2 {
		t.Fatalf("unexpected publish %s qos %d", got.topic, got.qos)
	}
	var p SchedulePayload
	if err := json.Unmarshal(got.payload, &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if p.CommandID != cmdID || p.RunID != "run-1" || p.StartSlot != 4 || p.EndSlot != 5 || p.EnergyKWh != 15 {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	useMock(t, mc)
	cli, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if _, err := cli.PublishSchedule(context.Background(), order()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected retries")
	}
}

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) Recover()            {}
func (r *recordMonitor) Flush(time.Duration) {}

func TestPublishErrorCaptured(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail}}
	useMock(t, mc)
	mon := &recordMonitor{}
	coremon.Init(mon)
	defer coremon.Init(coremon.NopMonitor{})

	cli, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 1})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	_, err = cli.PublishSchedule(context.Background(), order())
	if !errors.Is(err, fail) {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
	if len(mc.published) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(mc.published))
	}
	if mon.err == nil {
		t.Fatalf("error not captured")
	}
	if mon.tags["vehicle"] != "Site1/EV1" || mon.tags["module"] != "mqtt" || mon.tags["run_id"] != "run-1" {
		t.Fatalf("tags not set: %v", mon.tags)
	}
}

func TestPublishStopsOnCancel(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail}}
	useMock(t, mc)
	cli, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 10000})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = cli.PublishSchedule(ctx, order())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(mc.published) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(mc.published))
	}
}

func TestPublishNotConnected(t *testing.T) {
	mc := &mockClient{disconnected: true}
	useMock(t, mc)
	cli, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if _, err := cli.PublishSchedule(context.Background(), order()); !errors.Is(err, coremqtt.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestMockPublisher(t *testing.T) {
	m := NewMockPublisher()
	m.FailIDs["EV2"] = true
	id, err := m.PublishSchedule(context.Background(), order())
	if err != nil || id != "cmd-Site1-EV1" {
		t.Fatalf("unexpected result %s %v", id, err)
	}
	o := order()
	o.Schedule.Vehicle = "EV2"
	if _, err := m.PublishSchedule(context.Background(), o); err == nil {
		t.Fatal("expected failure")
	}
	if len(m.Sent()) != 1 {
		t.Fatalf("expected one recorded order")
	}
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts         *paho.ClientOptions
	published    []published
	publishErrs  []error
	disconnected bool
}

func (m *mockClient) IsConnected() bool { return !m.disconnected }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(nil)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	b, _ := payload.([]byte)
	m.published = append(m.published, published{topic, qos, b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }
