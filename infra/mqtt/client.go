package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremon "github.com/kilianp07/cevcharge/core/monitoring"
	coremqtt "github.com/kilianp07/cevcharge/core/mqtt"
	"github.com/kilianp07/cevcharge/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// SchedulePayload is the JSON document sent to a mobile charging station.
type SchedulePayload struct {
	CommandID string  `json:"command_id"`
	RunID     string  `json:"run_id"`
	Location  string  `json:"location"`
	Vehicle   string  `json:"vehicle"`
	StartSlot int     `json:"start_slot"`
	EndSlot   int     `json:"end_slot"`
	PowerKW   float64 `json:"power_kw"`
	EnergyKWh float64 `json:"energy_kwh"`
	Timestamp int64   `json:"timestamp"`
}

// PahoPublisher publishes charging schedules with Eclipse Paho.
type PahoPublisher struct {
	cli        pahoClient
	cfg        Config
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

// NewPahoPublisher connects to the broker described by cfg.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &PahoPublisher{
		cli:        c,
		cfg:        cfg,
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.QoS, false)
	}
	return opts, nil
}

// PublishSchedule sends the order to the vehicle's schedule topic. Failed
// publications are retried with exponential backoff until the retries are
// exhausted or ctx is done.
func (p *PahoPublisher) PublishSchedule(ctx context.Context, order coremqtt.ScheduleOrder) (string, error) {
	if p.cli == nil || !p.cli.IsConnected() {
		return "", coremqtt.ErrNotConnected
	}
	s := order.Schedule
	cmdID := uuid.NewString()
	payload, err := json.Marshal(SchedulePayload{
		CommandID: cmdID,
		RunID:     order.RunID,
		Location:  s.Location,
		Vehicle:   s.Vehicle,
		StartSlot: s.StartSlot,
		EndSlot:   s.EndSlot,
		PowerKW:   s.PowerKW,
		EnergyKWh: s.EnergyKWh,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return "", err
	}

	topic := p.cfg.ScheduleTopic(s.Location, s.Vehicle)
	var publishErr error
	for attempt := 0; ; attempt++ {
		token := p.cli.Publish(topic, p.cfg.QoS, p.cfg.Retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Infof("sent schedule %s to %s", cmdID, topic)
			return cmdID, nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt >= p.maxRetries {
			break
		}
		if err := sleepCtx(ctx, p.backoff*time.Duration(1<<attempt)); err != nil {
			publishErr = err
			break
		}
	}
	tags := coremon.RunTags(order.RunID, "")
	tags["module"] = "mqtt"
	tags["vehicle"] = s.Location + "/" + s.Vehicle
	coremon.CaptureException(publishErr, tags)
	return "", fmt.Errorf("publish schedule for %s/%s: %w", s.Location, s.Vehicle, publishErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoPublisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
