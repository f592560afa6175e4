package metrics

import (
	"errors"
	"testing"

	"github.com/kilianp07/cevcharge/core/factory"
)

type countSink struct {
	runs, publishes int
	err             error
}

func (c *countSink) RecordRun(RunEvent) error {
	c.runs++
	return c.err
}

func (c *countSink) RecordPublish(PublishEvent) error {
	c.publishes++
	return nil
}

type runOnly struct{ runs int }

func (r *runOnly) RecordRun(RunEvent) error {
	r.runs++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &countSink{}
	s2 := &runOnly{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordRun(RunEvent{RunID: "r"}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordPublish(PublishEvent{RunID: "r"}); err != nil {
		t.Fatalf("record publish: %v", err)
	}
	if s1.runs != 1 || s2.runs != 1 || s1.publishes != 1 {
		t.Fatalf("events not forwarded: %+v %+v", s1, s2)
	}
}

func TestMultiSinkStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &countSink{err: boom}
	s2 := &countSink{}
	if err := NewMultiSink(s1, s2).RecordRun(RunEvent{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if s2.runs != 0 {
		t.Fatal("second sink should not be called")
	}
}

func TestNewSink(t *testing.T) {
	s, err := NewSink(nil)
	if err != nil {
		t.Fatalf("default sink: %v", err)
	}
	if _, ok := s.(NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}
	if err := RegisterSink("count", func(map[string]any) (Sink, error) { return &countSink{}, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	s, err = NewSink([]factory.ModuleConfig{{Type: "count"}, {Type: "count"}})
	if err != nil {
		t.Fatalf("multi: %v", err)
	}
	m, ok := s.(*MultiSink)
	if !ok || len(m.Sinks) != 2 {
		t.Fatalf("expected MultiSink with 2 sinks, got %T", s)
	}
	if _, err := NewSink([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestConfigValidate(t *testing.T) {
	var c Config
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	c.Sinks = []factory.ModuleConfig{{Type: "prometheus"}, {Conf: map[string]any{"url": "x"}}}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for sink without type")
	}
	c.Sinks = nil
	c.PrometheusAddr = ""
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for empty prometheus_addr")
	}
}
