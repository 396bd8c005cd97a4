package mqtt5

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestStatsIncrementAndRegister(t *testing.T) {
	s := NewStats("test-client")
	reg := prometheus.NewRegistry()
	s.Register(reg)

	s.PacketsReceived.Inc()
	s.BytesReceived.Add(42)
	s.ConnectionState.Set(float64(StateConnected))

	mf, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(mf) == 0 {
		t.Fatal("expected at least one registered metric family")
	}

	found := false
	for _, fam := range mf {
		if fam.GetName() == "mqtt5_client_packets_received_total" {
			found = true
			if got := fam.GetMetric()[0].GetCounter().GetValue(); got != 1 {
				t.Errorf("packets_received = %v, want 1", got)
			}
		}
	}
	if !found {
		t.Error("mqtt5_client_packets_received_total not found among gathered metrics")
	}
}

func TestStatsConstLabelsByClientID(t *testing.T) {
	s := NewStats("labeled-client")
	reg := prometheus.NewRegistry()
	s.Register(reg)

	mf, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, fam := range mf {
		for _, m := range fam.GetMetric() {
			labeled := false
			for _, l := range m.GetLabel() {
				if l.GetName() == "client_id" && l.GetValue() == "labeled-client" {
					labeled = true
				}
			}
			if !labeled {
				t.Errorf("metric %s missing client_id=labeled-client label", fam.GetName())
			}
		}
	}
}
