package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSDK_ObserveCall(t *testing.T) {
	m, err := NewSDK(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.ObserveCall("process", time.Millisecond, nil)
	m.ObserveCall("process", time.Millisecond, errors.New("down"))
	m.ObserveCall("process", time.Millisecond, nil)

	if v := testutil.ToFloat64(m.calls.WithLabelValues("process", "ok")); v != 2 {
		t.Errorf("ok calls = %v, want 2", v)
	}
	if v := testutil.ToFloat64(m.calls.WithLabelValues("process", "error")); v != 1 {
		t.Errorf("error calls = %v, want 1", v)
	}
}

func TestSDK_ObserveDocuments_SkipsZero(t *testing.T) {
	m, err := NewSDK(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.ObserveDocuments("index_terms", map[string]int{"ok": 3, "error": 0})

	if v := testutil.ToFloat64(m.documents.WithLabelValues("index_terms", "ok")); v != 3 {
		t.Errorf("ok documents = %v, want 3", v)
	}
	if n := testutil.CollectAndCount(m.documents); n != 1 {
		t.Errorf("series = %d, want 1", n)
	}
}

func TestSDK_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewSDK(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NewSDK(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.calls != second.calls {
		t.Error("expected the registered collector to be reused")
	}
}

func TestSDK_Nil(t *testing.T) {
	var m *SDK
	m.ObserveCall("ping", time.Millisecond, nil)
	m.ObserveDocuments("process", map[string]int{"ok": 1})
}
