package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectors_ObserveOperation(t *testing.T) {
	c := NewCollectors()
	c.ObserveOperation("FetchCommand", "execute", time.Millisecond, nil)
	c.ObserveOperation("FetchCommand", "execute", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(c.operations.WithLabelValues("FetchCommand", "execute", "success")); got != 1 {
		t.Errorf("expected 1 successful operation, got %v", got)
	}
	if got := testutil.ToFloat64(c.operations.WithLabelValues("FetchCommand", "execute", "error")); got != 1 {
		t.Errorf("expected 1 failed operation, got %v", got)
	}
}

func TestCollectors_ObserveFetch(t *testing.T) {
	c := NewCollectors()
	c.ObserveFetch("InstrumentedFetchCommand", 128, time.Millisecond)
	c.ObserveFetch("InstrumentedFetchCommand", 72, time.Millisecond)

	if got := testutil.ToFloat64(c.fetchedBytes.WithLabelValues("InstrumentedFetchCommand")); got != 200 {
		t.Errorf("expected 200 fetched bytes, got %v", got)
	}
}

func TestCollectors_NilIsNoop(t *testing.T) {
	var c *Collectors
	c.ObserveOperation("x", "undo", time.Second, nil)
	c.ObserveFetch("x", 1, time.Second)
}

func TestCollectors_Handler(t *testing.T) {
	c := NewCollectors()
	c.ObserveOperation("BlurCommand", "undo", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "picundo_controller_operations_total") {
		t.Errorf("expected exposition to contain operations counter, got:\n%s", body)
	}
}
