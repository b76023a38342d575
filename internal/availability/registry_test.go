package availability

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
)

var (
	soc    = channel.MustParseAddress("_sum/EssSoc")
	charge = channel.MustParseAddress("_sum/EssDcChargeEnergy")
)

// recordingPersister records persisted markers and can be told to fail.
type recordingPersister struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (p *recordingPersister) PersistAvailableSince(edgeID int, ch string, since int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.calls = append(p.calls, fmt.Sprintf("%d/%s=%d", edgeID, ch, since))
	return nil
}

type staticLoader map[int]map[string]int64

func (l staticLoader) LoadAvailableSince(context.Context) (map[int]map[string]int64, error) {
	return l, nil
}

func TestCheckAvailable_UnknownEdgeUnrestricted(t *testing.T) {
	r := NewRegistry(nil)

	if err := r.CheckAvailable(7, 0, []channel.Address{soc, charge}); err != nil {
		t.Errorf("CheckAvailable() error = %v, want nil for unknown edge", err)
	}
}

func TestCheckAvailable_KnownEdgeMissingChannel(t *testing.T) {
	r := NewRegistry(nil)
	r.Load(map[int]map[string]int64{1: {"_sum/EssSoc": 100}})

	err := r.CheckAvailable(1, 1_000_000, []channel.Address{charge})
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("CheckAvailable() error = %v, want *UnavailableError", err)
	}
	if unavailable.Reason != ReasonNeverSeen || unavailable.Channel != charge {
		t.Errorf("UnavailableError = %+v", unavailable)
	}
	if !errors.Is(err, ErrChannelUnavailable) {
		t.Error("error should match ErrChannelUnavailable")
	}
}

func TestCheckAvailable_TooEarly(t *testing.T) {
	r := NewRegistry(nil)
	r.Load(map[int]map[string]int64{1: {"_sum/EssDcChargeEnergy": 5000}})

	err := r.CheckAvailable(1, 1000, []channel.Address{charge})
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("CheckAvailable() error = %v, want *UnavailableError", err)
	}
	if unavailable.Reason != ReasonTooEarly || unavailable.AvailableSince != 5000 || unavailable.QueryStart != 1000 {
		t.Errorf("UnavailableError = %+v", unavailable)
	}

	if err := r.CheckAvailable(1, 5000, []channel.Address{charge}); err != nil {
		t.Errorf("CheckAvailable() at boundary error = %v", err)
	}
}

func TestCheckAvailable_FirstViolationShortCircuits(t *testing.T) {
	r := NewRegistry(nil)
	r.Load(map[int]map[string]int64{1: {"_sum/EssSoc": 100}})

	other := channel.MustParseAddress("_sum/GridActivePower")
	err := r.CheckAvailable(1, 50, []channel.Address{soc, other})
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) || unavailable.Channel != soc {
		t.Fatalf("CheckAvailable() error = %v, want violation on %s", err, soc)
	}
}

func TestSetIfMissing_FirstWriteWins(t *testing.T) {
	p := &recordingPersister{}
	r := NewRegistry(p)

	created, err := r.SetIfMissing(1, "_sum/EssSoc", 1000)
	if err != nil || !created {
		t.Fatalf("SetIfMissing() = %v, %v; want true, nil", created, err)
	}
	created, err = r.SetIfMissing(1, "_sum/EssSoc", 2000)
	if err != nil || created {
		t.Fatalf("second SetIfMissing() = %v, %v; want false, nil", created, err)
	}

	since, ok := r.AvailableSince(1, "_sum/EssSoc")
	if !ok || since != 1000 {
		t.Errorf("AvailableSince() = %d, %v; want 1000", since, ok)
	}
	if len(p.calls) != 1 || p.calls[0] != "1/_sum/EssSoc=1000" {
		t.Errorf("persisted = %v, want exactly one marker", p.calls)
	}
}

func TestSetIfMissing_PersistFailureLeavesMemory(t *testing.T) {
	p := &recordingPersister{err: errors.New("queue full")}
	r := NewRegistry(p)

	created, err := r.SetIfMissing(1, "_sum/EssSoc", 1000)
	if err == nil || created {
		t.Fatalf("SetIfMissing() = %v, %v; want false, error", created, err)
	}
	if _, ok := r.AvailableSince(1, "_sum/EssSoc"); ok {
		t.Error("marker recorded despite persist failure")
	}
	if err := r.CheckAvailable(1, 0, []channel.Address{charge}); err != nil {
		t.Errorf("edge without persisted markers should stay unrestricted, got %v", err)
	}

	p.err = nil
	if created, err := r.SetIfMissing(1, "_sum/EssSoc", 1500); err != nil || !created {
		t.Fatalf("retry SetIfMissing() = %v, %v", created, err)
	}
}

func TestSetIfMissing_Concurrent(t *testing.T) {
	p := &recordingPersister{}
	r := NewRegistry(p)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(ts int64) {
			defer wg.Done()
			_, _ = r.SetIfMissing(3, "_sum/EssSoc", ts)
		}(int64(1000 + i))
	}
	wg.Wait()

	if len(p.calls) != 1 {
		t.Errorf("persisted %d markers, want 1", len(p.calls))
	}
}

func TestLoadFrom_AndClear(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.LoadFrom(context.Background(), staticLoader{2: {"_sum/EssSoc": 42}}); err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if since, ok := r.AvailableSince(2, "_sum/EssSoc"); !ok || since != 42 {
		t.Errorf("AvailableSince() = %d, %v", since, ok)
	}
	if snap := r.Snapshot(2); snap["_sum/EssSoc"] != 42 {
		t.Errorf("Snapshot() = %v", snap)
	}

	r.Clear()
	if _, ok := r.AvailableSince(2, "_sum/EssSoc"); ok {
		t.Error("Clear() kept markers")
	}
	if err := r.CheckAvailable(2, 0, []channel.Address{charge}); err != nil {
		t.Errorf("cleared edge should be unrestricted, got %v", err)
	}
}
