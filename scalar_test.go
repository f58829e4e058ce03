package prefs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goliatone/go-prefs/pkg/event"
)

type fakeStore struct {
	mu        sync.Mutex
	records   map[string]any
	setters   map[string]string
	writes    int
	getErr    error
	setErr    error
	beforeSet func(key string, value any)
}

var _ ValueStore = (*fakeStore)(nil)

func newFakeStore(seed map[string]any) *fakeStore {
	records := map[string]any{}
	for key, value := range seed {
		records[key] = value
	}
	return &fakeStore{records: records, setters: map[string]string{}}
}

func (s *fakeStore) Get(_ context.Context, key string) (any, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.records[key]
	return value, ok, nil
}

func (s *fakeStore) GetString(_ context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.records[key]
	if !ok {
		return "", false, nil
	}
	str, isString := value.(string)
	if !isString {
		return "", false, nil
	}
	return str, true, nil
}

func (s *fakeStore) SetBool(_ context.Context, key string, value bool) error {
	return s.set("bool", key, value)
}

func (s *fakeStore) SetInt(_ context.Context, key string, value int64) error {
	return s.set("int", key, value)
}

func (s *fakeStore) SetFloat(_ context.Context, key string, value float64) error {
	return s.set("float", key, value)
}

func (s *fakeStore) SetString(_ context.Context, key string, value string) error {
	return s.set("string", key, value)
}

func (s *fakeStore) SetStringList(_ context.Context, key string, value []string) error {
	return s.set("string_list", key, value)
}

func (s *fakeStore) set(setter, key string, value any) error {
	if s.beforeSet != nil {
		s.beforeSet(key, value)
	}
	if s.setErr != nil {
		return s.setErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = value
	s.setters[key] = setter
	s.writes++
	return nil
}

func (s *fakeStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *fakeStore) stored(key string) (any, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[key], s.setters[key]
}

func TestScalarCellSeedsDefaultWhenStoreEmpty(t *testing.T) {
	store := newFakeStore(nil)
	cell, err := NewScalar(context.Background(), store, "boolValue", false)
	if err != nil {
		t.Fatalf("new scalar: %v", err)
	}
	if got := cell.Value(); got != false {
		t.Fatalf("expected default false, got %v", got)
	}
	if store.writeCount() != 0 {
		t.Fatalf("expected no writes at construction, got %d", store.writeCount())
	}
}

func TestScalarCellSeedsStoredValue(t *testing.T) {
	store := newFakeStore(map[string]any{"retries": int64(42)})
	cell, err := NewScalar[int64](context.Background(), store, "retries", 3)
	if err != nil {
		t.Fatalf("new scalar: %v", err)
	}
	if got := cell.Value(); got != 42 {
		t.Fatalf("expected stored 42, got %d", got)
	}
}

func TestScalarCellIgnoresIncompatibleStoredValue(t *testing.T) {
	store := newFakeStore(map[string]any{"retries": "not-a-number"})
	cell, err := NewScalar[int64](context.Background(), store, "retries", 3)
	if err != nil {
		t.Fatalf("new scalar: %v", err)
	}
	if got := cell.Value(); got != 3 {
		t.Fatalf("expected default 3 for incompatible stored value, got %d", got)
	}
}

func TestScalarCellUpdatePersistsBeforeAdvancing(t *testing.T) {
	store := newFakeStore(nil)
	cell, err := NewScalar(context.Background(), store, "boolValue", false)
	if err != nil {
		t.Fatalf("new scalar: %v", err)
	}

	next, err := cell.Update(context.Background(), func(bool) bool { return true })
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !next {
		t.Fatalf("expected update to return true")
	}
	if got := cell.Value(); !got {
		t.Fatalf("expected cell value true")
	}
	stored, setter := store.stored("boolValue")
	if stored != true || setter != "bool" {
		t.Fatalf("expected bool true persisted, got %v via %q", stored, setter)
	}
	if cell.Revision() == "" {
		t.Fatalf("expected revision after successful update")
	}
}

func TestScalarCellDispatchesByKind(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore(nil)
	intCell, err := NewScalar[int64](ctx, store, "int", 0)
	if err != nil {
		t.Fatalf("int cell: %v", err)
	}
	if _, err := intCell.Update(ctx, func(int64) int64 { return 7 }); err != nil {
		t.Fatalf("int update: %v", err)
	}
	if stored, setter := store.stored("int"); stored != int64(7) || setter != "int" {
		t.Fatalf("expected int64 7 via int setter, got %v via %q", stored, setter)
	}

	floatCell, err := NewScalar(ctx, store, "float", 0.0)
	if err != nil {
		t.Fatalf("float cell: %v", err)
	}
	if _, err := floatCell.Update(ctx, func(float64) float64 { return 1.5 }); err != nil {
		t.Fatalf("float update: %v", err)
	}
	if stored, setter := store.stored("float"); stored != 1.5 || setter != "float" {
		t.Fatalf("expected 1.5 via float setter, got %v via %q", stored, setter)
	}

	stringCell, err := NewScalar(ctx, store, "string", "")
	if err != nil {
		t.Fatalf("string cell: %v", err)
	}
	if _, err := stringCell.Update(ctx, func(string) string { return "hi" }); err != nil {
		t.Fatalf("string update: %v", err)
	}
	if stored, setter := store.stored("string"); stored != "hi" || setter != "string" {
		t.Fatalf("expected \"hi\" via string setter, got %v via %q", stored, setter)
	}

	listCell, err := NewScalar[[]string](ctx, store, "list", nil)
	if err != nil {
		t.Fatalf("list cell: %v", err)
	}
	if _, err := listCell.Update(ctx, func([]string) []string { return []string{"a", "b"} }); err != nil {
		t.Fatalf("list update: %v", err)
	}
	stored, setter := store.stored("list")
	list, ok := stored.([]string)
	if !ok || setter != "string_list" || len(list) != 2 || list[0] != "a" || list[1] != "b" {
		t.Fatalf("expected [a b] via string_list setter, got %v via %q", stored, setter)
	}
}

func TestScalarCellNamedTypes(t *testing.T) {
	type volume int

	store := newFakeStore(map[string]any{"volume": int64(30)})
	cell, err := NewScalar[volume](context.Background(), store, "volume", 10)
	if err != nil {
		t.Fatalf("new scalar: %v", err)
	}
	if got := cell.Value(); got != 30 {
		t.Fatalf("expected stored 30, got %d", got)
	}
	if cell.Kind() != KindInt {
		t.Fatalf("expected int kind, got %s", cell.Kind())
	}
	if _, err := cell.Update(context.Background(), func(v volume) volume { return v + 5 }); err != nil {
		t.Fatalf("update: %v", err)
	}
	if stored, _ := store.stored("volume"); stored != int64(35) {
		t.Fatalf("expected int64 35 persisted, got %v", stored)
	}
}

func TestScalarCellStoreFailureLeavesStateUnchanged(t *testing.T) {
	store := newFakeStore(nil)
	cell, err := NewScalar[int64](context.Background(), store, "retries", 3)
	if err != nil {
		t.Fatalf("new scalar: %v", err)
	}

	store.setErr = errors.New("disk full")
	if _, err := cell.Update(context.Background(), func(int64) int64 { return 9 }); err == nil {
		t.Fatalf("expected update to fail")
	} else {
		var storeErr *StoreError
		if !errors.As(err, &storeErr) {
			t.Fatalf("expected StoreError, got %v", err)
		}
		if storeErr.Key != "retries" || storeErr.Op != "write" {
			t.Fatalf("unexpected store error metadata: %+v", storeErr)
		}
	}
	if got := cell.Value(); got != 3 {
		t.Fatalf("expected value unchanged after failed write, got %d", got)
	}
	if cell.Revision() != "" {
		t.Fatalf("expected no revision after failed write")
	}
}

func TestScalarCellConstructionReadFailure(t *testing.T) {
	store := newFakeStore(nil)
	store.getErr = errors.New("io error")
	if _, err := NewScalar[int64](context.Background(), store, "retries", 3); err == nil {
		t.Fatalf("expected construction to surface read error")
	} else {
		var storeErr *StoreError
		if !errors.As(err, &storeErr) || storeErr.Op != "read" {
			t.Fatalf("expected read StoreError, got %v", err)
		}
	}
}

func TestScalarCellConstructionValidation(t *testing.T) {
	if _, err := NewScalar[int64](context.Background(), nil, "retries", 3); !errors.Is(err, ErrNilStore) {
		t.Fatalf("expected ErrNilStore, got %v", err)
	}
	if _, err := NewScalar[int64](context.Background(), newFakeStore(nil), "", 3); !errors.Is(err, ErrKeyRequired) {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}
}

func TestScalarCellNilUpdater(t *testing.T) {
	cell, err := NewScalar[int64](context.Background(), newFakeStore(nil), "retries", 3)
	if err != nil {
		t.Fatalf("new scalar: %v", err)
	}
	if _, err := cell.Update(context.Background(), nil); !errors.Is(err, ErrNilUpdater) {
		t.Fatalf("expected ErrNilUpdater, got %v", err)
	}
}

func TestScalarCellStringListDetached(t *testing.T) {
	store := newFakeStore(nil)
	cell, err := NewScalar(context.Background(), store, "tags", []string{"base"})
	if err != nil {
		t.Fatalf("new scalar: %v", err)
	}

	next, err := cell.Update(context.Background(), func([]string) []string { return []string{"a", "b"} })
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	next[0] = "mutated"
	if got := cell.Value(); got[0] != "a" {
		t.Fatalf("expected cell state detached from returned slice, got %v", got)
	}

	read := cell.Value()
	read[1] = "mutated"
	if got := cell.Value(); got[1] != "b" {
		t.Fatalf("expected cell state detached from read slice, got %v", got)
	}
}

func TestScalarCellObserversAndLogger(t *testing.T) {
	store := newFakeStore(nil)
	var observed []int64
	var events []UpdateLogEvent

	cell, err := NewScalar[int64](context.Background(), store, "retries", 0,
		WithObserver[int64](ObserverFunc[int64](func(key string, value int64) {
			if key != "retries" {
				t.Fatalf("unexpected observer key %q", key)
			}
			observed = append(observed, value)
		})),
		WithUpdateLogger[int64](UpdateLoggerFunc(func(event UpdateLogEvent) {
			events = append(events, event)
		})),
	)
	if err != nil {
		t.Fatalf("new scalar: %v", err)
	}

	if _, err := cell.Update(context.Background(), func(int64) int64 { return 5 }); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(observed) != 1 || observed[0] != 5 {
		t.Fatalf("expected observer to see 5, got %v", observed)
	}
	if len(events) != 1 || events[0].Err != nil || events[0].Revision == "" || events[0].Kind != "int" {
		t.Fatalf("unexpected log event: %+v", events)
	}

	store.setErr = errors.New("boom")
	if _, err := cell.Update(context.Background(), func(int64) int64 { return 6 }); err == nil {
		t.Fatalf("expected failure")
	}
	if len(observed) != 1 {
		t.Fatalf("expected no observer call on failed update, got %v", observed)
	}
	if len(events) != 2 || events[1].Err == nil || events[1].Revision != "" {
		t.Fatalf("expected failed update logged without revision: %+v", events)
	}
}

func TestScalarCellEmitterFailureLoggedUpdateSucceeds(t *testing.T) {
	errSink := errors.New("sink down")
	emitter := event.NewEmitter(event.Hooks{
		event.HookFunc(func(context.Context, event.Event) error { return errSink }),
	}, event.Config{Enabled: true})

	var logged []UpdateLogEvent
	store := newFakeStore(nil)
	cell, err := NewScalar[int64](context.Background(), store, "retries", 0,
		WithChangeEmitter[int64](emitter),
		WithUpdateLogger[int64](UpdateLoggerFunc(func(e UpdateLogEvent) {
			logged = append(logged, e)
		})),
	)
	if err != nil {
		t.Fatalf("new scalar: %v", err)
	}

	next, err := cell.Update(context.Background(), func(int64) int64 { return 4 })
	if err != nil {
		t.Fatalf("expected update to succeed despite hook failure: %v", err)
	}
	if next != 4 || cell.Value() != 4 {
		t.Fatalf("expected value to advance to 4, got %d", cell.Value())
	}

	if len(logged) != 2 {
		t.Fatalf("expected update log plus emit-failure log, got %d events", len(logged))
	}
	if logged[0].Err != nil {
		t.Fatalf("expected successful update logged first: %+v", logged[0])
	}
	if !errors.Is(logged[1].Err, errSink) {
		t.Fatalf("expected hook failure surfaced in log, got %v", logged[1].Err)
	}
	if logged[1].Revision != logged[0].Revision || logged[1].Revision == "" {
		t.Fatalf("expected emit-failure log to carry the update revision: %+v", logged[1])
	}
}

func TestOverlappingUpdatesLastCompletionWins(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(nil)
	entered := make(chan struct{})
	release := make(chan struct{})
	store.beforeSet = func(_ string, value any) {
		if value == int64(1) {
			close(entered)
			<-release
		}
	}

	cell, err := NewScalar[int64](ctx, store, "counter", 0)
	if err != nil {
		t.Fatalf("new scalar: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := cell.Update(ctx, func(int64) int64 { return 1 })
		done <- err
	}()
	<-entered

	if _, err := cell.Update(ctx, func(int64) int64 { return 2 }); err != nil {
		t.Fatalf("second update: %v", err)
	}
	if got := cell.Value(); got != 2 {
		t.Fatalf("expected 2 after second update completed, got %d", got)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first update: %v", err)
	}

	if got := cell.Value(); got != 1 {
		t.Fatalf("expected last completion to win with 1, got %d", got)
	}
	if stored, _ := store.stored("counter"); stored != int64(1) {
		t.Fatalf("expected store to hold 1, got %v", stored)
	}
}
