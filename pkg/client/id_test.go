package client

import (
	"strings"
	"sync"
	"testing"
)

func TestActionIDsPairwiseDistinct(t *testing.T) {
	c := New("ws://unused.invalid/ws")
	seen := make(map[string]struct{})
	for i := 0; i < 5000; i++ {
		id := c.nextActionID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ActionID generated: %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestActionIDsDistinctUnderConcurrency(t *testing.T) {
	c := New("ws://unused.invalid/ws")
	const workers = 8
	const perWorker = 500

	var mu sync.Mutex
	seen := make(map[string]struct{})
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := c.nextActionID()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Fatalf("expected %d distinct IDs, got %d", workers*perWorker, len(seen))
	}
}

func TestActionIDCarriesInstancePrefix(t *testing.T) {
	c := New("ws://unused.invalid/ws")
	id := c.nextActionID()
	if !strings.HasPrefix(id, c.idPrefix+"-") {
		t.Errorf("ActionID %q does not start with instance prefix %q", id, c.idPrefix)
	}
	if parts := strings.Split(id, "-"); len(parts) != 3 {
		t.Errorf("ActionID %q does not match prefix-counter-timestamp", id)
	}
}

func TestDistinctClientsUseDistinctPrefixes(t *testing.T) {
	a := New("ws://unused.invalid/ws")
	b := New("ws://unused.invalid/ws")
	if a.idPrefix == b.idPrefix {
		t.Errorf("two client instances share the ActionID prefix %q", a.idPrefix)
	}
}
