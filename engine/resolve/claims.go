package resolve

import (
	"sync"

	"github.com/emirpasic/gods/sets/linkedhashset"
)

// State is the resolution state of a font.
type State int8

const (
	Idle    State = iota // not tracked
	Pending              // queued for resolution
	Working              // being resolved
)

func (s State) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Working:
		return "Working"
	}
	return "Idle"
}

// ClaimStore tracks fonts queued for or under resolution.
// Implementations must be safe for concurrent use.
type ClaimStore interface {
	// Enqueue marks a font as pending. It returns false if the font is
	// already pending or working.
	Enqueue(name string) bool
	// Claim moves the longest pending font to working.
	Claim() (string, bool)
	// Release stops tracking a font.
	Release(name string)
	// State returns the state of a font.
	State(name string) State
	// Pending returns the number of pending fonts.
	Pending() int
	// Working returns the number of fonts being worked on.
	Working() int
}

// MemoryClaims is a ClaimStore living in memory.
type MemoryClaims struct {
	mx      sync.Mutex
	pending *linkedhashset.Set
	working map[string]struct{}
}

// NewMemoryClaims creates an empty claim store.
func NewMemoryClaims() *MemoryClaims {
	return &MemoryClaims{
		pending: linkedhashset.New(),
		working: make(map[string]struct{}),
	}
}

func (mc *MemoryClaims) Enqueue(name string) bool {
	mc.mx.Lock()
	defer mc.mx.Unlock()
	if _, ok := mc.working[name]; ok || mc.pending.Contains(name) {
		return false
	}
	mc.pending.Add(name)
	return true
}

func (mc *MemoryClaims) Claim() (string, bool) {
	mc.mx.Lock()
	defer mc.mx.Unlock()
	it := mc.pending.Iterator()
	if !it.First() {
		return "", false
	}
	name := it.Value().(string)
	mc.pending.Remove(name)
	mc.working[name] = struct{}{}
	return name, true
}

func (mc *MemoryClaims) Release(name string) {
	mc.mx.Lock()
	defer mc.mx.Unlock()
	mc.pending.Remove(name)
	delete(mc.working, name)
}

func (mc *MemoryClaims) State(name string) State {
	mc.mx.Lock()
	defer mc.mx.Unlock()
	if _, ok := mc.working[name]; ok {
		return Working
	}
	if mc.pending.Contains(name) {
		return Pending
	}
	return Idle
}

func (mc *MemoryClaims) Pending() int {
	mc.mx.Lock()
	defer mc.mx.Unlock()
	return mc.pending.Size()
}

func (mc *MemoryClaims) Working() int {
	mc.mx.Lock()
	defer mc.mx.Unlock()
	return len(mc.working)
}

var _ ClaimStore = (*MemoryClaims)(nil)
