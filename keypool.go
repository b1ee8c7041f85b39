package aiquiz

import (
	"sync"
	"time"
)

// KeyPool manages a fixed set of API credentials with round-robin rotation
// and cooldown-based failure recovery. Quota failures are usually transient
// or reset on a daily boundary, so a failed key becomes eligible again after
// the cooldown instead of being retired permanently.
type KeyPool struct {
	mu       sync.Mutex
	keys     []string
	failedAt map[string]time.Time
	cursor   int
	cooldown time.Duration

	now func() time.Time // overridable in tests
}

// KeyStatus describes one cooling key for status displays. Only the last six
// characters of the credential are exposed.
type KeyStatus struct {
	Suffix  string        `json:"suffix"`
	RetryIn time.Duration `json:"retry_in"`
}

// PoolStatus is a point-in-time snapshot of the pool.
type PoolStatus struct {
	Total     int         `json:"total"`
	Available int         `json:"available"`
	Cooling   []KeyStatus `json:"cooling"`
}

// NewKeyPool creates a pool over the given credentials. The set is fixed for
// the lifetime of the pool.
func NewKeyPool(keys []string) *KeyPool {
	return &KeyPool{
		keys:     append([]string(nil), keys...),
		failedAt: make(map[string]time.Time),
		cooldown: DefaultKeyCooldown,
		now:      time.Now,
	}
}

// NextAvailable returns the next usable credential in rotation. A non-empty
// override is returned unconditionally and bypasses pool bookkeeping. When
// every pool key is in cooldown, the key with the oldest failure is evicted
// and returned so the system keeps making forward progress. Returns false
// only when the pool itself is empty.
func (p *KeyPool) NextAvailable(override string) (string, bool) {
	if override != "" {
		return override, true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.evictExpired()

	available := make([]string, 0, len(p.keys))
	for _, k := range p.keys {
		if p.isAvailable(k) {
			available = append(available, k)
		}
	}

	if len(available) > 0 {
		key := available[p.cursor%len(available)]
		p.cursor++
		return key, true
	}

	// All keys in cooldown: force an early retry of the least-recently
	// failed one rather than refusing outright.
	oldest := ""
	var oldestAt time.Time
	for k, at := range p.failedAt {
		if oldest == "" || at.Before(oldestAt) {
			oldest = k
			oldestAt = at
		}
	}
	if oldest != "" {
		delete(p.failedAt, oldest)
		return oldest, true
	}

	return "", false
}

// MarkFailed records a quota failure for the given key. Repeated failures
// overwrite the timestamp.
func (p *KeyPool) MarkFailed(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, k := range p.keys {
		if k == key {
			p.failedAt[key] = p.now()
			return
		}
	}
}

// ResetAll clears all failure state and restarts rotation from the first key.
func (p *KeyPool) ResetAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failedAt = make(map[string]time.Time)
	p.cursor = 0
}

// Status returns a snapshot for status displays.
func (p *KeyPool) Status() PoolStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.evictExpired()

	st := PoolStatus{Total: len(p.keys)}
	for _, k := range p.keys {
		if p.isAvailable(k) {
			st.Available++
			continue
		}
		retryIn := p.cooldown - p.now().Sub(p.failedAt[k])
		st.Cooling = append(st.Cooling, KeyStatus{Suffix: keySuffix(k), RetryIn: retryIn})
	}
	return st
}

// isAvailable is a pure predicate: true when the key has no unexpired
// failure. Callers must hold p.mu and should run evictExpired first.
func (p *KeyPool) isAvailable(key string) bool {
	at, failed := p.failedAt[key]
	if !failed {
		return true
	}
	return p.now().Sub(at) > p.cooldown
}

// evictExpired drops cooldown entries that have served their time. Called
// once per pool access so the availability predicate stays side-effect free.
func (p *KeyPool) evictExpired() {
	for k, at := range p.failedAt {
		if p.now().Sub(at) > p.cooldown {
			delete(p.failedAt, k)
		}
	}
}

func keySuffix(key string) string {
	if len(key) <= 6 {
		return key
	}
	return key[len(key)-6:]
}
