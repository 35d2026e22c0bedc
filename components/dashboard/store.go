package dashboard

import "sync"

// Snapshot is an immutable copy of a collection at a given version.
type Snapshot[T Record] struct {
	Version uint64
	Loading bool
	Records []T
}

// Collection holds one kind of record for a session. Readers receive copies; the only
// writers are Replace (initial load) and Update (metric simulation).
type Collection[T Record] struct {
	mu      sync.RWMutex
	records []T
	version uint64
	loading bool
}

// NewCollection builds a collection seeded with records.
func NewCollection[T Record](records []T) *Collection[T] {
	return &Collection[T]{records: cloneRecords(records)}
}

// Snapshot copies the current records.
func (c *Collection[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot[T]{
		Version: c.version,
		Loading: c.loading,
		Records: cloneRecords(c.records),
	}
}

// Len returns the current record count.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Replace swaps the full record set.
func (c *Collection[T]) Replace(records []T) {
	c.mu.Lock()
	c.records = cloneRecords(records)
	c.version++
	c.mu.Unlock()
}

// Update applies fn to a copy of the records and stores the result.
func (c *Collection[T]) Update(fn func([]T) []T) Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = fn(cloneRecords(c.records))
	c.version++
	return Snapshot[T]{Version: c.version, Loading: c.loading, Records: cloneRecords(c.records)}
}

// SetLoading flips the loading flag, bumping the version when it changes.
func (c *Collection[T]) SetLoading(loading bool) {
	c.mu.Lock()
	if c.loading != loading {
		c.loading = loading
		c.version++
	}
	c.mu.Unlock()
}

// RecordStore is the in-memory record set owned by one dashboard session.
type RecordStore struct {
	Users   *Collection[UserRecord]
	Sales   *Collection[SalesRecord]
	Metrics *Collection[MetricRecord]
}

// NewRecordStore creates an empty store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		Users:   NewCollection[UserRecord](nil),
		Sales:   NewCollection[SalesRecord](nil),
		Metrics: NewCollection[MetricRecord](nil),
	}
}

// SetLoading toggles the loading flag on every collection.
func (s *RecordStore) SetLoading(loading bool) {
	s.Users.SetLoading(loading)
	s.Sales.SetLoading(loading)
	s.Metrics.SetLoading(loading)
}

// ApplyMetricDeltas mutates every metric using delta(index, record) and returns the
// updated snapshot. The delta actually applied becomes the metric's Change.
func (s *RecordStore) ApplyMetricDeltas(delta func(i int, m MetricRecord) float64) Snapshot[MetricRecord] {
	return s.Metrics.Update(func(metrics []MetricRecord) []MetricRecord {
		for i, m := range metrics {
			d := delta(i, m)
			m.Value = m.Value.Apply(d)
			m.Change = d
			metrics[i] = m
		}
		return metrics
	})
}
