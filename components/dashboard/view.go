package dashboard

import (
	"slices"
	"sync"
)

// ViewStatus distinguishes a loading view from one that simply has no rows.
type ViewStatus string

const (
	ViewLoading ViewStatus = "loading"
	ViewEmpty   ViewStatus = "empty"
	ViewReady   ViewStatus = "ready"
)

// ViewQuery is the full set of inputs that drive a derived view besides the snapshot.
type ViewQuery struct {
	Search    string     `json:"search,omitempty"`
	Fields    []string   `json:"fields,omitempty"`
	DateField string     `json:"date_field,omitempty"`
	Range     DateRange  `json:"range"`
	Sort      SortConfig `json:"sort"`
}

// Equal compares two queries field by field.
func (q ViewQuery) Equal(other ViewQuery) bool {
	return q.Search == other.Search &&
		slices.Equal(q.Fields, other.Fields) &&
		q.DateField == other.DateField &&
		q.Range.Equal(other.Range) &&
		q.Sort == other.Sort
}

func (q ViewQuery) filter() FilterQuery {
	return FilterQuery{
		Search:    q.Search,
		Fields:    q.Fields,
		DateField: q.DateField,
		Range:     q.Range,
	}
}

// View is the filtered-then-sorted projection of a snapshot.
type View[T Record] struct {
	Status  ViewStatus `json:"status"`
	Rows    []T        `json:"rows"`
	Total   int        `json:"total"`
	Version uint64     `json:"version"`
	Query   ViewQuery  `json:"query"`
}

// DeriveView filters and then sorts a snapshot. It is pure: same inputs, same view.
func DeriveView[T Record](snapshot Snapshot[T], q ViewQuery) View[T] {
	view := View[T]{
		Total:   len(snapshot.Records),
		Version: snapshot.Version,
		Query:   q,
	}
	if snapshot.Loading {
		view.Status = ViewLoading
		view.Rows = []T{}
		return view
	}
	rows := SortRecords(FilterRecords(snapshot.Records, q.filter()), q.Sort)
	view.Rows = rows
	view.Status = ViewReady
	if len(rows) == 0 {
		view.Status = ViewEmpty
	}
	return view
}

// ViewPipeline memoizes DeriveView on its exact inputs: the snapshot version and the query.
type ViewPipeline[T Record] struct {
	mu       sync.Mutex
	last     View[T]
	hasLast  bool
	computes int
}

// NewViewPipeline builds an empty pipeline.
func NewViewPipeline[T Record]() *ViewPipeline[T] {
	return &ViewPipeline[T]{}
}

// Derive returns the cached view when inputs are unchanged, otherwise recomputes.
func (p *ViewPipeline[T]) Derive(snapshot Snapshot[T], q ViewQuery) View[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hasLast && p.last.Version == snapshot.Version && p.last.Query.Equal(q) {
		return copyView(p.last)
	}
	p.last = DeriveView(snapshot, q)
	p.hasLast = true
	p.computes++
	return copyView(p.last)
}

// Computations reports how many times the pipeline recomputed its view.
func (p *ViewPipeline[T]) Computations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.computes
}

func copyView[T Record](v View[T]) View[T] {
	v.Rows = cloneRecords(v.Rows)
	return v
}
