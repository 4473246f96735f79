// Package violation defines the finding record produced by an analysis run
// and the shared sink that aggregates findings across every variant and tool
// configurator in a build.
package violation

import "sync"

// Violation is one finding parsed from a tool's native report, tagged with
// enough context to attribute it back to the run that produced it.
type Violation struct {
	Tool       string
	Variant    string
	Rule       string
	Category   string
	Priority   int
	Message    string
	ClassName  string
	SourceFile string
	Line       int
}

// Sink accumulates violations from every collection task in the build. It is
// created before any configurator runs and read by the evaluation step once
// all collection tasks have completed. Collection tasks for different tools
// may execute concurrently, so appends are serialized.
type Sink struct {
	mu      sync.Mutex
	records []Violation
}

// NewSink returns an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Append adds records to the sink.
func (s *Sink) Append(records ...Violation) {
	if len(records) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
}

// Len reports how many violations have been collected so far.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Snapshot returns a copy of the collected records.
func (s *Sink) Snapshot() []Violation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Violation, len(s.records))
	copy(out, s.records)
	return out
}

// CountAtOrAbove returns how many records have priority at or above the given
// rank. Priority 1 is the most severe, so "at or above" means numerically
// less than or equal.
func (s *Sink) CountAtOrAbove(priority int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, r := range s.records {
		if r.Priority <= priority {
			count++
		}
	}
	return count
}
