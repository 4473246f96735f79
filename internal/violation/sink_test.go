package violation

import (
	"sync"
	"testing"
)

func TestSinkAppendAndSnapshot(t *testing.T) {
	sink := NewSink()
	sink.Append(Violation{Rule: "NP_NULL_ON_SOME_PATH", Priority: 1})
	sink.Append(Violation{Rule: "URF_UNREAD_FIELD", Priority: 2})

	if got := sink.Len(); got != 2 {
		t.Fatalf("expected 2 records, got %d", got)
	}
	snap := sink.Snapshot()
	snap[0].Rule = "mutated"
	if sink.Snapshot()[0].Rule != "NP_NULL_ON_SOME_PATH" {
		t.Fatal("snapshot must not alias sink storage")
	}
}

func TestSinkAppendNothing(t *testing.T) {
	sink := NewSink()
	sink.Append()
	if sink.Len() != 0 {
		t.Fatal("empty append must not grow the sink")
	}
}

func TestSinkConcurrentAppends(t *testing.T) {
	sink := NewSink()
	const writers = 8
	const perWriter = 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(variant int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				sink.Append(Violation{Variant: "variant", Priority: 1 + variant%3})
			}
		}(w)
	}
	wg.Wait()
	if got := sink.Len(); got != writers*perWriter {
		t.Fatalf("expected %d records, got %d", writers*perWriter, got)
	}
}

func TestSinkCountAtOrAbove(t *testing.T) {
	sink := NewSink()
	sink.Append(
		Violation{Priority: 1},
		Violation{Priority: 2},
		Violation{Priority: 2},
		Violation{Priority: 3},
	)
	if got := sink.CountAtOrAbove(1); got != 1 {
		t.Fatalf("priority 1: expected 1, got %d", got)
	}
	if got := sink.CountAtOrAbove(2); got != 3 {
		t.Fatalf("priority 2: expected 3, got %d", got)
	}
	if got := sink.CountAtOrAbove(3); got != 4 {
		t.Fatalf("priority 3: expected 4, got %d", got)
	}
}
