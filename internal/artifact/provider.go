package artifact

import "sync"

// Provider defers artifact selection until a task actually executes. The
// compute thunk runs exactly once; configuring a task graph must never scan
// output directories, since compilation has not produced them yet.
type Provider struct {
	once    sync.Once
	compute func() (Set, error)
	set     Set
	err     error
}

// NewProvider wraps a selection thunk.
func NewProvider(compute func() (Set, error)) *Provider {
	return &Provider{compute: compute}
}

// Get evaluates the thunk on first call and returns the memoized result on
// every subsequent call.
func (p *Provider) Get() (Set, error) {
	p.once.Do(func() {
		p.set, p.err = p.compute()
	})
	return p.set, p.err
}
