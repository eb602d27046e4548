package sink

import "sync"

// Committer is the Open→Committed state machine shared by sink
// implementations. The zero value is an open, ready-to-use committer.
//
// Terminal calls on a sink are externally serialized, but the commit check
// still takes a lock so that misuse from another goroutine is reported as a
// contract violation instead of racing.
type Committer struct {
	mu sync.Mutex
	op string
}

// Commit transitions the sink from Open to Committed on behalf of the named
// terminal operation. The first call succeeds; every later call fails with a
// *ContractViolation naming both operations. There is no transition back.
func (c *Committer) Commit(op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.op != "" {
		return &ContractViolation{Committed: c.op, Rejected: op}
	}
	c.op = op
	return nil
}

// Committed reports whether a terminal operation has succeeded.
func (c *Committer) Committed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.op != ""
}

// Op returns the name of the committing operation, or "" while open.
func (c *Committer) Op() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.op
}
