package buffer

// ReplacementStrategy decides which buffer a Manager reuses on a miss.
// initialize is called once, right after the pool is constructed;
// pinBuffer and unpinBuffer are notified of every pin/unpin so a
// strategy can track usage beyond the pin count alone (recency, clock
// hands, and so on) without the Manager knowing its internals.
type ReplacementStrategy interface {
	initialize(pool []*Buffer)
	chooseUnpinnedBuffer() *Buffer
	pinBuffer(buffer *Buffer)
	unpinBuffer(buffer *Buffer)
}

// NaiveStrategy picks the first unpinned buffer it finds on every scan
// of the pool, left to right, with no memory of past choices. It is
// the simplest strategy that satisfies ReplacementStrategy and the
// default a Manager uses when none is specified.
type NaiveStrategy struct {
	pool []*Buffer
}

// NewNaiveStrategy returns a strategy with no pool yet; Manager calls
// initialize with the pool once it's built.
func NewNaiveStrategy() *NaiveStrategy {
	return &NaiveStrategy{}
}

func (s *NaiveStrategy) initialize(pool []*Buffer) {
	s.pool = pool
}

func (s *NaiveStrategy) chooseUnpinnedBuffer() *Buffer {
	for _, buffer := range s.pool {
		if !buffer.isPinned() {
			return buffer
		}
	}
	return nil
}

// pinBuffer and unpinBuffer are no-ops: a naive strategy doesn't track
// usage between scans.
func (s *NaiveStrategy) pinBuffer(buffer *Buffer)   {}
func (s *NaiveStrategy) unpinBuffer(buffer *Buffer) {}
