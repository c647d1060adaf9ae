package ledger

// IDSource hands out transaction ids. The store skips any id already in use.
type IDSource interface {
	Next() int64
}

// Sequence counts up from a seed. It is only called with the store lock
// held.
type Sequence struct {
	last int64
}

// NewSequence returns a sequence whose first id is last+1.
func NewSequence(last int64) *Sequence {
	return &Sequence{last: last}
}

func (s *Sequence) Next() int64 {
	s.last++
	return s.last
}
