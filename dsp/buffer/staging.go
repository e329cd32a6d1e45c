package buffer

// Staging is a pair of byte buffers used alternately. The slice returned by
// Next remains untouched until Next has been called twice more.
type Staging struct {
	bufs [2][]byte
	next int
}

// NewStaging allocates two buffers of size bytes each.
func NewStaging(size int) *Staging {
	if size < 0 {
		size = 0
	}
	return &Staging{bufs: [2][]byte{make([]byte, size), make([]byte, size)}}
}

// Size returns the size of each buffer in bytes.
func (s *Staging) Size() int {
	return len(s.bufs[0])
}

// Next returns the buffer that was not handed out last.
func (s *Staging) Next() []byte {
	b := s.bufs[s.next]
	s.next ^= 1
	return b
}
