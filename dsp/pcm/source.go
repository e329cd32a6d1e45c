package pcm

// Status tells a consumer whether a source has more frames after a block.
type Status int

const (
	// MoreData means further calls to Read will return frames.
	MoreData Status = iota
	// Done means the returned block is the last one until Reset.
	Done
)

func (s Status) String() string {
	if s == Done {
		return "done"
	}
	return "more-data"
}

// Source is an audio sample that hands out PCM blocks on demand.
//
// Read returns at most maxFrames frames in the source's Format. The returned
// slice is owned by the source and stays valid until the next call to Read or
// Reset. Reset rewinds the source to its first frame.
type Source interface {
	Format() Format
	SampleRate() int
	Reset()
	Read(maxFrames int) ([]byte, Status, error)
}
