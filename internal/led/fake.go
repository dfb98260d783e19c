package led

// FakeWriter is a test double that records every write.
type FakeWriter struct {
	// Writes holds every value passed to Set, in order.
	Writes []bool

	// SetError, if set, is returned by Set and the write is not recorded.
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeWriter creates an empty FakeWriter.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// Set records v.
func (f *FakeWriter) Set(v bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Writes = append(f.Writes, v)
	return nil
}

// Close marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recent write, false if none.
func (f *FakeWriter) Last() bool {
	if len(f.Writes) == 0 {
		return false
	}
	return f.Writes[len(f.Writes)-1]
}
