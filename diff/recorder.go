package diff

// Recorder is a simple Visitor that records every emitted change
// alongside its resolved location, optionally cancelling after a
// fixed number of visits. It is exported for use by callers (the
// diff and pipeline package tests, for instance) that just need a
// plain event log rather than a custom Visitor.
type Recorder struct {
	*PathTracker

	CancelAfter int // 0 means never cancel

	Events []RecordedChange
}

// RecordedChange pairs a Change with the location PathTracker
// resolved for it at the moment it was visited.
type RecordedChange struct {
	Change   Change
	Location []byte
}

// NewRecorder constructs a Recorder tracking paths in mode.
func NewRecorder(mode Mode) *Recorder {
	return &Recorder{PathTracker: NewPathTracker(mode)}
}

func (r *Recorder) Visit(change Change, id PathId) Action {
	loc := r.Resolve(id)
	locCopy := append([]byte(nil), loc...)
	r.Events = append(r.Events, RecordedChange{Change: change, Location: locCopy})

	if r.CancelAfter > 0 && len(r.Events) >= r.CancelAfter {
		return Cancel
	}
	return Continue
}
