package stream

import (
	"bytes"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Cursor tracks per-stream state while frames are read.
// It is safe for concurrent use.
type Cursor struct {
	mu      sync.RWMutex
	streams map[uuid.UUID]*StreamState
}

// StreamState holds the state of a single stream id.
type StreamState struct {
	ID      uuid.UUID
	NextSeq uint64 // sequence number the next frame must carry
	Frames  int    // frames accepted so far
	Symbols int    // symbols announced by accepted frames
	Final   bool   // whether the stream has ended
}

// NewCursor creates an empty cursor.
func NewCursor() *Cursor {
	return &Cursor{streams: make(map[uuid.UUID]*StreamState)}
}

// State returns a copy of the state for id.
func (c *Cursor) State(id uuid.UUID) (StreamState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st, ok := c.streams[id]
	if !ok {
		return StreamState{}, false
	}
	return *st, true
}

// IDs returns all tracked stream ids in byte order.
func (c *Cursor) IDs() []uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(c.streams))
	for id := range c.streams {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return ids
}

// Delete forgets the state for id.
func (c *Cursor) Delete(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.streams, id)
}

// Observe checks a frame against its stream and records it.
// Returns a *SequenceError if:
//   - The sequence number is not the next one (gap or duplicate)
//   - The stream already ended with a final frame
//
// A rejected frame leaves the state unchanged.
func (c *Cursor) Observe(f *Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.streams[f.ID]
	if !ok {
		st = &StreamState{ID: f.ID}
	}
	if st.Final {
		return &SequenceError{ID: f.ID, Expected: st.NextSeq, Got: f.Seq, Final: true}
	}
	if f.Seq != st.NextSeq {
		return &SequenceError{ID: f.ID, Expected: st.NextSeq, Got: f.Seq}
	}

	st.NextSeq++
	st.Frames++
	st.Symbols += f.Symbols
	st.Final = f.IsFinal()
	c.streams[f.ID] = st
	return nil
}
