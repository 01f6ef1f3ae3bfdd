package collision

// Collision describes two distinct keys that produced the same digest.
type Collision struct {
	Digest   uint64 // Shared digest
	Existing string // Key that owns the digest slot
	Incoming string // Key that was diverted to exact-text lookup
}

// Tracker records digest collisions observed by a digest-indexed table.
// A table reports each colliding key once, when the key is first inserted.
type Tracker struct {
	collisions []Collision
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		collisions: make([]Collision, 0),
	}
}

// Record tracks that incoming shares digest with the existing key.
func (t *Tracker) Record(digest uint64, existing, incoming string) {
	t.collisions = append(t.collisions, Collision{
		Digest:   digest,
		Existing: existing,
		Incoming: incoming,
	})
}

// HasCollision returns true if at least one collision has been recorded.
func (t *Tracker) HasCollision() bool {
	return len(t.collisions) > 0
}

// Collisions returns the recorded collisions in insertion order.
func (t *Tracker) Collisions() []Collision {
	return t.collisions
}

// Count returns the number of colliding keys recorded.
func (t *Tracker) Count() int {
	return len(t.collisions)
}

// Reset clears all recorded collisions, keeping allocated capacity.
func (t *Tracker) Reset() {
	t.collisions = t.collisions[:0]
}
