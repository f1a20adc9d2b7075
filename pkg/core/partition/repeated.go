package partition

import (
	"strconv"

	"github.com/google/uuid"
)

// Repeated is a shared identity token linking Groups that are structural
// repeats of each other. Distinct tokens compare unequal by identity;
// multiple Groups reference the same token by sharing a pointer. Never embed
// token contents inside a Group — only pointer identity matters until
// cleanup populates the archetype table (see completeRepeating).
type Repeated struct {
	id   uuid.UUID
	seq  int
	open bool
}

func newRepeated(seq int) *Repeated {
	return &Repeated{id: uuid.New(), seq: seq, open: true}
}

// OpenForMerge reports whether this cohort may still attempt to grow.
func (r *Repeated) OpenForMerge() bool { return r.open }

// Exclude permanently marks this cohort as unable to grow further.
func (r *Repeated) Exclude() { r.open = false }

// ID is the collision-free internal handle for this token.
func (r *Repeated) ID() uuid.UUID { return r.id }

// FriendlyID is a short, human-readable, deterministic name derived from the
// token's discovery order (first assigned in identifyUniques), used as the
// key of the exported matches map ("repeat_N"). It is not the UUID: the UUID
// is the collision-free internal handle, FriendlyID exists
// purely for human-readable export and logging.
func (r *Repeated) FriendlyID() string {
	return "repeat_" + strconv.Itoa(r.seq)
}
