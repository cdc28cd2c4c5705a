package lock

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/repolock/repolock/internal/util"
)

// Mode is the variant tag of a roster.
type Mode int

const (
	// ModeNone means nobody is recorded as holding the lock. It is encoded
	// on disk as the absence of the roster file and is never written out
	// literally.
	ModeNone Mode = iota
	// ModeShared records one or more concurrent readers.
	ModeShared
	// ModeExclusive records a single writer that excludes everyone else.
	ModeExclusive
)

// String returns the variant tag as it appears in the roster file.
func (m Mode) String() string {
	switch m {
	case ModeShared:
		return "shared"
	case ModeExclusive:
		return "exclusive"
	default:
		return "none"
	}
}

// Roster is the persisted record of who currently holds the lock and in what
// mode. The on-disk file (or its absence) is the single source of truth for
// holders; every mutation must happen under the lock's mutation guard so the
// read-modify-write cycle is atomic across processes.
type Roster struct {
	mode    Mode
	holders []Identity
}

// rosterFile is the JSON document shape: exactly one of the two keys is
// present, holding the ordered holder list.
type rosterFile struct {
	Shared    []Identity `json:"shared,omitempty"`
	Exclusive []Identity `json:"exclusive,omitempty"`
}

// LoadRoster reads the roster at path. A missing file is the empty roster,
// not an error. A file that exists but does not parse as a roster is
// reported as ErrRosterCorrupt and must never be treated as empty.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Roster{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading roster %s: %w", path, err)
	}
	var doc rosterFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("roster %s: %w: %v", path, ErrRosterCorrupt, err)
	}
	switch {
	case doc.Shared != nil && doc.Exclusive != nil:
		return nil, fmt.Errorf("roster %s: %w: both shared and exclusive present", path, ErrRosterCorrupt)
	case doc.Exclusive != nil:
		if len(doc.Exclusive) != 1 {
			return nil, fmt.Errorf("roster %s: %w: exclusive roster has %d holders", path, ErrRosterCorrupt, len(doc.Exclusive))
		}
		return &Roster{mode: ModeExclusive, holders: doc.Exclusive}, nil
	case doc.Shared != nil:
		if len(doc.Shared) == 0 {
			return nil, fmt.Errorf("roster %s: %w: shared roster has no holders", path, ErrRosterCorrupt)
		}
		return &Roster{mode: ModeShared, holders: doc.Shared}, nil
	default:
		return nil, fmt.Errorf("roster %s: %w: no variant tag", path, ErrRosterCorrupt)
	}
}

// Mode returns the roster's current variant.
func (r *Roster) Mode() Mode { return r.mode }

// Holders returns the recorded holders in acquisition order.
func (r *Roster) Holders() []Identity {
	out := make([]Identity, len(r.holders))
	copy(out, r.holders)
	return out
}

// MakeExclusive records id as the sole, exclusive holder. Valid only from the
// empty state; any recorded holder, shared or exclusive, makes the lock busy.
func (r *Roster) MakeExclusive(id Identity) error {
	if r.mode != ModeNone {
		return fmt.Errorf("%w (%s: %s)", ErrLockBusy, r.mode, holderNames(r.holders))
	}
	r.mode = ModeExclusive
	r.holders = []Identity{id}
	return nil
}

// AddShared appends id to the shared holder list. Valid from the empty state
// or from a shared roster that does not already contain id; an exclusive
// holder makes the lock busy.
func (r *Roster) AddShared(id Identity) error {
	if r.mode == ModeExclusive {
		return fmt.Errorf("%w (exclusive: %s)", ErrLockBusy, holderNames(r.holders))
	}
	for _, h := range r.holders {
		if h == id {
			return nil
		}
	}
	r.mode = ModeShared
	r.holders = append(r.holders, id)
	return nil
}

// RemoveHolder removes id from whichever variant holds it. Removing the last
// holder returns the roster to the empty state. Removing an identity that is
// not recorded is a no-op, so release stays idempotent after partial
// failures.
func (r *Roster) RemoveHolder(id Identity) {
	kept := r.holders[:0]
	for _, h := range r.holders {
		if h != id {
			kept = append(kept, h)
		}
	}
	r.holders = kept
	if len(r.holders) == 0 {
		r.mode = ModeNone
		r.holders = nil
	}
}

// Update persists the roster at path. The empty roster is persisted by
// deleting the file ("already absent" is fine); anything else is serialized
// and written atomically so a concurrent reader never sees a torn file.
func (r *Roster) Update(path string) error {
	if r.mode == ModeNone {
		if err := util.RemoveIfExists(path); err != nil {
			return fmt.Errorf("removing roster %s: %w", path, err)
		}
		return nil
	}
	var doc rosterFile
	switch r.mode {
	case ModeShared:
		doc.Shared = r.holders
	case ModeExclusive:
		doc.Exclusive = r.holders
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding roster: %w", err)
	}
	return util.WriteFileAtomic(path, data, 0644)
}

func holderNames(holders []Identity) string {
	names := ""
	for i, h := range holders {
		if i > 0 {
			names += ", "
		}
		names += h.Filename()
	}
	return names
}
