package lock

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Identity identifies the process that holds, or is requesting, a repository
// lock. Subid is reserved for a future thread or session discriminator and is
// always zero today. Two identities describe the same holder iff all three
// fields are equal.
type Identity struct {
	Host  string
	Pid   int
	Subid int
}

// CurrentIdentity captures the identity of the calling process. It fails only
// when the hostname cannot be determined, which callers should treat as fatal:
// no lock operation is meaningful without a stable identity.
func CurrentIdentity() (Identity, error) {
	host, err := os.Hostname()
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrHostResolution, err)
	}
	return Identity{Host: host, Pid: os.Getpid()}, nil
}

// Filename returns the identity in its filename-safe form,
// "host.pid-subid". This string doubles as the guard marker filename and as
// the human-readable rendering of a roster entry.
func (id Identity) Filename() string {
	return fmt.Sprintf("%s.%d-%d", id.Host, id.Pid, id.Subid)
}

// ParseIdentityFilename is the inverse of Filename. Hostnames may themselves
// contain dots, so the pid and subid are split off from the right.
func ParseIdentityFilename(name string) (Identity, bool) {
	dash := strings.LastIndex(name, "-")
	if dash < 0 {
		return Identity{}, false
	}
	subid, err := strconv.Atoi(name[dash+1:])
	if err != nil {
		return Identity{}, false
	}
	dot := strings.LastIndex(name[:dash], ".")
	if dot <= 0 {
		return Identity{}, false
	}
	pid, err := strconv.Atoi(name[dot+1 : dash])
	if err != nil {
		return Identity{}, false
	}
	return Identity{Host: name[:dot], Pid: pid, Subid: subid}, true
}

// MarshalJSON encodes the identity as the [host, pid, subid] triple used in
// the roster file.
func (id Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{id.Host, id.Pid, id.Subid})
}

// UnmarshalJSON decodes the [host, pid, subid] triple form.
func (id *Identity) UnmarshalJSON(data []byte) error {
	var tuple []any
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) != 3 {
		return fmt.Errorf("identity: want [host, pid, subid], got %d elements", len(tuple))
	}
	host, ok := tuple[0].(string)
	if !ok {
		return fmt.Errorf("identity: host is not a string")
	}
	pid, ok := tuple[1].(float64)
	if !ok {
		return fmt.Errorf("identity: pid is not a number")
	}
	subid, ok := tuple[2].(float64)
	if !ok {
		return fmt.Errorf("identity: subid is not a number")
	}
	id.Host = host
	id.Pid = int(pid)
	id.Subid = int(subid)
	return nil
}
