package lock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func rosterPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "lock.roster")
}

func TestLoadRoster_AbsentIsEmpty(t *testing.T) {
	r, err := LoadRoster(rosterPath(t))
	if err != nil {
		t.Fatalf("LoadRoster on absent file: %v", err)
	}
	if r.Mode() != ModeNone {
		t.Errorf("mode = %s, want none", r.Mode())
	}
	if len(r.Holders()) != 0 {
		t.Errorf("expected no holders, got %v", r.Holders())
	}
}

func TestLoadRoster_CorruptIsNeverEmpty(t *testing.T) {
	cases := map[string]string{
		"garbage":       "not json at all",
		"no variant":    `{}`,
		"both variants": `{"shared":[["h",1,0]],"exclusive":[["h",2,0]]}`,
		"empty shared":  `{"shared":[]}`,
		"two exclusive": `{"exclusive":[["h",1,0],["h",2,0]]}`,
		"bad holder":    `{"shared":[["h"]]}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := rosterPath(t)
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadRoster(path)
			if !errors.Is(err, ErrRosterCorrupt) {
				t.Errorf("LoadRoster = %v, want ErrRosterCorrupt", err)
			}
		})
	}
}

func TestRoster_MakeExclusive(t *testing.T) {
	p1 := Identity{Host: "a", Pid: 1}
	p2 := Identity{Host: "b", Pid: 2}

	r := &Roster{}
	if err := r.MakeExclusive(p1); err != nil {
		t.Fatalf("MakeExclusive from empty: %v", err)
	}
	if r.Mode() != ModeExclusive || len(r.Holders()) != 1 || r.Holders()[0] != p1 {
		t.Errorf("unexpected roster state: %s %v", r.Mode(), r.Holders())
	}

	if err := r.MakeExclusive(p2); !errors.Is(err, ErrLockBusy) {
		t.Errorf("MakeExclusive over exclusive = %v, want ErrLockBusy", err)
	}

	shared := &Roster{}
	if err := shared.AddShared(p1); err != nil {
		t.Fatal(err)
	}
	if err := shared.MakeExclusive(p2); !errors.Is(err, ErrLockBusy) {
		t.Errorf("MakeExclusive over shared = %v, want ErrLockBusy", err)
	}
}

func TestRoster_AddShared(t *testing.T) {
	p1 := Identity{Host: "a", Pid: 1}
	p2 := Identity{Host: "b", Pid: 2}

	r := &Roster{}
	if err := r.AddShared(p1); err != nil {
		t.Fatalf("AddShared from empty: %v", err)
	}
	if err := r.AddShared(p2); err != nil {
		t.Fatalf("AddShared second reader: %v", err)
	}
	holders := r.Holders()
	if len(holders) != 2 || holders[0] != p1 || holders[1] != p2 {
		t.Errorf("holders = %v, want [p1 p2] in acquisition order", holders)
	}

	// Re-adding an existing holder must not duplicate it.
	if err := r.AddShared(p1); err != nil {
		t.Fatalf("AddShared duplicate: %v", err)
	}
	if len(r.Holders()) != 2 {
		t.Errorf("duplicate AddShared grew holder list: %v", r.Holders())
	}

	excl := &Roster{}
	if err := excl.MakeExclusive(p1); err != nil {
		t.Fatal(err)
	}
	if err := excl.AddShared(p2); !errors.Is(err, ErrLockBusy) {
		t.Errorf("AddShared over exclusive = %v, want ErrLockBusy", err)
	}
}

func TestRoster_RemoveHolder(t *testing.T) {
	p1 := Identity{Host: "a", Pid: 1}
	p2 := Identity{Host: "b", Pid: 2}

	r := &Roster{}
	if err := r.AddShared(p1); err != nil {
		t.Fatal(err)
	}
	if err := r.AddShared(p2); err != nil {
		t.Fatal(err)
	}

	r.RemoveHolder(p1)
	if len(r.Holders()) != 1 || r.Holders()[0] != p2 {
		t.Errorf("after removing p1: %v", r.Holders())
	}

	// Removing an absent identity is a no-op, not an error.
	r.RemoveHolder(p1)
	if len(r.Holders()) != 1 {
		t.Errorf("second remove changed holders: %v", r.Holders())
	}

	r.RemoveHolder(p2)
	if r.Mode() != ModeNone {
		t.Errorf("mode after last removal = %s, want none", r.Mode())
	}
}

func TestRoster_UpdateRoundTrip(t *testing.T) {
	p1 := Identity{Host: "one.example", Pid: 10}
	p2 := Identity{Host: "two.example", Pid: 20}

	t.Run("shared", func(t *testing.T) {
		path := rosterPath(t)
		r := &Roster{}
		if err := r.AddShared(p1); err != nil {
			t.Fatal(err)
		}
		if err := r.AddShared(p2); err != nil {
			t.Fatal(err)
		}
		if err := r.Update(path); err != nil {
			t.Fatalf("Update: %v", err)
		}

		back, err := LoadRoster(path)
		if err != nil {
			t.Fatalf("LoadRoster: %v", err)
		}
		if back.Mode() != ModeShared {
			t.Errorf("mode = %s, want shared", back.Mode())
		}
		holders := back.Holders()
		if len(holders) != 2 || holders[0] != p1 || holders[1] != p2 {
			t.Errorf("holders = %v", holders)
		}
	})

	t.Run("exclusive", func(t *testing.T) {
		path := rosterPath(t)
		r := &Roster{}
		if err := r.MakeExclusive(p1); err != nil {
			t.Fatal(err)
		}
		if err := r.Update(path); err != nil {
			t.Fatalf("Update: %v", err)
		}

		back, err := LoadRoster(path)
		if err != nil {
			t.Fatalf("LoadRoster: %v", err)
		}
		if back.Mode() != ModeExclusive || len(back.Holders()) != 1 || back.Holders()[0] != p1 {
			t.Errorf("round trip yielded %s %v", back.Mode(), back.Holders())
		}
	})
}

func TestRoster_UpdateEmptyDeletesFile(t *testing.T) {
	path := rosterPath(t)
	p1 := Identity{Host: "a", Pid: 1}

	r := &Roster{}
	if err := r.AddShared(p1); err != nil {
		t.Fatal(err)
	}
	if err := r.Update(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("roster file should exist: %v", err)
	}

	r.RemoveHolder(p1)
	if err := r.Update(path); err != nil {
		t.Fatalf("Update to empty: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("empty roster must be encoded as an absent file")
	}

	// Persisting empty again must tolerate the file already being gone.
	if err := r.Update(path); err != nil {
		t.Errorf("Update of already-absent empty roster: %v", err)
	}
}
