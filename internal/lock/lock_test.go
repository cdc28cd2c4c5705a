package lock

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// two distinct "processes" for contention tests
var (
	procA = Identity{Host: "alpha.example", Pid: 100}
	procB = Identity{Host: "beta.example", Pid: 200}
)

func readRosterFile(t *testing.T, dir string) map[string][][3]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "lock.roster"))
	if err != nil {
		t.Fatalf("reading roster file: %v", err)
	}
	var doc map[string][][3]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parsing roster file: %v", err)
	}
	return doc
}

func TestLockExclusive_ExcludesEveryone(t *testing.T) {
	dir := t.TempDir()
	l1 := New(dir, "lock", procA)
	l2 := New(dir, "lock", procB)

	if err := l1.LockExclusive(); err != nil {
		t.Fatalf("P1 LockExclusive: %v", err)
	}
	defer l1.Close()

	if _, err := os.Stat(filepath.Join(dir, "lock.exclusive")); err != nil {
		t.Errorf("exclusive guard directory missing: %v", err)
	}
	doc := readRosterFile(t, dir)
	if len(doc["exclusive"]) != 1 {
		t.Errorf("roster = %v, want one exclusive holder", doc)
	}

	if err := l2.LockExclusive(); !errors.Is(err, ErrLockBusy) {
		t.Errorf("P2 LockExclusive = %v, want ErrLockBusy", err)
	}
	if err := l2.LockShared(); !errors.Is(err, ErrLockBusy) {
		t.Errorf("P2 LockShared = %v, want ErrLockBusy", err)
	}
	if l2.State() != StateUnlocked {
		t.Errorf("failed acquisitions left P2 in state %s", l2.State())
	}
}

func TestLockExclusive_ReleaseThenReacquire(t *testing.T) {
	dir := t.TempDir()
	l1 := New(dir, "lock", procA)
	l2 := New(dir, "lock", procB)

	if err := l1.LockExclusive(); err != nil {
		t.Fatal(err)
	}
	if err := l2.LockExclusive(); !errors.Is(err, ErrLockBusy) {
		t.Fatalf("P2 while P1 holds = %v, want ErrLockBusy", err)
	}

	if err := l1.Release(); err != nil {
		t.Fatalf("P1 Release: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "lock.exclusive")); !os.IsNotExist(err) {
		t.Error("exclusive guard should be gone after release")
	}
	if _, err := os.Stat(filepath.Join(dir, "lock.roster")); !os.IsNotExist(err) {
		t.Error("roster file should be gone after release")
	}

	if err := l2.LockExclusive(); err != nil {
		t.Fatalf("P2 retry after P1 release: %v", err)
	}
	l2.Close()
}

func TestLockShared_ConcurrentReaders(t *testing.T) {
	dir := t.TempDir()
	l1 := New(dir, "lock", procA)
	l2 := New(dir, "lock", procB)

	if err := l1.LockShared(); err != nil {
		t.Fatalf("P1 LockShared: %v", err)
	}
	if err := l2.LockShared(); err != nil {
		t.Fatalf("P2 LockShared: %v", err)
	}

	// No long-held guard for shared access.
	if _, err := os.Stat(filepath.Join(dir, "lock.exclusive")); !os.IsNotExist(err) {
		t.Error("shared access must not take the exclusive guard directory")
	}
	doc := readRosterFile(t, dir)
	if len(doc["shared"]) != 2 {
		t.Fatalf("roster = %v, want two shared holders", doc)
	}
	// Acquisition order is preserved.
	if doc["shared"][0][0] != "alpha.example" || doc["shared"][1][0] != "beta.example" {
		t.Errorf("holder order = %v, want [alpha beta]", doc["shared"])
	}

	l3 := New(dir, "lock", Identity{Host: "gamma.example", Pid: 300})
	if err := l3.LockExclusive(); !errors.Is(err, ErrLockBusy) {
		t.Errorf("exclusive over shared = %v, want ErrLockBusy", err)
	}
	// The failed exclusive attempt must roll its guard directory back.
	if _, err := os.Stat(filepath.Join(dir, "lock.exclusive")); !os.IsNotExist(err) {
		t.Error("failed exclusive acquisition leaked its guard directory")
	}

	if err := l1.Release(); err != nil {
		t.Fatal(err)
	}
	doc = readRosterFile(t, dir)
	if len(doc["shared"]) != 1 || doc["shared"][0][0] != "beta.example" {
		t.Errorf("after P1 release roster = %v, want just beta", doc)
	}

	if err := l2.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "lock.roster")); !os.IsNotExist(err) {
		t.Error("roster file should be absent after last shared release")
	}
}

func TestRelease_Idempotent(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, "lock", procA)

	if err := l.Release(); err != nil {
		t.Errorf("Release on never-locked session: %v", err)
	}

	if err := l.LockShared(); err != nil {
		t.Fatal(err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("first Release: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release: %v", err)
	}
}

func TestDoubleAcquire_Panics(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, "lock", procA)
	if err := l.LockShared(); err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	for name, fn := range map[string]func() error{
		"LockShared":    l.LockShared,
		"LockExclusive": l.LockExclusive,
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s on a locked session did not panic", name)
				}
			}()
			_ = fn()
		}()
	}
}

func TestLock_NoMutationGuardLeftBehind(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, "lock", procA)

	if err := l.LockExclusive(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "lock.mutate")); !os.IsNotExist(err) {
		t.Error("mutation guard survived a successful acquisition")
	}
	if err := l.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "lock.mutate")); !os.IsNotExist(err) {
		t.Error("mutation guard survived a release")
	}
}

func TestLockExclusive_CorruptRosterRollsBackGuard(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "lock.roster"), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	l := New(dir, "lock", procA)
	err := l.LockExclusive()
	if !errors.Is(err, ErrRosterCorrupt) {
		t.Fatalf("LockExclusive over corrupt roster = %v, want ErrRosterCorrupt", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "lock.exclusive")); !os.IsNotExist(statErr) {
		t.Error("guard directory leaked after roster failure")
	}
	if l.State() != StateUnlocked {
		t.Errorf("state after failed acquisition = %s, want unlocked", l.State())
	}
}

func TestLockShared_CorruptRosterFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "lock.roster"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	l := New(dir, "lock", procA)
	if err := l.LockShared(); !errors.Is(err, ErrRosterCorrupt) {
		t.Errorf("LockShared over corrupt roster = %v, want ErrRosterCorrupt", err)
	}
}

func TestClose_ReleasesOnDefer(t *testing.T) {
	dir := t.TempDir()

	func() {
		l := New(dir, "lock", procA)
		if err := l.LockExclusive(); err != nil {
			t.Fatal(err)
		}
		defer l.Close()
	}()

	if _, err := os.Stat(filepath.Join(dir, "lock.exclusive")); !os.IsNotExist(err) {
		t.Error("Close did not release the exclusive guard")
	}
	if _, err := os.Stat(filepath.Join(dir, "lock.roster")); !os.IsNotExist(err) {
		t.Error("Close did not clear the roster")
	}
}
