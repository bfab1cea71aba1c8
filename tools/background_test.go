// ABOUTME: Tests for the bounded background-process tracking map.

package tools

import "testing"

func TestBackgroundProcessManagerStartAndList(t *testing.T) {
	mgr := NewBackgroundProcessManager()
	id, err := mgr.Start("sleep 5", t.TempDir())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer mgr.Kill(id)

	statuses := mgr.List()
	if len(statuses) != 1 || statuses[0].ID != id {
		t.Fatalf("expected 1 tracked process with id %s, got %+v", id, statuses)
	}
}

func TestBackgroundProcessManagerRejectsDestructiveCommand(t *testing.T) {
	mgr := NewBackgroundProcessManager()
	if _, err := mgr.Start("rm -rf /", t.TempDir()); err == nil {
		t.Fatalf("expected destructive command to be rejected")
	}
}

func TestBackgroundProcessManagerKillRemovesFromMap(t *testing.T) {
	mgr := NewBackgroundProcessManager()
	id, err := mgr.Start("sleep 5", t.TempDir())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := mgr.Kill(id); err != nil {
		t.Fatalf("kill: %v", err)
	}
	if _, ok := mgr.Get(id); ok {
		t.Fatalf("expected process to be removed after kill")
	}
}

func TestBackgroundProcessManagerEnforcesCapacity(t *testing.T) {
	mgr := NewBackgroundProcessManager()
	var ids []string
	defer func() {
		for _, id := range ids {
			mgr.Kill(id)
		}
	}()

	for i := 0; i < MaxConcurrentBackgroundProcesses; i++ {
		id, err := mgr.Start("sleep 5", t.TempDir())
		if err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
		ids = append(ids, id)
	}

	if _, err := mgr.Start("sleep 5", t.TempDir()); err == nil {
		t.Fatalf("expected capacity error beyond %d processes", MaxConcurrentBackgroundProcesses)
	}
}
