package session

import (
	"errors"
	"testing"
	"time"

	"github.com/parkbay/parkbay/game/engine"
	"github.com/parkbay/parkbay/game/service"
)

// stubConfigManager serves the test arena under the name "session-test"
type stubConfigManager struct {
	config *engine.ArenaConfig
}

func (s *stubConfigManager) LoadConfig(name string) (*engine.ArenaConfig, error) {
	if name != s.config.Name {
		return nil, errors.New("configuration not found")
	}
	return s.config, nil
}

func (s *stubConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	return []*service.ConfigInfo{{
		Filename: s.config.Name + ".json",
		ConfigID: s.config.Name,
		Name:     s.config.Name,
	}}, nil
}

func (s *stubConfigManager) GetDefault() *engine.ArenaConfig {
	return s.config
}

func (s *stubConfigManager) SaveConfig(name string, config *engine.ArenaConfig) error {
	return errors.New("not supported")
}

func newTestPersistence(t *testing.T) (*FilePersistence, *engine.ArenaConfig) {
	t.Helper()
	config := createTestConfig()
	fp, err := NewFilePersistence(t.TempDir(), &stubConfigManager{config: config})
	if err != nil {
		t.Fatalf("NewFilePersistence failed: %v", err)
	}
	return fp, config
}

func TestFilePersistence_SaveLoadRoundTrip(t *testing.T) {
	fp, config := newTestPersistence(t)

	manager := NewManagerWithPersistence(fp)
	session, err := manager.Create("persisted", config, false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Drive a bit so the saved state is not the start pose
	session.Input.SetControl("accelerate", true)
	if _, err := session.Loop.Advance(10, 0.05); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if err := manager.Save("persisted"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := fp.Load("persisted")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := session.Engine.Snapshot()
	got := loaded.Engine.Snapshot()

	if got.Vehicle.X != want.Vehicle.X || got.Vehicle.Y != want.Vehicle.Y {
		t.Errorf("Expected restored position (%f, %f), got (%f, %f)",
			want.Vehicle.X, want.Vehicle.Y, got.Vehicle.X, got.Vehicle.Y)
	}
	if got.Vehicle.Velocity != want.Vehicle.Velocity {
		t.Errorf("Expected restored velocity %f, got %f", want.Vehicle.Velocity, got.Vehicle.Velocity)
	}
	if got.Stats.ElapsedTime != want.Stats.ElapsedTime {
		t.Errorf("Expected restored elapsed time %f, got %f", want.Stats.ElapsedTime, got.Stats.ElapsedTime)
	}
	if loaded.Loop == nil || loaded.Loop.Running() {
		t.Error("Restored session should have a stopped loop")
	}
}

func TestFilePersistence_LoadMissing(t *testing.T) {
	fp, _ := newTestPersistence(t)

	if _, err := fp.Load("ghost"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestFilePersistence_Delete(t *testing.T) {
	fp, config := newTestPersistence(t)

	manager := NewManagerWithPersistence(fp)
	manager.Create("temp", config, false)

	if !fp.Exists("temp") {
		t.Fatal("Expected session file on disk after create")
	}
	if err := fp.Delete("temp"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if fp.Exists("temp") {
		t.Error("Expected session file removed")
	}
	if err := fp.Delete("temp"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound for missing file, got %v", err)
	}
}

func TestFilePersistence_ListAll(t *testing.T) {
	fp, config := newTestPersistence(t)

	manager := NewManagerWithPersistence(fp)
	manager.Create("one", config, false)
	manager.Create("two", config, false)

	ids, err := fp.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 persisted sessions, got %d", len(ids))
	}
}

func TestManager_LoadPersistedSessions(t *testing.T) {
	fp, config := newTestPersistence(t)

	first := NewManagerWithPersistence(fp)
	first.Create("survivor", config, false)

	// A fresh manager sharing the same storage picks the session up
	second := NewManagerWithPersistence(fp)
	if err := second.LoadPersistedSessions(); err != nil {
		t.Fatalf("LoadPersistedSessions failed: %v", err)
	}
	if second.Count() != 1 {
		t.Fatalf("Expected 1 loaded session, got %d", second.Count())
	}

	session, err := second.Get("survivor")
	if err != nil {
		t.Fatalf("Get after load failed: %v", err)
	}
	if session.Config.Name != config.Name {
		t.Errorf("Expected config %q, got %q", config.Name, session.Config.Name)
	}
}

func TestManager_SaveAllSessions(t *testing.T) {
	fp, config := newTestPersistence(t)

	manager := NewManagerWithPersistence(fp)
	manager.Create("a", config, false)
	manager.Create("b", config, false)

	if err := manager.SaveAllSessions(); err != nil {
		t.Fatalf("SaveAllSessions failed: %v", err)
	}

	ids, _ := fp.ListAll()
	if len(ids) != 2 {
		t.Errorf("Expected 2 persisted sessions, got %d", len(ids))
	}
}

func TestManager_GetFallsBackToPersistence(t *testing.T) {
	fp, config := newTestPersistence(t)

	first := NewManagerWithPersistence(fp)
	created, _ := first.Create("lazy", config, false)
	createdAt := created.CreatedAt

	second := NewManagerWithPersistence(fp)
	session, err := second.Get("lazy")
	if err != nil {
		t.Fatalf("Expected Get to load from persistence, got %v", err)
	}
	if !session.CreatedAt.Equal(createdAt.Truncate(time.Nanosecond)) {
		// CreatedAt survives the JSON round trip
		t.Errorf("Expected created time %v, got %v", createdAt, session.CreatedAt)
	}
}
