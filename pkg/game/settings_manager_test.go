package game

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/runner/pkg/config"
)

// openTestGdata 在临时目录中创建 gdata manager
func openTestGdata(t *testing.T, appName string) *gdata.Manager {
	t.Helper()

	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_DATA_HOME", tempDir)

	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return manager
}

// TestDefaultSettings 测试 DefaultSettings() 返回正确的默认值
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if diff := cmp.Diff(config.DefaultKeyBindings(), settings.Keys); diff != "" {
		t.Errorf("Default key bindings mismatch (-want +got):\n%s", diff)
	}
	if !settings.ShowMarkers {
		t.Error("ShowMarkers: got false, want true")
	}
	if settings.ShowGizmo {
		t.Error("ShowGizmo: got true, want false")
	}
	if settings.Fullscreen {
		t.Error("Fullscreen: got true, want false")
	}
}

// TestNewSettingsManagerNilGdata 测试 gdataManager 为 nil 时的降级场景
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm := NewSettingsManager(nil)

	settings := sm.GetSettings()
	if settings == nil {
		t.Fatal("GetSettings() returned nil in degraded mode")
	}
	if !settings.ShowMarkers {
		t.Error("Degraded mode should use default settings")
	}

	// 降级模式下保存不报错
	sm.SetShowGizmo(true)
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode returned error: %v", err)
	}
}

// TestSettingsLoadSave 测试 Load() 和 Save() 功能
func TestSettingsLoadSave(t *testing.T) {
	gdataManager := openTestGdata(t, "test_runner_settings")

	sm1 := NewSettingsManager(gdataManager)
	sm1.SetShowMarkers(false)
	sm1.SetShowGizmo(true)
	sm1.SetFullscreen(true)
	sm1.SetKeyBindings(config.KeyBindings{
		Jump: []ebiten.Key{ebiten.KeySpace},
	})

	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	sm2 := NewSettingsManager(gdataManager)
	settings := sm2.GetSettings()

	if settings.ShowMarkers {
		t.Error("Loaded ShowMarkers: got true, want false")
	}
	if !settings.ShowGizmo {
		t.Error("Loaded ShowGizmo: got false, want true")
	}
	if !settings.Fullscreen {
		t.Error("Loaded Fullscreen: got false, want true")
	}

	want := config.DefaultKeyBindings()
	want.Jump = []ebiten.Key{ebiten.KeySpace}
	if diff := cmp.Diff(want, settings.Keys); diff != "" {
		t.Errorf("Loaded key bindings mismatch (-want +got):\n%s", diff)
	}
}

// TestSettingsLoadCorrupted 测试已保存数据损坏时回退到默认设置
func TestSettingsLoadCorrupted(t *testing.T) {
	gdataManager := openTestGdata(t, "test_runner_settings_corrupted")

	if err := gdataManager.SaveObjectProp(settingsObject, settingsProperty, []byte("keys: [not, a, map")); err != nil {
		t.Fatalf("Failed to write corrupted settings: %v", err)
	}

	sm := NewSettingsManager(gdataManager)
	if err := sm.Load(); err == nil {
		t.Error("Expected error when loading corrupted settings")
	}
	if !sm.GetSettings().ShowMarkers {
		t.Error("Expected default settings after failed load")
	}
}

// TestApplyConfigDefaults 测试配置只作为首次启动的初始偏好
func TestApplyConfigDefaults(t *testing.T) {
	cfg := config.DefaultRunnerConfig()
	cfg.Lanes.ShowGizmo = true
	cfg.Keys.Jump = []ebiten.Key{ebiten.KeyJ}

	gdataManager := openTestGdata(t, "test_runner_settings_config_defaults")

	// 首次启动：没有持久化设置，采用配置
	sm1 := NewSettingsManager(gdataManager)
	if sm1.HasSaved() {
		t.Fatal("Expected no saved settings on first launch")
	}
	sm1.ApplyConfigDefaults(cfg)
	if !sm1.GetSettings().ShowGizmo {
		t.Error("First launch ShowGizmo: got false, want true from config")
	}
	if diff := cmp.Diff([]ebiten.Key{ebiten.KeyJ}, sm1.GetSettings().Keys.Jump); diff != "" {
		t.Errorf("First launch jump keys mismatch (-want +got):\n%s", diff)
	}

	// 玩家关闭范围框并保存
	sm1.SetShowGizmo(false)
	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// 再次启动：保存的选择优先于配置
	sm2 := NewSettingsManager(gdataManager)
	if !sm2.HasSaved() {
		t.Fatal("Expected saved settings on second launch")
	}
	sm2.ApplyConfigDefaults(cfg)
	if sm2.GetSettings().ShowGizmo {
		t.Error("Second launch ShowGizmo: got true, want saved false")
	}
}
