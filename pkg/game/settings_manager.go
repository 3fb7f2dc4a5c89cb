package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/decker502/runner/pkg/config"
)

// RunnerSettings 玩家设置
// 注意：只保存偏好类设置，不保存任何游戏进度
type RunnerSettings struct {
	// 键位
	Keys config.KeyBindings `yaml:"keys"`

	// 显示设置
	ShowMarkers bool `yaml:"showMarkers"` // 是否绘制车道标记
	ShowGizmo   bool `yaml:"showGizmo"`   // 是否绘制车道范围框
	Fullscreen  bool `yaml:"fullscreen"`  // 启动时是否全屏
}

// DefaultSettings 返回默认设置
func DefaultSettings() *RunnerSettings {
	return &RunnerSettings{
		Keys:        config.DefaultKeyBindings(),
		ShowMarkers: true,
		ShowGizmo:   false,
		Fullscreen:  false,
	}
}

// SettingsManager 设置管理器
// 负责玩家设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager  // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *RunnerSettings // 当前设置
	saved        bool            // 是否从存储中读到过玩家设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "runner"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 加载失败不影响创建，此时使用默认设置。
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置。
// 已保存的设置缺少某组键位时，该组沿用默认键位。
//
// 返回：
//   - error: 如果读取或反序列化失败返回错误
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.Keys = loaded.Keys.WithDefaults()

	sm.settings = loaded
	sm.saved = true
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	sm.saved = true
	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// HasSaved 是否存在已持久化的玩家设置
func (sm *SettingsManager) HasSaved() bool {
	return sm.saved
}

// ApplyConfigDefaults 用场景配置作为首次启动的初始偏好
//
// 已有持久化设置时不做任何修改，玩家保存过的选择优先于配置文件。
func (sm *SettingsManager) ApplyConfigDefaults(cfg *config.RunnerConfig) {
	if sm.saved || cfg == nil {
		return
	}
	sm.settings.ShowGizmo = cfg.Lanes.ShowGizmo
	sm.settings.Keys = cfg.Keys.WithDefaults()
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *RunnerSettings {
	return sm.settings
}

// SetKeyBindings 设置键位
//
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetKeyBindings(keys config.KeyBindings) {
	sm.settings.Keys = keys.WithDefaults()
}

// SetShowMarkers 设置是否绘制车道标记
func (sm *SettingsManager) SetShowMarkers(enabled bool) {
	sm.settings.ShowMarkers = enabled
}

// SetShowGizmo 设置是否绘制车道范围框
func (sm *SettingsManager) SetShowGizmo(enabled bool) {
	sm.settings.ShowGizmo = enabled
}

// SetFullscreen 设置全屏模式
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}
