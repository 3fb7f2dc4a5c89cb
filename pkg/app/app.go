// Package app 提供游戏应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来：main.go 负责解析参数与加载配置，
// 然后调用 NewApp() 得到一个实现了 ebiten.Game 的 App。
package app

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.opentelemetry.io/otel/trace"

	"github.com/decker502/runner/pkg/config"
	"github.com/decker502/runner/pkg/game"
	"github.com/decker502/runner/pkg/lanes"
	"github.com/decker502/runner/pkg/systems"
)

// 窗口与逻辑屏幕尺寸
const (
	WindowWidth  = 640
	WindowHeight = 800

	// TPS 固定逻辑帧率，每帧的 deltaTime 为 1/TPS
	TPS = 60
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Runner 场景配置，nil 时使用默认配置
	Runner *config.RunnerConfig
	// Settings 玩家设置，nil 时使用仅内存的默认设置
	Settings *game.SettingsManager
	// Tracer 链路追踪器，可为 nil
	Tracer trace.Tracer
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	simulation *game.Simulation
	input      *systems.InputSystem
	settings   *game.SettingsManager
	markers    *MarkerLayer
	view       *TopDownView
	verbose    bool
	showGizmo  bool // 初始值取玩家设置（首次启动时来自配置），G 键切换

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化应用
//
// 初始化失败（如车道表无法构建）时返回错误。
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	settings := cfg.Settings
	if settings == nil {
		settings = game.NewSettingsManager(nil)
	}

	markers := NewMarkerLayer()
	opts := []game.SimulationOption{game.WithLaneMarkers(markers)}
	if cfg.Tracer != nil {
		opts = append(opts, game.WithSimulationTracer(cfg.Tracer))
	}

	simulation := game.NewSimulation(cfg.Runner, opts...)
	if err := simulation.Initialize(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize simulation: %w", err)
	}

	settings.ApplyConfigDefaults(simulation.Config())
	keyboard := systems.NewKeyboardSource(settings.GetSettings().Keys)

	if settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	log.Printf("[App] Session %s started", simulation.SessionID)

	return &App{
		simulation: simulation,
		input:      systems.NewInputSystem(keyboard),
		settings:   settings,
		markers:    markers,
		view:       NewTopDownView(WindowWidth, WindowHeight),
		verbose:    cfg.Verbose,
		showGizmo:  settings.GetSettings().ShowGizmo,
	}, nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（每秒 TPS 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(WindowWidth, WindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	a.handleHotkeys()

	deltaTime := 1.0 / float64(TPS)
	if err := a.simulation.Advance(deltaTime, a.input.Update()); err != nil {
		return fmt.Errorf("failed to advance simulation: %w", err)
	}
	return nil
}

// handleHotkeys 处理调试热键
//
//   - F11 切换全屏
//   - R 重新计算车道表
//   - G 切换车道范围框
//   - M 切换车道标记
func (a *App) handleHotkeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
		} else {
			ebiten.SetFullscreen(true)
		}
		a.settings.SetFullscreen(ebiten.IsFullscreen())
		a.saveSettings()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := a.simulation.Rebuild(context.Background()); err != nil {
			log.Printf("[App] Warning: Rebuild failed: %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		a.showGizmo = !a.showGizmo
		a.settings.SetShowGizmo(a.showGizmo)
		a.saveSettings()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		a.settings.SetShowMarkers(!a.settings.GetSettings().ShowMarkers)
		a.saveSettings()
	}
}

func (a *App) saveSettings() {
	if err := a.settings.Save(); err != nil {
		log.Printf("[App] Warning: Failed to save settings: %v", err)
	}
}

// Draw 绘制游戏画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 24, G: 28, B: 36, A: 255})

	settings := a.settings.GetSettings()
	a.view.Draw(screen, Frame{
		Simulation:  a.simulation,
		Markers:     a.markers.Markers(),
		ShowMarkers: settings.ShowMarkers,
		ShowGizmo:   a.showGizmo,
	})
}

// Layout 返回游戏的逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return WindowWidth, WindowHeight
}

// Simulation 返回模拟驱动
func (a *App) Simulation() *game.Simulation {
	return a.simulation
}

// Close 结束本次会话
func (a *App) Close() {
	a.simulation.Teardown()
	a.saveSettings()
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}

// MarkerLayer 车道标记图层，实现 lanes.MarkerSink
//
// 只保存最近一次发布的标记，供绘制使用。
type MarkerLayer struct {
	markers []lanes.LaneMarker
}

// NewMarkerLayer 创建车道标记图层
func NewMarkerLayer() *MarkerLayer {
	return &MarkerLayer{}
}

// PublishLaneMarkers 实现 lanes.MarkerSink
func (l *MarkerLayer) PublishLaneMarkers(markers []lanes.LaneMarker) {
	l.markers = append(l.markers[:0], markers...)
}

// Markers 返回当前标记
func (l *MarkerLayer) Markers() []lanes.LaneMarker {
	return l.markers
}
