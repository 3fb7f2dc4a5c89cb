// Package main 是跑酷车道演示程序的入口
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/runner/internal/telemetry"
	"github.com/decker502/runner/pkg/app"
	"github.com/decker502/runner/pkg/config"
	"github.com/decker502/runner/pkg/embedded"
	"github.com/decker502/runner/pkg/game"
)

// configEnv 配置文件路径环境变量（-config 参数优先）
const configEnv = "RUNNER_CONFIG"

var (
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	configPath = flag.String("config", "", "场景配置文件路径（默认使用内嵌的 data/runner.yaml）")
)

func main() {
	flag.Parse()

	// .env 仅用于本地开发，不存在不是错误
	if err := godotenv.Load(); err != nil && *verbose {
		log.Printf("[Main] .env file not loaded: %v", err)
	}

	embedded.Init(dataFS)

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("[Main] Failed to load config: %v", err)
	}

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		log.Printf("[Main] Warning: telemetry setup failed: %v (running without tracing)", err)
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Printf("[Main] Error shutting down telemetry: %v", err)
			}
		}()
	}

	a, err := app.NewApp(app.Config{
		Verbose:  *verbose,
		Runner:   cfg,
		Settings: game.NewSettingsManager(openStorage()),
		Tracer:   telemetry.Tracer("game"),
	})
	if err != nil {
		log.Fatalf("[Main] Failed to create app: %v", err)
	}
	defer a.Close()

	ebiten.SetWindowSize(app.WindowWidth, app.WindowHeight)
	ebiten.SetWindowTitle("Lane Runner")
	ebiten.SetTPS(app.TPS)

	if err := ebiten.RunGame(a); err != nil {
		log.Printf("[Main] Game error: %v", err)
	}
}

// loadConfig 加载场景配置
//
// 优先级：-config 参数 > RUNNER_CONFIG 环境变量 > 内嵌默认配置
func loadConfig() (*config.RunnerConfig, error) {
	path := *configPath
	if path == "" {
		path = os.Getenv(configEnv)
	}
	if path != "" {
		return config.LoadRunnerConfig(path)
	}

	data, err := embedded.ReadFile(config.DefaultConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded config: %w", err)
	}
	return config.ParseRunnerConfig(data)
}

// openStorage 打开玩家设置存储，失败时返回 nil（仅内存设置）
func openStorage() *gdata.Manager {
	manager, err := gdata.Open(gdata.Config{
		AppName: "lane_runner",
	})
	if err != nil {
		log.Printf("[Main] Warning: settings storage unavailable: %v", err)
		return nil
	}
	return manager
}
