// verify_motion 无窗口的运动验证工具
//
// 按脚本逐帧驱动模拟并打印每帧的角色状态，用于检查换道、跳跃与滑铲的时序。
//
// 脚本格式：逗号分隔的帧，每帧由 L（左）R（右）J（跳）S（滑铲）组合而成，
// "-" 表示无输入，"X*N" 表示把帧 X 重复 N 次。
//
//	go run ./cmd/verify_motion -script "R,-*20,J,-*40,S,-*40,L*3"
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/decker502/runner/internal/telemetry"
	"github.com/decker502/runner/pkg/components"
	"github.com/decker502/runner/pkg/config"
	"github.com/decker502/runner/pkg/game"
	"github.com/decker502/runner/pkg/geom"
)

var (
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	configPath = flag.String("config", config.DefaultConfigPath, "场景配置文件路径")
	script     = flag.String("script", "R,-*20,J,-*40,S,-*40,L*3,-*60", "输入脚本")
	dt         = flag.Float64("dt", 1.0/60.0, "每帧时长（秒）")
	changes    = flag.Bool("changes", false, "只打印状态发生变化的帧")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil && *verbose {
		log.Printf("[VerifyMotion] .env file not loaded: %v", err)
	}
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	frames, err := parseScript(*script)
	if err != nil {
		fatalf("[VerifyMotion] Invalid script: %v", err)
	}

	cfg, err := config.LoadRunnerConfig(*configPath)
	if err != nil {
		log.Printf("[VerifyMotion] Warning: %v (using defaults)", err)
		cfg = config.DefaultRunnerConfig()
	}

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		fatalf("[VerifyMotion] Telemetry setup failed: %v", err)
	}
	defer shutdown(ctx)

	sim := game.NewSimulation(cfg, game.WithSimulationTracer(telemetry.Tracer("verify_motion")))
	if err := sim.Initialize(ctx); err != nil {
		fatalf("[VerifyMotion] Failed to initialize: %v", err)
	}
	defer sim.Teardown()

	fmt.Printf("session %s, %d frames, dt=%.4f\n", sim.SessionID, len(frames), *dt)
	fmt.Printf("%5s %7s %-4s %4s %4s %8s %8s %-10s %-5s %7s\n",
		"tick", "time", "in", "lane", "obs", "x", "y", "jump", "slide", "pitch")

	previous := ""
	for i, input := range frames {
		if err := sim.Advance(*dt, input); err != nil {
			fatalf("[VerifyMotion] Advance failed at tick %d: %v", i, err)
		}

		state := sim.MotionState()
		transform, _ := sim.Transform()
		row := fmt.Sprintf("%-4s %4d %4d %8.3f %8.3f %-10s %-5v %7.1f",
			formatInput(input), state.Lane, sim.ObservedLane(),
			transform.Position.X, transform.Position.Y,
			state.JumpPhase, state.Sliding, geom.PitchDegrees(transform.Rotation))

		if *changes && row == previous {
			continue
		}
		previous = row
		fmt.Printf("%5d %7.3f %s\n", sim.Ticks(), sim.Elapsed(), row)
	}
}

// fatalf 输出错误并退出（不受日志静默影响）
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// parseScript 解析输入脚本
func parseScript(s string) ([]components.InputEdge, error) {
	var frames []components.InputEdge
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		repeat := 1
		if body, count, ok := strings.Cut(token, "*"); ok {
			n, err := strconv.Atoi(count)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid repeat count in %q", token)
			}
			token, repeat = body, n
		}

		var input components.InputEdge
		for _, r := range strings.ToUpper(token) {
			switch r {
			case 'L':
				input.LaneLeft = true
			case 'R':
				input.LaneRight = true
			case 'J':
				input.Jump = true
			case 'S':
				input.Slide = true
			case '-':
			default:
				return nil, fmt.Errorf("unknown input %q in %q", r, token)
			}
		}

		for i := 0; i < repeat; i++ {
			frames = append(frames, input)
		}
	}
	return frames, nil
}

// formatInput 把输入格式化为脚本记法
func formatInput(input components.InputEdge) string {
	if !input.Any() {
		return "-"
	}
	var b strings.Builder
	if input.LaneLeft {
		b.WriteByte('L')
	}
	if input.LaneRight {
		b.WriteByte('R')
	}
	if input.Jump {
		b.WriteByte('J')
	}
	if input.Slide {
		b.WriteByte('S')
	}
	return b.String()
}
