// =============================================================================
// OmniAI 命令行入口
// =============================================================================
// 使用方法:
//
//	omniai text "Say hi"                         # 文本生成
//	omniai text --model gpt-4o --param temperature=0.2 "Say hi"
//	omniai image --param size=256x256 "a red fox"
//	omniai variation --image fox.png --param n=2
//	omniai retrieve resp_123                     # 查询已存储的响应
//	omniai providers                             # 列出 Provider
//	omniai version                               # 显示版本信息
// =============================================================================

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/omniai/config"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches a subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	cmd, ok := commands[args[0]]
	switch {
	case ok:
		return cmd(ctx, args[1:], stdout, stderr)
	case args[0] == "version":
		printVersion(stdout)
		return 0
	case args[0] == "help" || args[0] == "-h" || args[0] == "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		printUsage(stderr)
		return 1
	}
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "OmniAI %s\n", Version)
	fmt.Fprintf(w, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `OmniAI - unified text and image generation

Usage:
  omniai <command> [options] [args]

Commands:
  text <input>        Generate text
  image <prompt>      Generate images
  variation           Create variations of an image (--image required)
  retrieve <id>       Fetch a stored response
  delete <id>         Delete a stored response
  cancel <id>         Cancel a background response
  providers           List registered providers
  version             Show version information
  help                Show this help message

Options:
  --config <path>         Path to configuration file (YAML)
  --dotenv <path>         .env file loaded before the environment (default .env)
  --provider <name>       Provider to use (default: registry default)
  --model <name>          Model override
  --param key=value       Extra request parameter, repeatable; JSON values allowed
  --image <path>          Source image for 'variation'
  --metrics-addr <addr>   Serve Prometheus /metrics while the command runs

Examples:
  omniai text "Write a haiku about Go"
  omniai text --param max_output_tokens=64 --param 'tools=[]' "hi"
  omniai image --param size=512x512 --param response_format=b64_json "a lighthouse"
  omniai variation --image ./cat.png --param n=2
  omniai retrieve --param 'include=["usage"]' resp_abc123`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		// stdout 留给命令结果
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}
	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	}

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	logger, err := zapConfig.Build(opts...)
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}
	return logger
}
