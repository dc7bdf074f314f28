package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/omniai/config"
	"github.com/BaSui01/omniai/internal/metrics"
	"github.com/BaSui01/omniai/internal/server"
	"github.com/BaSui01/omniai/internal/telemetry"
	"github.com/BaSui01/omniai/llm"
	"github.com/BaSui01/omniai/llm/factory"
	"github.com/BaSui01/omniai/types"
)

// fallbackAPIKeyEnv is consulted when no key is configured under OMNIAI_.
const fallbackAPIKeyEnv = "OPENAI_API_KEY"

type command func(ctx context.Context, args []string, stdout, stderr io.Writer) int

var commands = map[string]command{
	"text":      runText,
	"image":     runImage,
	"variation": runVariation,
	"retrieve":  runRetrieve,
	"delete":    runDelete,
	"cancel":    runCancel,
	"providers": runProviders,
}

// =============================================================================
// ⚙️ 通用选项与运行环境
// =============================================================================

type commonOptions struct {
	configPath  string
	dotEnv      string
	provider    string
	model       string
	metricsAddr string
	image       string
	params      paramFlag
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *commonOptions) {
	opts := &commonOptions{params: paramFlag{}}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to config file (YAML)")
	fs.StringVar(&opts.dotEnv, "dotenv", ".env", "Path to .env file loaded before environment variables")
	fs.StringVar(&opts.provider, "provider", "", "Provider name (default: registry default)")
	fs.StringVar(&opts.model, "model", "", "Model override")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus /metrics on this address while the command runs")
	fs.Var(opts.params, "param", "Extra request parameter key=value (repeatable)")
	if name == "variation" {
		fs.StringVar(&opts.image, "image", "", "Path to the source image")
	}
	return fs, opts
}

// parseFlags returns -1 when the command should continue, otherwise an exit code.
func parseFlags(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	return -1
}

// app bundles everything one command invocation needs.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *llm.ProviderRegistry
	provider string

	otel    *telemetry.Providers
	metrics *server.Manager
}

func setup(opts *commonOptions) (*app, error) {
	loader := config.NewLoader().WithValidator((*config.Config).Validate)
	if opts.dotEnv != "" {
		loader = loader.WithDotEnv(opts.dotEnv)
	}
	if opts.configPath != "" {
		loader = loader.WithConfigPath(opts.configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Providers.OpenAI.APIKey == "" {
		cfg.Providers.OpenAI.APIKey = os.Getenv(fallbackAPIKeyEnv)
	}

	logger := initLogger(cfg.Log)
	logger.Debug("config loaded",
		zap.String("version", Version),
		zap.Any("config", cfg.Sanitized()),
	)

	a := &app{cfg: cfg, logger: logger, provider: opts.provider}

	a.otel, err = telemetry.Init(cfg.Telemetry, logger, telemetry.WithServiceVersion(Version))
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	var factoryOpts []factory.Option
	metricsAddr := opts.metricsAddr
	if metricsAddr == "" && cfg.Metrics.Enabled {
		metricsAddr = cfg.Metrics.Addr
	}
	var reg *prometheus.Registry
	if metricsAddr != "" || a.otel.Enabled() {
		// 遥测开启时 Collector 同时写入 OTLP 导出的 instrument
		reg = prometheus.NewRegistry()
		collector := metrics.NewCollector(cfg.Metrics.Namespace, reg, logger)
		factoryOpts = append(factoryOpts, factory.WithRecorder(collector))
	}
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		a.metrics = server.NewManager(
			Chain(mux, Recovery(logger), RequestLogger(logger)),
			server.DefaultConfig(metricsAddr),
			logger,
		)
		if err := a.metrics.Start(); err != nil {
			a.close()
			return nil, err
		}
	}

	a.registry, err = factory.NewRegistry(cfg, logger, factoryOpts...)
	if err != nil {
		a.close()
		return nil, err
	}
	if a.provider == "" {
		a.provider = a.registry.DefaultName()
	}
	return a, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.metrics != nil {
		select {
		case err := <-a.metrics.Errors():
			a.logger.Warn("metrics server exited early", zap.Error(err))
		default:
		}
		if err := a.metrics.Shutdown(ctx); err != nil {
			a.logger.Error("metrics server shutdown error", zap.Error(err))
		}
	}
	if err := a.otel.Shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown error", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// invoke parses flags, builds the app, runs fn and prints its result as JSON.
// minArgs is the number of positional arguments fn requires.
func invoke(ctx context.Context, name string, args []string, minArgs int, stdout, stderr io.Writer,
	fn func(ctx context.Context, a *app, opts *commonOptions, rest []string) (any, error)) int {
	fs, opts := newFlagSet(name, stderr)
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() < minArgs {
		fmt.Fprintf(stderr, "%s: missing argument\n", name)
		printUsage(stderr)
		return 2
	}
	a, err := setup(opts)
	if err != nil {
		return writeError(stderr, err)
	}
	defer a.close()

	result, err := fn(ctx, a, opts, fs.Args())
	if err != nil {
		a.logger.Debug("command failed", zap.String("command", name), zap.Error(err))
		return writeError(stderr, err)
	}
	return writeJSON(stdout, result, stderr)
}

// =============================================================================
// 🧩 子命令
// =============================================================================

func runText(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return invoke(ctx, "text", args, 0, stdout, stderr, func(ctx context.Context, a *app, opts *commonOptions, rest []string) (any, error) {
		req := &llm.TextRequest{Model: opts.model, Extra: opts.params.extra()}
		if len(rest) > 0 {
			req.Input = strings.Join(rest, " ")
		}
		if req.Input == nil && req.Extra["input"] == nil {
			return nil, types.NewError(types.ErrAssertionFailed, "text input is required")
		}
		p, err := a.registry.Text(a.provider)
		if err != nil {
			return nil, err
		}
		return p.GenerateText(ctx, req)
	})
}

func runImage(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return invoke(ctx, "image", args, 1, stdout, stderr, func(ctx context.Context, a *app, opts *commonOptions, rest []string) (any, error) {
		p, err := a.registry.Image(a.provider)
		if err != nil {
			return nil, err
		}
		return p.GenerateImage(ctx, &llm.ImageRequest{
			Model:  opts.model,
			Prompt: strings.Join(rest, " "),
			Extra:  opts.params.extra(),
		})
	})
}

func runVariation(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return invoke(ctx, "variation", args, 0, stdout, stderr, func(ctx context.Context, a *app, opts *commonOptions, rest []string) (any, error) {
		if opts.image == "" {
			return nil, types.NewError(types.ErrAssertionFailed, "--image is required")
		}
		part, f, err := openImage(opts.image)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		p, err := a.registry.Image(a.provider)
		if err != nil {
			return nil, err
		}
		return p.GenerateImageVariation(ctx, &llm.ImageVariationRequest{
			Image: part,
			Model: opts.model,
			Extra: opts.params.extra(),
		})
	})
}

func runRetrieve(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return invoke(ctx, "retrieve", args, 1, stdout, stderr, func(ctx context.Context, a *app, opts *commonOptions, rest []string) (any, error) {
		p, err := a.registry.Text(a.provider)
		if err != nil {
			return nil, err
		}
		return p.RetrieveResponse(ctx, rest[0], opts.params.extra())
	})
}

func runDelete(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return invoke(ctx, "delete", args, 1, stdout, stderr, func(ctx context.Context, a *app, _ *commonOptions, rest []string) (any, error) {
		p, err := a.registry.Text(a.provider)
		if err != nil {
			return nil, err
		}
		return p.DeleteResponse(ctx, rest[0])
	})
}

func runCancel(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return invoke(ctx, "cancel", args, 1, stdout, stderr, func(ctx context.Context, a *app, _ *commonOptions, rest []string) (any, error) {
		p, err := a.registry.Text(a.provider)
		if err != nil {
			return nil, err
		}
		return p.CancelResponse(ctx, rest[0])
	})
}

type providerListing struct {
	Default   string             `json:"default,omitempty"`
	Providers []llm.ProviderInfo `json:"providers"`
}

func runProviders(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return invoke(ctx, "providers", args, 0, stdout, stderr, func(_ context.Context, a *app, _ *commonOptions, _ []string) (any, error) {
		out := providerListing{
			Default:   a.registry.DefaultName(),
			Providers: []llm.ProviderInfo{},
		}
		for _, name := range a.registry.List() {
			p, err := a.registry.Resolve(name)
			if err != nil {
				return nil, err
			}
			out.Providers = append(out.Providers, p.Info())
		}
		return out, nil
	})
}

// =============================================================================
// 📤 输出
// =============================================================================

func writeJSON(stdout io.Writer, v any, stderr io.Writer) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(stderr, "Failed to encode result: %v\n", err)
		return 1
	}
	return 0
}

// writeError prints structured errors as JSON and everything else as text.
func writeError(stderr io.Writer, err error) int {
	if e, ok := types.AsError(err); ok {
		enc := json.NewEncoder(stderr)
		enc.SetIndent("", "  ")
		if enc.Encode(map[string]any{"error": e}) == nil {
			return 1
		}
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
