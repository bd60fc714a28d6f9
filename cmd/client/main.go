package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"nexus-hvac-client/internal/apiclient"
	"nexus-hvac-client/internal/auth"
	"nexus-hvac-client/internal/config"
	"nexus-hvac-client/internal/device/repository"
	"nexus-hvac-client/internal/kv"
	"nexus-hvac-client/internal/logger"
	"nexus-hvac-client/internal/metrics"
	"nexus-hvac-client/internal/monitor"
	"nexus-hvac-client/internal/session"
	userRepository "nexus-hvac-client/internal/user/repository"
	"nexus-hvac-client/internal/user/service"
	appErrors "nexus-hvac-client/pkg/errors"
)

const usage = `Usage: nexus [flags] <command> [args]

Commands:
  login <identifier> <secret>   sign in and persist the session
  logout                        clear the stored session
  whoami                        show the signed-in profile
  routes                        list the screens open to the current user
  dashboard                     live home screen for the current user
  fleet [--watch]               list the devices in scope
  watch <mac> [--push]          live status of one device
  customer                      live status of the customer's own device
  history <mac> [--range 1d]    raw history for one device
  register --mac --ssid --pass  provision a device
  passwd                        change password (validated locally)

Flags:
`

type app struct {
	cfg      *config.Config
	devices  *repository.DeviceRepository
	sessions *session.Manager
	fetcher  *monitor.FleetFetcher
	account  *service.AccountService
	metrics  *metrics.ClientMetrics
	out      io.Writer
	closers  []func()
}

func main() {
	flags := pflag.NewFlagSet("nexus", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.String("api-base-url", "", "backend base url")
	flags.Duration("api-timeout", 0, "per request timeout")
	flags.String("session-backend", "", "session store: file or redis")
	flags.String("session-dir", "", "directory for the file session store")
	flags.String("redis-addr", "", "redis address for the redis session store")
	flags.String("mqtt-broker", "", "MQTT broker for push updates")
	flags.String("metrics-addr", "", "serve prometheus metrics on this address")
	flags.String("environment", "", "development or production")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if flags.NArg() == 0 {
		flags.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.Init(cfg.Environment); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, os.Stdout)
	if err != nil {
		logger.Error("Failed to start client", zap.Error(err))
		os.Exit(1)
	}
	defer a.close()

	if err := a.run(ctx, flags.Arg(0), flags.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", userMessage(err))
		logger.Debug("Command failed", zap.String("command", flags.Arg(0)), zap.Error(err))
		stop()
		a.close()
		logger.Sync()
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config, out io.Writer) (*app, error) {
	a := &app{cfg: cfg, out: out, account: service.NewAccountService()}

	reg := prometheus.NewRegistry()
	a.metrics = metrics.NewClientMetrics(reg)
	if cfg.Metrics.Addr != "" {
		a.serveMetrics(reg)
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      cfg.API.Timeout,
		RateLimitRPS: cfg.API.RateLimitRPS,
		Burst:        cfg.API.RateBurst,
	}, apiclient.WithMetrics(a.metrics))
	if err != nil {
		return nil, err
	}
	a.devices = repository.NewDeviceRepository(client)
	a.fetcher = monitor.NewFleetFetcher(a.devices, cfg.Auth.AdminScopes)

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	seeds := auth.DefaultSeeds()
	if cfg.Auth.StaticCredentials != "" {
		if seeds, err = auth.ParseStaticCredentials(cfg.Auth.StaticCredentials); err != nil {
			return nil, fmt.Errorf("STATIC_CREDENTIALS: %w", err)
		}
	}
	static, err := auth.NewStaticTableProvider(seeds)
	if err != nil {
		return nil, err
	}
	remote := auth.NewRemoteProvider(userRepository.NewUserRepository(client))

	a.sessions = session.NewManager(session.NewStore(store, cfg.Session.Key), auth.NewResolver(remote, static))
	if _, err := a.sessions.Init(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) (kv.Store, error) {
	if a.cfg.Session.Backend != "redis" {
		return kv.NewFileStore(a.cfg.Session.Dir)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", a.cfg.Redis.Addr, err)
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	return kv.NewRedisStore(rdb, "nexus:"), nil
}

func (a *app) serveMetrics(reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("Metrics server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	a.closers = append(a.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// userMessage turns an error into the line shown to the user.
func userMessage(err error) string {
	var appErr *appErrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Message
	case errors.Is(err, appErrors.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, appErrors.ErrNoSession):
		return "Not signed in. Run: nexus login <identifier> <secret>"
	case errors.Is(err, appErrors.ErrNotFleetRole):
		return "This account has no fleet access"
	case appErrors.IsTimeout(err):
		return "The server took too long to respond"
	case appErrors.IsNetwork(err):
		return "Cannot reach the server"
	}
	if status, ok := appErrors.HTTPStatus(err); ok {
		return fmt.Sprintf("Server returned status %d", status)
	}
	return err.Error()
}
