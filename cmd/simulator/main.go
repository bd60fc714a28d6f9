package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"nexus-hvac-client/internal/config"
	"nexus-hvac-client/internal/logger"
	"nexus-hvac-client/internal/metrics"
	"nexus-hvac-client/internal/middleware"
	"nexus-hvac-client/internal/simulator"
	pkgmqtt "nexus-hvac-client/pkg/mqtt"
)

func main() {
	flags := pflag.NewFlagSet("simulator", pflag.ExitOnError)
	flags.String("sim-host", "", "listen host")
	flags.String("sim-port", "", "listen port")
	flags.Duration("sim-tick", 0, "sensor drift interval")
	flags.String("mqtt-broker", "", "publish status over MQTT to this broker")
	seed := flags.Uint64("seed", uint64(time.Now().UnixNano()), "random seed for sensor drift")
	_ = flags.Parse(os.Args[1:])

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

	logger.Info("Starting simulator",
		zap.String("environment", cfg.Environment),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	simMetrics := metrics.NewSimulatorMetrics(reg)

	customers, err := simulator.NewCustomers(simulator.DefaultCustomers(), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("Failed to seed customers", zap.Error(err))
	}
	fleet := simulator.NewFleet(simulator.DefaultDevices(), *seed)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst)
	go limiter.Cleanup(ctx, 5*time.Minute)

	var publisher simulator.Publisher
	if cfg.MQTT.Broker != "" {
		mqttCfg := pkgmqtt.DefaultConfig(cfg.MQTT.Broker, cfg.MQTT.ClientID+"-simulator")
		mqttCfg.Username = cfg.MQTT.Username
		mqttCfg.Password = cfg.MQTT.Password
		client := pkgmqtt.NewClient(mqttCfg, logger.Named("mqtt"))
		if err := client.Connect(); err != nil {
			logger.Fatal("Failed to connect to MQTT broker", zap.Error(err))
		}
		defer client.Disconnect()
		publisher = client
	}

	runner := simulator.NewRunner(fleet, publisher, cfg.MQTT.TopicPrefix, byte(cfg.MQTT.QoS), simMetrics, logger.Named("drift"))
	go runner.Run(ctx, cfg.Simulator.Tick)

	router := simulator.SetupRouter(simulator.RouterDeps{
		Config:      cfg,
		Handler:     simulator.NewHandler(fleet, customers, simMetrics, logger.Named("handler")),
		Metrics:     simMetrics,
		Gatherer:    reg,
		RateLimiter: limiter,
		Logger:      logger.Named("http"),
	})

	addr := net.JoinHostPort(cfg.Simulator.Host, cfg.Simulator.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown Server ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
	}

	logger.Info("Server exited properly")
}
