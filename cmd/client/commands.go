package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"nexus-hvac-client/internal/device/model"
	"nexus-hvac-client/internal/logger"
	"nexus-hvac-client/internal/monitor"
	"nexus-hvac-client/internal/navigation"
	"nexus-hvac-client/internal/poller"
	"nexus-hvac-client/internal/presentation"
	"nexus-hvac-client/internal/stream"
	userModel "nexus-hvac-client/internal/user/model"
	"nexus-hvac-client/internal/wizard"
	appErrors "nexus-hvac-client/pkg/errors"
	pkgmqtt "nexus-hvac-client/pkg/mqtt"
)

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami()
	case "routes":
		return a.routes()
	case "dashboard":
		return a.dashboard(ctx)
	case "fleet":
		return a.fleet(ctx, args)
	case "watch":
		return a.watch(ctx, args)
	case "customer":
		return a.customer(ctx)
	case "history":
		return a.history(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "passwd":
		return a.passwd(ctx, args)
	}
	return appErrors.NewAppError("UNKNOWN_COMMAND", "Unknown command "+cmd, appErrors.ErrInvalidInput)
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return appErrors.NewAppError("VALIDATION_ERROR", "Usage: login <identifier> <secret>", appErrors.ErrInvalidInput)
	}
	user, err := a.sessions.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", user.Name, user.DisplayRole())
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *app) whoami() error {
	profile, err := a.account.Profile(a.sessions.Current())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "[%s] %s\n", profile.Initial, profile.Name)
	fmt.Fprintf(a.out, "  Role   %s\n", profile.Role)
	if profile.Scope != "" {
		fmt.Fprintf(a.out, "  Scope  %s\n", profile.Scope)
	}
	if profile.Email != "" {
		fmt.Fprintf(a.out, "  Email  %s\n", profile.Email)
	}
	if profile.DeviceOwned != "" {
		fmt.Fprintf(a.out, "  Device %s\n", profile.DeviceOwned)
	}
	return nil
}

func (a *app) routes() error {
	graph := navigation.Screens(a.sessions.Current())
	home := graph.Home()
	for _, s := range graph {
		marker := " "
		if s == home {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %s\n", marker, s)
	}
	return nil
}

func (a *app) pollOptions() poller.Options {
	return poller.Options{MaxBackoff: a.cfg.Poll.MaxBackoff, Metrics: a.metrics}
}

func (a *app) dashboard(ctx context.Context) error {
	user, err := a.sessions.RequireUser()
	if err != nil {
		return err
	}

	fleetOpts := a.pollOptions()
	fleetOpts.Interval = a.cfg.Poll.FleetInterval
	customerOpts := a.pollOptions()
	customerOpts.Interval = a.cfg.Poll.CustomerInterval
	router := &monitor.Router{Source: a.devices, Fetcher: a.fetcher, FleetOpts: fleetOpts, CustomerOpts: customerOpts}

	dash, err := router.MonitorFor(user)
	if err != nil {
		return err
	}
	if dash.Customer != nil {
		return follow(ctx, a.out, dash.Customer, a.renderCustomer(user))
	}
	return follow(ctx, a.out, dash.Fleet, presentation.RenderFleet)
}

func (a *app) fleet(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("fleet", pflag.ContinueOnError)
	live := fs.Bool("watch", false, "keep polling until interrupted")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, err := a.sessions.RequireUser()
	if err != nil {
		return err
	}

	if !*live {
		listing, err := a.fetcher.Fetch(ctx, user)
		if err != nil {
			return err
		}
		fmt.Fprint(a.out, presentation.RenderFleet(listing))
		return nil
	}

	opts := a.pollOptions()
	opts.Interval = a.cfg.Poll.FleetInterval
	return follow(ctx, a.out, monitor.NewFleetMonitor(a.fetcher, user, opts), presentation.RenderFleet)
}

func (a *app) watch(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("watch", pflag.ContinueOnError)
	push := fs.Bool("push", false, "receive status over MQTT instead of polling")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return appErrors.NewAppError("VALIDATION_ERROR", "Usage: watch <mac> [--push]", appErrors.ErrInvalidInput)
	}
	if _, err := a.sessions.RequireUser(); err != nil {
		return err
	}
	mac := fs.Arg(0)

	if *push {
		return a.watchPush(ctx, mac)
	}
	opts := a.pollOptions()
	opts.Interval = a.cfg.Poll.DeviceInterval
	return follow(ctx, a.out, monitor.NewDeviceMonitor(a.devices, mac, opts), presentation.RenderDeviceCard)
}

func (a *app) watchPush(ctx context.Context, mac string) error {
	if a.cfg.MQTT.Broker == "" {
		return appErrors.NewAppError("VALIDATION_ERROR", "MQTT_BROKER is required for --push", appErrors.ErrInvalidInput)
	}
	mqttCfg := pkgmqtt.DefaultConfig(a.cfg.MQTT.Broker, a.cfg.MQTT.ClientID)
	mqttCfg.Username = a.cfg.MQTT.Username
	mqttCfg.Password = a.cfg.MQTT.Password
	client := pkgmqtt.NewClient(mqttCfg, logger.Named("mqtt"))
	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Disconnect()

	updates, err := stream.NewMQTTSource(client, a.cfg.MQTT.TopicPrefix, byte(a.cfg.MQTT.QoS)).Watch(ctx, mac)
	if err != nil {
		return err
	}
	for snap := range updates {
		fmt.Fprint(a.out, presentation.RenderDeviceCard(snap))
	}
	return nil
}

func (a *app) customer(ctx context.Context) error {
	user, err := a.sessions.RequireUser()
	if err != nil {
		return err
	}
	if !user.IsCustomer() {
		return appErrors.NewAppError("FORBIDDEN", "Only customer accounts have a building dashboard", appErrors.ErrInvalidInput)
	}
	opts := a.pollOptions()
	opts.Interval = a.cfg.Poll.CustomerInterval
	return follow(ctx, a.out, monitor.NewCustomerMonitor(a.devices, user, opts), a.renderCustomer(user))
}

func (a *app) renderCustomer(user *userModel.User) func(*model.DeviceSnapshot) string {
	return func(d *model.DeviceSnapshot) string {
		return presentation.RenderCustomerDashboard(user.BuildingName, d)
	}
}

func (a *app) history(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
	rng := fs.String("range", string(model.RangeDay), "1d, 7d or 30d")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return appErrors.NewAppError("VALIDATION_ERROR", "Usage: history <mac> [--range 1d]", appErrors.ErrInvalidInput)
	}
	if _, err := a.sessions.RequireUser(); err != nil {
		return err
	}

	raw, err := a.devices.DeviceHistory(ctx, fs.Arg(0), model.HistoryRange(*rng))
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		_, err = a.out.Write(raw)
		return err
	}
	fmt.Fprintln(a.out, pretty.String())
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
	mac := fs.String("mac", "", "device MAC address")
	ssid := fs.String("ssid", "", "WiFi network name")
	pass := fs.String("pass", "", "WiFi password")
	company := fs.String("company", "", "company id (defaults to your own)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, err := a.sessions.RequireUser()
	if err != nil {
		return err
	}
	if !navigation.Screens(user).Allows(navigation.SetupWizard) {
		return appErrors.NewAppError("FORBIDDEN", "This account cannot register devices", appErrors.ErrInvalidInput)
	}

	w := wizard.New(user, *mac)
	if *company != "" {
		if err := w.Set(wizard.FieldCompanyID, *company); err != nil {
			return err
		}
	}
	for _, step := range []struct {
		field wizard.Field
		value string
	}{
		{wizard.FieldDeviceMAC, *mac},
		{wizard.FieldWifiSSID, *ssid},
		{wizard.FieldWifiPassword, *pass},
	} {
		if err := w.Set(step.field, step.value); err != nil {
			return err
		}
		logger.Debug("Wizard step", zap.String("step", w.Step().Title()))
		if err := w.Next(); err != nil {
			return err
		}
	}

	ack, err := w.Complete(ctx, a.devices)
	if err != nil {
		return err
	}
	form := w.Form()
	fmt.Fprintf(a.out, "Device %s registered to %s\n", form.DeviceMAC, form.CompanyID)
	if len(ack) > 0 {
		fmt.Fprintln(a.out, strings.TrimSpace(string(ack)))
	}
	return nil
}

func (a *app) passwd(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("passwd", pflag.ContinueOnError)
	current := fs.String("current", "", "current password")
	next := fs.String("new", "", "new password")
	confirm := fs.String("confirm", "", "repeat the new password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := a.account.ChangePassword(ctx, a.sessions.Current(), &userModel.ChangePasswordRequest{
		CurrentPassword: *current,
		NewPassword:     *next,
		ConfirmPassword: *confirm,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password updated")
	return nil
}

// follow runs loop until ctx is done, printing every snapshot.
func follow[T any](ctx context.Context, out io.Writer, loop *poller.Loop[T], render func(T) string) error {
	updates := loop.Subscribe()
	if err := loop.Start(ctx); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		loop.Stop()
	}()

	for snap := range updates {
		fmt.Fprintf(out, "--- %s ---\n", time.Now().Format(time.TimeOnly))
		fmt.Fprint(out, render(snap))
	}
	<-loop.Done()

	stats := loop.Stats()
	logger.Info("View closed",
		zap.Int64("ticks", stats.Ticks),
		zap.Int64("failures", stats.Failures),
		zap.Int64("skipped", stats.Skipped),
	)
	return nil
}
