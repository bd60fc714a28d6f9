//go:generate mockgen -source=monitor.go -destination=mocks/fleet_source_mock.go -package=mocks

// Package monitor builds the poll loops behind each screen: one device, a
// fleet list, and a customer's own device.
package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"nexus-hvac-client/internal/device/model"
	"nexus-hvac-client/internal/logger"
	"nexus-hvac-client/internal/poller"
	userModel "nexus-hvac-client/internal/user/model"
	appErrors "nexus-hvac-client/pkg/errors"
)

const (
	DeviceInterval   = time.Second
	FleetInterval    = 5 * time.Second
	CustomerInterval = 5 * time.Second
)

// FleetSource is the read side of the device API.
type FleetSource interface {
	FleetDevices(ctx context.Context, companyID string) (model.FleetListing, error)
	DeviceStatus(ctx context.Context, deviceID string) (*model.DeviceSnapshot, error)
	CustomerDevice(ctx context.Context, customerID string) (*model.DeviceSnapshot, error)
}

// FleetFetcher turns a user into the fleet listing they may see. Admins get
// every configured scope, fetched one after another and concatenated.
type FleetFetcher struct {
	source      FleetSource
	adminScopes []string
	log         *zap.Logger
}

func NewFleetFetcher(source FleetSource, adminScopes []string) *FleetFetcher {
	return &FleetFetcher{
		source:      source,
		adminScopes: append([]string(nil), adminScopes...),
		log:         logger.Named("monitor"),
	}
}

// Scopes lists the company ids fetched for user, in fetch order.
func (f *FleetFetcher) Scopes(user *userModel.User) ([]string, error) {
	if user == nil {
		return nil, appErrors.ErrNoSession
	}
	switch {
	case user.IsCustomer():
		return nil, appErrors.ErrNotFleetRole
	case user.Role.Unscoped():
		return f.adminScopes, nil
	case strings.TrimSpace(user.CompanyID) == "":
		return nil, fmt.Errorf("user %q has no company: %w", user.ID, appErrors.ErrInvalidInput)
	}
	return []string{user.CompanyID}, nil
}

// Fetch fails as a whole if any scope fails; no partial listing is returned.
func (f *FleetFetcher) Fetch(ctx context.Context, user *userModel.User) (model.FleetListing, error) {
	scopes, err := f.Scopes(user)
	if err != nil {
		return nil, err
	}

	listing := model.FleetListing{}
	for _, scope := range scopes {
		part, err := f.source.FleetDevices(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("fleet %s: %w", scope, err)
		}
		listing = append(listing, part...)
	}

	if len(scopes) > 1 {
		if dups := listing.DuplicateMACs(); len(dups) > 0 {
			f.log.Warn("Devices share a mac across companies", zap.Strings("macs", dups))
		}
	}
	return listing, nil
}

func withDefaults(opts poller.Options, name string, interval time.Duration) poller.Options {
	if opts.Name == "" {
		opts.Name = name
	}
	if opts.Interval <= 0 {
		opts.Interval = interval
	}
	return opts
}

func NewDeviceMonitor(source FleetSource, mac string, opts poller.Options) *poller.Loop[*model.DeviceSnapshot] {
	return poller.New(func(ctx context.Context) (*model.DeviceSnapshot, error) {
		return source.DeviceStatus(ctx, mac)
	}, withDefaults(opts, "device", DeviceInterval))
}

func NewFleetMonitor(fetcher *FleetFetcher, user *userModel.User, opts poller.Options) *poller.Loop[model.FleetListing] {
	opts = withDefaults(opts, "fleet", FleetInterval)
	m := opts.Metrics
	name := opts.Name
	return poller.New(func(ctx context.Context) (model.FleetListing, error) {
		listing, err := fetcher.Fetch(ctx, user)
		if err == nil {
			m.SetListingSize(name, len(listing))
		}
		return listing, err
	}, opts)
}

func NewCustomerMonitor(source FleetSource, user *userModel.User, opts poller.Options) *poller.Loop[*model.DeviceSnapshot] {
	return poller.New(func(ctx context.Context) (*model.DeviceSnapshot, error) {
		if user == nil {
			return nil, appErrors.ErrNoSession
		}
		return source.CustomerDevice(ctx, user.ID)
	}, withDefaults(opts, "customer", CustomerInterval))
}

// Dashboard is the loop behind a user's home screen. Exactly one of Fleet
// and Customer is set.
type Dashboard struct {
	Fleet    *poller.Loop[model.FleetListing]
	Customer *poller.Loop[*model.DeviceSnapshot]
}

func (d Dashboard) Start(ctx context.Context) error {
	if d.Customer != nil {
		return d.Customer.Start(ctx)
	}
	return d.Fleet.Start(ctx)
}

func (d Dashboard) Stop() {
	if d.Customer != nil {
		d.Customer.Stop()
	}
	if d.Fleet != nil {
		d.Fleet.Stop()
	}
}

// Router picks the dashboard loop by role.
type Router struct {
	Source       FleetSource
	Fetcher      *FleetFetcher
	FleetOpts    poller.Options
	CustomerOpts poller.Options
}

func (r *Router) MonitorFor(user *userModel.User) (Dashboard, error) {
	if user == nil {
		return Dashboard{}, appErrors.ErrNoSession
	}
	if user.IsCustomer() {
		return Dashboard{Customer: NewCustomerMonitor(r.Source, user, r.CustomerOpts)}, nil
	}
	if _, err := r.Fetcher.Scopes(user); err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Fleet: NewFleetMonitor(r.Fetcher, user, r.FleetOpts)}, nil
}
