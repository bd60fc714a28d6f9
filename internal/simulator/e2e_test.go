package simulator_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"nexus-hvac-client/internal/apiclient"
	"nexus-hvac-client/internal/auth"
	"nexus-hvac-client/internal/config"
	"nexus-hvac-client/internal/device/repository"
	"nexus-hvac-client/internal/kv"
	"nexus-hvac-client/internal/metrics"
	"nexus-hvac-client/internal/monitor"
	"nexus-hvac-client/internal/session"
	"nexus-hvac-client/internal/simulator"
	userModel "nexus-hvac-client/internal/user/model"
	userRepository "nexus-hvac-client/internal/user/repository"
	"nexus-hvac-client/internal/wizard"
	appErrors "nexus-hvac-client/pkg/errors"
)

func startSimulator(t *testing.T) *apiclient.Client {
	t.Helper()
	customers, err := simulator.NewCustomers(simulator.DefaultCustomers(), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewCustomers: %v", err)
	}
	m := metrics.NewSimulatorMetrics(prometheus.NewRegistry())
	router := simulator.SetupRouter(simulator.RouterDeps{
		Config:  &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"*"}}},
		Handler: simulator.NewHandler(simulator.NewFleet(simulator.DefaultDevices(), 7), customers, m, zap.NewNop()),
		Metrics: m,
		Logger:  zap.NewNop(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	return client
}

func TestCustomerSessionAgainstSimulator(t *testing.T) {
	client := startSimulator(t)
	ctx := context.Background()

	store, err := kv.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	resolver := auth.NewResolver(auth.NewRemoteProvider(userRepository.NewUserRepository(client)), nil)
	mgr := session.NewManager(session.NewStore(store, session.DefaultKey), resolver)

	if _, err := mgr.Login(ctx, "dana@towerone.example", "wrong"); !errors.Is(err, appErrors.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	user, err := mgr.Login(ctx, "dana@towerone.example", "tower123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Role != userModel.RoleCustomer || user.AssignedDevice != "RPI_SIMULATOR_001" {
		t.Fatalf("unexpected user: %+v", user)
	}

	devices := repository.NewDeviceRepository(client)
	snap, err := devices.CustomerDevice(ctx, user.ID)
	if err != nil {
		t.Fatalf("CustomerDevice: %v", err)
	}
	if snap.MAC != "RPI_SIMULATOR_001" || snap.HealthScore.Float() <= 0 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	restored := session.NewManager(session.NewStore(store, session.DefaultKey), resolver)
	got, err := restored.Init(ctx)
	if err != nil || got == nil || got.ID != user.ID {
		t.Errorf("restored session = %+v, %v", got, err)
	}
}

func TestAdminFleetAgainstSimulator(t *testing.T) {
	client := startSimulator(t)
	ctx := context.Background()
	devices := repository.NewDeviceRepository(client)
	fetcher := monitor.NewFleetFetcher(devices, []string{"HVAC_A", "HVAC_B"})

	admin := &userModel.User{ID: "admin", Name: "Administrator", Role: userModel.RoleAdmin}
	listing, err := fetcher.Fetch(ctx, admin)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := []string{"RPI_SIMULATOR_001", "RPI_SIMULATOR_002", "RPI_SIMULATOR_003", "RPI_SIMULATOR_004"}
	if len(listing) != len(want) {
		t.Fatalf("listing has %d devices, want %d", len(listing), len(want))
	}
	for i, mac := range want {
		if listing[i].MAC != mac {
			t.Errorf("listing[%d] = %s, want %s", i, listing[i].MAC, mac)
		}
	}

	tech := &userModel.User{ID: "HVAC_B", Name: "HVAC_B", Role: userModel.RoleTechnician, CompanyID: "HVAC_B"}
	w := wizard.New(tech, "AA:BB:CC:DD:EE:FF")
	if err := w.Next(); err != nil {
		t.Fatalf("step 1: %v", err)
	}
	_ = w.Set(wizard.FieldWifiSSID, "Plant Room")
	if err := w.Next(); err != nil {
		t.Fatalf("step 2: %v", err)
	}
	_ = w.Set(wizard.FieldWifiPassword, "s3cret pass")
	if err := w.Next(); err != nil {
		t.Fatalf("step 3: %v", err)
	}
	if _, err := w.Complete(ctx, devices); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	scoped, err := fetcher.Fetch(ctx, tech)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(scoped) != 3 {
		t.Errorf("HVAC_B listing has %d devices after registration, want 3", len(scoped))
	}
}
