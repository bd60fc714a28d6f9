package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"nexus-hvac-client/internal/config"
	"nexus-hvac-client/internal/device/model"
	"nexus-hvac-client/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	fleet   *Fleet
	metrics *metrics.SimulatorMetrics
	router  *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	customers, err := NewCustomers(DefaultCustomers(), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewCustomers: %v", err)
	}
	reg := prometheus.NewRegistry()
	m := metrics.NewSimulatorMetrics(reg)
	fleet := NewFleet(DefaultDevices(), 1)
	cfg := &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"*"}}}

	router := SetupRouter(RouterDeps{
		Config:   cfg,
		Handler:  NewHandler(fleet, customers, m, zap.NewNop()),
		Metrics:  m,
		Gatherer: reg,
		Logger:   zap.NewNop(),
	})
	return &testEnv{fleet: fleet, metrics: m, router: router}
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestFleetListingKeepsRegistrationOrder(t *testing.T) {
	f := NewFleet(DefaultDevices(), 1)

	listing := f.Listing("HVAC_A")
	if len(listing) != 2 || listing[0].MAC != "RPI_SIMULATOR_001" || listing[1].MAC != "RPI_SIMULATOR_002" {
		t.Fatalf("unexpected listing: %+v", listing)
	}
	if listing[0].HealthScore != 0 || listing[0].UIMessage != "" {
		t.Error("listing should carry identity fields only")
	}
	if got := f.Listing("HVAC_Z"); got == nil || len(got) != 0 {
		t.Errorf("unknown company should give an empty listing, got %#v", got)
	}
}

func TestOfflineDeviceStatus(t *testing.T) {
	f := NewFleet(DefaultDevices(), 1)

	snap, ok := f.Status("RPI_SIMULATOR_004")
	if !ok {
		t.Fatal("device not found")
	}
	if snap.HealthState != model.HealthOffline || snap.LiveTemp != 0 || snap.HealthScore != 0 {
		t.Errorf("unexpected offline snapshot: %+v", snap)
	}
	if snap.Sensors.CompressorState {
		t.Error("offline compressor reported running")
	}
}

func TestHealthyDeviceStatus(t *testing.T) {
	f := NewFleet(DefaultDevices(), 1)

	snap, _ := f.Status("RPI_SIMULATOR_001")
	if snap.HealthState != model.HealthOK {
		t.Errorf("health state = %s, want OK", snap.HealthState)
	}
	if snap.HealthScore.Float() <= 80 {
		t.Errorf("health score = %v, want > 80", snap.HealthScore)
	}
	if snap.UIMessage == "" {
		t.Error("missing ui message")
	}
}

func TestHistoryWindow(t *testing.T) {
	f := NewFleet([]DeviceSeed{{MAC: "M1", CompanyID: "C", TempC: 22, CurrentAmp: 5, NoiseDB: 40}}, 1)

	now := time.Now()
	f.now = func() time.Time { return now }
	for i := 0; i < 3; i++ {
		now = now.Add(12 * time.Hour)
		f.Drift()
	}

	day, err := f.History("M1", model.RangeDay)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(day) != 3 {
		t.Errorf("day samples = %d, want 3", len(day))
	}
	week, _ := f.History("M1", model.RangeWeek)
	if len(week) != 4 {
		t.Errorf("week samples = %d, want 4", len(week))
	}

	if _, err := f.History("M1", "1y"); err == nil {
		t.Error("expected unsupported range error")
	}
	if _, err := f.History("nope", model.RangeDay); !errors.Is(err, errDeviceNotFound) {
		t.Errorf("err = %v, want errDeviceNotFound", err)
	}
}

func TestRegisterAddsDevice(t *testing.T) {
	f := NewFleet(DefaultDevices(), 1)

	mac := f.Register("Office", "HVAC_A")
	if !strings.HasPrefix(mac, "SIM_") || len(mac) != 16 {
		t.Errorf("unexpected mac %q", mac)
	}
	listing := f.Listing("HVAC_A")
	if len(listing) != 3 || listing[2].MAC != mac {
		t.Errorf("registered device not appended: %+v", listing)
	}
	if f.Counts()["HVAC_A"] != 3 {
		t.Errorf("counts = %v", f.Counts())
	}
}

func TestCustomersAuthenticate(t *testing.T) {
	c, err := NewCustomers(DefaultCustomers(), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewCustomers: %v", err)
	}

	u, ok := c.Authenticate(" Dana@TowerOne.example ", "tower123")
	if !ok {
		t.Fatal("expected login to succeed")
	}
	if u.AssignedDevice != "RPI_SIMULATOR_001" || u.BuildingName != "Tower One" {
		t.Errorf("unexpected user: %+v", u)
	}

	if _, ok := c.Authenticate("dana@towerone.example", "wrong"); ok {
		t.Error("wrong password accepted")
	}
	if _, err := c.AssignedDevice("missing"); !errors.Is(err, errCustomerNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestCustomerLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/customer/login", `{"email":"dana@towerone.example","password":"tower123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var body struct {
		Success bool `json:"success"`
		User    struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.User.ID != "cust-001" || body.User.Role != "customer" {
		t.Errorf("unexpected body: %s", w.Body)
	}

	w = env.do(http.MethodPost, "/api/customer/login", `{"email":"dana@towerone.example","password":"nope"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"success":false`) {
		t.Errorf("body = %s", w.Body)
	}
	if got := testutil.ToFloat64(env.metrics.LoginsRejected); got != 1 {
		t.Errorf("rejected logins = %v", got)
	}

	if w = env.do(http.MethodPost, "/api/customer/login", `{"email":`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", w.Code)
	}
}

func TestDeviceEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/devices/RPI_SIMULATOR_003/status", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"health_score"`) {
		t.Errorf("status: %d %s", w.Code, w.Body)
	}
	if w = env.do(http.MethodGet, "/api/v1/devices/nope/status", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown device status = %d", w.Code)
	}

	w = env.do(http.MethodGet, "/api/v1/devices/fleet/HVAC_B", "")
	var listing []fleetItem
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing) != 2 || listing[1].HealthState != model.HealthOffline {
		t.Errorf("unexpected listing: %+v", listing)
	}

	if w = env.do(http.MethodGet, "/api/v1/devices/RPI_SIMULATOR_001/history?range=7d", ""); w.Code != http.StatusOK {
		t.Errorf("history status = %d", w.Code)
	}
	if w = env.do(http.MethodGet, "/api/v1/devices/RPI_SIMULATOR_001/history?range=1y", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad range status = %d", w.Code)
	}

	if w = env.do(http.MethodGet, "/api/customer/cust-002/device", ""); !strings.Contains(w.Body.String(), "RPI_SIMULATOR_003") {
		t.Errorf("customer device: %d %s", w.Code, w.Body)
	}
	if w = env.do(http.MethodGet, "/api/customer/ghost/device", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown customer status = %d", w.Code)
	}
}

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(http.MethodGet, "/save?ssid=Office", ""); w.Code != http.StatusBadRequest {
		t.Errorf("missing params status = %d", w.Code)
	}

	w := env.do(http.MethodGet, "/save?ssid=Office&pass=p%40ss&cid=HVAC_B", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var resp registerResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "saved" || resp.CompanyID != "HVAC_B" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if got := testutil.ToFloat64(env.metrics.Registrations); got != 1 {
		t.Errorf("registrations = %v", got)
	}
	if got := testutil.ToFloat64(env.metrics.Devices.WithLabelValues("HVAC_B")); got != 3 {
		t.Errorf("HVAC_B devices gauge = %v", got)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
	w := env.do(http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "nexus_hvac_simulator_requests_total") {
		t.Errorf("metrics: %d", w.Code)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	fail   bool
}

func (p *recordingPublisher) Publish(topic string, qos byte, retained bool, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	var snap model.DeviceSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return err
	}
	p.topics = append(p.topics, topic)
	return nil
}

func TestRunnerPublishesEveryDevice(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewSimulatorMetrics(reg)
	pub := &recordingPublisher{}
	r := NewRunner(NewFleet(DefaultDevices(), 1), pub, "test/devices", 0, m, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Run(ctx, time.Hour)

	if len(pub.topics) != 4 || pub.topics[0] != "test/devices/RPI_SIMULATOR_001/status" {
		t.Errorf("topics = %v", pub.topics)
	}
	if got := testutil.ToFloat64(m.MQTTPublishes.WithLabelValues("ok")); got != 4 {
		t.Errorf("ok publishes = %v", got)
	}
	if got := testutil.ToFloat64(m.Devices.WithLabelValues("HVAC_A")); got != 2 {
		t.Errorf("HVAC_A devices = %v", got)
	}
}

func TestRunnerCountsPublishFailures(t *testing.T) {
	m := metrics.NewSimulatorMetrics(prometheus.NewRegistry())
	r := NewRunner(NewFleet(DefaultDevices(), 1), &recordingPublisher{fail: true}, "", 0, m, zap.NewNop())

	r.publish()

	if got := testutil.ToFloat64(m.MQTTPublishes.WithLabelValues("error")); got != 4 {
		t.Errorf("error publishes = %v", got)
	}
}
