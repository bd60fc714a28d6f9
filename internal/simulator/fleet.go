// Package simulator is an in-memory stand-in for the Nexus backend. It
// serves the same HTTP contract the client consumes and drifts sensor
// readings over time.
package simulator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nexus-hvac-client/internal/device/model"
)

const historyCap = 30 * 24 * 60

// Sample is one history point.
type Sample struct {
	Timestamp   time.Time `json:"timestamp"`
	TempC       float64   `json:"temp_c"`
	CurrentAmp  float64   `json:"current_amp"`
	NoiseDB     float64   `json:"noise_db"`
	HealthScore float64   `json:"health_score"`
}

type device struct {
	mac        string
	companyID  string
	online     bool
	compressor bool
	tempC      float64
	currentAmp float64
	noiseDB    float64
	ssid       string
	history    []Sample
}

func (d *device) healthScore() float64 {
	if !d.online {
		return 0
	}
	score := 100.0
	if dev := math.Abs(d.tempC - 22); dev > 2 {
		score -= (dev - 2) * 6
	}
	if d.currentAmp > 8 {
		score -= (d.currentAmp - 8) * 5
	}
	if d.noiseDB > 55 {
		score -= (d.noiseDB - 55) * 2
	}
	return math.Max(0, math.Round(score))
}

func (d *device) healthState() model.HealthState {
	if !d.online {
		return model.HealthOffline
	}
	switch score := d.healthScore(); {
	case score > 80:
		return model.HealthOK
	case score > 60:
		return model.HealthWarning
	}
	return model.HealthCritical
}

func (d *device) message() string {
	switch d.healthState() {
	case model.HealthOK:
		return "All systems operating normally"
	case model.HealthWarning:
		return "Performance degraded. Schedule an inspection."
	case model.HealthCritical:
		return "Critical condition detected. Service required."
	}
	return "Device is not reporting"
}

func (d *device) liveTemp() float64 {
	if !d.online {
		return 0
	}
	return d.tempC
}

func (d *device) snapshot() *model.DeviceSnapshot {
	return &model.DeviceSnapshot{
		MAC:         d.mac,
		CompanyID:   d.companyID,
		LiveTemp:    model.Number(round1(d.liveTemp())),
		HealthState: d.healthState(),
		Sensors: model.Sensors{
			TempC:           model.Number(round1(d.tempC)),
			CurrentAmp:      model.Number(round1(d.currentAmp)),
			NoiseDB:         model.Number(round1(d.noiseDB)),
			CompressorState: d.online && d.compressor,
		},
		HealthScore: model.Number(d.healthScore()),
		UIMessage:   d.message(),
	}
}

func (d *device) record(now time.Time) {
	d.history = append(d.history, Sample{
		Timestamp:   now,
		TempC:       round1(d.tempC),
		CurrentAmp:  round1(d.currentAmp),
		NoiseDB:     round1(d.noiseDB),
		HealthScore: d.healthScore(),
	})
	if len(d.history) > historyCap {
		d.history = d.history[len(d.history)-historyCap:]
	}
}

// DeviceSeed describes a device present at startup.
type DeviceSeed struct {
	MAC        string
	CompanyID  string
	TempC      float64
	CurrentAmp float64
	NoiseDB    float64
	Compressor bool
	Offline    bool
}

func DefaultDevices() []DeviceSeed {
	return []DeviceSeed{
		{MAC: "RPI_SIMULATOR_001", CompanyID: "HVAC_A", TempC: 22.4, CurrentAmp: 5.1, NoiseDB: 42, Compressor: true},
		{MAC: "RPI_SIMULATOR_002", CompanyID: "HVAC_A", TempC: 26.8, CurrentAmp: 7.9, NoiseDB: 51},
		{MAC: "RPI_SIMULATOR_003", CompanyID: "HVAC_B", TempC: 21.7, CurrentAmp: 4.4, NoiseDB: 39, Compressor: true},
		{MAC: "RPI_SIMULATOR_004", CompanyID: "HVAC_B", Offline: true},
	}
}

// Fleet holds every simulated device, grouped by company in insertion
// order.
type Fleet struct {
	mu        sync.RWMutex
	byMAC     map[string]*device
	companies map[string][]*device
	rng       *rand.Rand
	now       func() time.Time
}

func NewFleet(seeds []DeviceSeed, seed uint64) *Fleet {
	f := &Fleet{
		byMAC:     make(map[string]*device),
		companies: make(map[string][]*device),
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now:       time.Now,
	}
	for _, s := range seeds {
		f.add(&device{
			mac:        s.MAC,
			companyID:  s.CompanyID,
			online:     !s.Offline,
			compressor: s.Compressor,
			tempC:      s.TempC,
			currentAmp: s.CurrentAmp,
			noiseDB:    s.NoiseDB,
		})
	}
	return f
}

func (f *Fleet) add(d *device) {
	d.record(f.now())
	f.byMAC[d.mac] = d
	f.companies[d.companyID] = append(f.companies[d.companyID], d)
}

// Listing returns the company's devices in registration order. An unknown
// company yields an empty listing.
func (f *Fleet) Listing(companyID string) model.FleetListing {
	f.mu.RLock()
	defer f.mu.RUnlock()

	devices := f.companies[companyID]
	out := make(model.FleetListing, 0, len(devices))
	for _, d := range devices {
		s := d.snapshot()
		out = append(out, model.DeviceSnapshot{
			MAC:         s.MAC,
			CompanyID:   s.CompanyID,
			LiveTemp:    s.LiveTemp,
			HealthState: s.HealthState,
		})
	}
	return out
}

func (f *Fleet) Status(mac string) (*model.DeviceSnapshot, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	d, ok := f.byMAC[mac]
	if !ok {
		return nil, false
	}
	return d.snapshot(), true
}

// History returns samples newer than the range window, oldest first.
func (f *Fleet) History(mac string, rng model.HistoryRange) ([]Sample, error) {
	window, err := rangeWindow(rng)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	d, ok := f.byMAC[mac]
	if !ok {
		return nil, errDeviceNotFound
	}
	cutoff := f.now().Add(-window)
	i := sort.Search(len(d.history), func(i int) bool { return !d.history[i].Timestamp.Before(cutoff) })
	return append([]Sample(nil), d.history[i:]...), nil
}

// Register provisions a new device for companyID and returns its mac.
func (f *Fleet) Register(ssid, companyID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	mac := "SIM_" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
	f.add(&device{
		mac:        mac,
		companyID:  companyID,
		online:     true,
		tempC:      22 + f.rng.Float64()*2 - 1,
		currentAmp: 4 + f.rng.Float64()*2,
		noiseDB:    38 + f.rng.Float64()*6,
		ssid:       ssid,
	})
	return mac
}

// Counts returns the number of devices per company.
func (f *Fleet) Counts() map[string]int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]int, len(f.companies))
	for c, devices := range f.companies {
		out[c] = len(devices)
	}
	return out
}

// Snapshots returns a status snapshot of every device.
func (f *Fleet) Snapshots() []*model.DeviceSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*model.DeviceSnapshot, 0, len(f.byMAC))
	for _, d := range f.byMAC {
		out = append(out, d.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MAC < out[j].MAC })
	return out
}

// Drift nudges every online device's readings and records a history sample.
func (f *Fleet) Drift() {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()

	for _, d := range f.byMAC {
		if d.online {
			d.tempC = clamp(d.tempC+f.rng.NormFloat64()*0.3+(22-d.tempC)*0.05, 10, 40)
			d.currentAmp = clamp(d.currentAmp+f.rng.NormFloat64()*0.2, 0, 20)
			d.noiseDB = clamp(d.noiseDB+f.rng.NormFloat64()*0.8, 25, 90)
			if f.rng.Float64() < 0.1 {
				d.compressor = !d.compressor
			}
		}
		d.record(now)
	}
}

func rangeWindow(rng model.HistoryRange) (time.Duration, error) {
	switch rng {
	case "", model.RangeDay:
		return 24 * time.Hour, nil
	case model.RangeWeek:
		return 7 * 24 * time.Hour, nil
	case model.RangeMonth:
		return 30 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unsupported range %q", rng)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
