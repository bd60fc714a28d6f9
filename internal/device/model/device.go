package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type HealthState string

const (
	HealthOK       HealthState = "OK"
	HealthWarning  HealthState = "Warning"
	HealthCritical HealthState = "Critical"
	HealthOffline  HealthState = "Offline"
)

func (s HealthState) Valid() bool {
	switch s {
	case HealthOK, HealthWarning, HealthCritical, HealthOffline:
		return true
	}
	return false
}

// Sensors is the raw sensor block of a status read.
type Sensors struct {
	TempC           Number `json:"temp_c"`
	CurrentAmp      Number `json:"current_amp"`
	NoiseDB         Number `json:"noise_db"`
	CompressorState bool   `json:"compressor_state"`
}

// DeviceSnapshot is one point-in-time read of a device. Fleet listings fill
// the identity fields and LiveTemp; status reads fill Sensors, HealthScore
// and UIMessage.
type DeviceSnapshot struct {
	MAC         string      `json:"mac,omitempty"`
	CompanyID   string      `json:"companyId,omitempty"`
	LiveTemp    Number      `json:"liveTemp,omitempty"`
	HealthState HealthState `json:"healthState,omitempty"`
	Sensors     Sensors     `json:"sensors"`
	HealthScore Number      `json:"health_score"`
	UIMessage   string      `json:"ui_message,omitempty"`
}

// Key is the list identity of a snapshot. The backend only guarantees mac
// uniqueness within one company.
func (d DeviceSnapshot) Key() string {
	return d.CompanyID + "/" + d.MAC
}

// FleetListing keeps backend order; multi-company listings are concatenated
// company by company.
type FleetListing []DeviceSnapshot

// DuplicateMACs returns every mac reported by more than one entry, in first
// seen order.
func (l FleetListing) DuplicateMACs() []string {
	seen := make(map[string]int, len(l))
	var dups []string
	for _, d := range l {
		seen[d.MAC]++
		if seen[d.MAC] == 2 {
			dups = append(dups, d.MAC)
		}
	}
	return dups
}

// Number decodes a JSON number that some firmware revisions send as a string.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*n = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", string(data), err)
	}
	*n = Number(v)
	return nil
}

func (n Number) Float() float64 {
	return float64(n)
}
