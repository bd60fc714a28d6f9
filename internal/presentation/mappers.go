// Package presentation turns device snapshots into display values. Every
// function is total: unknown input maps to a neutral value, never an error.
package presentation

import (
	"strconv"

	"nexus-hvac-client/internal/device/model"
)

const (
	ColorHealthy  = "#22c55e"
	ColorWarning  = "#eab308"
	ColorCritical = "#ef4444"
	ColorOffline  = "#64748b"
	ColorNeutral  = "#94a3b8"

	ColorCompressorActive = "#06b6d4"
	ColorCompressorIdle   = "#64748b"
)

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// FormatFahrenheit renders c in Fahrenheit with one decimal place.
func FormatFahrenheit(c float64) string {
	return strconv.FormatFloat(CelsiusToFahrenheit(c), 'f', 1, 64)
}

type Band int

const (
	BandCritical Band = iota
	BandWarning
	BandHealthy
)

// HealthBand buckets a 0-100 score: above 80 healthy, above 60 warning,
// critical otherwise.
func HealthBand(score float64) Band {
	switch {
	case score > 80:
		return BandHealthy
	case score > 60:
		return BandWarning
	}
	return BandCritical
}

func (b Band) String() string {
	switch b {
	case BandHealthy:
		return "healthy"
	case BandWarning:
		return "warning"
	}
	return "critical"
}

func (b Band) Color() string {
	switch b {
	case BandHealthy:
		return ColorHealthy
	case BandWarning:
		return ColorWarning
	}
	return ColorCritical
}

func (b Band) Banner() string {
	switch b {
	case BandHealthy:
		return "SYSTEM HEALTHY"
	case BandWarning:
		return "ATTENTION NEEDED"
	}
	return "SERVICE REQUIRED"
}

// Summary is the one-line status on the customer's diagnostics tile.
func (b Band) Summary() string {
	if b == BandHealthy {
		return "ALL SYSTEMS NOMINAL"
	}
	return "ATTENTION NEEDED"
}

func HealthColor(score float64) string {
	return HealthBand(score).Color()
}

var stateColors = map[model.HealthState]string{
	model.HealthOK:       ColorHealthy,
	model.HealthWarning:  ColorWarning,
	model.HealthCritical: ColorCritical,
	model.HealthOffline:  ColorOffline,
}

func HealthStateColor(state model.HealthState) string {
	if c, ok := stateColors[state]; ok {
		return c
	}
	return ColorNeutral
}

func CompressorLabel(active bool) string {
	if active {
		return "ACTIVE"
	}
	return "IDLE"
}

func CompressorColor(active bool) string {
	if active {
		return ColorCompressorActive
	}
	return ColorCompressorIdle
}

// OnlineLabel follows the fleet list: a device reporting no live
// temperature is shown as offline.
func OnlineLabel(liveTemp float64) string {
	if liveTemp > 0 {
		return "ACTIVE"
	}
	return "OFFLINE"
}
