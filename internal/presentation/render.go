package presentation

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"nexus-hvac-client/internal/device/model"
)

func num(n model.Number) string {
	return strconv.FormatFloat(n.Float(), 'f', -1, 64)
}

// RenderDeviceCard is the single-device monitoring view.
func RenderDeviceCard(d *model.DeviceSnapshot) string {
	if d == nil {
		return "Device offline or not found\n"
	}
	band := HealthBand(d.HealthScore.Float())

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", d.MAC, band.Banner())
	fmt.Fprintf(&b, "  Temperature   %s°F\n", FormatFahrenheit(d.Sensors.TempC.Float()))
	fmt.Fprintf(&b, "  Current Load  %sA\n", num(d.Sensors.CurrentAmp))
	fmt.Fprintf(&b, "  Compressor    %s\n", CompressorLabel(d.Sensors.CompressorState))
	fmt.Fprintf(&b, "  Noise Level   %s dB\n", num(d.Sensors.NoiseDB))
	fmt.Fprintf(&b, "  Health Score  %s%% (%s)\n", num(d.HealthScore), band)
	if d.UIMessage != "" {
		fmt.Fprintf(&b, "  %s\n", d.UIMessage)
	}
	return b.String()
}

// RenderCustomerDashboard is the customer's view of their building.
func RenderCustomerDashboard(building string, d *model.DeviceSnapshot) string {
	if d == nil {
		return "Loading your building data...\n"
	}
	band := HealthBand(d.HealthScore.Float())

	var b strings.Builder
	if building != "" {
		fmt.Fprintf(&b, "%s\n", building)
	}
	fmt.Fprintf(&b, "%s  (%s)\n", band.Banner(), band.Summary())
	fmt.Fprintf(&b, "  Current Temperature  %s°F\n", FormatFahrenheit(d.Sensors.TempC.Float()))
	fmt.Fprintf(&b, "  Current Load         %sA\n", num(d.Sensors.CurrentAmp))
	fmt.Fprintf(&b, "  Compressor           %s\n", CompressorLabel(d.Sensors.CompressorState))
	fmt.Fprintf(&b, "  Noise Level          %s dB\n", num(d.Sensors.NoiseDB))
	fmt.Fprintf(&b, "  Health Score         %s%%\n", num(d.HealthScore))
	if d.UIMessage != "" {
		fmt.Fprintf(&b, "  %s\n", d.UIMessage)
	}
	return b.String()
}

// RenderFleetRow is one line of the fleet list.
func RenderFleetRow(d model.DeviceSnapshot) string {
	return fmt.Sprintf("%s\t%s\t%s°F\t%s / %s",
		d.MAC,
		d.CompanyID,
		FormatFahrenheit(d.LiveTemp.Float()),
		OnlineLabel(d.LiveTemp.Float()),
		strings.ToUpper(string(d.HealthState)),
	)
}

func RenderFleet(listing model.FleetListing) string {
	if len(listing) == 0 {
		return "No devices registered yet\n"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MAC\tCOMPANY\tTEMP\tSTATUS")
	for _, d := range listing {
		fmt.Fprintln(w, RenderFleetRow(d))
	}
	_ = w.Flush()
	return b.String()
}
