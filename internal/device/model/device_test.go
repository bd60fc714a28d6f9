package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNumberAcceptsStringsAndNumbers(t *testing.T) {
	payload := `[
		{"mac":"A1","companyId":"HVAC_A","liveTemp":"22.5","healthState":"OK"},
		{"mac":"A2","companyId":"HVAC_A","liveTemp":18,"healthState":"Warning"},
		{"mac":"A3","companyId":"HVAC_A","liveTemp":null,"healthState":"Offline"}
	]`

	var listing FleetListing
	if err := json.Unmarshal([]byte(payload), &listing); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []float64{22.5, 18, 0}
	for i, d := range listing {
		if d.LiveTemp.Float() != want[i] {
			t.Errorf("device %d liveTemp = %v, want %v", i, d.LiveTemp, want[i])
		}
	}
}

func TestNumberRejectsGarbage(t *testing.T) {
	var n Number
	if err := json.Unmarshal([]byte(`"warm"`), &n); err == nil {
		t.Fatal("expected error for non-numeric string")
	}
}

func TestStatusPayload(t *testing.T) {
	payload := `{"sensors":{"temp_c":21.4,"current_amp":12.3,"noise_db":41,"compressor_state":true},"health_score":87,"ui_message":"Running normally"}`

	var snap DeviceSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !snap.Sensors.CompressorState || snap.Sensors.TempC != 21.4 || snap.HealthScore != 87 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestDuplicateMACs(t *testing.T) {
	listing := FleetListing{
		{MAC: "X", CompanyID: "HVAC_A"},
		{MAC: "Y", CompanyID: "HVAC_A"},
		{MAC: "X", CompanyID: "HVAC_B"},
		{MAC: "X", CompanyID: "HVAC_C"},
	}
	if got := listing.DuplicateMACs(); !reflect.DeepEqual(got, []string{"X"}) {
		t.Fatalf("DuplicateMACs = %v", got)
	}
	if listing[0].Key() == listing[2].Key() {
		t.Fatal("keys must differ across companies")
	}
}

func TestHealthStateValid(t *testing.T) {
	for _, s := range []HealthState{HealthOK, HealthWarning, HealthCritical, HealthOffline} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if HealthState("Degraded").Valid() {
		t.Error("unknown state reported valid")
	}
}
