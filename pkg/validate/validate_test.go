package validate

import "testing"

func TestDeviceMAC(t *testing.T) {
	cases := map[string]bool{
		"RPI_SIMULATOR_001": true,
		"AA:BB:CC:DD:EE:FF": true,
		"ab-12":             true,
		"":                  false,
		"x":                 false,
		"has space":         false,
		"semi;colon":        false,
	}

	for mac, want := range cases {
		if got := IsDeviceMAC(mac); got != want {
			t.Errorf("IsDeviceMAC(%q) = %v, want %v", mac, got, want)
		}
	}
}

func TestUserRoleTag(t *testing.T) {
	type req struct {
		Role string `validate:"required,user_role"`
	}

	if err := Struct(req{Role: "technician"}); err != nil {
		t.Errorf("technician rejected: %v", err)
	}
	if err := Struct(req{Role: "shipper"}); err == nil {
		t.Error("unknown role accepted")
	}
}
