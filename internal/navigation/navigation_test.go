package navigation

import (
	"reflect"
	"testing"

	"nexus-hvac-client/internal/user/model"
)

func TestScreensByRole(t *testing.T) {
	staff := Graph{DeviceList, Monitoring, SetupWizard, ScanDevice, Profile, Notifications, Reports}
	cases := []struct {
		name string
		user *model.User
		want Graph
	}{
		{"logged out", nil, Graph{Login}},
		{"customer", &model.User{ID: "c", Role: model.RoleCustomer}, Graph{CustomerDashboard, Profile, Notifications, Reports}},
		{"admin", &model.User{ID: "a", Role: model.RoleAdmin}, staff},
		{"technician", &model.User{ID: "t", Role: model.RoleTechnician, CompanyID: "HVAC_A"}, staff},
		{"manager", &model.User{ID: "m", Role: model.RoleManager, CompanyID: "HVAC_A"}, staff},
		{"unknown role", &model.User{ID: "x", Role: "root"}, Graph{Login}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Screens(tc.user); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Screens = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGraphHomeAndAllows(t *testing.T) {
	customer := Screens(&model.User{ID: "c", Role: model.RoleCustomer})
	if customer.Home() != CustomerDashboard {
		t.Errorf("home = %s", customer.Home())
	}
	if customer.Allows(SetupWizard) || customer.Allows(DeviceList) {
		t.Error("customer can reach staff screens")
	}
	if !customer.Allows(Reports) {
		t.Error("customer cannot reach reports")
	}

	if Screens(nil).Home() != Login || Screens(nil).Allows(Profile) {
		t.Error("logged out graph")
	}
	if (Graph{}).Home() != Login {
		t.Error("empty graph home")
	}
}
