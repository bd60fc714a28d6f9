package service

import (
	"context"
	"errors"
	"testing"

	"nexus-hvac-client/internal/user/model"
	appErrors "nexus-hvac-client/pkg/errors"
)

func TestProfile(t *testing.T) {
	s := NewAccountService()

	p, err := s.Profile(&model.User{ID: "c1", Name: "ana", Role: model.RoleCustomer, BuildingName: "Tower 1", AssignedDevice: "m1"})
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Initial != "A" || p.Role != "Customer" || p.Scope != "Tower 1" || p.DeviceOwned != "m1" {
		t.Errorf("profile = %+v", p)
	}

	p, _ = s.Profile(&model.User{ID: "HVAC_A", Name: "HVAC_A Manager", Role: model.RoleTechnician, CompanyID: "HVAC_A"})
	if p.Scope != "HVAC_A" || p.Role != "Technician" {
		t.Errorf("profile = %+v", p)
	}

	if _, err := s.Profile(nil); !errors.Is(err, appErrors.ErrNoSession) {
		t.Errorf("nil user: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	s := NewAccountService()
	u := &model.User{ID: "admin", Role: model.RoleAdmin}

	cases := []struct {
		name string
		req  model.ChangePasswordRequest
		code string
	}{
		{"ok", model.ChangePasswordRequest{CurrentPassword: "old", NewPassword: "n3wpassword", ConfirmPassword: "n3wpassword"}, ""},
		{"blank", model.ChangePasswordRequest{CurrentPassword: "old", NewPassword: "", ConfirmPassword: ""}, "VALIDATION_ERROR"},
		{"mismatch", model.ChangePasswordRequest{CurrentPassword: "old", NewPassword: "n3wpassword", ConfirmPassword: "other1234"}, "VALIDATION_ERROR"},
		{"weak", model.ChangePasswordRequest{CurrentPassword: "old", NewPassword: "short", ConfirmPassword: "short"}, "WEAK_PASSWORD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.ChangePassword(context.Background(), u, &tc.req)
			if tc.code == "" {
				if err != nil {
					t.Fatalf("ChangePassword: %v", err)
				}
				return
			}
			if appErrors.Code(err) != tc.code {
				t.Errorf("code = %q (%v), want %q", appErrors.Code(err), err, tc.code)
			}
		})
	}
}
