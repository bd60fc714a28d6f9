package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nexus-hvac-client/internal/apiclient"
	"nexus-hvac-client/internal/user/model"
)

func TestCustomerLogin(t *testing.T) {
	var body model.CustomerLoginRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/customer/login" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"success":true,"user":{"id":"c1","name":"Ana","role":"customer","buildingName":"Tower 1","assignedDevice":"m1","email":"ana@x.io"}}`))
	}))
	defer srv.Close()

	c, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	resp, err := NewUserRepository(c).CustomerLogin(context.Background(), "ana@x.io", "pw")
	if err != nil {
		t.Fatalf("CustomerLogin: %v", err)
	}

	if body.Email != "ana@x.io" || body.Password != "pw" {
		t.Errorf("request body = %+v", body)
	}
	if !resp.Success || resp.User == nil || resp.User.Role != model.RoleCustomer || resp.User.AssignedDevice != "m1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}
