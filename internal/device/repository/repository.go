package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"nexus-hvac-client/internal/apiclient"
	"nexus-hvac-client/internal/device/model"
	appErrors "nexus-hvac-client/pkg/errors"
)

// DeviceRepository reads and registers devices through the backend API.
type DeviceRepository struct {
	client *apiclient.Client
}

func NewDeviceRepository(client *apiclient.Client) *DeviceRepository {
	return &DeviceRepository{client: client}
}

func (r *DeviceRepository) DeviceStatus(ctx context.Context, deviceID string) (*model.DeviceSnapshot, error) {
	if deviceID == "" {
		return nil, appErrors.ErrInvalidInput
	}

	var snapshot model.DeviceSnapshot
	err := r.client.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/v1/devices/" + url.PathEscape(deviceID) + "/status",
		Route:  "/api/v1/devices/:id/status",
	}, &snapshot)
	if err != nil {
		return nil, err
	}
	if snapshot.MAC == "" {
		snapshot.MAC = deviceID
	}
	return &snapshot, nil
}

// DeviceHistory returns the raw series; its shape is backend defined.
func (r *DeviceRepository) DeviceHistory(ctx context.Context, deviceID string, rng model.HistoryRange) (json.RawMessage, error) {
	if deviceID == "" {
		return nil, appErrors.ErrInvalidInput
	}
	if rng == "" {
		rng = model.RangeDay
	}

	var raw json.RawMessage
	err := r.client.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/v1/devices/" + url.PathEscape(deviceID) + "/history",
		Route:  "/api/v1/devices/:id/history",
		Query:  url.Values{"range": {string(rng)}},
	}, &raw)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (r *DeviceRepository) FleetDevices(ctx context.Context, companyID string) (model.FleetListing, error) {
	if companyID == "" {
		return nil, appErrors.ErrInvalidInput
	}

	var listing model.FleetListing
	err := r.client.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/v1/devices/fleet/" + url.PathEscape(companyID),
		Route:  "/api/v1/devices/fleet/:companyId",
	}, &listing)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		listing = model.FleetListing{}
	}
	return listing, nil
}

func (r *DeviceRepository) CustomerDevice(ctx context.Context, customerID string) (*model.DeviceSnapshot, error) {
	if customerID == "" {
		return nil, appErrors.ErrInvalidInput
	}

	var snapshot model.DeviceSnapshot
	err := r.client.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/customer/" + url.PathEscape(customerID) + "/device",
		Route:  "/api/customer/:customerId/device",
	}, &snapshot)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// RegisterDevice hands Wi-Fi credentials and the owning company to the
// provisioning endpoint. A JSON acknowledgement is returned as received;
// a plain-text one comes back as a JSON string.
func (r *DeviceRepository) RegisterDevice(ctx context.Context, ssid, password, companyID string) (json.RawMessage, error) {
	var body []byte
	err := r.client.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/save",
		Query: url.Values{
			"ssid": {ssid},
			"pass": {password},
			"cid":  {companyID},
		},
	}, &body)
	if err != nil {
		return nil, err
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || json.Valid(body) {
		return json.RawMessage(body), nil
	}
	ack, err := json.Marshal(string(body))
	if err != nil {
		return nil, err
	}
	return ack, nil
}
