// Package wizard walks a user through registering a device: MAC, Wi-Fi
// network, Wi-Fi password, then review and submit.
package wizard

import (
	"context"
	"encoding/json"
	"strings"

	"nexus-hvac-client/internal/device/model"
	userModel "nexus-hvac-client/internal/user/model"
	appErrors "nexus-hvac-client/pkg/errors"
	"nexus-hvac-client/pkg/utils"
	"nexus-hvac-client/pkg/validate"
)

type Step int

const (
	StepDevice Step = iota + 1
	StepNetwork
	StepPassword
	StepReview
)

func (s Step) Title() string {
	switch s {
	case StepDevice:
		return "Device"
	case StepNetwork:
		return "WiFi Network"
	case StepPassword:
		return "WiFi Password"
	case StepReview:
		return "Review"
	}
	return ""
}

type Field string

const (
	FieldDeviceMAC    Field = "deviceMac"
	FieldWifiSSID     Field = "wifiSSID"
	FieldWifiPassword Field = "wifiPassword"
	FieldCompanyID    Field = "companyId"
)

// Registrar submits the collected settings. device/repository.DeviceRepository
// implements it.
type Registrar interface {
	RegisterDevice(ctx context.Context, ssid, password, companyID string) (json.RawMessage, error)
}

type Wizard struct {
	step Step
	form model.RegistrationRequest
}

// New starts at the first step. prefillMAC comes from a scanned code and
// may be empty.
func New(user *userModel.User, prefillMAC string) *Wizard {
	w := &Wizard{step: StepDevice}
	w.form.DeviceMAC = utils.SanitizeText(prefillMAC)
	if user != nil {
		w.form.CompanyID = user.CompanyID
	}
	return w
}

func (w *Wizard) Step() Step { return w.step }

func (w *Wizard) Form() model.RegistrationRequest { return w.form }

func (w *Wizard) Set(field Field, value string) error {
	switch field {
	case FieldDeviceMAC:
		w.form.DeviceMAC = utils.SanitizeText(value)
	case FieldWifiSSID:
		w.form.WifiSSID = utils.SanitizeText(value)
	case FieldWifiPassword:
		w.form.WifiPassword = value
	case FieldCompanyID:
		w.form.CompanyID = utils.SanitizeIdentifier(value)
	default:
		return appErrors.NewAppError("VALIDATION_ERROR", "Unknown field "+string(field), appErrors.ErrInvalidInput)
	}
	return nil
}

// Next validates the current step and moves forward. It refuses to move
// past the review step; use Complete there.
func (w *Wizard) Next() error {
	if err := w.checkStep(w.step); err != nil {
		return err
	}
	if w.step < StepReview {
		w.step++
	}
	return nil
}

func (w *Wizard) Back() {
	if w.step > StepDevice {
		w.step--
	}
}

// Complete submits the registration. Only valid on the review step.
func (w *Wizard) Complete(ctx context.Context, r Registrar) (json.RawMessage, error) {
	if w.step != StepReview {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Finish every step before registering", appErrors.ErrInvalidInput)
	}
	for s := StepDevice; s < StepReview; s++ {
		if err := w.checkStep(s); err != nil {
			return nil, err
		}
	}
	if err := validate.Struct(&w.form); err != nil {
		if strings.TrimSpace(w.form.CompanyID) == "" {
			return nil, validationError("Please select a company")
		}
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid device settings", err)
	}

	ack, err := r.RegisterDevice(ctx, w.form.WifiSSID, w.form.WifiPassword, w.form.CompanyID)
	if err != nil {
		return nil, appErrors.NewAppError("REGISTRATION_FAILED", "Failed to register device. Please try again.", err)
	}
	return ack, nil
}

func (w *Wizard) checkStep(s Step) error {
	switch s {
	case StepDevice:
		if w.form.DeviceMAC == "" {
			return validationError("Please enter device MAC address")
		}
		if !validate.IsDeviceMAC(w.form.DeviceMAC) {
			return validationError("Device MAC address is not valid")
		}
	case StepNetwork:
		if w.form.WifiSSID == "" {
			return validationError("Please enter WiFi network name")
		}
	case StepPassword:
		if strings.TrimSpace(w.form.WifiPassword) == "" {
			return validationError("Please enter WiFi password")
		}
	}
	return nil
}

func validationError(msg string) error {
	return appErrors.NewAppError("VALIDATION_ERROR", msg, appErrors.ErrInvalidInput)
}
