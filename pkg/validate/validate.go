package validate

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"nexus-hvac-client/internal/user/model"
)

var (
	validate *validator.Validate
	macRe    = regexp.MustCompile(`^[A-Za-z0-9_:\-]{3,64}$`)
)

func init() {
	validate = validator.New()

	err := validate.RegisterValidation("user_role", validateUserRole)
	if err != nil {
		return
	}
	err = validate.RegisterValidation("device_mac", validateDeviceMAC)
	if err != nil {
		return
	}
}

func Struct(s interface{}) error {
	return validate.Struct(s)
}

// Var validates a single value against a tag expression.
func Var(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

func validateUserRole(fl validator.FieldLevel) bool {
	return model.Role(fl.Field().String()).Valid()
}

func validateDeviceMAC(fl validator.FieldLevel) bool {
	return IsDeviceMAC(fl.Field().String())
}

// IsDeviceMAC accepts hardware MACs as well as simulator identifiers such as
// RPI_SIMULATOR_001.
func IsDeviceMAC(mac string) bool {
	return macRe.MatchString(mac)
}
