package simulator

import (
	"errors"
	"fmt"
	"strings"

	"nexus-hvac-client/internal/user/model"
	"nexus-hvac-client/pkg/utils"
)

var (
	errDeviceNotFound   = errors.New("device not found")
	errCustomerNotFound = errors.New("customer not found")
)

type CustomerSeed struct {
	ID             string
	Name           string
	Email          string
	Password       string
	CompanyID      string
	BuildingName   string
	AssignedDevice string
}

func DefaultCustomers() []CustomerSeed {
	return []CustomerSeed{
		{
			ID:             "cust-001",
			Name:           "Dana Whitfield",
			Email:          "dana@towerone.example",
			Password:       "tower123",
			CompanyID:      "HVAC_A",
			BuildingName:   "Tower One",
			AssignedDevice: "RPI_SIMULATOR_001",
		},
		{
			ID:             "cust-002",
			Name:           "Luis Ortega",
			Email:          "luis@harborview.example",
			Password:       "harbor123",
			CompanyID:      "HVAC_B",
			BuildingName:   "Harborview Offices",
			AssignedDevice: "RPI_SIMULATOR_003",
		},
	}
}

type customer struct {
	user         model.User
	passwordHash string
}

// Customers is a read-only account table keyed by lowercased email.
type Customers struct {
	byEmail map[string]*customer
	byID    map[string]*customer
}

func NewCustomers(seeds []CustomerSeed, cost int) (*Customers, error) {
	c := &Customers{
		byEmail: make(map[string]*customer, len(seeds)),
		byID:    make(map[string]*customer, len(seeds)),
	}
	for _, s := range seeds {
		hash, err := utils.HashSecretCost(s.Password, cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", s.Email, err)
		}
		cu := &customer{
			user: model.User{
				ID:             s.ID,
				Name:           s.Name,
				Role:           model.RoleCustomer,
				CompanyID:      s.CompanyID,
				BuildingName:   s.BuildingName,
				AssignedDevice: s.AssignedDevice,
				Email:          s.Email,
			},
			passwordHash: hash,
		}
		c.byEmail[strings.ToLower(s.Email)] = cu
		c.byID[s.ID] = cu
	}
	return c, nil
}

func (c *Customers) Authenticate(email, password string) (*model.User, bool) {
	cu, ok := c.byEmail[utils.SanitizeEmail(email)]
	if !ok || !utils.CheckSecret(cu.passwordHash, password) {
		return nil, false
	}
	u := cu.user
	return &u, true
}

// AssignedDevice returns the mac bound to customerID.
func (c *Customers) AssignedDevice(customerID string) (string, error) {
	cu, ok := c.byID[customerID]
	if !ok {
		return "", errCustomerNotFound
	}
	return cu.user.AssignedDevice, nil
}
