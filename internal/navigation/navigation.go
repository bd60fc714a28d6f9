// Package navigation decides which screens a user can reach.
package navigation

import (
	"nexus-hvac-client/internal/user/model"
)

type Screen string

const (
	Login             Screen = "Login"
	CustomerDashboard Screen = "CustomerDashboard"
	DeviceList        Screen = "DeviceList"
	Monitoring        Screen = "Monitoring"
	SetupWizard       Screen = "SetupWizard"
	ScanDevice        Screen = "ScanDevice"
	Profile           Screen = "Profile"
	Notifications     Screen = "Notifications"
	Reports           Screen = "Reports"
)

// Graph is the ordered set of screens open to one user. The first screen is
// home.
type Graph []Screen

func Screens(user *model.User) Graph {
	switch {
	case user == nil:
		return Graph{Login}
	case user.IsCustomer():
		return Graph{CustomerDashboard, Profile, Notifications, Reports}
	case user.Role.Valid():
		return Graph{DeviceList, Monitoring, SetupWizard, ScanDevice, Profile, Notifications, Reports}
	}
	return Graph{Login}
}

func (g Graph) Home() Screen {
	if len(g) == 0 {
		return Login
	}
	return g[0]
}

func (g Graph) Allows(s Screen) bool {
	for _, candidate := range g {
		if candidate == s {
			return true
		}
	}
	return false
}
