package model

// RegistrationRequest is what the setup wizard sends to /save.
type RegistrationRequest struct {
	DeviceMAC    string `json:"device_mac" validate:"required,device_mac"`
	WifiSSID     string `json:"ssid" validate:"required,max=32"`
	WifiPassword string `json:"pass" validate:"required,max=63"`
	CompanyID    string `json:"cid" validate:"required"`
}

type HistoryRange string

const (
	RangeDay   HistoryRange = "1d"
	RangeWeek  HistoryRange = "7d"
	RangeMonth HistoryRange = "30d"
)
