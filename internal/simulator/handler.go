package simulator

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nexus-hvac-client/internal/device/model"
	"nexus-hvac-client/internal/metrics"
	userModel "nexus-hvac-client/internal/user/model"
	"nexus-hvac-client/pkg/utils"
	"nexus-hvac-client/pkg/validate"
)

type fleetItem struct {
	MAC         string            `json:"mac"`
	CompanyID   string            `json:"companyId"`
	LiveTemp    float64           `json:"liveTemp"`
	HealthState model.HealthState `json:"healthState"`
}

type registerResponse struct {
	Status    string `json:"status"`
	MAC       string `json:"mac"`
	CompanyID string `json:"companyId"`
}

type Handler struct {
	fleet     *Fleet
	customers *Customers
	metrics   *metrics.SimulatorMetrics
	log       *zap.Logger
}

func NewHandler(fleet *Fleet, customers *Customers, m *metrics.SimulatorMetrics, log *zap.Logger) *Handler {
	return &Handler{fleet: fleet, customers: customers, metrics: m, log: log}
}

func (h *Handler) CustomerLogin(c *gin.Context) {
	var req userModel.CustomerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Email and password are required")
		return
	}
	if err := validate.Struct(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, ok := h.customers.Authenticate(req.Email, req.Password)
	if !ok {
		if h.metrics != nil {
			h.metrics.LoginsRejected.Inc()
		}
		utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	c.JSON(http.StatusOK, userModel.CustomerLoginResponse{Success: true, User: user})
}

func (h *Handler) DeviceStatus(c *gin.Context) {
	snap, ok := h.fleet.Status(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusNotFound, "Device not found")
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) DeviceHistory(c *gin.Context) {
	samples, err := h.fleet.History(c.Param("id"), model.HistoryRange(c.DefaultQuery("range", string(model.RangeDay))))
	switch {
	case errors.Is(err, errDeviceNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "Device not found")
		return
	case err != nil:
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, samples)
}

func (h *Handler) FleetDevices(c *gin.Context) {
	listing := h.fleet.Listing(c.Param("companyId"))
	out := make([]fleetItem, 0, len(listing))
	for _, d := range listing {
		out = append(out, fleetItem{
			MAC:         d.MAC,
			CompanyID:   d.CompanyID,
			LiveTemp:    d.LiveTemp.Float(),
			HealthState: d.HealthState,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CustomerDevice(c *gin.Context) {
	mac, err := h.customers.AssignedDevice(c.Param("customerId"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Customer not found")
		return
	}
	snap, ok := h.fleet.Status(mac)
	if !ok {
		utils.ErrorResponse(c, http.StatusNotFound, "Device not found")
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Register mirrors the device's provisioning endpoint: credentials arrive
// as query parameters on a GET.
func (h *Handler) Register(c *gin.Context) {
	ssid := strings.TrimSpace(c.Query("ssid"))
	pass := c.Query("pass")
	cid := strings.TrimSpace(c.Query("cid"))
	if ssid == "" || pass == "" || cid == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "ssid, pass and cid are required")
		return
	}

	mac := h.fleet.Register(ssid, cid)
	if h.metrics != nil {
		h.metrics.Registrations.Inc()
		h.metrics.Devices.WithLabelValues(cid).Set(float64(h.fleet.Counts()[cid]))
	}
	h.log.Info("Device registered", zap.String("mac", mac), zap.String("company_id", cid))

	c.JSON(http.StatusOK, registerResponse{Status: "saved", MAC: mac, CompanyID: cid})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
