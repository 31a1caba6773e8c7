package restapi

import (
	"soroban_portfolio/internal/app/port"

	"github.com/gin-gonic/gin"
)

// NetworkHandler serves network and account endpoints.
type NetworkHandler struct {
	gateway  port.LedgerGateway
	networks port.NetworkDefinitionProvider
	logger   port.Logger
}

// NewNetworkHandler creates a new instance of NetworkHandler.
func NewNetworkHandler(gw port.LedgerGateway, np port.NetworkDefinitionProvider, l port.Logger) *NetworkHandler {
	return &NetworkHandler{gateway: gw, networks: np, logger: l}
}

// Status reports connectivity of the active network.
func (h *NetworkHandler) Status(c *gin.Context) {
	ok(c, h.gateway.NetworkStatus(c.Request.Context()), "Network status retrieved.")
}

// ListNetworks returns every known network definition.
func (h *NetworkHandler) ListNetworks(c *gin.Context) {
	ok(c, gin.H{
		"active":   h.gateway.ActiveNetwork().Name,
		"networks": h.networks.GetAllNetworkDefinitions(),
	}, "Networks retrieved.")
}

type switchRequest struct {
	Name string `json:"name" binding:"required"`
}

// Switch makes another known network the active one.
func (h *NetworkHandler) Switch(c *gin.Context) {
	var req switchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	def, err := h.networks.GetNetworkDefinitionByName(req.Name)
	if err != nil {
		respondError(c, err, "Unknown network.")
		return
	}
	if err := h.gateway.SwitchNetwork(def); err != nil {
		respondError(c, err, "Failed to switch network.")
		return
	}
	h.logger.Info("Active network switched", "network", def.Name)
	ok(c, def, "Network switched.")
}

// GetAccount returns the ledger view of an account.
func (h *NetworkHandler) GetAccount(c *gin.Context) {
	acc, err := h.gateway.GetAccount(c.Request.Context(), c.Param("publicKey"))
	if err != nil {
		respondError(c, err, "Failed to read account.")
		return
	}
	ok(c, acc, "Account retrieved.")
}
