package restapi

import (
	"net/http"

	"soroban_portfolio/internal/app/port"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PortfolioHandler serves portfolio and token endpoints.
type PortfolioHandler struct {
	portfolioService port.PortfolioService
	priceService     port.TokenPriceService
}

// NewPortfolioHandler creates a new instance of PortfolioHandler. ps may be nil.
func NewPortfolioHandler(svc port.PortfolioService, ps port.TokenPriceService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: svc,
		priceService:     ps,
	}
}

// GetCurrentPortfolio returns the last published snapshot.
func (h *PortfolioHandler) GetCurrentPortfolio(c *gin.Context) {
	snap := h.portfolioService.Current()
	if snap == nil {
		c.JSON(http.StatusNotFound, APIResponse{StatusMessage: "No portfolio loaded yet."})
		return
	}
	ok(c, snap, "Portfolio retrieved successfully.")
}

// LoadPortfolio aggregates the balances of the address in the path.
func (h *PortfolioHandler) LoadPortfolio(c *gin.Context) {
	snap, err := h.portfolioService.LoadPortfolio(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err, "Failed to load portfolio.")
		return
	}
	msg := "Portfolio loaded successfully."
	if snap.Incomplete {
		msg = "Portfolio loaded. Some token balances could not be read."
	}
	ok(c, snap, msg)
}

// RefreshPortfolio reloads the current portfolio.
func (h *PortfolioHandler) RefreshPortfolio(c *gin.Context) {
	snap, err := h.portfolioService.RefreshPortfolio(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to refresh portfolio.")
		return
	}
	if snap == nil {
		c.JSON(http.StatusNotFound, APIResponse{StatusMessage: "No portfolio loaded yet."})
		return
	}
	ok(c, snap, "Portfolio refreshed successfully.")
}

type updateBalanceRequest struct {
	Balance string `json:"balance" binding:"required"`
}

// UpdateTokenBalance overrides one token balance in the current snapshot.
func (h *PortfolioHandler) UpdateTokenBalance(c *gin.Context) {
	var req updateBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	balance, err := decimal.NewFromString(req.Balance)
	if err != nil {
		badRequest(c, "balance must be a decimal number")
		return
	}
	snap, err := h.portfolioService.UpdateTokenBalance(c.Param("symbol"), balance)
	if err != nil {
		respondError(c, err, "Failed to update token balance.")
		return
	}
	ok(c, snap, "Token balance updated.")
}

// TokenBalance reads one live token balance.
func (h *PortfolioHandler) TokenBalance(c *gin.Context) {
	bal, err := h.portfolioService.TokenBalance(c.Request.Context(), c.Param("address"), c.Param("symbol"))
	if err != nil {
		respondError(c, err, "Failed to read token balance.")
		return
	}
	ok(c, gin.H{"symbol": c.Param("symbol"), "address": c.Param("address"), "balance": bal}, "Balance retrieved.")
}

// Allowance reads the remaining allowance of ?spender= over ?owner='s tokens.
func (h *PortfolioHandler) Allowance(c *gin.Context) {
	owner, spender := c.Query("owner"), c.Query("spender")
	if owner == "" || spender == "" {
		badRequest(c, "owner and spender query parameters are required")
		return
	}
	amount, err := h.portfolioService.Allowance(c.Request.Context(), c.Param("symbol"), owner, spender)
	if err != nil {
		respondError(c, err, "Failed to read allowance.")
		return
	}
	ok(c, gin.H{"symbol": c.Param("symbol"), "owner": owner, "spender": spender, "allowance": amount}, "Allowance retrieved.")
}

// TokenMetadata returns what the token contract reports about itself.
func (h *PortfolioHandler) TokenMetadata(c *gin.Context) {
	meta, err := h.portfolioService.TokenMetadata(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		respondError(c, err, "Failed to read token metadata.")
		return
	}
	ok(c, meta, "Metadata retrieved.")
}

type transferRequest struct {
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type approveRequest struct {
	Owner   string `json:"owner" binding:"required"`
	Spender string `json:"spender" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

type receipt struct {
	TxHash      string `json:"txHash"`
	ReturnValue string `json:"returnValue"`
}

// Transfer submits a token transfer and waits for confirmation.
func (h *PortfolioHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		badRequest(c, "amount must be a decimal number")
		return
	}
	res, err := h.portfolioService.Transfer(c.Request.Context(), c.Param("symbol"), req.From, req.To, amount)
	if err != nil {
		respondError(c, err, "Transfer failed.")
		return
	}
	ok(c, receipt{TxHash: res.TxHash, ReturnValue: res.Value.String()}, "Transfer confirmed.")
}

// Approve submits a token approval and waits for confirmation.
func (h *PortfolioHandler) Approve(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		badRequest(c, "amount must be a decimal number")
		return
	}
	res, err := h.portfolioService.Approve(c.Request.Context(), c.Param("symbol"), req.Owner, req.Spender, amount)
	if err != nil {
		respondError(c, err, "Approve failed.")
		return
	}
	ok(c, receipt{TxHash: res.TxHash, ReturnValue: res.Value.String()}, "Approve confirmed.")
}

// Prices returns the known unit prices keyed by token symbol.
func (h *PortfolioHandler) Prices(c *gin.Context) {
	if h.priceService == nil {
		ok(c, map[string]decimal.Decimal{}, "Price service disabled.")
		return
	}
	ok(c, h.priceService.AllPrices(), "Prices retrieved.")
}
