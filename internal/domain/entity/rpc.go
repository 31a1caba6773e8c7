package entity

// Transaction statuses reported by the RPC server.
const (
	TxStatusNotFound = "NOT_FOUND"
	TxStatusSuccess  = "SUCCESS"
	TxStatusFailed   = "FAILED"

	SendStatusPending   = "PENDING"
	SendStatusDuplicate = "DUPLICATE"
	SendStatusTryAgain  = "TRY_AGAIN_LATER"
	SendStatusError     = "ERROR"
)

// HealthInfo is the getHealth response.
type HealthInfo struct {
	Status          string `json:"status"`
	LatestLedger    uint32 `json:"latestLedger"`
	OldestLedger    uint32 `json:"oldestLedger"`
	RetentionWindow uint32 `json:"ledgerRetentionWindow"`
}

// LatestLedgerInfo is the getLatestLedger response.
type LatestLedgerInfo struct {
	ID              string `json:"id"`
	ProtocolVersion uint32 `json:"protocolVersion"`
	Sequence        uint32 `json:"sequence"`
}

// LedgerAccount is the decoded account entry returned for getAccount.
type LedgerAccount struct {
	AccountID string
	Balance   int64 // stroops
	Sequence  int64
}

// SimulationOutcome is the part of simulateTransaction the gateway relies on.
type SimulationOutcome struct {
	Error           string   `json:"error,omitempty"`
	TransactionData string   `json:"transactionData"`
	MinResourceFee  int64    `json:"minResourceFee,string"`
	ReturnValueXDR  string   `json:"-"`
	AuthXDR         []string `json:"-"`
	LatestLedger    uint32   `json:"latestLedger"`
}

// SendOutcome is the sendTransaction response.
type SendOutcome struct {
	Hash           string `json:"hash"`
	Status         string `json:"status"`
	ErrorResultXDR string `json:"errorResultXdr,omitempty"`
	LatestLedger   uint32 `json:"latestLedger"`
}

// TransactionOutcome is the getTransaction response.
type TransactionOutcome struct {
	Status         string `json:"status"`
	Ledger         uint32 `json:"ledger,omitempty"`
	ResultXDR      string `json:"resultXdr,omitempty"`
	ReturnValueXDR string `json:"-"`
	LatestLedger   uint32 `json:"latestLedger"`
}
