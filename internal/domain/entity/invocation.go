package entity

// InvocationRequest is a single contract call. Built per call, never shared.
type InvocationRequest struct {
	ContractAddress string
	Method          string
	Args            []ScValue
}

// InvocationResult is the outcome of one InvocationRequest.
//
//	Ok(value):                 Err == nil, TxHash == ""
//	OkWithReceipt(value, hash): Err == nil, TxHash != ""
//	Err(reason):               Err != nil (TxHash is kept when the transaction was submitted)
type InvocationResult struct {
	Value  ScValue
	TxHash string
	Err    error
}

// Ok builds a successful read result.
func Ok(v ScValue) InvocationResult {
	return InvocationResult{Value: v}
}

// OkWithReceipt builds a successful submitted result.
func OkWithReceipt(v ScValue, hash string) InvocationResult {
	return InvocationResult{Value: v, TxHash: hash}
}

// Failed builds an error result.
func Failed(err error) InvocationResult {
	return InvocationResult{Err: err}
}

// IsOk reports whether the invocation succeeded.
func (r InvocationResult) IsOk() bool {
	return r.Err == nil
}

// HasReceipt reports whether the result carries a confirmed transaction hash.
func (r InvocationResult) HasReceipt() bool {
	return r.Err == nil && r.TxHash != ""
}
