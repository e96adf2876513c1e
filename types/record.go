package types

import "time"

type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailure   Outcome = "failure"
)

// Published reports whether the outcome republishes the interface.
func (o Outcome) Published() bool {
	return o == OutcomeSuccess || o == OutcomeUnchanged
}

// DeploymentRecord journals one deployment attempt.
type DeploymentRecord struct {
	ID           string    `json:"id"`
	Account      string    `json:"account"`
	CodeHash     string    `json:"code_hash"`
	CodeSize     int       `json:"code_size"`
	ABISize      int       `json:"abi_size"`
	NetBytes     int64     `json:"net_bytes"`
	RAMPurchased int64     `json:"ram_purchased"`
	Outcome      Outcome   `json:"outcome"`
	TxID         string    `json:"tx_id,omitempty"`
	Error        string    `json:"error,omitempty"`
	Time         time.Time `json:"time"`
}
