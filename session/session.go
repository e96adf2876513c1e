// Package session defines the authenticated chain session the deployer is
// driven through. Implementations live in the eosapi and simulated packages.
package session

import (
	"context"
	"encoding/json"

	"github.com/celer-network/go-eosdeploy/types"
	eos "github.com/eoscanada/eos-go"
)

// Receipt is the chain acknowledgement of an accepted transaction.
type Receipt struct {
	TxID     string
	BlockNum uint32
}

// TableQuery selects rows of a contract table.
type TableQuery struct {
	Code       eos.AccountName
	Scope      string
	Table      string
	LowerBound string
	UpperBound string
	Limit      uint32
}

// Session is a single authenticated identity able to read chain state and
// submit signed transactions. Every call is one suspension point with no
// partial results.
type Session interface {
	// Actor returns the authenticated identity, false when logged out.
	Actor() (types.Identity, bool)
	Query(ctx context.Context, account eos.AccountName) (*types.AccountInfo, error)
	FetchCode(ctx context.Context, account eos.AccountName) (*types.DeployedCode, error)
	FetchInterface(ctx context.Context, account eos.AccountName) (*eos.ABI, error)
	// Submit pushes actions as one atomic transaction. Chain rejections are
	// returned as *types.ChainError wrapped with types.ErrSubmissionRejected.
	Submit(ctx context.Context, actions []*eos.Action) (*Receipt, error)
	TableRows(ctx context.Context, query TableQuery) (json.RawMessage, error)
}

// Loginer is implemented by sessions that can establish or drop an identity.
type Loginer interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
}
