package deployer

import (
	"github.com/celer-network/go-eosdeploy/types"
)

// DefaultCodeMultiplier matches the chain's setcode RAM charge per code byte.
// Interface bytes are charged 1:1.
const DefaultCodeMultiplier = 10

// Estimator computes storage required by a deployment.
type Estimator struct {
	codeMultiplier int64
}

func NewEstimator(codeMultiplier int64) *Estimator {
	if codeMultiplier <= 0 {
		codeMultiplier = DefaultCodeMultiplier
	}
	return &Estimator{codeMultiplier: codeMultiplier}
}

// Cost is the storage consumed by code and an encoded interface.
func (e *Estimator) Cost(code []byte, encodedABI []byte) int64 {
	return e.codeMultiplier*int64(len(code)) + int64(len(encodedABI))
}

// Estimate returns the bytes needed on top of what previous already occupies.
// previous is nil when nothing was deployed or it could not be read. The
// result is negative when the new deployment is smaller.
func (e *Estimator) Estimate(code types.Code, iface *types.Interface, previous *types.DeployedCode) int64 {
	next := e.Cost(code, iface.Encoded())
	if previous == nil {
		return next
	}
	return next - e.Cost(previous.Code, previous.ABI)
}
