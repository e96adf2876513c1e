package eosapi

import (
	"errors"
	"strings"

	"github.com/celer-network/go-eosdeploy/types"
	eos "github.com/eoscanada/eos-go"
)

// translateError converts a node error response into a *types.ChainError.
// Other errors, network faults included, are returned unchanged.
func translateError(err error) error {
	var apiErr eos.APIError
	var apiErrPtr *eos.APIError
	switch {
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	case errors.As(err, &apiErr):
	default:
		return err
	}

	chainErr := &types.ChainError{
		Status:  apiErr.Code,
		Code:    apiErr.ErrorStruct.Code,
		Name:    apiErr.ErrorStruct.Name,
		Message: apiErr.ErrorStruct.What,
	}
	var details []string
	for _, detail := range apiErr.ErrorStruct.Details {
		if detail.Message != "" {
			details = append(details, detail.Message)
		}
	}
	if len(details) > 0 {
		chainErr.Message = strings.Join(details, "; ")
	}
	if chainErr.Message == "" {
		chainErr.Message = apiErr.Message
	}
	return chainErr
}
