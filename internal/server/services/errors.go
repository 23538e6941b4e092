// Package services holds the server's business logic: accounts and
// sessions, listings, the transaction lifecycle and profiles.
package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
)

var domainErrors = []error{
	common.ErrorNotFound,
	common.ErrorConflict,
	common.ErrorInvalidInput,
	common.ErrorInvalidState,
	common.ErrorForbidden,
	common.ErrorUnauthenticated,
	common.ErrTooManyAttempts,
}

// domainError passes known sentinel errors through and turns anything else
// into common.ErrorInternal.
func domainError(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", common.ErrorInternal, err)
}
