package models

import (
	"fmt"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
)

// Page is an offset window over an ordered listing.
type Page struct {
	Skip  int
	Limit int
	// LimitSet marks Limit as given by the caller, so an explicit zero
	// selects no rows instead of falling back to the default.
	LimitSet bool
}

// Normalize fills in the default limit when none was given. Negative values
// are rejected.
func (p Page) Normalize() (Page, error) {
	if p.Skip < 0 || p.Limit < 0 {
		return p, fmt.Errorf("%w: skip and limit must be non-negative", common.ErrorInvalidInput)
	}
	if p.Limit == 0 && !p.LimitSet {
		p.Limit = common.DefaultPageLimit
	}
	return p, nil
}
