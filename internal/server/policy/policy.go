// Package policy decides whether a user may perform an action. Every check
// is a pure function: nil allows, a wrapped sentinel error denies.
package policy

import (
	"fmt"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
)

func CanCreateProperty(user *models.User) error {
	if !user.Capability.CanSell() {
		return fmt.Errorf("%w: only sellers can list properties", common.ErrorForbidden)
	}
	return nil
}

func CanManageBuyerProfile(user *models.User) error {
	if !user.Capability.CanBuy() {
		return fmt.Errorf("%w: user is not a buyer", common.ErrorForbidden)
	}
	return nil
}

func CanManageSellerProfile(user *models.User) error {
	if !user.Capability.CanSell() {
		return fmt.Errorf("%w: user is not a seller", common.ErrorForbidden)
	}
	return nil
}

// CanMutateProperty covers edits, photo uploads and main photo selection.
func CanMutateProperty(user *models.User, property *models.Property) error {
	if user.ID != property.OwnerID {
		return fmt.Errorf("%w: not the owner of property %d", common.ErrorForbidden, property.ID)
	}
	return nil
}

func CanViewPropertyTransactions(user *models.User, property *models.Property) error {
	if user.ID != property.OwnerID {
		return fmt.Errorf("%w: not the owner of property %d", common.ErrorForbidden, property.ID)
	}
	return nil
}

// CanCreateProfile rejects a second profile of the same role.
func CanCreateProfile(exists bool) error {
	if exists {
		return fmt.Errorf("%w: profile already exists", common.ErrorConflict)
	}
	return nil
}

func CanUpdateProfile(exists bool) error {
	if !exists {
		return fmt.Errorf("%w: profile does not exist", common.ErrorNotFound)
	}
	return nil
}
