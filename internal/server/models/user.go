// Package models defines the domain records persisted by the estate server
// and the input/patch structures accepted by its services.
package models

import "time"

// Capability is the set of domain roles a user may act in.
type Capability string

const (
	CapabilityBuyer  Capability = "BUYER"
	CapabilitySeller Capability = "SELLER"
	CapabilityBoth   Capability = "BOTH"
)

// Valid reports whether c is one of the known capabilities.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityBuyer, CapabilitySeller, CapabilityBoth:
		return true
	}
	return false
}

// CanBuy reports whether c includes the buyer role.
func (c Capability) CanBuy() bool { return c == CapabilityBuyer || c == CapabilityBoth }

// CanSell reports whether c includes the seller role.
func (c Capability) CanSell() bool { return c == CapabilitySeller || c == CapabilityBoth }

// User is the identity anchor. Capability never changes after creation.
type User struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	WalletAddress string     `json:"wallet_address"`
	FullName      string     `json:"full_name"`
	PasswordHash  string     `json:"-"`
	IsActive      bool       `json:"is_active"`
	Capability    Capability `json:"profile_type"`
	CreatedAt     time.Time  `json:"created_at"`
}

// RegisterInput is what a new account is created from.
type RegisterInput struct {
	Email         string     `json:"email" validate:"required,email"`
	WalletAddress string     `json:"wallet_address" validate:"required"`
	FullName      string     `json:"full_name"`
	Password      string     `json:"password" validate:"required"`
	Capability    Capability `json:"profile_type" validate:"omitempty,oneof=BUYER SELLER BOTH"`
}
