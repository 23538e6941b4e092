package models

import "github.com/shopspring/decimal"

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

type BuyerProfile struct {
	ID                int64            `json:"id"`
	UserID            int64            `json:"user_id"`
	PreferredLocation *string          `json:"preferred_location"`
	MaxBudget         *decimal.Decimal `json:"max_budget"`
}

// BuyerProfilePatch carries only the fields the caller supplied; nil
// pointers leave the stored value as is.
type BuyerProfilePatch struct {
	PreferredLocation *string          `json:"preferred_location"`
	MaxBudget         *decimal.Decimal `json:"max_budget" validate:"omitnil,decimal_gte0"`
}

type SellerProfile struct {
	ID                 int64              `json:"id"`
	UserID             int64              `json:"user_id"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	Rating             float64            `json:"rating"`
	TotalListings      int                `json:"total_listings"`
}

type SellerProfilePatch struct {
	VerificationStatus *VerificationStatus `json:"verification_status" validate:"omitnil,oneof=PENDING VERIFIED REJECTED"`
	Rating             *float64            `json:"rating" validate:"omitnil,gte=0,lte=5"`
	TotalListings      *int                `json:"total_listings" validate:"omitnil,gte=0"`
}
