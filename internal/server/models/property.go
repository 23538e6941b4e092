package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyBTC  Currency = "BTC"
	CurrencyETH  Currency = "ETH"
	CurrencyUSDC Currency = "USDC"
)

// PaymentStatus is the availability of a listing. It only moves forward:
// AVAILABLE -> PENDING -> COMPLETED.
type PaymentStatus string

const (
	PaymentAvailable PaymentStatus = "AVAILABLE"
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
)

// MaxPhotos is the total number of photos a listing may carry.
const MaxPhotos = 10

// PhotoList is an ordered list of photo URLs stored as a JSONB array.
type PhotoList []string

func (p PhotoList) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(p))
}

func (p *PhotoList) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*p = PhotoList{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("photos: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	if out == nil {
		out = []string{}
	}
	*p = out
	return nil
}

// Contains reports whether url is one of the photos.
func (p PhotoList) Contains(url string) bool {
	for _, u := range p {
		if u == url {
			return true
		}
	}
	return false
}

type Property struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Currency       Currency        `json:"currency"`
	Location       string          `json:"location"`
	Bedrooms       int             `json:"bedrooms"`
	Bathrooms      int             `json:"bathrooms"`
	Area           decimal.Decimal `json:"area"`
	OwnerID        int64           `json:"owner_id"`
	Photos         PhotoList       `json:"photos"`
	MainPhoto      *string         `json:"main_photo"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	PaymentAddress *string         `json:"payment_address"`
	LastUpdated    time.Time       `json:"last_updated"`
}

// PropertyInput holds the attributes of a new listing.
type PropertyInput struct {
	Title          string          `json:"title" validate:"required"`
	Description    string          `json:"description" validate:"required"`
	Price          decimal.Decimal `json:"price" validate:"decimal_gt0"`
	Currency       Currency        `json:"currency" validate:"required,oneof=BTC ETH USDC"`
	Location       string          `json:"location" validate:"required"`
	Bedrooms       int             `json:"bedrooms" validate:"gte=0"`
	Bathrooms      int             `json:"bathrooms" validate:"gte=0"`
	Area           decimal.Decimal `json:"area" validate:"decimal_gt0"`
	PaymentAddress *string         `json:"payment_address"`
}

// PropertyPatch is a partial listing edit. Payment status is deliberately
// absent: it changes only through the transaction lifecycle.
type PropertyPatch struct {
	Title          *string          `json:"title" validate:"omitnil,min=1"`
	Description    *string          `json:"description" validate:"omitnil,min=1"`
	Price          *decimal.Decimal `json:"price" validate:"omitnil,decimal_gt0"`
	Currency       *Currency        `json:"currency" validate:"omitnil,oneof=BTC ETH USDC"`
	Location       *string          `json:"location" validate:"omitnil,min=1"`
	Bedrooms       *int             `json:"bedrooms" validate:"omitnil,gte=0"`
	Bathrooms      *int             `json:"bathrooms" validate:"omitnil,gte=0"`
	Area           *decimal.Decimal `json:"area" validate:"omitnil,decimal_gt0"`
	PaymentAddress *string          `json:"payment_address"`
}

// Empty reports whether the patch changes nothing.
func (p PropertyPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && p.Currency == nil &&
		p.Location == nil && p.Bedrooms == nil && p.Bathrooms == nil && p.Area == nil &&
		p.PaymentAddress == nil
}

// SearchFilter narrows a listing search. Every field is optional and all
// present fields must match. An empty Query applies no text filter.
type SearchFilter struct {
	Query    string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Bedrooms *int
	Location string
	Currency *Currency
}

// PhotoUpload is one file handed to the listing service for attaching.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
