// Package store persists marketplace listings and purchase receipts keyed
// by group id. Two implementations share the Store interface: a JSON file
// for single-user CLI sessions and Redis for shared deployments.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no listing matches the requested group id.
var ErrNotFound = errors.New("listing not found")

// PriceType distinguishes one-off sales from recurring access.
type PriceType string

const (
	PriceOneTime      PriceType = "one-time"
	PriceSubscription PriceType = "subscription"
)

// Listing is a published marketplace entry. Price is a base-unit string,
// never a float.
type Listing struct {
	GroupID         string    `json:"groupId"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           string    `json:"price"`
	PriceType       PriceType `json:"priceType"`
	Seller          string    `json:"seller"`
	CreatedAt       time.Time `json:"createdAt"`
	CID             string    `json:"cid,omitempty"`
	ListerAccountID string    `json:"listerAccountId,omitempty"`
}

// Purchase records a buyer's paid access to a listing group.
type Purchase struct {
	Buyer     string    `json:"buyer"`
	GroupID   string    `json:"groupId"`
	TxHash    string    `json:"txHash,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Filter narrows Listings results. Zero-value fields are ignored.
type Filter struct {
	Seller          string
	ListerAccountID string
}

// Store is the persistence surface consumed by the cmd layer.
type Store interface {
	// Listings returns matching listings, newest first.
	Listings(ctx context.Context, f Filter) ([]Listing, error)
	ListingByGroupID(ctx context.Context, groupID string) (*Listing, error)
	// LatestListing returns the most recently created listing, or
	// ErrNotFound when the store is empty.
	LatestListing(ctx context.Context) (*Listing, error)
	AppendListing(ctx context.Context, l Listing) error

	// Purchases returns the buyer's purchases, newest first.
	Purchases(ctx context.Context, buyer string) ([]Purchase, error)
	AppendPurchase(ctx context.Context, p Purchase) error
	Purchased(ctx context.Context, buyer, groupID string) (bool, error)
}

func matches(l Listing, f Filter) bool {
	if f.Seller != "" && l.Seller != f.Seller {
		return false
	}
	if f.ListerAccountID != "" && l.ListerAccountID != f.ListerAccountID {
		return false
	}
	return true
}
