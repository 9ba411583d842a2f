//go:build unit || e2e

package builder

import (
	"time"

	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	reqdto "stay-ledger/internal/handler/dto/request"
)

type ListingBuilder struct {
	ID          listing.ID
	Owner       string
	Price       int64
	Name        string
	Location    string
	Description string
	ImageURI    string
	Now         time.Time
}

func NewListingBuilder() *ListingBuilder {
	return &ListingBuilder{
		ID:          1,
		Owner:       "host-1",
		Price:       10000,
		Name:        "Harbour loft",
		Location:    "Lisbon",
		Description: "Two rooms above the old fish market.",
		ImageURI:    "https://img.example.com/loft.jpg",
		Now:         time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (l *ListingBuilder) With(mutate func(*ListingBuilder)) *ListingBuilder {
	mutate(l)
	return l
}

// Build methods
func (l *ListingBuilder) BuildDomain() (*listing.Listing, error) {
	owner, err := party.NewIdentity(l.Owner)
	if err != nil {
		return nil, err
	}
	price, err := money.New(l.Price)
	if err != nil {
		return nil, err
	}
	meta, err := listing.NewMetadata(l.Name, l.Location, l.Description, l.ImageURI)
	if err != nil {
		return nil, err
	}
	return listing.NewListing(l.ID, owner, price, meta, l.Now)
}

func (l *ListingBuilder) BuildCreateRequestDTO() reqdto.CreateListingRequest {
	return reqdto.CreateListingRequest{
		PricePerNightMinor: l.Price,
		Name:               l.Name,
		Location:           l.Location,
		Description:        l.Description,
		ImageURI:           l.ImageURI,
	}
}
