package request

import (
	"stay-ledger/internal/usecase/commands"
)

type CreateListingRequest struct {
	PricePerNightMinor int64  `json:"price_per_night_minor" binding:"required"`
	Name               string `json:"name" binding:"required,max=200"`
	Location           string `json:"location" binding:"required,max=200"`
	Description        string `json:"description" binding:"required,max=4000"`
	ImageURI           string `json:"image_uri" binding:"required,max=2048"`
}

func (r *CreateListingRequest) ToInput() commands.CreateListingInput {
	return commands.CreateListingInput{
		PricePerNightMinor: r.PricePerNightMinor,
		Name:               r.Name,
		Location:           r.Location,
		Description:        r.Description,
		ImageURI:           r.ImageURI,
	}
}

type UpdatePriceRequest struct {
	PricePerNightMinor int64 `json:"price_per_night_minor" binding:"required"`
}
