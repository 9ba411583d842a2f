package listing

import (
	"strconv"
	"strings"

	"stay-ledger/internal/pkg/errs"
)

const (
	MaxNameLength        = 200
	MaxLocationLength    = 200
	MaxDescriptionLength = 4000
	MaxImageURILength    = 2048
)

var ErrInvalidMetadata = errs.NewMarked("listing metadata is incomplete or too long", errs.ErrInvalidInput)

// ID is assigned by the store in increasing order and never reused.
type ID int64

func (id ID) Int64() int64   { return int64(id) }
func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, errs.Mark(errs.Newf("invalid listing id %q", s), errs.ErrInvalidInput)
	}
	return ID(v), nil
}

type Metadata struct {
	name        string
	location    string
	description string
	imageURI    string
}

func NewMetadata(name, location, description, imageURI string) (Metadata, error) {
	m := Metadata{
		name:        strings.TrimSpace(name),
		location:    strings.TrimSpace(location),
		description: strings.TrimSpace(description),
		imageURI:    strings.TrimSpace(imageURI),
	}
	fields := []struct {
		value string
		max   int
	}{
		{m.name, MaxNameLength},
		{m.location, MaxLocationLength},
		{m.description, MaxDescriptionLength},
		{m.imageURI, MaxImageURILength},
	}
	for _, f := range fields {
		if f.value == "" || len(f.value) > f.max {
			return Metadata{}, ErrInvalidMetadata
		}
	}
	return m, nil
}

func (m Metadata) Name() string        { return m.name }
func (m Metadata) Location() string    { return m.location }
func (m Metadata) Description() string { return m.description }
func (m Metadata) ImageURI() string    { return m.imageURI }
