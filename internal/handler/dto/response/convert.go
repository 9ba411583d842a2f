package response

import (
	"time"

	"stay-ledger/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// Timestamps leave as unix seconds, calendar dates as YYYY-MM-DD.
var copyOption = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: time.Time{},
			DstType: int64(0),
			Fn:      func(src any) (any, error) { return src.(time.Time).Unix(), nil },
		},
		{
			SrcType: time.Time{},
			DstType: "",
			Fn:      func(src any) (any, error) { return src.(time.Time).UTC().Format(booking.DateLayout), nil },
		},
		{
			SrcType: uuid.UUID{},
			DstType: "",
			Fn:      func(src any) (any, error) { return src.(uuid.UUID).String(), nil },
		},
	},
}

// mustCopy panics on a shape mismatch between a view and its response, which
// is a programming error caught by the recovery middleware.
func mustCopy(dst, src any) {
	if err := copier.CopyWithOption(dst, src, copyOption); err != nil {
		panic(err)
	}
}
