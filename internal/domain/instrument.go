package domain

import "time"

// Instrument is lot-size metadata for one tradable symbol. The sizer uses
// QtyStep to truncate computed quantities to what the exchange accepts.
type Instrument struct {
	Symbol    string
	BaseCoin  string
	QuoteCoin string
	QtyStep   float64
	MinQty    float64
	UpdatedAt time.Time
}
