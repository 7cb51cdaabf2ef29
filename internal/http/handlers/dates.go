package handlers

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidDate = errors.New("dates must be RFC 3339 timestamps or YYYY-MM-DD")

// dateLayouts are tried in order. Zoneless values are read as UTC, which is
// how browsers send <input type="date"> and datetime-local fields.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.DateOnly,
}

// Date is a request timestamp that also accepts plain calendar dates.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return ErrInvalidDate
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			d.Time = t.UTC()
			return nil
		}
	}

	return ErrInvalidDate
}

// timePtr is nil when the field was left out.
func (d *Date) timePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
