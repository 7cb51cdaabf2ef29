package handlers_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kumarshivu12/advanced-todo/internal/http/handlers"
)

func TestDateUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: `"2026-01-01"`, want: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{in: `"2026-01-01T09:30"`, want: time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)},
		{in: `"2026-01-01T09:30:15.5"`, want: time.Date(2026, 1, 1, 9, 30, 15, 5e8, time.UTC)},
		{in: `"2026-01-01T09:30:00+02:00"`, want: time.Date(2026, 1, 1, 7, 30, 0, 0, time.UTC)},
		{in: `"January 1"`, wantErr: true},
		{in: `20260101`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d handlers.Date
			err := json.Unmarshal([]byte(tt.in), &d)

			if tt.wantErr {
				if !errors.Is(err, handlers.ErrInvalidDate) {
					t.Fatalf("expected ErrInvalidDate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !d.Equal(tt.want) || d.Location() != time.UTC {
				t.Fatalf("got %v want %v", d.Time, tt.want)
			}
		})
	}
}
