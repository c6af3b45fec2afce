package memo

import (
	"strings"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{
			name: "all fields",
			req: Request{
				LocationID: "reykjavik-01",
				Name:       strPtr("AcmeCorp Green-1"),
				CapacityMW: f64Ptr(50),
				Grade:      strPtr("A"),
				ReportHash: strPtr("abcdef1234567890"),
			},
		},
		{
			name: "required only",
			req:  Request{LocationID: "reykjavik-01"},
		},
		{
			name: "some optionals",
			req: Request{
				LocationID: "osaka-12",
				CapacityMW: f64Ptr(7.5),
			},
		},
	}

	enc := NewEncoder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, data, err := enc.Encode(tt.req)
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)

			assert.Equal(t, rec, got)
			assert.Equal(t, RecordType, got.Type)
			assert.Equal(t, RecordVersion, got.Version)
			assert.Equal(t, tt.req.LocationID, got.LocationID)

			// Absent optional fields must stay absent, not collapse to
			// zero values.
			assert.Equal(t, tt.req.Name, got.Name)
			assert.Equal(t, tt.req.CapacityMW, got.CapacityMW)
			assert.Equal(t, tt.req.Grade, got.Grade)
		})
	}
}

func TestEncodeTimestampFromClock(t *testing.T) {
	mock := clock.NewMock()
	mock.Add(48 * time.Hour)
	enc := NewEncoderWithClock(mock)

	rec, _, err := enc.Encode(Request{LocationID: "reykjavik-01"})
	require.NoError(t, err)

	want := mock.Now().UTC().Format(time.RFC3339)
	assert.Equal(t, want, rec.Timestamp)

	// Same request, same instant => byte-identical encoding.
	_, first, err := enc.Encode(Request{LocationID: "reykjavik-01"})
	require.NoError(t, err)
	_, second, err := enc.Encode(Request{LocationID: "reykjavik-01"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncodeMissingLocationID(t *testing.T) {
	_, _, err := NewEncoder().Encode(Request{})
	assert.ErrorIs(t, err, ErrMissingLocationID)
}

func TestEncodePayloadTooLarge(t *testing.T) {
	req := Request{
		LocationID: "reykjavik-01",
		Name:       strPtr(strings.Repeat("x", MaxBytes)),
	}
	_, _, err := NewEncoder().Encode(req)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestEncodeWithinLimit(t *testing.T) {
	req := Request{
		LocationID: "iceland-reykjavik",
		Name:       strPtr("AcmeCorp Green-1"),
		CapacityMW: f64Ptr(50),
		Grade:      strPtr("A"),
		ReportHash: strPtr("abcdef1234567890"),
	}
	_, data, err := NewEncoder().Encode(req)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(data), MaxBytes)
}

func TestReportHashDefault(t *testing.T) {
	req := Request{LocationID: "test"}

	enc := NewEncoder()
	rec1, _, err := enc.Encode(req)
	require.NoError(t, err)
	rec2, _, err := enc.Encode(req)
	require.NoError(t, err)

	// The fallback digest is deterministic over the request content.
	assert.Equal(t, rec1.ReportHash, rec2.ReportHash)
	assert.Len(t, rec1.ReportHash, 16)
}

func TestReportHashPassthrough(t *testing.T) {
	rec, _, err := NewEncoder().Encode(Request{
		LocationID: "test",
		ReportHash: strPtr("deadbeefdeadbeef"),
	})
	require.NoError(t, err)
	assert.Equal(t, "deadbeefdeadbeef", rec.ReportHash)
}

func TestDecodeRejectsForeignRecords(t *testing.T) {
	_, err := Decode([]byte(`{"type":"something-else","version":1,"location_id":"x"}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}
