// Package memo implements the canonical encoding of datacenter
// feasibility records into Solana memo instruction data.
//
// Encoding is a pure function of (Request, timestamp): the same request
// stamped at the same instant always produces byte-identical memo
// content, regardless of which custody path later signs the
// transaction that carries it.
package memo

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/facebookgo/clock"
)

const (
	// RecordType tags every memo written by this subsystem.
	RecordType = "dc-record"

	// RecordVersion is bumped whenever the record layout changes.
	RecordVersion = 1

	// MaxBytes is the memo program's per-instruction data limit.
	// Anything larger is rejected locally, before any network call.
	MaxBytes = 566
)

// ErrTooLarge is returned when the encoded record exceeds MaxBytes.
var ErrTooLarge = errors.New("memo payload too large")

// ErrMissingLocationID is returned when a request has no location_id.
var ErrMissingLocationID = errors.New("location_id is required")

// Request describes the feasibility/inventory event to anchor on
// chain. Optional fields are pointers so that absence survives a
// round trip instead of collapsing to zero values.
type Request struct {
	LocationID string   `json:"location_id"`
	Name       *string  `json:"name,omitempty"`
	CapacityMW *float64 `json:"capacity_mw,omitempty"`
	Grade      *string  `json:"grade,omitempty"`
	ReportHash *string  `json:"report_hash,omitempty"`
}

// Validate checks the request fields that can be rejected without
// touching the network.
func (r Request) Validate() error {
	if r.LocationID == "" {
		return ErrMissingLocationID
	}
	return nil
}

// Record is the canonical structure embedded as transaction data.
type Record struct {
	Type       string   `json:"type"`
	Version    int      `json:"version"`
	LocationID string   `json:"location_id"`
	Name       *string  `json:"name,omitempty"`
	CapacityMW *float64 `json:"capacity_mw,omitempty"`
	Grade      *string  `json:"grade,omitempty"`
	Timestamp  string   `json:"timestamp"`
	ReportHash string   `json:"report_hash"`
}

// Encoder stamps requests into records. The clock is injectable so the
// timestamp field is testable; everything else is deterministic.
type Encoder struct {
	clk clock.Clock
}

// NewEncoder returns an encoder on the wall clock.
func NewEncoder() *Encoder {
	return NewEncoderWithClock(clock.New())
}

// NewEncoderWithClock returns an encoder on the given clock.
func NewEncoderWithClock(clk clock.Clock) *Encoder {
	return &Encoder{clk: clk}
}

// Encode builds the canonical record for req and serializes it to
// memo bytes. It fails with ErrTooLarge when the serialized record
// exceeds MaxBytes and with ErrMissingLocationID when the request is
// incomplete; neither failure involves a network call.
func (e *Encoder) Encode(req Request) (Record, []byte, error) {
	if err := req.Validate(); err != nil {
		return Record{}, nil, err
	}

	rec := Record{
		Type:       RecordType,
		Version:    RecordVersion,
		LocationID: req.LocationID,
		Name:       req.Name,
		CapacityMW: req.CapacityMW,
		Grade:      req.Grade,
		Timestamp:  e.clk.Now().UTC().Format(time.RFC3339),
		ReportHash: reportHash(req),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, nil, fmt.Errorf("marshal memo record: %w", err)
	}
	if len(data) > MaxBytes {
		return Record{}, nil, fmt.Errorf("%w: %d bytes, max %d", ErrTooLarge, len(data), MaxBytes)
	}
	return rec, data, nil
}

// Decode parses memo bytes back into a Record. Fields absent from the
// input stay absent in the result.
func Decode(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("unmarshal memo record: %w", err)
	}
	if rec.Type != RecordType {
		return Record{}, fmt.Errorf("unexpected record type %q", rec.Type)
	}
	return rec, nil
}

// reportHash returns the caller-supplied content digest, or a
// deterministic fallback: hex of the first 8 bytes of SHA-256 over the
// canonical request JSON.
func reportHash(req Request) string {
	if req.ReportHash != nil && *req.ReportHash != "" {
		return *req.ReportHash
	}
	data, err := json.Marshal(req)
	if err != nil {
		data = []byte(req.LocationID)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
