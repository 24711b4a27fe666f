package clock

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gowebpki/jcs"
)

// EncodeStamp renders the clock as base64 of its canonical JSON form, so
// equal clocks always produce the same stamp.
func EncodeStamp(vc VectorClock) (string, error) {
	raw, err := json.Marshal(vc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal clock: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize clock: %w", err)
	}
	return base64.StdEncoding.EncodeToString(canonical), nil
}

// DecodeStamp parses a stamp produced by EncodeStamp.
func DecodeStamp(stamp string) (VectorClock, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(stamp))
	if err != nil {
		return VectorClock{}, fmt.Errorf("invalid stamp encoding: %w", err)
	}
	var vc VectorClock
	if err := json.Unmarshal(raw, &vc); err != nil {
		return VectorClock{}, err
	}
	return vc, nil
}
