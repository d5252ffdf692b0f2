package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSize parses a human-readable size string into bytes.
// Supports: 100, 100B, 100K, 100KB, 100M, 100MB, 100G, 100T
// (case-insensitive). Uses powers of 1024, matching rsync behavior.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	upper := strings.ToUpper(s)
	// A trailing B is decoration: 100KB and 100K are the same size.
	trimmed := strings.TrimSuffix(upper, "B")

	multiplier := int64(1)
	numStr := trimmed
	if len(trimmed) > 0 {
		switch trimmed[len(trimmed)-1] {
		case 'K':
			multiplier = 1 << 10
			numStr = trimmed[:len(trimmed)-1]
		case 'M':
			multiplier = 1 << 20
			numStr = trimmed[:len(trimmed)-1]
		case 'G':
			multiplier = 1 << 30
			numStr = trimmed[:len(trimmed)-1]
		case 'T':
			multiplier = 1 << 40
			numStr = trimmed[:len(trimmed)-1]
		}
	}

	if numStr == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	// Try integer first, then float.
	if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
		return n * multiplier, nil
	}

	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	return int64(f * float64(multiplier)), nil
}
