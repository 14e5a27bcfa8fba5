package store

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/kisy/appmole/model"
)

// Store persists cumulative traffic checkpoints. Load on an empty store
// returns a zero Checkpoint and no error.
type Store interface {
	Load(ctx context.Context) (model.Checkpoint, error)
	Save(ctx context.Context, cp model.Checkpoint) error
	Close() error
}

// ParseCount decodes a stored byte count. Counts are normally decimal
// strings; numbers written by older versions are accepted too.
func ParseCount(v any) (uint64, error) {
	if s, ok := v.(string); ok {
		if n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64); err == nil {
			return n, nil
		}
	}
	return cast.ToUint64E(v)
}

// ParseTimestamp decodes fractional Unix seconds. Zero and garbage yield
// the zero time.
func ParseTimestamp(v any) time.Time {
	ts, err := cast.ToFloat64E(v)
	if err != nil || ts <= 0 {
		return time.Time{}
	}
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9))
}

// FormatTimestamp is the inverse of ParseTimestamp.
func FormatTimestamp(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / 1e9
}
