package records

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Shadman554/telegram-bot/internal/store"
)

// IDGenerator assigns numeric record ids on create. Two policies exist in the
// wild for this data set; they are incompatible with each other, so a
// deployment must pick one and stay with it.
type IDGenerator interface {
	Next(ctx context.Context, col store.Collection) (int64, error)
}

// MaxScan scans the collection for the highest numeric id and returns the
// next one. Documents without a numeric id field are skipped.
type MaxScan struct{}

// Next implements IDGenerator.
func (MaxScan) Next(ctx context.Context, col store.Collection) (int64, error) {
	docs, err := col.Stream(ctx)
	if err != nil {
		return 0, fmt.Errorf("records: id scan: %w", err)
	}
	var max int64
	for _, doc := range docs {
		if id, ok := numericID(doc.Data["id"]); ok && id > max {
			max = id
		}
	}
	return max + 1, nil
}

// Timestamp derives the id from the current instant in unix milliseconds.
type Timestamp struct {
	Now func() time.Time
}

// Next implements IDGenerator.
func (g Timestamp) Next(context.Context, store.Collection) (int64, error) {
	now := g.Now
	if now == nil {
		now = time.Now
	}
	return now().UnixMilli(), nil
}

// numericID coerces the id field into int64 across the representations the
// store can return (JSON numbers decode as float64).
func numericID(v any) (int64, bool) {
	switch id := v.(type) {
	case int64:
		return id, true
	case int:
		return int64(id), true
	case float64:
		return int64(id), true
	case json.Number:
		n, err := id.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
