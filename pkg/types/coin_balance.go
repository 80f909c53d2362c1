package types

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// CoinBalance is an integer coin amount persisted as text. The legacy store
// kept partner balances string-encoded; arithmetic always happens on the
// integer value.
type CoinBalance int64

// Value implements driver.Valuer, encoding the balance as its decimal string.
func (c CoinBalance) Value() (driver.Value, error) {
	return strconv.FormatInt(int64(c), 10), nil
}

// Scan implements sql.Scanner and accepts text, bytes, or integer columns.
func (c *CoinBalance) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = 0
		return nil
	case int64:
		*c = CoinBalance(v)
		return nil
	case string:
		return c.parse(v)
	case []byte:
		return c.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CoinBalance", src)
	}
}

func (c *CoinBalance) parse(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*c = 0
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing coin balance %q: %w", raw, err)
	}
	*c = CoinBalance(n)
	return nil
}

// Int returns the balance as a plain int64.
func (c CoinBalance) Int() int64 {
	return int64(c)
}
