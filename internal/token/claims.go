package token

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Identifier is a claim read as text. Strings and numbers are kept; any other
// JSON type leaves it empty instead of failing the whole payload.
type Identifier string

func (i *Identifier) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*i = Identifier(s)
		}
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			*i = Identifier(n.String())
		}
	}
	return nil
}

// Expiry is the exp claim in seconds since the epoch, fractions included.
// Numeric strings are read as numbers. Anything else becomes NaN, which never
// compares as being in the future.
type Expiry float64

func (e *Expiry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				*e = Expiry(f)
				return nil
			}
		}
		*e = Expiry(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*e = Expiry(math.NaN())
		return nil
	}
	*e = Expiry(f)
	return nil
}

// UnixMilli is exp*1000.
func (e Expiry) UnixMilli() float64 {
	return float64(e) * 1000
}

// Claims is the decoded token payload. Tokens issued by the backend carry
// the account id as "id"; older ones used "userId". Claims not listed here
// are ignored.
type Claims struct {
	AccountID Identifier `json:"id"`
	UserID    Identifier `json:"userId"`
	Subject   Identifier `json:"sub"`
	Email     Identifier `json:"email"`
	ExpiresAt *Expiry    `json:"exp"`
}

// SubjectID returns the identifier used to address the remote cart.
func (c *Claims) SubjectID() (string, bool) {
	switch {
	case c.AccountID != "":
		return string(c.AccountID), true
	case c.UserID != "":
		return string(c.UserID), true
	case c.Subject != "":
		return string(c.Subject), true
	}
	return "", false
}
