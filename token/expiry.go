package token

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// durationCutoff separates the two numeric forms an expiry can arrive in.
// Values below it are a lifetime in seconds, values at or above it are Unix
// epoch seconds (1e9 seconds is roughly 31 years, 2001-09-09 as an epoch).
const durationCutoff = 1e9

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.UnixDate,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// Expiry is an absolute expiry instant. On the wire it is always Unix epoch
// seconds; on input it accepts timestamps, epoch seconds and lifetimes.
type Expiry struct {
	t time.Time
}

// At returns an expiry at the given instant.
func At(t time.Time) Expiry {
	if t.IsZero() {
		return Expiry{}
	}
	return Expiry{t: t.Truncate(time.Second)}
}

// In returns an expiry d from now. A negative d yields an expiry in the past.
func In(d time.Duration) Expiry {
	return At(NowTimeFunc().Add(d))
}

// Unix returns an expiry at the given epoch seconds.
func Unix(sec int64) Expiry {
	return At(time.Unix(sec, 0))
}

// Time returns the expiry instant. It is the zero time when absent.
func (e Expiry) Time() time.Time {
	return e.t
}

// IsZero reports whether the expiry is absent.
func (e Expiry) IsZero() bool {
	return e.t.IsZero()
}

// Until returns the time left before expiry, negative once it has passed.
func (e Expiry) Until() time.Duration {
	return e.t.Sub(NowTimeFunc())
}

func (e Expiry) String() string {
	if e.IsZero() {
		return ""
	}
	return e.t.UTC().Format(time.RFC3339)
}

// MarshalJSON writes epoch seconds, or null when absent.
func (e Expiry) MarshalJSON() ([]byte, error) {
	if e.IsZero() {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, e.t.Unix(), 10), nil
}

// UnmarshalJSON accepts a number, a string or null.
func (e *Expiry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*e = Expiry{}
		return nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("expiry: %w", err)
	}
	parsed, err := ParseExpiry(v)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// ParseExpiry normalizes the shapes an expiry is seen in across providers and
// older cookies: time.Time, time.Duration, numbers (lifetime or epoch, see
// durationCutoff), numeric strings and formatted timestamps. nil and empty
// strings give an absent expiry.
func ParseExpiry(v any) (Expiry, error) {
	switch x := v.(type) {
	case nil:
		return Expiry{}, nil
	case Expiry:
		return x, nil
	case time.Time:
		return At(x), nil
	case *time.Time:
		if x == nil {
			return Expiry{}, nil
		}
		return At(*x), nil
	case time.Duration:
		return In(x), nil
	case int:
		return fromNumber(float64(x))
	case int64:
		return fromNumber(float64(x))
	case float64:
		return fromNumber(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Expiry{}, fmt.Errorf("expiry %q: %w", x.String(), err)
		}
		return fromNumber(f)
	case string:
		return parseString(x)
	default:
		return Expiry{}, fmt.Errorf("expiry: unsupported type %T", v)
	}
}

func fromNumber(f float64) (Expiry, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Expiry{}, fmt.Errorf("expiry: not a finite number")
	}
	if math.Abs(f) < durationCutoff {
		return In(time.Duration(f * float64(time.Second))), nil
	}
	// Millisecond epochs show up from JavaScript clients.
	if f >= durationCutoff*1000 {
		f /= 1000
	}
	return Unix(int64(f)), nil
}

func parseString(s string) (Expiry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Expiry{}, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromNumber(f)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return At(t), nil
		}
	}
	// JavaScript Date.toString appends a zone name in parentheses.
	if i := strings.Index(s, " ("); i > 0 {
		return parseString(s[:i])
	}
	return Expiry{}, fmt.Errorf("expiry: unrecognised timestamp %q", s)
}
