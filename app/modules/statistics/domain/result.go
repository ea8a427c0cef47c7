package statisticsdomain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FaultToken is the stored and wire representation of a did-not-finish result.
const FaultToken = "DNF"

// ResultKind discriminates the Result variant.
type ResultKind uint8

const (
	// KindAbsent means no value exists (insufficient attempts, or never reported).
	KindAbsent ResultKind = iota
	// KindTime is a numeric duration in seconds.
	KindTime
	// KindFault is a did-not-finish result.
	KindFault
	// KindInvalid holds a stored value that is neither numeric, fault nor empty.
	KindInvalid
)

func (k ResultKind) String() string {
	switch k {
	case KindTime:
		return "time"
	case KindFault:
		return "fault"
	case KindInvalid:
		return "invalid"
	default:
		return "absent"
	}
}

// Result is a duration-or-fault value. The zero value is absent.
type Result struct {
	kind    ResultKind
	seconds float64
	raw     string
}

// Absent returns the empty result.
func Absent() Result { return Result{} }

// Fault returns a did-not-finish result.
func Fault() Result { return Result{kind: KindFault} }

// Time returns a numeric result of the given seconds.
func Time(seconds float64) Result { return Result{kind: KindTime, seconds: seconds} }

// Invalid wraps an unusable stored value so it can be reported.
func Invalid(raw string) Result { return Result{kind: KindInvalid, raw: raw} }

func (r Result) Kind() ResultKind { return r.kind }
func (r Result) IsAbsent() bool   { return r.kind == KindAbsent }
func (r Result) IsFault() bool    { return r.kind == KindFault }
func (r Result) IsTime() bool     { return r.kind == KindTime }
func (r Result) IsInvalid() bool  { return r.kind == KindInvalid }
func (r Result) Raw() string      { return r.raw }

// Seconds returns the numeric value and whether the result is a time.
func (r Result) Seconds() (float64, bool) {
	if r.kind != KindTime {
		return 0, false
	}
	return r.seconds, true
}

// Round rounds a time half-up to two decimals. Other kinds are returned unchanged.
func (r Result) Round() Result {
	if r.kind != KindTime {
		return r
	}
	return Time(RoundSeconds(r.seconds))
}

// RoundSeconds rounds half-up to two decimals. The epsilon absorbs binary
// representation error so 10.005 rounds to 10.01.
func RoundSeconds(v float64) float64 {
	return math.Floor(v*100+0.5+1e-9) / 100
}

func (r Result) String() string {
	switch r.kind {
	case KindTime:
		return strconv.FormatFloat(r.seconds, 'f', 2, 64)
	case KindFault:
		return FaultToken
	case KindInvalid:
		return r.raw
	default:
		return ""
	}
}

// ParseResult parses a stored or client supplied value: "" is absent, "DNF"
// (any case) is a fault, anything else must be a finite non-negative number.
func ParseResult(s string) (Result, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Absent(), nil
	}
	if strings.EqualFold(s, FaultToken) {
		return Fault(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Invalid(s), fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Invalid(s), fmt.Errorf("%w: %q is out of range", ErrInvalidValue, s)
	}
	return Time(v), nil
}

// Compare orders results for winner selection: times ascending, then fault,
// then invalid, then absent. Fault is worse than every time.
func Compare(a, b Result) int {
	ra, rb := rank(a.kind), rank(b.kind)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	if a.kind == KindTime {
		switch {
		case a.seconds < b.seconds:
			return -1
		case a.seconds > b.seconds:
			return 1
		}
	}
	return 0
}

func rank(k ResultKind) int {
	switch k {
	case KindTime:
		return 0
	case KindFault:
		return 1
	case KindInvalid:
		return 2
	default:
		return 3
	}
}

// Value implements driver.Valuer. Absent is stored as NULL.
func (r Result) Value() (driver.Value, error) {
	if r.kind == KindAbsent {
		return nil, nil
	}
	return r.String(), nil
}

// Scan implements sql.Scanner. Unparseable text scans as Invalid so the
// scorer can report it instead of failing the whole load.
func (r *Result) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = Absent()
	case string:
		*r, _ = ParseResult(v)
	case []byte:
		*r, _ = ParseResult(string(v))
	case float64:
		*r = Time(v)
	case int64:
		*r = Time(float64(v))
	default:
		return fmt.Errorf("statistics: cannot scan %T into Result", src)
	}
	return nil
}

// MarshalJSON renders absent as null, a time as a number and a fault as "DNF".
func (r Result) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case KindTime:
		return []byte(strconv.FormatFloat(RoundSeconds(r.seconds), 'f', 2, 64)), nil
	case KindFault:
		return json.Marshal(FaultToken)
	case KindInvalid:
		return json.Marshal(r.raw)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, a number, or a string in ParseResult format.
func (r *Result) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*r = Absent()
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseResult(s)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	}
	parsed, err := ParseResult(trimmed)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
