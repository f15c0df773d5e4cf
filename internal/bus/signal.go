package bus

import (
	"errors"
	"fmt"
	"math"

	"github.com/godbus/dbus/v5"
)

// Defaults for arguments a sender left off the end of the signal.
const (
	defaultUrgency    = "normal"
	defaultIcon       = "dialog-information"
	defaultTimeout    = int32(5000)
	defaultRecipients = `{"type":"everyone","list":[]}`
)

// ErrMalformed is returned by ParseSignal when the title or body is unusable.
var ErrMalformed = errors.New("malformed notification signal")

// Signal is the positional argument list of a notification signal.
type Signal struct {
	Title      string
	Body       string
	Urgency    string
	Icon       string
	Timeout    int32
	Recipients string
}

// Values returns the arguments in wire order.
func (s Signal) Values() []interface{} {
	return []interface{}{s.Title, s.Body, s.Urgency, s.Icon, s.Timeout, s.Recipients}
}

// Emit sends s as one broadcast signal.
func Emit(e Emitter, s Signal) error {
	return e.Emit(Path, SignalName, s.Values()...)
}

// ParseSignal decodes a signal body. Title and body are required; missing
// trailing arguments take their defaults and arguments of an unexpected type
// are replaced by the default for their position. Only a missing or
// non-string title or body is an error.
func ParseSignal(body []interface{}) (Signal, error) {
	if len(body) < 2 {
		return Signal{}, fmt.Errorf("%w: %d arguments", ErrMalformed, len(body))
	}
	title, ok := body[0].(string)
	if !ok {
		return Signal{}, fmt.Errorf("%w: title is %T", ErrMalformed, body[0])
	}
	text, ok := body[1].(string)
	if !ok {
		return Signal{}, fmt.Errorf("%w: body is %T", ErrMalformed, body[1])
	}

	s := Signal{
		Title:      title,
		Body:       text,
		Urgency:    stringAt(body, 2, defaultUrgency),
		Icon:       stringAt(body, 3, defaultIcon),
		Timeout:    int32At(body, 4, defaultTimeout),
		Recipients: stringAt(body, 5, defaultRecipients),
	}
	return s, nil
}

func stringAt(body []interface{}, i int, def string) string {
	if i >= len(body) {
		return def
	}
	if s, ok := body[i].(string); ok {
		return s
	}
	return def
}

func int32At(body []interface{}, i int, def int32) int32 {
	if i >= len(body) {
		return def
	}
	switch v := body[i].(type) {
	case int32:
		return v
	case int16:
		return int32(v)
	case uint16:
		return int32(v)
	case byte:
		return int32(v)
	case int64:
		return clampInt32(v)
	case uint32:
		return clampInt32(int64(v))
	case uint64:
		if v > math.MaxInt32 {
			return math.MaxInt32
		}
		return int32(v)
	case int:
		return clampInt32(int64(v))
	case dbus.Variant:
		return int32At([]interface{}{v.Value()}, 0, def)
	default:
		return def
	}
}

func clampInt32(v int64) int32 {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	default:
		return int32(v)
	}
}
