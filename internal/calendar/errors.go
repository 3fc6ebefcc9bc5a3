package calendar

import (
	"errors"
	"fmt"
)

// DefinitionError reports a calendar definition that cannot be loaded.
// Loading must fail outright rather than substitute defaults for the
// broken parts.
type DefinitionError struct {
	Name string // calendar name, may be empty
	Err  error
}

func (e *DefinitionError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid calendar definition: %v", e.Err)
	}
	return fmt.Sprintf("invalid calendar definition %q: %v", e.Name, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// IsDefinitionError reports whether err is a *DefinitionError.
func IsDefinitionError(err error) bool {
	return errors.As(err, new(*DefinitionError))
}

// DateOutOfRangeError reports a caller-supplied date with a field outside
// the valid range for its year. The engine never clamps such input; the
// only intentional clamping is the AddMonths/AddYears day policy.
type DateOutOfRangeError struct {
	Field string // "month", "day", "hour", "minute", "second", "intercalary"
	Value int
	Min   int
	Max   int
}

func (e *DateOutOfRangeError) Error() string {
	if e.Max < e.Min {
		return fmt.Sprintf("%s does not occur in this year", e.Field)
	}
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// IsDateOutOfRange reports whether err is a *DateOutOfRangeError.
func IsDateOutOfRange(err error) bool {
	return errors.As(err, new(*DateOutOfRangeError))
}

// OverflowError reports a world-time value whose conversion would walk
// more years than the calendar's iteration budget allows.
type OverflowError struct {
	WorldTime int64
	Budget    int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("world-time %d exceeds the conversion budget of %d years", e.WorldTime, e.Budget)
}

// IsOverflow reports whether err is an *OverflowError.
func IsOverflow(err error) bool {
	return errors.As(err, new(*OverflowError))
}
