package objective

import (
	"fmt"
	"strings"
)

// Selector names one of the registered reference functions.
type Selector int

const (
	SelectQuadratic Selector = iota
	SelectRastrigin
	SelectRosenbrock
)

var selectorNames = map[Selector]string{
	SelectQuadratic:  "quadratic",
	SelectRastrigin:  "rastrigin",
	SelectRosenbrock: "rosenbrock",
}

// Selectors lists every registered selector in declaration order.
func Selectors() []Selector {
	return []Selector{SelectQuadratic, SelectRastrigin, SelectRosenbrock}
}

func (s Selector) String() string {
	if name, ok := selectorNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Selector(%d)", int(s))
}

// MarshalText encodes the selector by name so JSON payloads stay readable.
func (s Selector) MarshalText() ([]byte, error) {
	if _, ok := selectorNames[s]; !ok {
		return nil, &UnknownSelectorError{Name: s.String()}
	}
	return []byte(s.String()), nil
}

func (s *Selector) UnmarshalText(text []byte) error {
	parsed, err := ParseSelector(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSelector looks a selector up by name, ignoring case and surrounding space.
func ParseSelector(name string) (Selector, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for sel, n := range selectorNames {
		if n == key {
			return sel, nil
		}
	}
	return 0, &UnknownSelectorError{Name: name}
}

// New builds the 2-D reference instance for a selector. The quadratic is the
// identity bowl x² + y².
func New(s Selector) (Function, error) {
	switch s {
	case SelectQuadratic:
		return NewIdentityQuadratic(2), nil
	case SelectRastrigin:
		return NewRastrigin(2), nil
	case SelectRosenbrock:
		return NewRosenbrock(), nil
	default:
		return nil, &UnknownSelectorError{Name: s.String()}
	}
}

// ErrUnknownSelector matches any *UnknownSelectorError.
var ErrUnknownSelector = &UnknownSelectorError{}

// UnknownSelectorError is returned for a function name or value that is not registered.
type UnknownSelectorError struct {
	Name string
}

func (e *UnknownSelectorError) Error() string {
	if e.Name != "" {
		return "unknown function selector: " + e.Name
	}
	return "unknown function selector"
}

func (e *UnknownSelectorError) Is(target error) bool {
	_, ok := target.(*UnknownSelectorError)
	return ok
}
