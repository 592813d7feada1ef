package param

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates the value types a parameter can hold.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
)

// String returns the kind name used in listings and error messages.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// SecureLevel orders parameter access privileges. Lower values are more
// privileged; a parameter may be modified only while the store's active
// level is at or below the parameter's declared level.
type SecureLevel uint8

const (
	// LevelFactory is the most privileged level, used during provisioning.
	LevelFactory SecureLevel = iota
	// LevelService allows field-service adjustments.
	LevelService
	// LevelUser is the default operating level.
	LevelUser
)

// Definition declares one parameter of the store.
type Definition struct {
	// Name identifies the parameter; lookups are case-insensitive.
	Name string
	// Kind is the value type.
	Kind Kind
	// Level is the least privileged secure level allowed to modify the
	// parameter.
	Level SecureLevel
	// Default is the factory value, in the parameter's kind.
	Default any
	// Description is the one-line summary shown by listings.
	Description string
}

// Snapshot is a point-in-time copy of one parameter's state.
type Snapshot struct {
	Name        string
	Kind        Kind
	Level       SecureLevel
	Value       string
	Description string
	Dirty       bool
	Default     bool
}

// entry is the stored state of one parameter. Entries are immutable;
// updates swap the whole entry under the map's per-key lock.
type entry struct {
	def       Definition
	value     any
	dirty     bool
	isDefault bool
}

// formatValue renders a kind-checked value as its canonical string form.
func formatValue(kind Kind, value any) string {
	switch kind {
	case KindBool:
		return strconv.FormatBool(value.(bool))
	case KindInt:
		return strconv.FormatInt(value.(int64), 10)
	case KindFloat:
		return strconv.FormatFloat(value.(float64), 'g', 6, 64)
	default:
		return value.(string)
	}
}

// parseValue converts a string to the parameter's kind.
func parseValue(kind Kind, s string) (any, error) {
	switch kind {
	case KindBool:
		v, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a bool", ErrInvalidValue, s)
		}

		return v, nil

	case KindInt:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an int", ErrInvalidValue, s)
		}

		return v, nil

	case KindFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a float", ErrInvalidValue, s)
		}

		return v, nil

	default:
		return s, nil
	}
}

// normalizeDefault coerces convenient literal types to the canonical
// storage type for the kind.
func normalizeDefault(kind Kind, value any) (any, error) {
	switch kind {
	case KindBool:
		if v, ok := value.(bool); ok {
			return v, nil
		}

	case KindInt:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		}

	case KindFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		}

	case KindString:
		if v, ok := value.(string); ok {
			return v, nil
		}
	}

	return nil, fmt.Errorf("%w: default %v does not match kind %s", ErrInvalidValue, value, kind)
}
