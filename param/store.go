package param

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/hmolavi/PlantProtector/logger"
)

// Store holds the declared parameters and their current values. It is safe
// for concurrent use: the console, the transport handler and the periodic
// save loop all touch it.
type Store struct {
	entries *xsync.MapOf[string, entry]
	names   []string // sorted, canonical case for listings

	level  atomic.Int32
	logger logger.Logger
}

// StoreOption configures a Store at construction.
type StoreOption interface {
	apply(s *Store)
}

type storeOptFunc func(s *Store)

func (f storeOptFunc) apply(s *Store) { f(s) }

// WithLogger sets the store's logger.
func WithLogger(l logger.Logger) StoreOption {
	return storeOptFunc(func(s *Store) {
		if l != nil {
			s.logger = l
		}
	})
}

// WithSecureLevel sets the initial active secure level. The default is
// LevelUser.
func WithSecureLevel(level SecureLevel) StoreOption {
	return storeOptFunc(func(s *Store) {
		s.level.Store(int32(level))
	})
}

// NewStore builds a store from the given parameter definitions. Names must
// be unique (case-insensitively) and defaults must match their kinds. Every
// parameter starts at its default value, clean.
func NewStore(defs []Definition, opts ...StoreOption) (*Store, error) {
	s := &Store{
		entries: xsync.NewMapOf[string, entry](),
		logger:  logger.GetLogger(),
	}
	s.level.Store(int32(LevelUser))

	for _, opt := range opts {
		opt.apply(s)
	}

	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("%w: empty parameter name", ErrInvalidValue)
		}

		value, err := normalizeDefault(def.Kind, def.Default)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", def.Name, err)
		}
		def.Default = value

		key := storeKey(def.Name)
		if _, loaded := s.entries.LoadOrStore(key, entry{
			def:       def,
			value:     value,
			isDefault: true,
		}); loaded {
			return nil, fmt.Errorf("%w: duplicate parameter %q", ErrInvalidValue, def.Name)
		}

		s.names = append(s.names, def.Name)
	}

	sort.Strings(s.names)

	return s, nil
}

// storeKey folds a parameter name for case-insensitive lookup.
func storeKey(name string) string {
	return strings.ToLower(name)
}

// SecureLevel returns the store's active secure level.
func (s *Store) SecureLevel() SecureLevel {
	return SecureLevel(s.level.Load())
}

// SetSecureLevel changes the store's active secure level.
func (s *Store) SetSecureLevel(level SecureLevel) {
	s.level.Store(int32(level))
}

func (s *Store) load(name string) (entry, error) {
	e, ok := s.entries.Load(storeKey(name))
	if !ok {
		return entry{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return e, nil
}

// Bool returns the value of a bool parameter.
func (s *Store) Bool(name string) (bool, error) {
	e, err := s.load(name)
	if err != nil {
		return false, err
	}
	if e.def.Kind != KindBool {
		return false, fmt.Errorf("%w: %q is %s", ErrKindMismatch, name, e.def.Kind)
	}

	return e.value.(bool), nil
}

// Int returns the value of an int parameter.
func (s *Store) Int(name string) (int64, error) {
	e, err := s.load(name)
	if err != nil {
		return 0, err
	}
	if e.def.Kind != KindInt {
		return 0, fmt.Errorf("%w: %q is %s", ErrKindMismatch, name, e.def.Kind)
	}

	return e.value.(int64), nil
}

// Float returns the value of a float parameter.
func (s *Store) Float(name string) (float64, error) {
	e, err := s.load(name)
	if err != nil {
		return 0, err
	}
	if e.def.Kind != KindFloat {
		return 0, fmt.Errorf("%w: %q is %s", ErrKindMismatch, name, e.def.Kind)
	}

	return e.value.(float64), nil
}

// String returns the value of a string parameter.
func (s *Store) String(name string) (string, error) {
	e, err := s.load(name)
	if err != nil {
		return "", err
	}
	if e.def.Kind != KindString {
		return "", fmt.Errorf("%w: %q is %s", ErrKindMismatch, name, e.def.Kind)
	}

	return e.value.(string), nil
}

// Show renders any parameter's current value as its canonical string form,
// the representation exchanged over the console and the wire.
func (s *Store) Show(name string) (string, error) {
	e, err := s.load(name)
	if err != nil {
		return "", err
	}

	return formatValue(e.def.Kind, e.value), nil
}

// SetBool sets a bool parameter.
func (s *Store) SetBool(name string, value bool) error {
	return s.set(name, KindBool, value)
}

// SetInt sets an int parameter.
func (s *Store) SetInt(name string, value int64) error {
	return s.set(name, KindInt, value)
}

// SetFloat sets a float parameter.
func (s *Store) SetFloat(name string, value float64) error {
	return s.set(name, KindFloat, value)
}

// SetString sets a string parameter.
func (s *Store) SetString(name string, value string) error {
	return s.set(name, KindString, value)
}

// Set parses raw according to the parameter's kind and sets it. This is the
// console and transport entry point.
func (s *Store) Set(name, raw string) error {
	e, err := s.load(name)
	if err != nil {
		return err
	}

	value, err := parseValue(e.def.Kind, raw)
	if err != nil {
		return fmt.Errorf("parameter %q: %w", name, err)
	}

	return s.set(name, e.def.Kind, value)
}

// set swaps in a new value under the map's per-key lock. Writing the value
// the parameter already holds is a no-op and does not mark it dirty.
func (s *Store) set(name string, kind Kind, value any) error {
	var outErr error

	s.entries.Compute(storeKey(name), func(old entry, loaded bool) (entry, bool) {
		if !loaded {
			outErr = fmt.Errorf("%w: %q", ErrNotFound, name)

			return old, true
		}

		if old.def.Kind != kind {
			outErr = fmt.Errorf("%w: %q is %s", ErrKindMismatch, name, old.def.Kind)

			return old, false
		}

		if s.SecureLevel() > old.def.Level {
			outErr = fmt.Errorf("%w: %q requires level %d, active level is %d",
				ErrAccessDenied, name, old.def.Level, s.SecureLevel())

			return old, false
		}

		if old.value == value {
			return old, false
		}

		old.value = value
		old.dirty = true
		old.isDefault = value == old.def.Default

		return old, false
	})

	return outErr
}

// Reset restores a parameter to its default value. The change is subject to
// the same secure-level check as any other write.
func (s *Store) Reset(name string) error {
	e, err := s.load(name)
	if err != nil {
		return err
	}

	return s.set(name, e.def.Kind, e.def.Default)
}

// ResetAll restores every parameter the active secure level may modify.
func (s *Store) ResetAll() {
	for _, name := range s.names {
		// Best effort: parameters above the active level keep their values.
		_ = s.Reset(name)
	}
}

// Dirty returns the names of parameters modified since the last save.
func (s *Store) Dirty() []string {
	var dirty []string
	for _, name := range s.names {
		if e, ok := s.entries.Load(storeKey(name)); ok && e.dirty {
			dirty = append(dirty, name)
		}
	}

	return dirty
}

// List returns a snapshot of every parameter, sorted by name.
func (s *Store) List() []Snapshot {
	out := make([]Snapshot, 0, len(s.names))
	for _, name := range s.names {
		e, ok := s.entries.Load(storeKey(name))
		if !ok {
			continue
		}

		out = append(out, Snapshot{
			Name:        e.def.Name,
			Kind:        e.def.Kind,
			Level:       e.def.Level,
			Value:       formatValue(e.def.Kind, e.value),
			Description: e.def.Description,
			Dirty:       e.dirty,
			Default:     e.isDefault,
		})
	}

	return out
}

// SaveDirty persists the store to path when any parameter is dirty,
// clearing the dirty flags. It returns the number of dirty parameters
// committed; zero means the file was left untouched.
func (s *Store) SaveDirty(path string) (int, error) {
	changed := len(s.Dirty())
	if changed == 0 {
		return 0, nil
	}

	values := make(map[string]string, len(s.names))
	for _, name := range s.names {
		e, ok := s.entries.Load(storeKey(name))
		if !ok {
			continue
		}
		values[e.def.Name] = formatValue(e.def.Kind, e.value)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("param: encoding store: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("param: writing %s: %w", path, err)
	}

	for _, name := range s.names {
		s.entries.Compute(storeKey(name), func(old entry, loaded bool) (entry, bool) {
			if loaded {
				old.dirty = false
			}

			return old, !loaded
		})
	}

	s.logger.Debug("param: committed dirty parameters", "count", changed, "path", path)

	return changed, nil
}

// Load restores parameter values from path. Parameters missing from the
// file, or whose stored form no longer parses, fall back to their defaults
// and are marked dirty so the next save rewrites them. A missing file
// resets the whole store the same way.
//
// Load bypasses the secure-level check: it restores state, it does not act
// on behalf of a console user.
func (s *Store) Load(path string) error {
	values := make(map[string]string)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("param: decoding %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// First boot: every parameter takes its default below.
	default:
		return fmt.Errorf("param: reading %s: %w", path, err)
	}

	for _, name := range s.names {
		s.entries.Compute(storeKey(name), func(old entry, loaded bool) (entry, bool) {
			if !loaded {
				return old, true
			}

			raw, ok := values[old.def.Name]
			if ok {
				if value, perr := parseValue(old.def.Kind, raw); perr == nil {
					old.value = value
					old.dirty = false
					old.isDefault = value == old.def.Default

					return old, false
				}
				s.logger.Warn("param: stored value rejected, using default",
					"parameter", old.def.Name, "value", raw)
			}

			old.value = old.def.Default
			old.dirty = true
			old.isDefault = true

			return old, false
		})
	}

	return nil
}
