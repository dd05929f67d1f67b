// Package persist saves editing sessions to a key-value store and loads them
// back with validation.
//
// A load never fails. Missing or corrupt data falls back to the default
// session, and structurally damaged data is repaired. The result says which
// of these happened.
package persist

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/cedit/session"
)

var log = commonlog.GetLogger("cedit.persist")

// DefaultKey is the key sessions are stored under.
const DefaultKey = "myProjects"

// Status tells how a loaded session was obtained.
type Status int

const (
	// StatusDefault means nothing usable was stored.
	StatusDefault Status = iota
	// StatusValid means the stored session was used as is.
	StatusValid
	// StatusRecovered means the stored session needed repairs.
	StatusRecovered
)

func (s Status) String() string {
	switch s {
	case StatusDefault:
		return "default"
	case StatusValid:
		return "valid"
	case StatusRecovered:
		return "recovered"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// LoadResult is the outcome of Adapter.Load.
type LoadResult struct {
	Session *session.Session
	Status  Status
	Repairs []string
}

// Adapter stores one session under one key.
type Adapter struct {
	kv    KV
	key   string
	codec Codec
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithKey overrides DefaultKey.
func WithKey(key string) AdapterOption {
	return func(a *Adapter) {
		a.key = key
	}
}

// WithCodec overrides the default JSON codec.
func WithCodec(c Codec) AdapterOption {
	return func(a *Adapter) {
		a.codec = c
	}
}

// NewAdapter returns an adapter backed by kv.
func NewAdapter(kv KV, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		kv:    kv,
		key:   DefaultKey,
		codec: JSONCodec{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Save stores s. The untouched default session is not stored, so a cold
// start never overwrites a previously saved session.
func (a *Adapter) Save(s *session.Session) error {
	if s.IsPristine() {
		return nil
	}
	data, err := a.codec.Marshal(NewRecord(s))
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := a.kv.Put(a.key, data); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Clear removes the stored session.
func (a *Adapter) Clear() error {
	if err := a.kv.Delete(a.key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Raw returns the stored bytes, or ErrNotFound.
func (a *Adapter) Raw() ([]byte, error) {
	return a.kv.Get(a.key)
}

// Load reads the stored session.
func (a *Adapter) Load() LoadResult {
	data, err := a.kv.Get(a.key)
	if errors.Is(err, ErrNotFound) {
		return defaultResult()
	}
	if err != nil {
		log.Warningf("read session %q: %s", a.key, err)
		return defaultResult(fmt.Sprintf("read failed: %s", err))
	}

	var rec Record
	if err := a.codec.Unmarshal(data, &rec); err != nil {
		log.Warningf("discarding corrupt session %q: %s", a.key, err)
		return defaultResult(fmt.Sprintf("corrupt payload: %s", err))
	}

	sess, fixes := rec.Session()
	if sess == nil {
		log.Warningf("discarding empty session %q", a.key)
		return defaultResult("no projects stored")
	}
	if err := sess.Validate(); err != nil {
		log.Errorf("repaired session %q is still invalid: %s", a.key, err)
		return defaultResult(fmt.Sprintf("invalid after repair: %s", err))
	}
	if len(fixes) > 0 {
		for _, fix := range fixes {
			log.Warningf("session %q: %s", a.key, fix)
		}
		return LoadResult{Session: sess, Status: StatusRecovered, Repairs: fixes}
	}
	return LoadResult{Session: sess, Status: StatusValid}
}

func defaultResult(repairs ...string) LoadResult {
	return LoadResult{Session: session.Default(), Status: StatusDefault, Repairs: repairs}
}
