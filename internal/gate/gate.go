// Package gate implements the 4-digit access code challenge placed in front
// of sensitive console sections.
//
// The gate only adds friction for users who already passed the admin route
// guard. It is not an authorization boundary: the remote API still checks
// every request to the sections it protects.
package gate

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"oyna-console/internal/model"
	"oyna-console/internal/storage"
)

// CodeLength is the number of digit boxes.
const CodeLength = 4

// Defaults used when Config leaves a field empty.
const (
	DefaultTTL         = 5 * time.Minute
	DefaultMaxAttempts = 3
)

// User-visible messages.
const (
	MsgWrongCode     = "Hatalı kod. Lütfen tekrar deneyin."
	MsgLockedOut     = "Çok fazla hatalı deneme. Bu bölüme erişiminiz engellendi."
	MsgMisconfigured = "Erişim kodu yapılandırılmamış. Lütfen yöneticinize başvurun."
)

// ErrInvalidCode is returned by Submit for input that is not exactly
// CodeLength ASCII digits. No attempt is counted.
var ErrInvalidCode = errors.New("gate: code must be 4 digits")

// Status is the coarse state of a gate.
type Status int

const (
	Locked Status = iota
	Unlocked
	LockedOut
	Misconfigured
)

func (s Status) String() string {
	switch s {
	case Locked:
		return "locked"
	case Unlocked:
		return "unlocked"
	case LockedOut:
		return "locked_out"
	case Misconfigured:
		return "misconfigured"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText renders the status by name in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is what the code entry form renders.
type State struct {
	Status   Status             `json:"status"`
	Digits   [CodeLength]string `json:"digits"`
	Focus    int                `json:"focus"`
	Attempts int                `json:"attempts"`
	Error    string             `json:"error,omitempty"`
	Redirect string             `json:"redirect,omitempty"`
}

// Filled reports how many boxes hold a digit.
func (s State) Filled() int {
	n := 0
	for _, d := range s.Digits {
		if d != "" {
			n++
		}
	}
	return n
}

// Config holds the gate settings shared by every section.
type Config struct {
	Code        string
	TTL         time.Duration
	MaxAttempts int
	Redirect    string
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// OnGranted registers a callback run once when the correct code is entered.
func OnGranted(fn func(model.AccessGrant)) Option {
	return func(g *Gate) {
		g.onGranted = fn
	}
}

// WithLocks makes the gate serialize its code checks on key in locks.
// Every Gate of one browser and section must use the same locks and key.
func WithLocks(locks *Locks, key string) Option {
	return func(g *Gate) {
		if locks != nil {
			g.locks = locks
			g.lockKey = key
		}
	}
}

// Gate drives the code challenge of one section for one browser. Grants and
// in-progress input live in the browser's storage, so a Gate can be rebuilt
// on every request.
type Gate struct {
	section   string
	cfg       Config
	store     storage.Storage
	now       func() time.Time
	onGranted func(model.AccessGrant)
	locks     *Locks
	lockKey   string

	mu      sync.Mutex
	state   State
	opened  bool
	granted bool
}

// New creates the gate for section. A code that is not exactly CodeLength
// characters leaves the gate Misconfigured.
func New(section string, store storage.Storage, cfg Config, opts ...Option) *Gate {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if store == nil {
		store = storage.Nop{}
	}
	g := &Gate{
		section: section,
		cfg:     cfg,
		store:   store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.locks == nil {
		g.locks = NewLocks()
	}
	if g.lockKey == "" {
		g.lockKey = section
	}
	return g
}

// ValidCode reports whether code is exactly CodeLength ASCII digits.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !isDigit(code[i : i+1]) {
			return false
		}
	}
	return true
}

// Configured reports whether code can ever unlock a gate.
func Configured(code string) bool {
	return utf8.RuneCountInString(code) == CodeLength
}

// Section returns the gated section name.
func (g *Gate) Section() string {
	return g.section
}

// Open loads the stored grant and any input in progress and returns the
// initial state.
func (g *Gate) Open(ctx context.Context) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.openLocked(ctx); err != nil {
		return g.state, err
	}
	return g.state, nil
}

// State returns the current state without touching storage.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Enter types one digit into the focused box. Anything that is not a single
// ASCII digit is ignored. Filling the last box checks the code.
func (g *Gate) Enter(ctx context.Context, digit string) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.openLocked(ctx); err != nil {
		return g.state, err
	}
	if g.state.Status != Locked || !isDigit(digit) {
		return g.state, nil
	}

	g.state.Error = ""
	g.state.Digits[g.state.Focus] = digit
	if g.state.Focus < CodeLength-1 {
		g.state.Focus++
	}

	if g.state.Filled() < CodeLength {
		return g.state, g.saveInputLocked(ctx)
	}
	return g.state, g.verifyLocked(ctx)
}

// Submit replaces any half-typed input with code and checks it. A code that
// is not exactly CodeLength digits is rejected with ErrInvalidCode.
func (g *Gate) Submit(ctx context.Context, code string) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.openLocked(ctx); err != nil {
		return g.state, err
	}
	if g.state.Status != Locked {
		return g.state, nil
	}
	if !ValidCode(code) {
		return g.state, ErrInvalidCode
	}

	g.state.Error = ""
	for i := 0; i < CodeLength; i++ {
		g.state.Digits[i] = code[i : i+1]
	}
	g.state.Focus = CodeLength - 1
	return g.state, g.verifyLocked(ctx)
}

// Backspace clears the focused box, or moves back and clears the previous box
// when the focused one is already empty.
func (g *Gate) Backspace(ctx context.Context) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.openLocked(ctx); err != nil {
		return g.state, err
	}
	if g.state.Status != Locked {
		return g.state, nil
	}

	switch {
	case g.state.Digits[g.state.Focus] != "":
		g.state.Digits[g.state.Focus] = ""
	case g.state.Focus > 0:
		g.state.Focus--
		g.state.Digits[g.state.Focus] = ""
	default:
		return g.state, nil
	}
	g.state.Error = ""
	return g.state, g.saveInputLocked(ctx)
}

// Focus moves the cursor to box i.
func (g *Gate) Focus(ctx context.Context, i int) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.openLocked(ctx); err != nil {
		return g.state, err
	}
	if g.state.Status != Locked || i < 0 || i >= CodeLength {
		return g.state, nil
	}
	g.state.Focus = i
	return g.state, g.saveInputLocked(ctx)
}

// Revoke drops a granted grant so the section asks for the code again.
// A lockout is kept.
func (g *Gate) Revoke(ctx context.Context) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.openLocked(ctx); err != nil {
		return g.state, err
	}
	if g.state.Status != Unlocked {
		return g.state, nil
	}
	if err := g.store.Remove(ctx, storage.GateKey(g.section)); err != nil {
		return g.state, fmt.Errorf("revoke %s grant: %w", g.section, err)
	}
	g.state = State{Status: Locked}
	g.granted = false
	return g.state, nil
}

func (g *Gate) openLocked(ctx context.Context) error {
	if g.opened {
		return nil
	}
	g.opened = true

	if !Configured(g.cfg.Code) {
		g.state = State{Status: Misconfigured, Error: MsgMisconfigured}
		return nil
	}

	grant, err := LoadGrant(ctx, g.store, g.section)
	if err != nil {
		g.state = State{Status: Locked}
		return err
	}

	switch {
	case grant.Valid(g.now()):
		g.state = State{Status: Unlocked}
		g.granted = true
	case grant.Attempts >= g.cfg.MaxAttempts:
		g.state = State{Status: LockedOut, Attempts: grant.Attempts, Error: MsgLockedOut, Redirect: g.cfg.Redirect}
	default:
		g.state = State{Status: Locked, Attempts: grant.Attempts}
		var in input
		if ok, err := storage.GetJSON(ctx, g.store, inputKey(g.section), &in); err == nil && ok && in.valid() {
			g.state.Digits = in.Digits
			g.state.Focus = in.Focus
		}
	}
	return nil
}

// verifyLocked checks the typed code against the grant as currently stored,
// holding the shared lock so that concurrent checks count every attempt.
func (g *Gate) verifyLocked(ctx context.Context) error {
	unlock := g.locks.Lock(g.lockKey)
	defer unlock()

	stored, err := LoadGrant(ctx, g.store, g.section)
	if err != nil {
		g.resetInputLocked()
		return err
	}
	switch {
	case stored.Valid(g.now()):
		// unlocked by a concurrent request; never overwrite its grant
		_ = g.store.Remove(ctx, inputKey(g.section))
		g.state = State{Status: Unlocked}
		g.granted = true
		return nil
	case stored.Attempts >= g.cfg.MaxAttempts:
		_ = g.store.Remove(ctx, inputKey(g.section))
		g.state = State{Status: LockedOut, Attempts: stored.Attempts, Error: MsgLockedOut, Redirect: g.cfg.Redirect}
		return nil
	}

	code := strings.Join(g.state.Digits[:], "")

	if subtle.ConstantTimeCompare([]byte(code), []byte(g.cfg.Code)) == 1 {
		grant := model.AccessGrant{
			Granted:   true,
			ExpiresAt: g.now().Add(g.cfg.TTL),
			Attempts:  0,
		}
		if err := storage.SetJSON(ctx, g.store, storage.GateKey(g.section), grant); err != nil {
			g.resetInputLocked()
			return fmt.Errorf("store %s grant: %w", g.section, err)
		}
		_ = g.store.Remove(ctx, inputKey(g.section))

		g.state = State{Status: Unlocked}
		if !g.granted {
			g.granted = true
			if g.onGranted != nil {
				g.onGranted(grant)
			}
		}
		return nil
	}

	attempts := stored.Attempts + 1
	grant := model.AccessGrant{Granted: false, Attempts: attempts}
	if err := storage.SetJSON(ctx, g.store, storage.GateKey(g.section), grant); err != nil {
		g.resetInputLocked()
		return fmt.Errorf("store %s attempts: %w", g.section, err)
	}
	_ = g.store.Remove(ctx, inputKey(g.section))

	if attempts >= g.cfg.MaxAttempts {
		g.state = State{Status: LockedOut, Attempts: attempts, Error: MsgLockedOut, Redirect: g.cfg.Redirect}
		return nil
	}
	g.state = State{Status: Locked, Attempts: attempts, Error: MsgWrongCode}
	return nil
}

func (g *Gate) resetInputLocked() {
	g.state.Digits = [CodeLength]string{}
	g.state.Focus = 0
}

func (g *Gate) saveInputLocked(ctx context.Context) error {
	in := input{Digits: g.state.Digits, Focus: g.state.Focus}
	if err := storage.SetJSON(ctx, g.store, inputKey(g.section), in); err != nil {
		return fmt.Errorf("store %s input: %w", g.section, err)
	}
	return nil
}

// input is the half-typed code kept between requests.
type input struct {
	Digits [CodeLength]string `json:"digits"`
	Focus  int                `json:"focus"`
}

func (in input) valid() bool {
	if in.Focus < 0 || in.Focus >= CodeLength {
		return false
	}
	for _, d := range in.Digits {
		if d != "" && !isDigit(d) {
			return false
		}
	}
	return true
}

func inputKey(section string) string {
	return storage.GateKey(section) + ":input"
}

func isDigit(s string) bool {
	return len(s) == 1 && s[0] >= '0' && s[0] <= '9'
}

// LoadGrant reads the stored grant of section. A missing grant is the zero value.
func LoadGrant(ctx context.Context, store storage.Storage, section string) (model.AccessGrant, error) {
	var grant model.AccessGrant
	if _, err := storage.GetJSON(ctx, store, storage.GateKey(section), &grant); err != nil {
		return model.AccessGrant{}, fmt.Errorf("load %s grant: %w", section, err)
	}
	return grant, nil
}

// HasValidGrant reports whether section is currently unlocked for the browser
// behind store.
func HasValidGrant(ctx context.Context, store storage.Storage, section string, now time.Time) (bool, error) {
	grant, err := LoadGrant(ctx, store, section)
	if err != nil {
		return false, err
	}
	return grant.Valid(now), nil
}
