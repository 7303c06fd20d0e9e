// Package boarding issues short-lived QR boarding cards for the commuter shuttle.
//
// A card moves Drafting -> Active -> Expired. Refresh brings an expired card back to
// Active with a new code; Reset returns any card to Drafting. The payload is unsigned
// and can be replayed until it expires. Real protection needs short-lived, single-use
// tokens issued and checked by a server.
package boarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/portal-dev/portal/shared/config"
)

type State int

const (
	Drafting State = iota
	Active
	Expired
)

func (s State) String() string {
	switch s {
	case Drafting:
		return "drafting"
	case Active:
		return "active"
	case Expired:
		return "expired"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	ErrIncompleteDraft = errors.New("employee id, name and bus route are required")
	ErrNotDrafting     = errors.New("card was already generated")
	ErrNotGenerated    = errors.New("card has not been generated")
	ErrNotExpired      = errors.New("only an expired card can be refreshed")
	ErrRefreshInFlight = errors.New("refresh already in progress")
	ErrExpired         = errors.New("card has expired")
)

const (
	DefaultTTL              = 2 * time.Minute
	DefaultWarningThreshold = time.Minute
	DefaultRefreshDelay     = 300 * time.Millisecond
	DefaultTickInterval     = time.Second

	dateLayout = "2006-01-02"
)

type Draft struct {
	EmployeeID   string `form:"employeeId"`
	EmployeeName string `form:"employeeName"`
	Department   string `form:"department"`
	BusRoute     string `form:"busRoute"`
	BoardingTime string `form:"boardingTime"`
	ValidDate    string `form:"validDate"`
}

// Ready reports whether the gating fields are filled in. Department, time and date are
// carried along but optional.
func (d Draft) Ready() bool {
	return d.EmployeeID != "" &&
		d.EmployeeName != "" &&
		d.BusRoute != ""
}

// Problems maps each missing gating field, by form name, to its message.
func (d Draft) Problems() map[string]string {
	errs := map[string]string{}
	if d.EmployeeID == "" {
		errs["employeeId"] = "Please enter your employee ID."
	}
	if d.EmployeeName == "" {
		errs["employeeName"] = "Please enter your name."
	}
	if d.BusRoute == "" {
		errs["busRoute"] = "Please choose a bus route."
	}
	return errs
}

// Payload is what the QR symbol encodes. Field order is the serialized key order.
type Payload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Dept      string `json:"dept"`
	Route     string `json:"route"`
	Time      string `json:"time"`
	Date      string `json:"date"`
	Timestamp int64  `json:"timestamp"`
	Nonce     string `json:"nonce,omitempty"`
}

func newPayload(d Draft, issuedAt time.Time, nonce string) Payload {
	return Payload{
		ID:        d.EmployeeID,
		Name:      d.EmployeeName,
		Dept:      d.Department,
		Route:     d.BusRoute,
		Time:      d.BoardingTime,
		Date:      d.ValidDate,
		Timestamp: issuedAt.UnixMilli(),
		Nonce:     nonce,
	}
}

// Token is one issued code.
type Token struct {
	Payload  string
	IssuedAt time.Time
}

type Snapshot struct {
	State      State
	Draft      Draft
	Token      Token
	Remaining  time.Duration
	Warning    bool
	Refreshing bool
}

// RemainingText formats the countdown as m:ss.
func (s Snapshot) RemainingText() string {
	secs := int(s.Remaining / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

type Options struct {
	TTL              time.Duration
	WarningThreshold time.Duration
	RefreshDelay     time.Duration
	Clock            Clock
}

func OptionsFromConfig(cfg config.Boarding) Options {
	return Options{
		TTL:              cfg.TTL,
		WarningThreshold: cfg.WarningThreshold,
		RefreshDelay:     cfg.RefreshDelay,
	}
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.WarningThreshold <= 0 {
		o.WarningThreshold = DefaultWarningThreshold
	}
	// negative disables the delay
	if o.RefreshDelay == 0 {
		o.RefreshDelay = DefaultRefreshDelay
	} else if o.RefreshDelay < 0 {
		o.RefreshDelay = 0
	}
	if o.Clock == nil {
		o.Clock = SystemClock
	}
	return o
}

type Card struct {
	mu         sync.Mutex
	opts       Options
	state      State
	draft      Draft
	token      Token
	remaining  time.Duration
	refreshing bool
	nonce      func() string
}

func NewCard(opts Options) *Card {
	opts = opts.withDefaults()
	c := &Card{opts: opts, nonce: uuid.NewString}
	c.draft = Draft{ValidDate: c.today()}
	return c
}

func (c *Card) today() string {
	return c.opts.Clock.Now().Format(dateLayout)
}

// SetDraft replaces the form contents. Only allowed while drafting.
func (c *Card) SetDraft(d Draft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Drafting {
		return ErrNotDrafting
	}
	c.draft = d
	return nil
}

func (c *Card) CanGenerate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Drafting && c.draft.Ready()
}

// Generate issues the first code for the current draft.
func (c *Card) Generate() (Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Drafting {
		return Token{}, ErrNotDrafting
	}
	if !c.draft.Ready() {
		return Token{}, ErrIncompleteDraft
	}
	if err := c.issue(""); err != nil {
		return Token{}, err
	}
	return c.token, nil
}

// issue must be called with mu held.
func (c *Card) issue(nonce string) error {
	now := c.opts.Clock.Now()
	data, err := json.Marshal(newPayload(c.draft, now, nonce))
	if err != nil {
		return fmt.Errorf("can't serialize boarding payload: %w", err)
	}
	c.token = Token{Payload: string(data), IssuedAt: now}
	c.remaining = c.opts.TTL
	c.state = Active
	return nil
}

// Tick recomputes the countdown and expires the card once it reaches zero.
func (c *Card) Tick() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick()
	return c.snapshot()
}

// Snapshot is Tick: reading the card always brings the countdown up to date.
func (c *Card) Snapshot() Snapshot {
	return c.Tick()
}

func (c *Card) tick() {
	if c.state != Active {
		return
	}
	elapsed := c.opts.Clock.Now().Sub(c.token.IssuedAt)
	c.remaining = max(0, c.opts.TTL-elapsed)
	if c.remaining == 0 {
		c.state = Expired
	}
}

func (c *Card) snapshot() Snapshot {
	return Snapshot{
		State:      c.state,
		Draft:      c.draft,
		Token:      c.token,
		Remaining:  c.remaining,
		Warning:    c.state == Active && c.remaining > 0 && c.remaining < c.opts.WarningThreshold,
		Refreshing: c.refreshing,
	}
}

// Run calls fn with a fresh snapshot every interval while the card is active. It returns
// after delivering the snapshot that leaves Active, or when ctx is done.
func (c *Card) Run(ctx context.Context, interval time.Duration, fn func(Snapshot)) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	for {
		s := c.Tick()
		if ctx.Err() != nil {
			return
		}
		fn(s)
		if s.State != Active {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-c.opts.Clock.After(interval):
		}
	}
}

// Refresh waits the refresh delay, then issues a new code with a fresh nonce.
func (c *Card) Refresh(ctx context.Context) (Token, error) {
	c.mu.Lock()
	c.tick()
	if c.refreshing {
		c.mu.Unlock()
		return Token{}, ErrRefreshInFlight
	}
	if c.state != Expired {
		c.mu.Unlock()
		return Token{}, ErrNotExpired
	}
	c.refreshing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.refreshing = false
		c.mu.Unlock()
	}()

	if c.opts.RefreshDelay > 0 {
		select {
		case <-ctx.Done():
			return Token{}, ctx.Err()
		case <-c.opts.Clock.After(c.opts.RefreshDelay):
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// a Reset while waiting wins
	if c.state != Expired {
		return Token{}, ErrNotExpired
	}
	if err := c.issue(c.nonce()); err != nil {
		return Token{}, err
	}
	return c.token, nil
}

// Reset drops the code and clears the form. The valid date goes back to today.
func (c *Card) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Drafting
	c.draft = Draft{ValidDate: c.today()}
	c.token = Token{}
	c.remaining = 0
}

// Download renders the code currently on display. It never issues a new one.
func (c *Card) Download() (filename string, png []byte, err error) {
	c.mu.Lock()
	c.tick()
	s := c.snapshot()
	c.mu.Unlock()

	switch s.State {
	case Drafting:
		return "", nil, ErrNotGenerated
	case Expired:
		return "", nil, ErrExpired
	}

	png, err = CardPNG(s.Token.Payload, Caption(s.Draft, s.Token.IssuedAt))
	if err != nil {
		return "", nil, err
	}
	return Filename(s.Draft.EmployeeID), png, nil
}

// Filename is boarding-card-<employeeId>.png.
func Filename(employeeID string) string {
	return fmt.Sprintf("boarding-card-%s.png", employeeID)
}
