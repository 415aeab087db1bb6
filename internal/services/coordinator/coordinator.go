package coordinator

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cornerwatch-go/internal/models"
	"cornerwatch-go/internal/services/state"
)

// Controller is the detection loop as seen by the coordinator
type Controller interface {
	Start() error
	Stop() error
	Running() bool
}

type owner struct {
	models.Owner
	token string
}

// Coordinator serializes configuration mutations against the running loop,
// keeps the advisory ownership token and forwards loop control commands.
// The lock is held only for the in-memory update and persistence.
type Coordinator struct {
	store  SettingsStore
	rt     *state.Runtime
	logger zerolog.Logger

	// main stream size rectangles are validated against
	width, height int

	mu      sync.Mutex
	current models.Settings
	version uint64
	owner   *owner

	ctrlMu sync.Mutex
	ctrl   Controller

	restart chan struct{}
	now     func() time.Time
}

// New loads persisted settings and publishes them to the runtime container.
// Persisted settings that fail validation are reported and replaced by defaults
// in memory; the file is left as is until the next successful write.
func New(store SettingsStore, rt *state.Runtime, width, height int, logger zerolog.Logger) *Coordinator {
	c := &Coordinator{
		store:   store,
		rt:      rt,
		logger:  logger,
		width:   width,
		height:  height,
		version: 1,
		restart: make(chan struct{}, 1),
		now:     time.Now,
	}

	loaded, err := store.Load()
	if err == nil {
		err = loaded.Validate(width, height)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Persisted settings rejected, using defaults")
		loaded = models.DefaultSettings()
	}
	c.current = loaded
	rt.PublishSettings(loaded)
	return c
}

// SetController attaches the detection loop
func (c *Coordinator) SetController(ctrl Controller) {
	c.ctrlMu.Lock()
	defer c.ctrlMu.Unlock()
	c.ctrl = ctrl
}

func (c *Coordinator) controller() Controller {
	c.ctrlMu.Lock()
	defer c.ctrlMu.Unlock()
	return c.ctrl
}

// Get returns a copy of the current settings and their version
func (c *Coordinator) Get() (models.Settings, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Clone(), c.version
}

// Patch applies a JSON object of whitelisted keys. expected, when non-nil, must
// equal the current version. A patch that changes nothing is a no-op: nothing
// is persisted and no restart is requested. It returns the resulting settings,
// their version and whether anything changed.
func (c *Coordinator) Patch(raw []byte, expected *uint64) (models.Settings, uint64, bool, error) {
	patch, err := models.ParsePatch(raw)
	if err != nil {
		return models.Settings{}, 0, false, err
	}
	return c.update(expected, patch.Apply)
}

// Replace swaps the whole configuration
func (c *Coordinator) Replace(next models.Settings, expected *uint64) (models.Settings, uint64, bool, error) {
	return c.update(expected, func(models.Settings) (models.Settings, error) {
		return next.Clone(), nil
	})
}

func (c *Coordinator) update(expected *uint64, mutate func(models.Settings) (models.Settings, error)) (models.Settings, uint64, bool, error) {
	c.mu.Lock()

	if expected != nil && *expected != c.version {
		cur, ver := c.current.Clone(), c.version
		c.mu.Unlock()
		return cur, ver, false, fmt.Errorf("%w: expected %d, current %d", models.ErrVersionConflict, *expected, ver)
	}

	prev := c.current
	next, err := mutate(prev)
	if err == nil {
		err = next.Validate(c.width, c.height)
	}
	if err != nil {
		c.mu.Unlock()
		return prev.Clone(), c.version, false, err
	}

	if next.Equal(prev) {
		ver := c.version
		c.mu.Unlock()
		return prev.Clone(), ver, false, nil
	}

	if err := c.store.Save(next); err != nil {
		c.mu.Unlock()
		return prev.Clone(), c.version, false, fmt.Errorf("failed to persist settings: %w", err)
	}
	c.current = next
	c.version++
	ver := c.version
	c.rt.PublishSettings(next)
	restart := prev.RestartRequired(next)
	c.mu.Unlock()

	c.logger.Info().
		Uint64("version", ver).
		Str("mode", next.Mode()).
		Bool("restart", restart).
		Msg("Settings updated")

	if restart {
		c.requestRestart()
	}
	return next.Clone(), ver, true, nil
}

// requestRestart posts a coalescing restart command for the detection loop
func (c *Coordinator) requestRestart() {
	select {
	case c.restart <- struct{}{}:
	default:
	}
}

// RestartRequests is polled by the detection loop at the top of each iteration
func (c *Coordinator) RestartRequests() <-chan struct{} {
	return c.restart
}

// Claim hands the ownership token to clientID. A claim by the current owner
// returns the existing token; another client needs force to take it over.
func (c *Coordinator) Claim(clientID string, force bool) (string, models.Owner, error) {
	if clientID == "" {
		return "", models.Owner{}, &models.ValidationError{Field: "client_id", Reason: "must not be empty"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.owner != nil {
		if c.owner.ClientID == clientID {
			return c.owner.token, c.owner.Owner, nil
		}
		if !force {
			return "", c.owner.Owner, models.ErrAlreadyOwned
		}
		c.logger.Warn().
			Str("previous", c.owner.ClientID).
			Str("client_id", clientID).
			Msg("Ownership taken over")
	}

	c.owner = &owner{
		Owner: models.Owner{ClientID: clientID, Since: c.now()},
		token: uuid.NewString(),
	}
	return c.owner.token, c.owner.Owner, nil
}

// Release gives the token back; only the current token is accepted
func (c *Coordinator) Release(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.owner == nil || c.owner.token != token {
		return models.ErrNotOwner
	}
	c.owner = nil
	return nil
}

// Owner returns the current holder, nil when unowned
func (c *Coordinator) Owner() *models.Owner {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner == nil {
		return nil
	}
	o := c.owner.Owner
	return &o
}

// StartMonitoring starts the detection loop
func (c *Coordinator) StartMonitoring() error {
	ctrl := c.controller()
	if ctrl == nil {
		return errors.New("detection loop not attached")
	}
	return ctrl.Start()
}

// StopMonitoring stops the detection loop after its current iteration
func (c *Coordinator) StopMonitoring() error {
	ctrl := c.controller()
	if ctrl == nil {
		return errors.New("detection loop not attached")
	}
	return ctrl.Stop()
}

// RestartMonitoring asks the running loop to re-initialize with a fresh baseline
func (c *Coordinator) RestartMonitoring() error {
	ctrl := c.controller()
	if ctrl == nil || !ctrl.Running() {
		return models.ErrNotRunning
	}
	c.requestRestart()
	return nil
}
