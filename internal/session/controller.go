package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"portfolio-chat/internal/models"
	"portfolio-chat/internal/store"
)

// Gateway sends one chat turn to the remote assistant.
type Gateway interface {
	SendTurn(ctx context.Context, message string, mode models.InteractionMode) (*models.ChatResponse, error)
}

// Normalizer converts a raw judge payload into a canonical score.
type Normalizer interface {
	Normalize(payload *models.ScorePayload) *models.CanonicalScore
}

// TurnStatus describes the lifecycle of the single in-flight turn.
type TurnStatus string

const (
	StatusIdle       TurnStatus = "idle"
	StatusSubmitting TurnStatus = "submitting"
)

var (
	// ErrBlankSubmission rejects whitespace-only input. No state change.
	ErrBlankSubmission = errors.New("submission is blank")
	// ErrTurnInFlight rejects a submit while another turn is pending.
	ErrTurnInFlight = errors.New("a turn is already in flight")
	// ErrNotConfirmed rejects a clear without explicit confirmation.
	ErrNotConfirmed = errors.New("clear requires confirmation")
)

// ErrorFallbackText is appended as an assistant message when a turn fails.
const ErrorFallbackText = "Sorry, I encountered an error. Please try again."

// Controller owns the conversation state: the append-only message log, the
// selected interaction mode and the score of the most recent judged reply.
// It is the sole writer of that state. Persistence happens unconditionally
// after every mutation; a persistence failure degrades to memory-only
// operation and never blocks chat.
type Controller struct {
	mu          sync.Mutex
	messages    []models.Message
	mode        models.InteractionMode
	latestScore *models.CanonicalScore
	inFlight    bool

	gateway    Gateway
	store      store.Store
	normalizer Normalizer
	logger     *zerolog.Logger
}

// NewController rehydrates the session from the store. Corrupt or missing
// state starts the session empty; rehydration never fails construction.
func NewController(ctx context.Context, gw Gateway, st store.Store, norm Normalizer, defaultMode models.InteractionMode, logger *zerolog.Logger) *Controller {
	c := &Controller{
		mode:       defaultMode,
		gateway:    gw,
		store:      st,
		normalizer: norm,
		logger:     logger,
	}
	c.rehydrate(ctx)
	return c
}

func (c *Controller) rehydrate(ctx context.Context) {
	raw, ok, err := c.store.Load(ctx, store.HistoryKey)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to load conversation history, starting empty")
	} else if ok {
		var messages []models.Message
		if err := json.Unmarshal([]byte(raw), &messages); err != nil {
			c.logger.Warn().Err(err).Msg("stored conversation history is corrupt, starting empty")
		} else {
			c.messages = messages
			c.logger.Info().Int("messages", len(messages)).Msg("conversation history restored")
		}
	}

	// The latest score is derived, not persisted separately.
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == models.RoleAssistant && c.messages[i].Score != nil {
			c.latestScore = c.messages[i].Score
			break
		}
	}

	rawMode, ok, err := c.store.Load(ctx, store.ModeKey)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to load interaction mode, keeping default")
		return
	}
	if ok {
		mode := models.InteractionMode(strings.TrimSpace(rawMode))
		if models.ValidMode(mode) {
			c.mode = mode
			c.logger.Info().Str("mode", string(mode)).Msg("interaction mode restored")
		} else {
			c.logger.Warn().Str("mode", rawMode).Msg("stored mode is unknown, keeping default")
		}
	}
}

// Submit runs one turn: optimistic user append, gateway call, assistant
// append. Blank input and concurrent submission are rejected with no state
// change. On gateway failure a fixed fallback message is appended and the
// latest score is left untouched; the session stays usable.
func (c *Controller) Submit(ctx context.Context, text string) error {
	c.mu.Lock()
	if strings.TrimSpace(text) == "" {
		c.mu.Unlock()
		return ErrBlankSubmission
	}
	if c.inFlight {
		c.mu.Unlock()
		return ErrTurnInFlight
	}
	c.inFlight = true

	// The mode is captured now; a mode change during the turn does not
	// rewrite this message or the request already on the wire.
	mode := c.mode
	c.append(ctx, models.Message{
		ID:        uuid.NewString(),
		Role:      models.RoleUser,
		Content:   text,
		Mode:      mode,
		Timestamp: time.Now(),
	})
	c.mu.Unlock()

	resp, err := c.gateway.SendTurn(ctx, text, mode)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.inFlight = false }()

	if err != nil {
		c.logger.Error().Err(err).Msg("chat turn failed")
		c.append(ctx, models.Message{
			ID:        uuid.NewString(),
			Role:      models.RoleAssistant,
			Content:   ErrorFallbackText,
			Timestamp: time.Now(),
		})
		return nil
	}

	// The service may normalize the requested mode; record what it echoed.
	replyMode := models.InteractionMode(resp.Mode)
	if !models.ValidMode(replyMode) {
		replyMode = mode
	}

	canonical := c.normalizer.Normalize(resp.JudgeScore)
	c.append(ctx, models.Message{
		ID:        uuid.NewString(),
		Role:      models.RoleAssistant,
		Content:   resp.Response,
		Mode:      replyMode,
		Score:     canonical,
		Timestamp: time.Now(),
	})
	if canonical != nil {
		c.latestScore = canonical
	}
	return nil
}

// ChangeMode switches the interaction mode unconditionally. An in-flight
// turn completes with the mode captured at submission time.
func (c *Controller) ChangeMode(ctx context.Context, mode models.InteractionMode) error {
	if !models.ValidMode(mode) {
		return errors.New("unknown interaction mode " + string(mode))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
	c.persistMode(ctx)
	return nil
}

// Clear wipes the conversation and the durable slots. The confirmation flag
// belongs to the caller's UI; without it the session is untouched.
func (c *Controller) Clear(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.latestScore = nil
	if err := c.store.Clear(ctx, store.HistoryKey); err != nil {
		c.logger.Warn().Err(err).Msg("failed to clear conversation history slot")
	}
	c.logger.Info().Msg("conversation cleared")
	return nil
}

// append adds a message and persists the full log. Callers hold the lock.
func (c *Controller) append(ctx context.Context, msg models.Message) {
	c.messages = append(c.messages, msg)
	c.persistHistory(ctx)
}

func (c *Controller) persistHistory(ctx context.Context) {
	data, err := json.Marshal(c.messages)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to encode conversation history")
		return
	}
	if err := c.store.Save(ctx, store.HistoryKey, string(data)); err != nil {
		// Storage failures are typically permanent for the session
		// (quota, disabled); drop the write instead of queueing it.
		c.logger.Warn().Err(err).Msg("failed to persist conversation history")
	}
}

func (c *Controller) persistMode(ctx context.Context) {
	if err := c.store.Save(ctx, store.ModeKey, string(c.mode)); err != nil {
		c.logger.Warn().Err(err).Msg("failed to persist interaction mode")
	}
}

// Messages returns a copy of the conversation log.
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Controller) Mode() models.InteractionMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// LatestScore returns the canonical score of the most recent judged
// assistant message, or nil if no judged reply exists.
func (c *Controller) LatestScore() *models.CanonicalScore {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latestScore
}

func (c *Controller) Status() TurnStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return StatusSubmitting
	}
	return StatusIdle
}
