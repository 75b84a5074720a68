// Package chat holds the conversation session: the message log, the draft,
// the single in-flight request and the user-selected configuration.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"gemini_chat/pkg/config"
	"gemini_chat/pkg/logging"
)

// Fixed assistant replies.
const (
	FallbackReply         = "Üzgünüm, bir hata oluştu. Lütfen tekrar deneyin."
	ImagePlaceholderReply = "Image processing is not yet implemented"
)

var (
	ErrEmptyDraft        = errors.New("draft is empty")
	ErrBusy              = errors.New("a request is already in flight")
	ErrMissingCredential = errors.New("API key is not configured")
	ErrUnknownModel      = errors.New("unknown model")
	ErrStaleTurn         = errors.New("turn does not belong to the pending request")
	ErrAttachmentName    = errors.New("attachment name is required")
)

// State is the externally visible state of the session.
type State int

const (
	StateIdle State = iota
	StateSending
	StateIdleWithError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateIdleWithError:
		return "idle_with_error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Settings is the user-selected configuration attached to each request.
type Settings struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	DarkMode    bool    `json:"darkMode"`
}

// Attachment is an image picked by the user. Its bytes are never sent anywhere.
type Attachment struct {
	Name string
	Data []byte
}

// Options configures a new Session.
type Options struct {
	// Models lists the selectable models. The first one is the default.
	Models      []string
	Model       string
	Temperature float64
	DarkMode    bool

	Now   func() time.Time
	NewID func() string
}

// Turn is the synchronous half of a send, returned by Begin.
type Turn struct {
	User    Message
	Request Request

	seq   uint64
	image *Attachment
}

// HasImage reports whether the turn carries an attachment instead of a prompt.
func (t Turn) HasImage() bool {
	return t.image != nil
}

// StreamEvent is emitted by Stream. The final event has Done set and
// carries the appended assistant message.
type StreamEvent struct {
	Delta   string
	Done    bool
	Message Message
	Err     error
}

// Session is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	completer Completer
	history   *History

	models   []string
	settings Settings

	messages   []Message
	draft      string
	attachment *Attachment
	inFlight   bool
	seq        uint64
	lastErr    error

	now   func() time.Time
	newID func() string
}

// NewSession creates a session. A nil completer means no credential is
// configured; history may be nil for a session that is never persisted.
func NewSession(completer Completer, history *History, opts Options) *Session {
	models := slices.Clone(opts.Models)
	if len(models) == 0 {
		models = []string{config.DefaultModelA, config.DefaultModelB}
	}
	model := opts.Model
	if !slices.Contains(models, model) {
		model = models[0]
	}
	temperature := opts.Temperature
	if config.ValidateTemperature(temperature) != nil {
		temperature = 0.7
	}

	s := &Session{
		completer: completer,
		history:   history,
		models:    models,
		settings: Settings{
			Model:       model,
			Temperature: temperature,
			DarkMode:    opts.DarkMode,
		},
		now:   opts.Now,
		newID: opts.NewID,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = newMessageID
	}
	return s
}

// Restore seeds the log and dark-mode flag from the persisted state.
// A corrupt value leaves the log empty and is reported through LastError.
func (s *Session) Restore(ctx context.Context) error {
	if s.history == nil {
		return nil
	}

	var errs []error
	messages, err := s.history.LoadMessages(ctx)
	if err != nil {
		errs = append(errs, err)
		messages = nil
	}
	dark, found, err := s.history.LoadDarkMode(ctx)
	if err != nil {
		errs = append(errs, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = messages
	if found {
		s.settings.DarkMode = dark
	}
	restoreErr := errors.Join(errs...)
	if restoreErr != nil {
		s.lastErr = restoreErr
		slog.Warn("history_restore_failed", "error", restoreErr)
	} else {
		slog.Debug("history_restored", "messages", len(messages), "dark_mode", s.settings.DarkMode)
	}
	return restoreErr
}

// Begin validates the draft, appends the user message and marks the
// session as sending. The returned Turn must be passed to Resolve or Stream.
func (s *Session) Begin() (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginLocked()
}

// BeginWith replaces the draft with content and begins a turn under one
// lock, so concurrent callers each send their own text.
func (s *Session) BeginWith(content string) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = content
	return s.beginLocked()
}

func (s *Session) beginLocked() (Turn, error) {
	if s.inFlight {
		return Turn{}, ErrBusy
	}
	trimmed := strings.TrimSpace(s.draft)
	if trimmed == "" && s.attachment == nil {
		return Turn{}, ErrEmptyDraft
	}
	if s.attachment == nil && s.completer == nil {
		s.lastErr = ErrMissingCredential
		slog.Warn("chat_send_rejected", "reason", "missing_credential")
		return Turn{}, ErrMissingCredential
	}

	content := s.draft
	if trimmed == "" {
		content = fmt.Sprintf("[image: %s]", s.attachment.Name)
	}

	user := Message{
		ID:        s.newID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: s.now(),
	}
	s.messages = append(s.messages, user)
	s.seq++
	turn := Turn{
		User: user,
		Request: Request{
			Prompt:      s.draft,
			Model:       s.settings.Model,
			Temperature: s.settings.Temperature,
		},
		seq:   s.seq,
		image: s.attachment,
	}
	s.draft = ""
	s.attachment = nil
	s.lastErr = nil
	s.inFlight = true
	s.persistLocked()

	slog.Info("chat_send_start",
		"model", turn.Request.Model,
		"temperature", turn.Request.Temperature,
		"image", turn.image != nil,
	)
	slog.Log(context.Background(), logging.LevelTrace, "chat_send_prompt", "prompt", turn.Request.Prompt)
	return turn, nil
}

// Resolve performs the completion call for turn and appends exactly one
// assistant message. Service failures become FallbackReply and are
// recorded as the last error, never returned.
func (s *Session) Resolve(ctx context.Context, turn Turn) (Message, error) {
	if err := s.checkTurn(turn); err != nil {
		return Message{}, err
	}
	if turn.image != nil {
		return s.finish(turn, ImagePlaceholderReply, nil), nil
	}

	start := time.Now()
	text, err := s.completer.Complete(ctx, turn.Request)
	slog.Debug("chat_completion_done", "duration_ms", time.Since(start).Milliseconds(), "error", err != nil)
	return s.finish(turn, text, err), nil
}

// Stream is Resolve with incremental output. The channel must be drained;
// it is closed after the final event.
func (s *Session) Stream(ctx context.Context, turn Turn) (<-chan StreamEvent, error) {
	if err := s.checkTurn(turn); err != nil {
		return nil, err
	}

	events := make(chan StreamEvent, 16)
	go func() {
		defer close(events)

		if turn.image != nil {
			msg := s.finish(turn, ImagePlaceholderReply, nil)
			events <- StreamEvent{Done: true, Message: msg}
			return
		}

		var text string
		var err error
		if streamer, ok := s.completer.(StreamCompleter); ok {
			text, err = streamer.CompleteStream(ctx, turn.Request, func(delta string) {
				events <- StreamEvent{Delta: delta}
			})
		} else {
			text, err = s.completer.Complete(ctx, turn.Request)
			if err == nil && text != "" {
				events <- StreamEvent{Delta: text}
			}
		}

		msg := s.finish(turn, text, err)
		events <- StreamEvent{Done: true, Message: msg, Err: err}
	}()
	return events, nil
}

// Send is Begin followed by Resolve.
func (s *Session) Send(ctx context.Context) (Message, error) {
	turn, err := s.Begin()
	if err != nil {
		return Message{}, err
	}
	return s.Resolve(ctx, turn)
}

func (s *Session) checkTurn(turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inFlight || turn.seq == 0 || turn.seq != s.seq {
		return ErrStaleTurn
	}
	return nil
}

func (s *Session) finish(turn Turn, text string, callErr error) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	content := text
	if callErr != nil {
		content = FallbackReply
		s.lastErr = callErr
		slog.Error("chat_completion_failed", "model", turn.Request.Model, "error", callErr)
	} else {
		slog.Log(context.Background(), logging.LevelTrace, "chat_completion_text", "text", text)
	}

	reply := Message{
		ID:        s.newID(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: s.now(),
	}
	// The log may have been cleared meanwhile; the reply lands on whatever it is now.
	s.messages = append(s.messages, reply)
	s.inFlight = false
	s.persistLocked()
	return reply
}

// Clear empties the log and removes the persisted snapshot. An in-flight
// request is not cancelled.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	slog.Info("chat_history_cleared", "in_flight", s.inFlight)
	if s.history == nil {
		return nil
	}
	if err := s.history.ClearMessages(context.Background()); err != nil {
		slog.Error("history_clear_failed", "error", err)
		return err
	}
	return nil
}

func (s *Session) persistLocked() {
	if s.history == nil {
		return
	}
	if err := s.history.SaveMessages(context.Background(), s.messages); err != nil {
		slog.Error("history_save_failed", "error", err)
	}
}

// SetDraft replaces the composer text.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()
}

// Draft returns the composer text.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Attach sets the image for the next send, replacing any previous one.
func (s *Session) Attach(name string, data []byte) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrAttachmentName
	}
	s.mu.Lock()
	s.attachment = &Attachment{Name: name, Data: slices.Clone(data)}
	s.mu.Unlock()
	slog.Debug("chat_attachment_set", "name", name, "bytes", len(data))
	return nil
}

// Attachment returns the pending attachment name.
func (s *Session) Attachment() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attachment == nil {
		return "", false
	}
	return s.attachment.Name, true
}

// Detach drops the pending attachment.
func (s *Session) Detach() {
	s.mu.Lock()
	s.attachment = nil
	s.mu.Unlock()
}

// Models returns the selectable models.
func (s *Session) Models() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.models)
}

// Settings returns the current configuration.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetModel selects one of the configured models.
func (s *Session) SetModel(model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.models, model) {
		return fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	s.settings.Model = model
	return nil
}

// SetTemperature sets the sampling temperature. Values outside [0,1] are
// rejected and the previous value is kept.
func (s *Session) SetTemperature(t float64) error {
	if err := config.ValidateTemperature(t); err != nil {
		return err
	}
	s.mu.Lock()
	s.settings.Temperature = t
	s.mu.Unlock()
	return nil
}

// SetDarkMode sets and persists the dark-mode flag.
func (s *Session) SetDarkMode(dark bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.DarkMode = dark
	if s.history == nil {
		return nil
	}
	if err := s.history.SaveDarkMode(context.Background(), dark); err != nil {
		slog.Error("dark_mode_save_failed", "error", err)
		return err
	}
	return nil
}

// ToggleDarkMode flips and persists the dark-mode flag, returning the new value.
func (s *Session) ToggleDarkMode() (bool, error) {
	dark := !s.Settings().DarkMode
	return dark, s.SetDarkMode(dark)
}

// ApplySettings validates every field before changing anything.
func (s *Session) ApplySettings(next Settings) error {
	if err := config.ValidateTemperature(next.Temperature); err != nil {
		return err
	}
	s.mu.Lock()
	known := slices.Contains(s.models, next.Model)
	darkChanged := s.settings.DarkMode != next.DarkMode
	s.mu.Unlock()
	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownModel, next.Model)
	}

	s.mu.Lock()
	s.settings.Model = next.Model
	s.settings.Temperature = next.Temperature
	s.mu.Unlock()
	if darkChanged {
		return s.SetDarkMode(next.DarkMode)
	}
	return nil
}

// Messages returns a copy of the log.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

// LastAssistant returns the most recent assistant message.
func (s *Session) LastAssistant() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == RoleAssistant {
			return s.messages[i], true
		}
	}
	return Message{}, false
}

// InFlight reports whether a request is pending.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// LastError returns the error shown in the banner, if any.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// DismissError clears the banner without changing the log.
func (s *Session) DismissError() {
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
}

// HasCredential reports whether text sends can reach the completion service.
func (s *Session) HasCredential() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completer != nil
}

// State derives the state machine position from the transient fields.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.inFlight:
		return StateSending
	case s.lastErr != nil:
		return StateIdleWithError
	default:
		return StateIdle
	}
}
