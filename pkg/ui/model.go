// Package ui is the terminal front end: a Bubble Tea model that drives a
// chat.Session and lays out the chat panel, composer and overlays.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"gemini_chat/pkg/chat"
	"gemini_chat/pkg/config"
	"gemini_chat/pkg/ui/components/chatview"
	"gemini_chat/pkg/ui/components/composer"
	"gemini_chat/pkg/ui/components/picker"
	"gemini_chat/pkg/ui/components/settings"
	"gemini_chat/pkg/ui/components/statusbar"
	"gemini_chat/pkg/ui/components/welcome"
	"gemini_chat/pkg/ui/input"
	"gemini_chat/pkg/ui/styles"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

const (
	statusTTL     = 2 * time.Second
	speechPollGap = 500 * time.Millisecond
)

// Speaker reads text aloud.
type Speaker interface {
	Speak(text string) error
	Stop()
	IsSpeaking() bool
}

// Clipboard copies text to the system clipboard.
type Clipboard interface {
	Copy(text string) error
}

// Deps are the collaborators of the model. Speaker and Clipboard may be
// nil; the matching actions then report that they are unavailable.
type Deps struct {
	Session    *chat.Session
	Speaker    Speaker
	Clipboard  Clipboard
	Config     config.Config
	ConfigPath string

	// ReadFile loads attachments. Defaults to os.ReadFile.
	ReadFile func(string) ([]byte, error)
	// SaveConfig persists settings edits. Defaults to config.SaveUserSettings;
	// an empty ConfigPath disables saving.
	SaveConfig func(string, config.Config) error
}

// Model represents the Bubble Tea application state.
type Model struct {
	session    *chat.Session
	speaker    Speaker
	clipboard  Clipboard
	cfg        config.Config
	configPath string
	readFile   func(string) ([]byte, error)
	saveConfig func(string, config.Config) error

	keys      input.KeyMap
	styles    styles.Styles
	chatView  *chatview.ChatView
	composer  *composer.Composer
	settings  *settings.SettingsPanel
	picker    *picker.OptionPickerPanel
	statusBar *statusbar.StatusBarView

	width  int
	height int
	ready  bool

	status    string
	statusSeq int
	speaking  bool
}

// NewModel creates the root model for an already restored session.
func NewModel(deps Deps) Model {
	st := styles.New(deps.Session.Settings().DarkMode)

	m := Model{
		session:    deps.Session,
		speaker:    deps.Speaker,
		clipboard:  deps.Clipboard,
		cfg:        deps.Config,
		configPath: deps.ConfigPath,
		readFile:   deps.ReadFile,
		saveConfig: deps.SaveConfig,
		keys:       input.DefaultKeyMap(),
		styles:     st,
		chatView:   chatview.New(st),
		composer:   composer.New(st),
		settings:   settings.NewSettingsPanel(st),
		picker:     picker.NewOptionPickerPanel(st),
		statusBar:  statusbar.NewStatusBarView(st),
	}
	if m.readFile == nil {
		m.readFile = os.ReadFile
	}
	if m.saveConfig == nil {
		m.saveConfig = config.SaveUserSettings
	}
	m.chatView.SetEmptyLines(welcome.Lines(st))
	m.sync()
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return m.composer.Focus()
}

// Update handles messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.PasteMsg:
		if m.overlayVisible() || m.chatView.Focused() {
			return nil
		}
		m.composer.InsertString(msg.Content)
		return nil

	case composer.SubmitMsg:
		return m.submit(msg.Content)

	case composer.AttachPathMsg:
		return loadAttachment(m.readFile, msg.Path)

	case attachmentLoadedMsg:
		if msg.err != nil {
			slog.Warn("attachment_load_failed", "error", msg.err)
			return m.setStatus(msg.err.Error())
		}
		if err := m.session.Attach(msg.name, msg.data); err != nil {
			return m.setStatus(err.Error())
		}
		return m.setStatus("Attached " + msg.name)

	case replyMsg:
		if msg.err != nil {
			slog.Warn("chat_turn_dropped", "error", msg.err)
		}
		m.finishTurn()
		return nil

	case streamStartedMsg:
		return waitForStream(msg.events)

	case streamEventMsg:
		if msg.event.Done {
			m.finishTurn()
			return nil
		}
		m.chatView.AppendPending(msg.event.Delta)
		return waitForStream(msg.events)

	case chatview.CopyRequestMsg:
		return m.copyText(msg.Text)

	case chatview.SpeakRequestMsg:
		return m.speak(msg.Text)

	case clipboardMsg:
		if msg.err != nil {
			slog.Warn("clipboard_copy_failed", "error", msg.err)
			return m.setStatus("Copy failed: " + msg.err.Error())
		}
		return m.setStatus("Copied!")

	case speechTickMsg:
		m.speaking = m.speaker != nil && m.speaker.IsSpeaking()
		m.statusBar.SetSpeaking(m.speaking)
		if m.speaking {
			return tickSpeech()
		}
		return nil

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusBar.SetMessage("")
		}
		return nil

	case picker.OpenOptionPickerMsg:
		m.picker.SetSize(m.width, m.height)
		m.picker.Show(msg)
		return nil

	case picker.OptionPickerSelectMsg:
		m.settings.ApplyPick(msg.FieldKey, msg.Value)
		return nil

	case settings.SettingsSaveMsg:
		return m.applySettings(msg)

	case settings.SettingsCloseMsg:
		return m.composer.Focus()

	case configSavedMsg:
		if msg.err != nil {
			slog.Error("config_save_failed", "error", msg.err)
			return m.setStatus("Settings applied, but saving the config failed: " + msg.err.Error())
		}
		return m.setStatus("Settings saved")
	}

	// Cursor blink and other internal textarea messages.
	return m.composer.Update(msg)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		if m.speaker != nil {
			m.speaker.Stop()
		}
		return tea.Quit
	}
	if m.picker.IsVisible() {
		return m.picker.Update(msg)
	}
	if m.settings.IsVisible() {
		return m.settings.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Clear):
		if err := m.session.Clear(); err != nil {
			m.sync()
			return m.setStatus("History cleared, but removing the saved copy failed")
		}
		m.sync()
		return m.setStatus("History cleared")

	case key.Matches(msg, m.keys.ToggleTheme):
		if _, err := m.session.ToggleDarkMode(); err != nil {
			m.applyTheme()
			return m.setStatus("Theme changed, but saving it failed")
		}
		m.applyTheme()
		return nil

	case key.Matches(msg, m.keys.Settings):
		m.leaveChatFocus()
		m.composer.Blur()
		m.settings.SetSize(m.width, m.height)
		m.settings.Show(m.session.Settings(), m.cfg, m.configPath, m.session.Models())
		return nil

	case key.Matches(msg, m.keys.Attach):
		m.leaveChatFocus()
		m.composer.StartAttach()
		return m.composer.Focus()

	case key.Matches(msg, m.keys.Copy):
		last, ok := m.session.LastAssistant()
		if !ok {
			return m.setStatus("No reply to copy yet")
		}
		return m.copyText(last.Content)

	case key.Matches(msg, m.keys.Speak):
		last, ok := m.session.LastAssistant()
		if !ok {
			return m.setStatus("No reply to read yet")
		}
		return m.speak(last.Content)

	case key.Matches(msg, m.keys.StopSpeech):
		if m.speaker != nil {
			m.speaker.Stop()
		}
		m.speaking = false
		m.statusBar.SetSpeaking(false)
		return nil

	case key.Matches(msg, m.keys.FocusChat):
		if m.chatView.Focused() {
			m.leaveChatFocus()
			return m.composer.Focus()
		}
		m.composer.Blur()
		m.chatView.Focus()
		return nil

	case key.Matches(msg, m.keys.Dismiss):
		if m.chatView.Focused() {
			m.leaveChatFocus()
			return m.composer.Focus()
		}
		if m.composer.Mode() != composer.ModeAttachPath {
			m.session.DismissError()
			m.sync()
			return nil
		}
	}

	if m.chatView.Focused() {
		return m.chatView.Update(msg)
	}
	return m.composer.Update(msg)
}

// submit runs the synchronous half of a send and schedules the call.
func (m *Model) submit(content string) tea.Cmd {
	turn, err := m.session.BeginWith(content)
	if err != nil {
		// Empty draft and busy are silent; a missing credential shows in the banner.
		if !errors.Is(err, chat.ErrEmptyDraft) && !errors.Is(err, chat.ErrBusy) {
			slog.Warn("chat_send_rejected", "error", err)
		}
		m.sync()
		return nil
	}

	m.composer.Reset()
	m.chatView.SetPending("", true)
	m.sync()

	if m.cfg.Chat.Stream && !turn.HasImage() {
		return startStream(context.Background(), m.session, turn)
	}
	return resolveTurn(context.Background(), m.session, turn)
}

func (m *Model) finishTurn() {
	m.chatView.SetPending("", false)
	m.sync()
}

func (m *Model) applySettings(msg settings.SettingsSaveMsg) tea.Cmd {
	m.composer.Focus()
	if err := m.session.ApplySettings(msg.Settings); err != nil {
		m.applyTheme()
		return m.setStatus("Settings not applied: " + err.Error())
	}
	m.cfg = msg.Config
	m.applyTheme()
	slog.Info("settings_applied",
		"model", msg.Settings.Model,
		"temperature", msg.Settings.Temperature,
		"dark_mode", msg.Settings.DarkMode,
		"stream", msg.Config.Chat.Stream,
	)

	if msg.ConfigPath == "" {
		return m.setStatus("Settings applied")
	}
	return saveConfig(m.saveConfig, msg.ConfigPath, msg.Config)
}

func (m *Model) copyText(text string) tea.Cmd {
	if m.clipboard == nil {
		return m.setStatus("Clipboard is not available")
	}
	return copyToClipboard(m.clipboard, text)
}

func (m *Model) speak(text string) tea.Cmd {
	if m.speaker == nil {
		return m.setStatus("Read-aloud is not available: no speech synthesizer found")
	}
	if err := m.speaker.Speak(text); err != nil {
		slog.Warn("speech_failed", "error", err)
		return m.setStatus("Read-aloud failed: " + err.Error())
	}
	m.speaking = true
	m.statusBar.SetSpeaking(true)
	return tickSpeech()
}

// setStatus flashes text in the status bar until it is replaced or expires.
func (m *Model) setStatus(text string) tea.Cmd {
	m.statusSeq++
	m.status = text
	m.statusBar.SetMessage(text)
	return clearStatusAfter(m.statusSeq, statusTTL)
}

func (m *Model) leaveChatFocus() {
	if m.chatView.Focused() {
		m.chatView.Blur()
	}
}

func (m *Model) overlayVisible() bool {
	return m.settings.IsVisible() || m.picker.IsVisible()
}

// sync copies session state into the components.
func (m *Model) sync() {
	m.chatView.SetMessages(m.session.Messages())
	m.composer.SetLocked(m.session.InFlight())
	s := m.session.Settings()
	m.statusBar.SetState(m.session.State())
	m.statusBar.SetModel(s.Model, s.Temperature)
}

func (m *Model) applyTheme() {
	st := styles.New(m.session.Settings().DarkMode)
	m.styles = st
	m.chatView.SetStyles(st)
	m.chatView.SetEmptyLines(welcome.Lines(st))
	m.composer.SetStyles(st)
	m.settings.SetStyles(st)
	m.picker.SetStyles(st)
	m.statusBar.SetStyles(st)
	m.sync()
}
