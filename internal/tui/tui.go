package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/quartz/internal/playback"
	"github.com/llehouerou/quartz/internal/player"
	"github.com/llehouerou/quartz/internal/queue"
)

// Engine is the slice of the playback engine the TUI needs.
type Engine interface {
	Controls() playback.Controls
	State() *playback.State
	Subscribe() *playback.Subscription
}

type eventMsg struct{ ev playback.Event }

type busClosedMsg struct{}

// Model is the terminal surface: a queue panel over a player bar. It holds
// a local mirror of the engine state, updated from bus events only; key
// presses go out as commands and never touch the mirror directly.
type Model struct {
	controls playback.Controls
	sub      *playback.Subscription
	keys     keyMap

	width  int
	height int

	status    player.Status
	buffering bool
	position  time.Duration
	duration  time.Duration
	track     queue.Track
	hasTrack  bool
	tracks    []queue.Track
	kind      queue.Kind
	quality   string
	errMsg    string

	cursor int
	offset int
}

// New builds a model seeded from the engine's current state, so the first
// frame is correct even before any event arrives.
func New(engine Engine) Model {
	state := engine.State()
	m := Model{
		controls: engine.Controls(),
		sub:      engine.Subscribe(),
		keys:     defaultKeyMap(),
		status:   state.Status(),
		position: state.Position(),
		duration: state.Duration(),
	}
	list := state.TrackList()
	m.tracks = list.Tracks
	m.kind = list.Kind
	if track, ok := state.CurrentTrack(); ok {
		m.track = track
		m.hasTrack = true
	}
	m.syncCursor()
	return m
}

// Run drives the TUI until the user quits or the engine shuts down.
func Run(ctx context.Context, engine Engine) error {
	p := tea.NewProgram(New(engine), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return m.listen()
}

// listen blocks on the bus subscription and feeds one event back into the
// update loop. Reissued after every event.
func (m Model) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.sub.Events()
		if !ok {
			return busClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case eventMsg:
		m.applyEvent(msg.ev)
		return m, m.listen()

	case busClosedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.controls.Send(playback.Quit{})
		// Stay alive until the engine closes the bus, so the final
		// state save happens before the terminal is restored.
		return m, nil

	case key.Matches(msg, m.keys.PlayPause):
		m.controls.Send(playback.PlayPause{})

	case key.Matches(msg, m.keys.Next):
		m.controls.Send(playback.Next{})

	case key.Matches(msg, m.keys.Previous):
		m.controls.Send(playback.Previous{})

	case key.Matches(msg, m.keys.Forward):
		m.controls.Send(playback.JumpForward{})

	case key.Matches(msg, m.keys.Backward):
		m.controls.Send(playback.JumpBackward{})

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.offset = 0

	case key.Matches(msg, m.keys.Bottom):
		if len(m.tracks) > 0 {
			m.cursor = len(m.tracks) - 1
			m.ensureCursorVisible()
		}

	case key.Matches(msg, m.keys.Select):
		if m.cursor < len(m.tracks) {
			m.controls.Send(playback.SkipToIndex{Position: m.tracks[m.cursor].Position})
		}
	}
	return m, nil
}

func (m *Model) applyEvent(ev playback.Event) {
	switch ev := ev.(type) {
	case playback.StatusEvent:
		m.status = ev.Status

	case playback.BufferingEvent:
		m.buffering = ev.IsBuffering

	case playback.PositionEvent:
		m.position = ev.Clock

	case playback.DurationEvent:
		m.duration = ev.Clock

	case playback.CurrentTrackEvent:
		m.track = ev.Track
		m.hasTrack = true
		m.markPlaying(ev.Track)
		m.syncCursor()

	case playback.TrackListEvent:
		m.tracks = ev.Tracks
		m.kind = ev.Kind
		m.quality = ""
		m.syncCursor()

	case playback.AudioQualityEvent:
		m.quality = formatQuality(ev.BitDepth, ev.SamplingRate)

	case playback.ErrorEvent:
		m.errMsg = ev.Message
	}
}

// markPlaying mirrors the engine's cursor move onto the local track list.
func (m *Model) markPlaying(current queue.Track) {
	for i := range m.tracks {
		switch {
		case m.tracks[i].Position == current.Position:
			m.tracks[i].Status = queue.Playing
		case m.tracks[i].Status == queue.Playing:
			if m.tracks[i].Position < current.Position {
				m.tracks[i].Status = queue.Played
			} else {
				m.tracks[i].Status = queue.Unplayed
			}
		}
	}
}

func (m *Model) moveCursor(delta int) {
	if len(m.tracks) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.tracks)-1)
	m.ensureCursorVisible()
}

// syncCursor snaps the cursor to the playing track.
func (m *Model) syncCursor() {
	for i, t := range m.tracks {
		if t.Status == queue.Playing {
			m.cursor = i
			m.ensureCursorVisible()
			return
		}
	}
	if m.cursor >= len(m.tracks) {
		m.cursor = max(len(m.tracks)-1, 0)
		m.ensureCursorVisible()
	}
}

func (m *Model) ensureCursorVisible() {
	visible := m.listHeight()
	if visible <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if maxOffset := max(len(m.tracks)-visible, 0); m.offset > maxOffset {
		m.offset = maxOffset
	}
}
