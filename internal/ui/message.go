package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSearchChanged MsgKind = iota
	MsgDetailChanged
	MsgSessionChanged
	MsgBrowserOpened
)

// searchChangedMsg is the constructor for [MsgSearchChanged]
func searchChangedMsg() Msg {
	return Msg{kind: MsgSearchChanged}
}

// detailChangedMsg is the constructor for [MsgDetailChanged]
func detailChangedMsg() Msg {
	return Msg{kind: MsgDetailChanged}
}

// sessionChangedMsg is the constructor for [MsgSessionChanged]
func sessionChangedMsg() Msg {
	return Msg{kind: MsgSessionChanged}
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(err error) Msg {
	return Msg{kind: MsgBrowserOpened, data: err}
}

// signal is a coalescing, non-blocking wake-up. At most one is ever pending.
type signal chan struct{}

func newSignal() signal {
	return make(signal, 1)
}

func (s signal) raise() {
	select {
	case s <- struct{}{}:
	default:
	}
}
