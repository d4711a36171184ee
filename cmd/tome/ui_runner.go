package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"tome/internal/driver"
	"tome/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --progress value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout) && isTerminal(os.Stderr)
	}
}

type parseOutcome struct {
	result *driver.Result
	err    error
}

// loadWithUI runs loadRegistry while a progress model renders its events.
func (s *session) loadWithUI(ctx context.Context, title string, paths []string, opts loadOptions) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan parseOutcome, 1)

	go func() {
		o := opts
		o.progress = driver.ChannelSink{Ch: events}
		res, err := s.loadRegistry(ctx, paths, o)
		outcomeCh <- parseOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// модель могла выйти раньше (ctrl+c): дочитываем события, чтобы парсер не встал
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
