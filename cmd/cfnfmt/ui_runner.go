package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"cfnfmt/internal/driver"
	"cfnfmt/internal/source"
	"cfnfmt/internal/ui"
)

type formatOutcome struct {
	fileSet *source.FileSet
	results []driver.FormatResult
	err     error
}

func runFormatWithUI(ctx context.Context, title string, paths []string, opts driver.FormatOptions) (*source.FileSet, []driver.FormatResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan formatOutcome, 1)

	go func() {
		runOpts := opts
		runOpts.Progress = driver.ChannelSink{Ch: events}
		fileSet, results, err := driver.FormatPaths(ctx, paths, runOpts)
		outcomeCh <- formatOutcome{fileSet: fileSet, results: results, err: err}
		close(events)
	}()

	// файлы каталогов появятся в модели по мере прихода событий
	model := ui.NewProgressModel(title, nil, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		// модель больше не читает канал, не даём драйверу зависнуть
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}
