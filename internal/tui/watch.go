package tui

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// dataChangedMsg reports that the data file was rewritten, by this process
// or another front end.
type dataChangedMsg struct{}

type watchErrMsg struct {
	err error
}

// fileWatcher follows a single file. The parent directory is watched because
// saves replace the file by rename.
type fileWatcher struct {
	watcher *fsnotify.Watcher
	name    string
}

func newFileWatcher(path string) (*fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &fileWatcher{watcher: w, name: abs}, nil
}

// next blocks until the watched file changes and reports it as a message.
// It must be re-issued after every message it produces.
func (fw *fileWatcher) next() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != fw.name {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					return dataChangedMsg{}
				}
			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

func (fw *fileWatcher) Close() error {
	return fw.watcher.Close()
}
