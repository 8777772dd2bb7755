package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vogtb/go-spreadsheet/packages/sheetfile"
	"go.uber.org/multierr"
)

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file.csv>",
		Short: "Reprint a saved sheet every time the file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			refresh := func() {
				s, err := sheetfile.LoadFile(path, sheetfile.WithLogger(a.logger))
				if s == nil {
					a.logger.WithError(err).WithField("file", path).Error("load failed")
					return
				}
				for _, e := range multierr.Errors(err) {
					a.logger.WithError(e).Warn("cell failed to evaluate")
				}
				fmt.Fprintf(out, "== %s\n", path)
				if err := renderGrid(out, s); err != nil {
					a.logger.WithError(err).Error("render failed")
				}
			}

			refresh()
			return watchFile(ctx, path, a.logger, refresh)
		},
	}
}

// watchFile calls onChange whenever path is written or replaced, until ctx
// is done. the parent directory is watched so that editors and SaveFile,
// which replace the file by rename, keep being noticed.
func watchFile(ctx context.Context, path string, log logrus.FieldLogger, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				log.WithField("op", event.Op.String()).Debug("file changed")
				onChange()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")
		}
	}
}
