/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"dirpx.dev/cref"
	"dirpx.dev/cref/fixture"
)

// reloadDelay collapses the burst of events an editor save produces.
const reloadDelay = 100 * time.Millisecond

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Resolve every reference declared in the fixture",
	Long: `Resolve the fixture's references and print one line per reference:
its status, the reference as written, and the path it resolved to (or
would resolve to).

With --watch the fixture is reloaded and checked again whenever it
changes, until interrupted.

Examples:
  cref check -f objs.yaml
  cref check -f objs.yaml --strict
  cref check -f objs.yaml --watch`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolP("watch", "w", false, "re-check whenever the fixture changes")
	checkCmd.Flags().Bool("strict", false, "fail when a reference does not resolve")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	watch, _ := cmd.Flags().GetBool("watch")
	strict, _ := cmd.Flags().GetBool("strict")

	path := v.GetString("fixture")
	if path == "" {
		return fmt.Errorf("check: --fixture is required")
	}
	f, err := fixture.Load(path)
	if err != nil {
		return err
	}
	unresolved, err := check(cmd.OutOrStdout(), f)
	if err != nil {
		return err
	}
	if !watch {
		if strict && unresolved > 0 {
			return fmt.Errorf("%w: %d reference(s)", errUnresolved, unresolved)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return watchFixture(ctx, path, func() {
		if err := reload(cmd.OutOrStdout(), path); err != nil {
			logger.Error("reload failed", slog.String("path", path), slog.Any("error", err))
		}
	})
}

// check resolves the references of f and reports how many did not resolve.
func check(w io.Writer, f *fixture.Fixture) (int, error) {
	proxies, err := f.Proxies(cref.Resolver())
	if err != nil {
		return 0, err
	}
	unresolved := 0
	for _, p := range proxies {
		status := "ok"
		if !p.Resolved() {
			status = "unresolved"
			unresolved++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", status, p.Raw(), p.Path(), p.Kind())
	}
	fmt.Fprintf(w, "%d reference(s), %d unresolved\n", len(proxies), unresolved)
	return unresolved, nil
}

// reload replaces the registry contents with the fixture at path and
// checks it again.
func reload(w io.Writer, path string) error {
	f, err := fixture.Load(path)
	if err != nil {
		return err
	}
	cref.Clear()
	for kw, kind := range cref.Config().Links {
		if err := cref.RegisterLink(kw, kind); err != nil {
			return err
		}
	}
	if err := f.Apply(cref.Resolver()); err != nil {
		return err
	}
	fmt.Fprintf(w, "--- %s reloaded at %s\n", path, time.Now().Format(time.TimeOnly))
	_, err = check(w, f)
	return err
}

// watchFixture calls onChange after path is written, created or renamed
// over. The parent directory is watched so editors that replace the file
// are still seen.
func watchFixture(ctx context.Context, path string, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	logger.Info("watching fixture", slog.String("path", abs))

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDelay, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", slog.Any("error", err))
		}
	}
}
