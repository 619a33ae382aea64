// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startWatcher runs w in the background and returns a stop function that
// cancels it and reports Run's result.
func startWatcher(t *testing.T, w *Watcher) (stop func() error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	return func() error {
		cancel()
		select {
		case err := <-errCh:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("Run() did not return after cancellation")
			return nil
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu    sync.Mutex
		calls int
		got   []string
	)
	done := make(chan struct{})

	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 100 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			got = append(got, changed...)
			if calls == 1 {
				close(done)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	for _, name := range []string{"overview.md", "business.md", "technical.md"} {
		writeFile(t, filepath.Join(dir, name), "# doc")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(200 * time.Millisecond)

	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected 1 debounced callback, got %d", calls)
	}
	for _, want := range []string{"business.md", "overview.md", "technical.md"} {
		if !slices.Contains(got, want) {
			t.Errorf("expected %q in changed paths, got %v", want, got)
		}
	}
	if !slices.IsSorted(got) {
		t.Errorf("changed paths should be sorted, got %v", got)
	}
}

func TestWatcherIgnorePatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)

	w, err := New(Config{
		BaseDir:  dir,
		Ignore:   []string{"**/*.log"},
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "deploy.log"), "noise")
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "technical.md"), "# Technical")

	select {
	case changed := <-fired:
		if slices.Contains(changed, "deploy.log") {
			t.Error("ignored file deploy.log appeared in changed set")
		}
		if !slices.Contains(changed, "technical.md") {
			t.Errorf("expected technical.md in changed set, got %v", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}

	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestWatcherPatternFiltering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "docs"), 0o755); err != nil {
		t.Fatal(err)
	}
	fired := make(chan []string, 10)

	w, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"docs/**"},
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "notes.txt"), "unrelated")
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "docs", "overview.md"), "# Overview")

	select {
	case changed := <-fired:
		if slices.Contains(changed, "notes.txt") {
			t.Error("non-matching file notes.txt appeared in changed set")
		}
		if !slices.Contains(changed, "docs/overview.md") {
			t.Errorf("expected docs/overview.md in changed set, got %v", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}

	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestWatcherNewDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)

	w, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"functions/**/*.py"},
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	if err := os.Mkdir(filepath.Join(dir, "functions"), 0o755); err != nil {
		t.Fatal(err)
	}
	// Give fsnotify time to register the created directory.
	time.Sleep(200 * time.Millisecond)
	if err := os.Mkdir(filepath.Join(dir, "functions", "billing"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "functions", "billing", "handler.py"), "def handler(): pass")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-fired:
			if slices.Contains(changed, "functions/billing/handler.py") {
				if err := stop(); err != nil {
					t.Fatalf("Run() error: %v", err)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for change inside a new directory")
		}
	}
}

func TestWatcherContextCancel(t *testing.T) {
	t.Parallel()

	w, err := New(Config{
		BaseDir:  t.TempDir(),
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	time.Sleep(50 * time.Millisecond)

	if err := stop(); err != nil {
		t.Fatalf("Run() returned error on cancel: %v", err)
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	w := &Watcher{ignores: DefaultIgnores()}

	tests := []struct {
		path    string
		ignored bool
	}{
		{".git/config", true},
		{".git/objects/ab/cd1234", true},
		{"node_modules/aws-sdk/index.js", true},
		{"functions/billing/__pycache__/handler.cpython-312.pyc", true},
		{".venv/lib/python3.12/site.py", true},
		{"infra/.terraform/providers/aws", true},
		{"cdk.out/manifest.json", true},
		{"technical.md.swp", true},
		{"technical.md.swo", true},
		{"overview.md~", true},
		{".DS_Store", true},
		{"docs/.DS_Store", true},
		{"technical.md", false},
		{"functions/billing/handler.py", false},
		{"infra/main.tf", false},
		{".gitignore", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := w.isIgnored(tt.path); got != tt.ignored {
				t.Errorf("isIgnored(%q) = %v, want %v", tt.path, got, tt.ignored)
			}
		})
	}
}

func TestDefaultIgnoresReturnsCopy(t *testing.T) {
	t.Parallel()

	got := DefaultIgnores()
	got[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores() should return a copy")
	}
}

func TestWatcherSkipIfBusy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu          sync.Mutex
		calls       int
		inFlight    int
		overlapping bool
	)
	firstDone := make(chan struct{})

	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(_ context.Context, _ []string) error {
			mu.Lock()
			calls++
			n := calls
			inFlight++
			if inFlight > 1 {
				overlapping = true
			}
			mu.Unlock()

			if n == 1 {
				time.Sleep(300 * time.Millisecond)
				close(firstDone)
			}

			mu.Lock()
			inFlight--
			mu.Unlock()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "first.md"), "1")
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "second.md"), "2")

	select {
	case <-firstDone:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first callback")
	}
	time.Sleep(300 * time.Millisecond)

	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if overlapping {
		t.Error("callbacks ran concurrently")
	}
	if calls != 2 {
		t.Errorf("expected the busy fire to be rescheduled into a second call, got %d calls", calls)
	}
}

func TestWatcherClearScreen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	done := make(chan struct{})
	var stdout syncBuffer

	w, err := New(Config{
		BaseDir:     dir,
		Debounce:    50 * time.Millisecond,
		ClearScreen: true,
		Stdout:      &stdout,
		Logger:      quietLogger(),
		OnChange: func(_ context.Context, _ []string) error {
			close(done)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "overview.md"), "x")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !strings.Contains(stdout.String(), clearScreen) {
		t.Errorf("expected ANSI clear sequence in stdout, got %q", stdout.String())
	}
}

func TestWatcherCallbackErrorIsLogged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	done := make(chan struct{})
	var logs syncBuffer

	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 50 * time.Millisecond,
		Logger:   slog.New(slog.NewTextHandler(&logs, nil)),
		OnChange: func(_ context.Context, _ []string) error {
			defer close(done)
			return errors.New("drift run exploded")
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "technical.md"), "x")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(50 * time.Millisecond)
	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !strings.Contains(logs.String(), "drift run exploded") {
		t.Errorf("callback error should be logged, got %q", logs.String())
	}
}

func TestWatcherInvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := New(Config{
		BaseDir:  t.TempDir(),
		Patterns: []string{"[invalid"},
		Logger:   quietLogger(),
	})
	if err == nil {
		t.Fatal("New() should reject a malformed glob")
	}
	if !errors.Is(err, ErrInvalidWatchConfig) {
		t.Errorf("error should wrap ErrInvalidWatchConfig, got %v", err)
	}
}

func TestWatcherDoubleRunError(t *testing.T) {
	t.Parallel()

	w, err := New(Config{
		BaseDir:  t.TempDir(),
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	time.Sleep(50 * time.Millisecond)

	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}

	if err := stop(); err != nil {
		t.Fatalf("first Run() returned error: %v", err)
	}
}

func TestWatcherBaseDirIsAbsolute(t *testing.T) {
	t.Parallel()

	w, err := New(Config{BaseDir: t.TempDir(), Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = w.fsw.Close() })

	if !filepath.IsAbs(w.BaseDir()) {
		t.Errorf("BaseDir() = %q, want absolute", w.BaseDir())
	}
}

// syncBuffer guards a bytes.Buffer written from the debounce goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
