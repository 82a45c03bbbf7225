package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
)

func TestWatchReportsChangedInputs(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "a.yaml")
	other := filepath.Join(dir, "b.yaml")
	for _, p := range []string{watched, other} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := New(io.Discard, log.InfoLevel)
	got := make(chan []string, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.watch(ctx, []string{watched}, func(_ context.Context, changed []string) error {
			select {
			case got <- changed:
			default:
			}
			return nil
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(other, []byte("y"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(watched, []byte("y"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case changed := <-got:
		if diff := cmp.Diff([]string{watched}, changed); diff != "" {
			t.Errorf("changed inputs mismatch (-want +got):\n%s", diff)
		}
	case <-ctx.Done():
		t.Fatal("no change reported")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watch() = %v, want nil after cancel", err)
	}
}
