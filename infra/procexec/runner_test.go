package procexec

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunner_CapturesStreams(t *testing.T) {
	r := New(nil)
	out, err := r.Run(context.Background(), "sh", []string{"-c", "echo hello; echo oops >&2"}, "", 10*time.Second)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.Stdout, "hello") {
		t.Fatalf("stdout %q missing output", out.Stdout)
	}
	if !strings.Contains(out.Stderr, "oops") {
		t.Fatalf("stderr %q missing output", out.Stderr)
	}
}

func TestRunner_NonZeroExit(t *testing.T) {
	r := New(nil)
	out, err := r.Run(context.Background(), "sh", []string{"-c", "echo broken >&2; exit 3"}, "", 10*time.Second)
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(out.Stderr, "broken") {
		t.Fatalf("stderr %q not captured on failure", out.Stderr)
	}
}

func TestRunner_SpawnError(t *testing.T) {
	r := New(nil)
	if _, err := r.Run(context.Background(), "definitely-not-a-command", nil, "", time.Second); err == nil {
		t.Fatal("expected spawn error")
	}
}

func TestRunner_Timeout(t *testing.T) {
	r := New(nil)
	start := time.Now()
	_, err := r.Run(context.Background(), "sleep", []string{"10"}, "", 200*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("process not killed on timeout, waited %s", elapsed)
	}
}

func TestRunner_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	r := New(nil)
	start := time.Now()
	if _, err := r.Run(ctx, "sleep", []string{"10"}, "", 0); err == nil {
		t.Fatal("expected error after cancellation")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("process not killed on cancel, waited %s", elapsed)
	}
}

func TestRunner_WorkDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("here"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := New(nil)
	out, err := r.Run(context.Background(), "cat", []string{"marker.txt"}, dir, 10*time.Second)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.Stdout, "here") {
		t.Fatalf("workdir not applied, stdout %q", out.Stdout)
	}
}
