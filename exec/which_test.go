package exec

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"go.dw1.io/proc/internal/kerneltest"
)

func writeFile(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), mode); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func whichResolver(t *testing.T, pathValue string) *Resolver {
	t.Helper()

	return New(
		WithCaller(kerneltest.New()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithLookupEnv(func(key string) string {
			if key == PathEnv {
				return pathValue
			}
			return ""
		}),
	)
}

func TestWhichFindsFirstExecutableCandidate(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, first, "tool", 0o644) // present but not executable
	want := writeFile(t, second, "tool", 0o755)

	r := whichResolver(t, first+":"+second)

	got, err := r.Which("tool")
	if err != nil {
		t.Fatalf("Which returned error: %v", err)
	}
	if got != want {
		t.Fatalf("Which = %q, want %q", got, want)
	}
}

func TestWhichNotFound(t *testing.T) {
	r := whichResolver(t, t.TempDir())

	if _, err := r.Which("no-such-tool"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Which error = %v, want ErrNotFound", err)
	}
}

func TestWhichSeparatorBypassesSearch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tool", 0o755)

	r := whichResolver(t, "/definitely/absent")

	got, err := r.Which(path)
	if err != nil {
		t.Fatalf("Which returned error: %v", err)
	}
	if got != path {
		t.Fatalf("Which = %q, want %q", got, path)
	}
}

func TestWhichCachesSuccessfulResolutions(t *testing.T) {
	dir := t.TempDir()
	want := writeFile(t, dir, "tool", 0o755)

	r := whichResolver(t, dir)

	got, err := r.Which("tool")
	if err != nil || got != want {
		t.Fatalf("Which = %q, %v; want %q, nil", got, err, want)
	}

	// The cached entry survives the file going away.
	if err := os.Remove(want); err != nil {
		t.Fatalf("removing %s: %v", want, err)
	}
	got, err = r.Which("tool")
	if err != nil || got != want {
		t.Fatalf("cached Which = %q, %v; want %q, nil", got, err, want)
	}
}

func TestWhichDoesNotCacheMisses(t *testing.T) {
	dir := t.TempDir()
	r := whichResolver(t, dir)

	if _, err := r.Which("tool"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Which error = %v, want ErrNotFound", err)
	}

	want := writeFile(t, dir, "tool", 0o755)
	got, err := r.Which("tool")
	if err != nil || got != want {
		t.Fatalf("Which after creation = %q, %v; want %q, nil", got, err, want)
	}
}
