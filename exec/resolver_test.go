package exec

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"syscall"
	"testing"

	"go.dw1.io/proc/internal/kerneltest"
)

func testResolver(t *testing.T, k *kerneltest.Kernel, env map[string]string) *Resolver {
	t.Helper()

	r := New(
		WithCaller(k),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithLookupEnv(func(key string) string { return env[key] }),
		WithEnviron(func() []string { return []string{"PATH=" + env["PATH"]} }),
	)
	if r.optErr != nil {
		t.Fatalf("resolver option error: %v", r.optErr)
	}
	return r
}

func TestSearchTriesCandidatesInOrder(t *testing.T) {
	k := kerneltest.New()
	r := testResolver(t, k, map[string]string{"PATH": "/usr/bin:/bin:/opt/bin"})

	err := r.ExecSearch("ls", []string{"ls"}, nil)
	if !errors.Is(err, syscall.ENOENT) {
		t.Fatalf("ExecSearch error = %v, want ENOENT", err)
	}

	want := []string{"/usr/bin/ls", "/bin/ls", "/opt/bin/ls"}
	if got := k.ExecAttempts(); !reflect.DeepEqual(got, want) {
		t.Fatalf("attempts = %v, want %v", got, want)
	}
}

func TestSearchContinuesPastMissingCandidate(t *testing.T) {
	// PATH = "/usr/bin:/bin", "/usr/bin/ls" absent, "/bin/ls" present:
	// resolution succeeds via the second candidate with no error.
	k := kerneltest.New()
	k.AddProgram("/bin/ls")
	r := testResolver(t, k, map[string]string{"PATH": "/usr/bin:/bin"})

	if err := r.ExecSearch("ls", []string{"ls", "-l"}, nil); err != nil {
		t.Fatalf("ExecSearch returned error: %v", err)
	}

	want := []string{"/usr/bin/ls", "/bin/ls"}
	if got := k.ExecAttempts(); !reflect.DeepEqual(got, want) {
		t.Fatalf("attempts = %v, want %v", got, want)
	}
}

func TestSearchStopsOnDecisiveError(t *testing.T) {
	// "/a/tool" exists but is not executable: that failure wins
	// immediately, untried candidates notwithstanding.
	k := kerneltest.New()
	k.FailProgram("/a/tool", syscall.EACCES)
	k.AddProgram("/b/tool")
	r := testResolver(t, k, map[string]string{"PATH": "/a:/b"})

	err := r.ExecSearch("tool", []string{"tool"}, nil)
	if !errors.Is(err, syscall.EACCES) {
		t.Fatalf("ExecSearch error = %v, want EACCES", err)
	}

	if got := k.ExecAttempts(); len(got) != 1 || got[0] != "/a/tool" {
		t.Fatalf("attempts = %v, want [/a/tool]", got)
	}
}

func TestSearchExhaustionYieldsENOENT(t *testing.T) {
	for _, path := range []string{"/only", "/a:/b:/c"} {
		k := kerneltest.New()
		r := testResolver(t, k, map[string]string{"PATH": path})

		if err := r.ExecSearch("nothing", []string{"nothing"}, nil); !errors.Is(err, syscall.ENOENT) {
			t.Fatalf("PATH=%q: error = %v, want ENOENT", path, err)
		}
	}
}

func TestSeparatorBypassesSearch(t *testing.T) {
	// Even with PATH unset, and even though the path does not exist.
	k := kerneltest.New()
	r := testResolver(t, k, map[string]string{})

	err := r.ExecSearch("./frob", []string{"./frob"}, nil)
	if !errors.Is(err, syscall.ENOENT) {
		t.Fatalf("ExecSearch error = %v, want ENOENT", err)
	}
	if got := k.ExecAttempts(); len(got) != 1 || got[0] != "./frob" {
		t.Fatalf("attempts = %v, want [./frob]", got)
	}
}

func TestEmptyNamePassesThroughUnresolved(t *testing.T) {
	k := kerneltest.New()
	r := testResolver(t, k, map[string]string{"PATH": "/bin"})

	err := r.ExecSearch("", []string{""}, nil)
	if !errors.Is(err, syscall.ENOENT) {
		t.Fatalf("ExecSearch error = %v, want ENOENT", err)
	}
	if got := k.ExecAttempts(); len(got) != 1 || got[0] != "" {
		t.Fatalf("attempts = %v, want one empty attempt", got)
	}
}

func TestUnsetPathUsesDefaultPair(t *testing.T) {
	k := kerneltest.New()
	r := testResolver(t, k, map[string]string{})

	_ = r.ExecSearch("ls", []string{"ls"}, nil)

	want := []string{"/bin/ls", "/usr/bin/ls"}
	if got := k.ExecAttempts(); !reflect.DeepEqual(got, want) {
		t.Fatalf("attempts = %v, want %v", got, want)
	}
}

func TestEmptyPathComponentMeansCurrentDirectory(t *testing.T) {
	k := kerneltest.New()
	r := testResolver(t, k, map[string]string{"PATH": "/a::/b"})

	_ = r.ExecSearch("x", []string{"x"}, nil)

	want := []string{"/a/x", "./x", "/b/x"}
	if got := k.ExecAttempts(); !reflect.DeepEqual(got, want) {
		t.Fatalf("attempts = %v, want %v", got, want)
	}
}

func TestTrailingSlashYieldsDoubledSeparator(t *testing.T) {
	// Trailing slashes are not trimmed; the path resolver tolerates
	// the doubled separator.
	k := kerneltest.New()
	r := testResolver(t, k, map[string]string{"PATH": "/a/"})

	_ = r.ExecSearch("x", []string{"x"}, nil)

	if got := k.ExecAttempts(); len(got) != 1 || got[0] != "/a//x" {
		t.Fatalf("attempts = %v, want [/a//x]", got)
	}
}

func TestDecisiveErrorNotMaskedByDiagnostics(t *testing.T) {
	// The Debug handler below runs between the failing trap and the
	// return; the caller must still observe EACCES.
	var logged int
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})

	k := kerneltest.New()
	k.FailProgram("/a/tool", syscall.EACCES)
	r := New(
		WithCaller(k),
		WithLogger(slog.New(countingHandler{inner: handler, n: &logged})),
		WithLookupEnv(func(string) string { return "/a" }),
	)

	err := r.ExecSearch("tool", []string{"tool"}, nil)
	if !errors.Is(err, syscall.EACCES) {
		t.Fatalf("ExecSearch error = %v, want EACCES", err)
	}
	if logged == 0 {
		t.Fatal("expected a diagnostic line for the failing candidate")
	}
}

type countingHandler struct {
	inner slog.Handler
	n     *int
}

func (h countingHandler) Enabled(ctx context.Context, level slog.Level) bool { return true }
func (h countingHandler) Handle(ctx context.Context, r slog.Record) error {
	*h.n++
	return h.inner.Handle(ctx, r)
}
func (h countingHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h countingHandler) WithGroup(name string) slog.Handler       { return h }
