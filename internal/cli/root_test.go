package cli

import (
	"bytes"
	"context"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/instrumap/pkg/buildinfo"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"render", "layout", "visualize", "inspect", "serve", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
}

func TestVersionTemplate(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), buildinfo.Version) || !strings.HasPrefix(out.String(), appName) {
		t.Errorf("version output = %q", out.String())
	}
}

func TestExecuteErrors(t *testing.T) {
	var stderr bytes.Buffer
	if err := Execute(context.Background(), &stderr, []string{"render"}); err == nil {
		t.Error("render without an input file should fail")
	}
	if err := Execute(context.Background(), &stderr, []string{"render", "-f", "gif", "x.yaml"}); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestExecuteVerbose(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	var stderr bytes.Buffer
	if err := Execute(context.Background(), &stderr, []string{"-v", "cache", "path"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}
