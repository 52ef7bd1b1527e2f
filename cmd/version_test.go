package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	buf := new(bytes.Buffer)
	versionCmd.SetOut(buf)
	versionCmd.Run(versionCmd, nil)

	out := buf.String()
	if !strings.Contains(out, "globus-agent") {
		t.Errorf("version output missing binary name: %q", out)
	}
	if !strings.Contains(out, AppVersion) {
		t.Errorf("version output missing version: %q", out)
	}
}

func TestRootHasSubcommands(t *testing.T) {
	want := map[string]bool{"serve": false, "index": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("root command missing %q subcommand", name)
		}
	}
}
