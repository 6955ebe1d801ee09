package cmd

import (
	"testing"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{
		"serve", "mcp", "grant", "revoke", "status", "discover",
		"ui", "tap", "swipe", "type", "key", "launch", "notify", "screenshot", "info", "do",
	}
	commands := rootCmd.Commands()

	found := make(map[string]bool)
	for _, c := range commands {
		found[c.Name()] = true
	}

	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestClientCommands_HaveAddrFlag(t *testing.T) {
	for _, c := range []string{"ui", "tap", "swipe", "type", "key", "launch", "notify", "screenshot", "info", "do"} {
		cmd, _, err := rootCmd.Find([]string{c})
		if err != nil {
			t.Fatalf("Find(%q): %v", c, err)
		}
		if cmd.Flags().Lookup("addr") == nil || cmd.Flags().Lookup("discover") == nil {
			t.Errorf("%s is missing --addr/--discover", c)
		}
	}
}
