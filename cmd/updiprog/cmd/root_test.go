package cmd

import "testing"

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := []string{"ping", "erase", "write", "read", "verify", "reset"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected a %q subcommand", name)
		}
	}
}
