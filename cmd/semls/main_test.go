package main

import "testing"

func TestRootCmd_HasServeAndIndexSubcommands(t *testing.T) {
	root := rootCmd()

	names := map[string]bool{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"serve", "index"} {
		if !names[want] {
			t.Fatalf("missing subcommand %q, got %v", want, names)
		}
	}
}

func TestLoadConfig_DefaultsWhenNoPathGiven(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig(\"\") returned error: %v", err)
	}
	if cfg.Index.Backend != "reference" {
		t.Fatalf("expected default backend %q, got %q", "reference", cfg.Index.Backend)
	}
}
