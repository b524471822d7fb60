package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistrations(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"run", "auth", "enrich", "profiles", "version"} {
		assert.True(t, names[want], "command %q should be registered", want)
	}
}

func TestProfilesSubcommands(t *testing.T) {
	profiles := newProfilesCmd()
	names := make(map[string]bool)
	for _, c := range profiles.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"list", "search", "show", "delete"} {
		assert.True(t, names[want], "profiles subcommand %q should be registered", want)
	}
}

func TestSetVersion(t *testing.T) {
	defer SetVersion(version)
	SetVersion("1.2.3")
	require.Equal(t, "1.2.3", rootCmd.Version)
}
