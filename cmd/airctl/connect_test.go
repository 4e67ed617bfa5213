package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/philips-airctrl/airctl-go/pkg/config"
)

// flagCmd builds a bare cobra.Command carrying the same flags
// resolveProfile reads off of main's persistent flag set, without
// wiring the rest of the CLI.
func flagCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("host", "", "")
	cmd.Flags().Int("port", 0, "")
	cmd.Flags().String("profile", "", "")
	cmd.Flags().Bool("json", false, "")
	cmd.Flags().Duration("dial-timeout", 0, "")
	cmd.Flags().Int("retry-count", 0, "")
	cmd.Flags().String("log-file", "", "")
	return cmd
}

func TestResolveProfileRequiresHost(t *testing.T) {
	if _, err := resolveProfile(flagCmd()); err == nil {
		t.Fatalf("expected an error when no host is configured")
	}
}

func TestResolveProfileFromFlagsOnly(t *testing.T) {
	cmd := flagCmd()
	cmd.Flags().Set("host", "10.0.0.5")
	cmd.Flags().Set("port", "5683")

	profile, err := resolveProfile(cmd)
	if err != nil {
		t.Fatalf("resolveProfile failed: %v", err)
	}
	if profile.Host != "10.0.0.5" || profile.Port != 5683 {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestResolveProfileFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := config.Write(&config.Profile{Host: "file-host", Port: 5683, DialTimeout: 5 * time.Second, RetryCount: 5}, path); err != nil {
		t.Fatalf("failed to write fixture profile: %v", err)
	}

	cmd := flagCmd()
	cmd.Flags().Set("profile", path)
	cmd.Flags().Set("host", "flag-host")

	profile, err := resolveProfile(cmd)
	if err != nil {
		t.Fatalf("resolveProfile failed: %v", err)
	}
	if profile.Host != "flag-host" {
		t.Errorf("expected the --host flag to win over the profile file, got %q", profile.Host)
	}
}
