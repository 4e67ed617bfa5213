package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philips-airctrl/airctl-go/pkg/client"
	"github.com/philips-airctrl/airctl-go/pkg/config"
	"github.com/philips-airctrl/airctl-go/pkg/logging"
)

// resolveProfile merges a --profile file (if given) with any
// explicitly-set --host/--port/--dial-timeout/--retry-count flags,
// flags taking precedence. At least one source must supply a host.
func resolveProfile(cmd *cobra.Command) (*config.Profile, error) {
	profile := &config.Profile{}

	if path, _ := cmd.Flags().GetString("profile"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		profile = loaded
	}

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		profile.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		profile.Port = port
	}
	if dialTimeout, _ := cmd.Flags().GetDuration("dial-timeout"); dialTimeout != 0 {
		profile.DialTimeout = dialTimeout
	}
	if retryCount, _ := cmd.Flags().GetInt("retry-count"); retryCount != 0 {
		profile.RetryCount = retryCount
	}

	if profile.Host == "" {
		return nil, fmt.Errorf("a device host is required: pass --host or --profile")
	}
	return profile, nil
}

// connect builds a Client from the command's resolved profile and
// flags, wiring a file-backed logger when --log-file is given.
func connect(ctx context.Context, cmd *cobra.Command) (*client.Client, error) {
	profile, err := resolveProfile(cmd)
	if err != nil {
		return nil, err
	}

	logPath, _ := cmd.Flags().GetString("log-file")
	logger, err := logging.New("airctl", logging.INFO, logPath)
	if err != nil {
		return nil, err
	}

	opts := []client.Option{client.WithLogger(logger)}
	if profile.DialTimeout > 0 {
		opts = append(opts, client.WithDialTimeout(profile.DialTimeout))
	}
	if profile.RetryCount > 0 {
		opts = append(opts, client.WithRetryCount(profile.RetryCount))
	}

	return client.Create(ctx, profile.Host, profile.Port, opts...)
}

func wantsJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
