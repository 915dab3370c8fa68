package main

import (
	"fmt"
	"strconv"

	"github.com/samuelfneumann/gopanda/agent"
	"github.com/samuelfneumann/gopanda/agent/remote"
	"github.com/samuelfneumann/gopanda/environment/envconfig"
)

// parseEnvID returns id if it names a registered environment
func parseEnvID(id string) (string, error) {
	if _, err := envconfig.Lookup(id); err != nil {
		return "", fmt.Errorf("unknown environment %q, expected one of %v",
			id, envconfig.IDs())
	}
	return id, nil
}

// parseAlgorithm returns the learner algorithm named by s
func parseAlgorithm(s string) (agent.Type, error) {
	algo, err := remote.ParseAlgorithm(s)
	if err != nil {
		return "", fmt.Errorf("unknown algorithm %q, expected %v or %v", s,
			remote.TQC, remote.SAC)
	}
	return algo, nil
}

// parseTimesteps returns the non-negative number of timesteps in s
func parseTimesteps(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("timesteps must be a non-negative integer, "+
			"got %q", s)
	}
	return n, nil
}
