package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// step is one line of a scripted event sequence: either an Intent (optionally with Fail) or FireTimer.
// When Intent is set, the runner acts on it and ignores FireTimer; a step with neither is rejected.
type step struct {
	// Intent is one of start, close, suspend, shutdown — delivered to the Monitor directly.
	Intent string `yaml:"intent,omitempty"`
	// Fail, when true on a start step, tells the demo layer to report a failure instead of a success for
	// the next open it is asked for. It is ignored on steps with any other intent.
	Fail bool `yaml:"fail,omitempty"`
	// FireTimer fires the pending retry timer, simulating the retry interval elapsing.
	FireTimer bool `yaml:"fire_timer,omitempty"`
}

// script is the top-level shape of a scenario file: a name for the banner and an ordered list of steps.
type script struct {
	Name  string `yaml:"name"`
	Steps []step `yaml:"steps"`
}

func loadScript(path string) (*script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}

	var s script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	return &s, nil
}
