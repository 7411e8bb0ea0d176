// Package targets lists the boards the startup sequence is configured for.
package targets

import (
	_ "embed"
	"errors"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"omibyte.io/hercules/tms570/startup"
)

//go:embed targets.yaml
var rawTargets []byte

var targets Targets

var ErrTargetNotFound = errors.New("target not found")

func All() Targets {
	return targets
}

type Targets []Target

// Target is a board and the startup configuration it boots with. Settings
// the description leaves out keep their default values.
type Target struct {
	Name        string         `yaml:"name"`
	Chips       []string       `yaml:"chips"`
	Description string         `yaml:"description"`
	Config      startup.Config `yaml:"config"`
}

func (t *Target) UnmarshalYAML(node *yaml.Node) error {
	type plain Target
	p := plain{Config: startup.DefaultConfig()}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*t = Target(p)
	return nil
}

func (t Targets) Find(name string) (Target, error) {
	for _, target := range t {
		if target.Name == strings.ToLower(name) {
			return target, nil
		}
	}
	return Target{}, ErrTargetNotFound
}

func (t Targets) FindByChip(name string) (Target, error) {
	for _, target := range t {
		if slices.Contains(target.Chips, strings.ToLower(name)) {
			return target, nil
		}
	}
	return Target{}, ErrTargetNotFound
}

// Names returns the target names in ascending order.
func (t Targets) Names() []string {
	names := make([]string, len(t))
	for i, target := range t {
		names[i] = target.Name
	}
	slices.Sort(names)
	return names
}

func parse(data []byte) (Targets, error) {
	var t struct {
		Elements []Target `yaml:"targets"`
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return t.Elements, nil
}

func init() {
	t, err := parse(rawTargets)
	if err != nil {
		panic(err)
	}
	targets = t
}
