// Package envconfig provides configuration structs for configuring the
// moving-platform environments and a registry of the named
// configurations. Environment configurations in this package are JSON
// serializable.
package envconfig

import (
	"fmt"
	"sort"

	"github.com/samuelfneumann/gopanda/environment/panda"
	"github.com/samuelfneumann/gopanda/simulation/box2dsim"
	ts "github.com/samuelfneumann/gopanda/timestep"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	PickAndPlaceAndThrow EnvName = "PickAndPlaceAndThrow"
	PickAndPlaceAndMove  EnvName = "PickAndPlaceAndMove"
)

const (
	// MaxEpisodeSteps is the episode cutoff of all registered
	// environments
	MaxEpisodeSteps uint = 50

	// Discount is the environmental discount of all registered
	// environments. Learners discount separately.
	Discount float64 = 1.0
)

// Config implements a specific configuration of a specific environment
type Config struct {
	Environment   EnvName
	ControlType   panda.ControlType
	RewardType    panda.RewardType
	EpisodeCutoff uint
	Discount      float64
}

// NewConfig returns a new environment Config
func NewConfig(envName EnvName, control panda.ControlType,
	reward panda.RewardType, episodeCutoff uint, discount float64) Config {
	return Config{
		Environment:   envName,
		ControlType:   control,
		RewardType:    reward,
		EpisodeCutoff: episodeCutoff,
		Discount:      discount,
	}
}

// ID returns the registered name of the configuration, for example
// PandaPickAndPlaceAndThrowJointsDense-v1
func (c Config) ID() string {
	id := "Panda" + string(c.Environment)
	if c.ControlType == panda.Joints {
		id += "Joints"
	}
	if c.RewardType == panda.Dense {
		id += "Dense"
	}
	return id + "-v1"
}

// Variant returns the task variant of the configured environment
func (c Config) Variant() (panda.Variant, error) {
	switch c.Environment {
	case PickAndPlaceAndThrow:
		return panda.Throw, nil
	case PickAndPlaceAndMove:
		return panda.Move, nil
	}
	return 0, fmt.Errorf("variant: no such environment %v", c.Environment)
}

// Create returns the environment described by the Config running on a
// new Box2D simulation, as well as the first timestep of the
// environment. If render is false, the simulation never renders.
func (c Config) Create(seed uint64, render bool) (*panda.Env, ts.TimeStep,
	error) {
	variant, err := c.Variant()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %v", err)
	}

	env, step, err := panda.New(box2dsim.New(render), panda.Config{
		Variant:      variant,
		ControlType:  c.ControlType,
		RewardType:   c.RewardType,
		EpisodeSteps: int(c.EpisodeCutoff),
		Discount:     c.Discount,
		Seed:         seed,
	})
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %v", err)
	}
	return env, step, nil
}

// registry holds the registered configurations keyed by ID
var registry = make(map[string]Config)

func init() {
	for _, envName := range []EnvName{PickAndPlaceAndThrow,
		PickAndPlaceAndMove} {
		for _, reward := range []panda.RewardType{panda.Sparse, panda.Dense} {
			for _, control := range []panda.ControlType{panda.EE,
				panda.Joints} {
				Register(NewConfig(envName, control, reward,
					MaxEpisodeSteps, Discount))
			}
		}
	}
}

// Register adds a configuration to the registry under its ID. Register
// panics if the ID is already registered.
func Register(c Config) {
	id := c.ID()
	if _, ok := registry[id]; ok {
		panic(fmt.Sprintf("register: environment %v already registered", id))
	}
	registry[id] = c
}

// Lookup returns the configuration registered under id
func Lookup(id string) (Config, error) {
	c, ok := registry[id]
	if !ok {
		return Config{}, fmt.Errorf("lookup: no environment registered "+
			"with id %v", id)
	}
	return c, nil
}

// IDs returns the sorted IDs of all registered environments
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// Make creates the environment registered under id
func Make(id string, seed uint64, render bool) (*panda.Env, ts.TimeStep,
	error) {
	c, err := Lookup(id)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("make: %v", err)
	}

	env, step, err := c.Create(seed, render)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("make: %v", err)
	}
	return env, step, nil
}
