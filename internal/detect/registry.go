package detect

import (
	"fmt"
	"sort"
	"strings"
)

// The vision registry enumerates the native backends actually linked into
// this build. Backend implementations register themselves from init, so the
// selection logic below is a pure function over whatever ended up linked.

type visionFactory func(cfg Config) (VisionService, error)

var visionBackends = map[string]visionFactory{}

// visionPreference is the "auto" fallback order.
var visionPreference = []string{"tesseract"}

func registerVision(name string, factory visionFactory) {
	visionBackends[name] = factory
}

// AvailableVisionBackends returns the registered native backend names,
// sorted for stable output.
func AvailableVisionBackends() []string {
	names := make([]string, 0, len(visionBackends))
	for name := range visionBackends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newVisionService resolves an explicit backend name, or for "auto" the
// first backend of the preference order present in the registry.
func newVisionService(name string, cfg Config) (VisionService, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	if name == "" || name == "auto" {
		for _, candidate := range visionPreference {
			if factory, ok := visionBackends[candidate]; ok {
				return factory(cfg)
			}
		}
		return nil, fmt.Errorf("no native vision backend linked into this build")
	}

	factory, ok := visionBackends[name]
	if !ok {
		return nil, fmt.Errorf("unknown vision backend %q (available: %s)",
			name, strings.Join(AvailableVisionBackends(), ", "))
	}
	return factory(cfg)
}
