package routing

import (
	"sort"
	"strings"

	"github.com/agenticlabs/smartrouter/internal/config"
)

// Pricing is the per-million-token price pair for a model.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// ModelDescriptor is one immutable registry entry. Key is "provider:model_id"
// and is globally unique.
type ModelDescriptor struct {
	Key          string
	Provider     string
	ModelID      string
	DisplayName  string
	Capabilities map[string]float64
	Pricing      Pricing
}

// Capability returns the model's strength on the given axis. Unlisted axes
// score a neutral 0.6, matching how the catalog treats unrated dimensions.
func (m ModelDescriptor) Capability(axis string) float64 {
	if v, ok := m.Capabilities[axis]; ok {
		return v
	}
	return 0.6
}

// Registry is the static model catalog. It is built once at startup from the
// models config and never mutated, so concurrent readers need no locking.
type Registry struct {
	byKey map[string]ModelDescriptor
	keys  []string
}

// NewRegistry builds a registry from the models config.
func NewRegistry(mc *config.ModelsConfig) *Registry {
	r := &Registry{byKey: make(map[string]ModelDescriptor, len(mc.Models))}
	for key, entry := range mc.Models {
		provider, modelID, ok := SplitModelKey(key)
		if !ok {
			continue
		}
		caps := make(map[string]float64, len(entry.Capabilities))
		for axis, v := range entry.Capabilities {
			caps[axis] = v
		}
		r.byKey[key] = ModelDescriptor{
			Key:          key,
			Provider:     provider,
			ModelID:      modelID,
			DisplayName:  entry.DisplayName,
			Capabilities: caps,
			Pricing: Pricing{
				InputPerMillion:  entry.Pricing.InputPerMillion,
				OutputPerMillion: entry.Pricing.OutputPerMillion,
			},
		}
		r.keys = append(r.keys, key)
	}
	sort.Strings(r.keys)
	return r
}

// Get looks up a descriptor by registry key.
func (r *Registry) Get(key string) (ModelDescriptor, bool) {
	m, ok := r.byKey[key]
	return m, ok
}

// Keys returns all registry keys in stable order.
func (r *Registry) Keys() []string {
	return r.keys
}

// Len returns the number of registry entries.
func (r *Registry) Len() int { return len(r.byKey) }

// ModelKey joins a provider and model id into a registry key.
func ModelKey(provider, modelID string) string {
	return provider + ":" + modelID
}

// SplitModelKey splits a "provider:model_id" key.
func SplitModelKey(key string) (provider, modelID string, ok bool) {
	i := strings.Index(key, ":")
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}
