package participant

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
	"github.com/aibymlorg/managing-multiagent-intelligence/logging"
	"github.com/aibymlorg/managing-multiagent-intelligence/model"
)

// Options configure a Registry.
type Options struct {
	// Specs registered at construction; DefaultSpecs when nil.
	Specs     []Spec
	Factories map[Kind]Factory
	Getenv    func(string) string
	Logger    logging.Logger
}

type cachedAdapter struct {
	credential string
	model      model.Model
}

// Registry is a concurrency-safe participant table.
type Registry struct {
	mu          sync.RWMutex
	opts        Options
	order       []string
	specs       map[string]Spec
	credentials map[string]string
	fixed       map[string]model.Model
	cache       map[string]cachedAdapter
}

// New creates a Registry.
func New(optFns ...func(o *Options)) (*Registry, error) {
	opts := Options{
		Factories: DefaultFactories(),
		Getenv:    os.Getenv,
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Specs == nil {
		opts.Specs = DefaultSpecs()
	}

	r := &Registry{
		opts:        opts,
		specs:       make(map[string]Spec),
		credentials: make(map[string]string),
		fixed:       make(map[string]model.Model),
		cache:       make(map[string]cachedAdapter),
	}
	for _, s := range opts.Specs {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds or replaces a participant spec.
func (r *Registry) Register(spec Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.specs[spec.ID]; !exists {
		r.order = append(r.order, spec.ID)
	}
	r.specs[spec.ID] = spec
	delete(r.fixed, spec.ID)
	delete(r.cache, spec.ID)
	return nil
}

// RegisterModel registers a participant backed by a ready adapter. It needs
// no credential.
func (r *Registry) RegisterModel(id, displayName string, m model.Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.specs[id]; !exists {
		if _, fixed := r.fixed[id]; !fixed {
			r.order = append(r.order, id)
		}
	}
	r.specs[id] = Spec{ID: id, DisplayName: displayName}
	r.fixed[id] = m
}

// SetCredential stores the credential for a participant. An empty value clears it.
func (r *Registry) SetCredential(id, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value = strings.TrimSpace(value)
	if value == "" {
		delete(r.credentials, id)
		return
	}
	r.credentials[id] = value
}

// SetCredentials replaces all explicitly configured credentials.
func (r *Registry) SetCredentials(creds map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credentials = make(map[string]string, len(creds))
	for k, v := range creds {
		if v = strings.TrimSpace(v); v != "" {
			r.credentials[k] = v
		}
	}
}

// Credentials returns a copy of the explicitly configured credentials.
func (r *Registry) Credentials() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.credentials))
	for k, v := range r.credentials {
		out[k] = v
	}
	return out
}

// credentialLocked resolves explicit, then environment, then default credential.
func (r *Registry) credentialLocked(spec Spec) string {
	if v := r.credentials[spec.ID]; v != "" {
		return v
	}
	if spec.APIKeyEnv != "" {
		if v := strings.TrimSpace(r.opts.Getenv(spec.APIKeyEnv)); v != "" {
			return v
		}
	}
	return spec.DefaultCredential
}

// Dispatch returns the adapter for a participant.
func (r *Registry) Dispatch(id string) (model.Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.fixed[id]; ok {
		return m, nil
	}
	spec, ok := r.specs[id]
	if !ok {
		return nil, &core.UnsupportedProviderError{ProviderID: id}
	}
	cred := r.credentialLocked(spec)
	if cred == "" {
		return nil, &core.ConfigurationError{ParticipantID: id}
	}
	if c, ok := r.cache[id]; ok && c.credential == cred {
		return c.model, nil
	}

	factory, ok := r.opts.Factories[spec.Kind]
	if !ok {
		return nil, &core.UnsupportedProviderError{ProviderID: id}
	}
	if spec.BearerEnv != "" {
		spec.BearerToken = r.opts.Getenv(spec.BearerEnv)
	}
	m, err := factory(spec, cred)
	if err != nil {
		return nil, fmt.Errorf("build adapter for %s: %w", id, err)
	}
	r.cache[id] = cachedAdapter{credential: cred, model: m}
	r.opts.Logger.Debug("Adapter created", "participant", id, "kind", string(spec.Kind))
	return m, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.specs[id]
	return ok
}

// DisplayName returns the human-readable name of a participant, or the id itself.
func (r *Registry) DisplayName(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.specs[id]; ok && s.DisplayName != "" {
		return s.DisplayName
	}
	return id
}

// IDs returns participant ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Spec returns the spec registered for id.
func (r *Registry) Spec(id string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[id]
	return s, ok
}
