package flavor

import (
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/verustcode/reportforge/internal/configfiles"
	"github.com/verustcode/reportforge/pkg/errors"
	"github.com/verustcode/reportforge/pkg/logger"
)

// Registry is an ordered, concurrency-safe set of flavors.
type Registry struct {
	mu      sync.RWMutex
	flavors map[string]*Config
	order   []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{flavors: make(map[string]*Config)}
}

// Register adds or replaces a flavor. A replaced flavor keeps its position.
func (r *Registry) Register(cfg *Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.flavors[cfg.ID]; !exists {
		r.order = append(r.order, cfg.ID)
	}
	r.flavors[cfg.ID] = cfg

	logger.Debug("Registered flavor",
		zap.String("id", cfg.ID),
		zap.String("name", cfg.Name),
	)
}

// Get returns a flavor by ID or an ErrCodeFlavorNotFound error
func (r *Registry) Get(id string) (*Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cfg, ok := r.flavors[id]; ok {
		return cfg, nil
	}
	return nil, errors.ErrFlavorNotFound(id)
}

// List returns all flavors in registration order
func (r *Registry) List() []*Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Config, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.flavors[id])
	}
	return result
}

// IDs returns the registered flavor IDs in registration order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered flavors
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Reset removes all flavors
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flavors = make(map[string]*Config)
	r.order = nil
}

// NewBuiltinRegistry returns a registry holding only the embedded flavors
func NewBuiltinRegistry() (*Registry, error) {
	builtins, err := NewLoader().LoadFS(configfiles.FlavorFS())
	if err != nil {
		return nil, err
	}

	r := NewRegistry()
	for _, cfg := range builtins {
		r.Register(cfg)
	}
	return r, nil
}

// NewRegistryFromDir merges the embedded flavors with the files in dir.
// A file whose ID matches a built-in replaces it. A missing dir is not an error.
func NewRegistryFromDir(dir string) (*Registry, error) {
	r, err := NewBuiltinRegistry()
	if err != nil {
		return nil, err
	}

	if dir == "" {
		return r, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logger.Debug("Flavors directory not found, using built-in flavors only",
			zap.String("dir", dir),
		)
		return r, nil
	}

	loaded, err := NewLoader().LoadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, cfg := range loaded {
		r.Register(cfg)
	}

	logger.Info("Flavors initialized",
		zap.String("dir", dir),
		zap.Strings("flavors", r.IDs()),
	)
	return r, nil
}
