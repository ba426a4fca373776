package flavor

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/verustcode/reportforge/internal/config"
	"github.com/verustcode/reportforge/pkg/errors"
	"github.com/verustcode/reportforge/pkg/logger"
)

// Loader loads flavor definitions from YAML files.
type Loader struct {
	// flavors stores loaded flavors by ID
	flavors map[string]*Config
	// order keeps first-load order for List
	order []string
	mu    sync.RWMutex
}

// NewLoader creates a new flavor loader.
func NewLoader() *Loader {
	return &Loader{
		flavors: make(map[string]*Config),
	}
}

// LoadFile loads a single flavor file.
func (l *Loader) LoadFile(path string) (*Config, error) {
	logger.Debug("Loading flavor",
		zap.String("path", path),
	)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeConfigNotFound,
				"flavor file not found: "+path)
		}
		return nil, errors.Wrap(errors.ErrCodeFlavorInvalid,
			"failed to read flavor file", err)
	}

	cfg, err := l.LoadFromBytes(data)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded flavor",
		zap.String("path", path),
		zap.String("id", cfg.ID),
		zap.String("name", cfg.Name),
	)

	return cfg, nil
}

// LoadDir loads every *.yaml and *.yml file in dir.
// Files that fail to parse or validate are skipped with a warning.
func (l *Loader) LoadDir(dir string) ([]*Config, error) {
	logger.Debug("Loading flavors from directory",
		zap.String("dir", dir),
	)

	patterns := []string{"*.yaml", "*.yml"}
	var files []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal,
				"failed to glob directory", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	if len(files) == 0 {
		logger.Warn("No flavor files found in directory",
			zap.String("dir", dir),
		)
		return nil, nil
	}

	var flavors []*Config
	for _, file := range files {
		cfg, err := l.LoadFile(file)
		if err != nil {
			logger.Warn("Failed to load flavor file, skipping",
				zap.String("file", file),
				zap.Error(err),
			)
			continue
		}
		flavors = append(flavors, cfg)
	}

	logger.Info("Loaded flavors from directory",
		zap.String("dir", dir),
		zap.Int("count", len(flavors)),
	)

	return flavors, nil
}

// LoadFS loads every flavor file at the root of fsys, such as the embedded built-ins.
// Unlike LoadDir a bad file is an error.
func (l *Loader) LoadFS(fsys fs.FS) ([]*Config, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to glob flavor files", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	flavors := make([]*Config, 0, len(files))
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFlavorInvalid, "failed to read flavor file "+file, err)
		}
		cfg, err := l.LoadFromBytes(data)
		if err != nil {
			return nil, err
		}
		flavors = append(flavors, cfg)
	}
	return flavors, nil
}

// LoadFromBytes loads a flavor from YAML bytes.
func (l *Loader) LoadFromBytes(data []byte) (*Config, error) {
	expanded := config.ExpandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFlavorInvalid,
			"failed to parse flavor YAML", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	l.mu.Lock()
	if _, exists := l.flavors[cfg.ID]; !exists {
		l.order = append(l.order, cfg.ID)
	}
	l.flavors[cfg.ID] = &cfg
	l.mu.Unlock()

	return &cfg, nil
}

// Get returns a loaded flavor by ID.
func (l *Loader) Get(id string) (*Config, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cfg, ok := l.flavors[id]
	return cfg, ok
}

// List returns all loaded flavors in load order.
// A flavor loaded twice keeps its first position and its latest definition.
func (l *Loader) List() []*Config {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Config, 0, len(l.order))
	for _, id := range l.order {
		result = append(result, l.flavors[id])
	}
	return result
}

// Clear removes all loaded flavors.
func (l *Loader) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flavors = make(map[string]*Config)
	l.order = nil
}
