// Package pluginmanager loads and instantiates plugins by name.
//
// A Manager is bound to one plugin interface, for example video importers.
// Plugins are either registered statically from Go code or loaded at runtime
// from a directory of Go plugins (`go build -buildmode=plugin`). Plugins may
// provide aliases so the caller can ask for "AnyVideoImporter" and get
// whichever concrete implementation is preferred.
package pluginmanager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"slices"
	"sync"
)

var (
	// ErrNotFound is returned when neither a static plugin, an alias nor a
	// dynamic plugin file with the requested name exists.
	ErrNotFound = errors.New("plugin not found")

	// ErrAlreadyRegistered is returned when registering a name twice.
	ErrAlreadyRegistered = errors.New("plugin already registered")

	// ErrWrongInterface is returned when a dynamic plugin implements a
	// different interface than the manager it is loaded into.
	ErrWrongInterface = errors.New("plugin interface mismatch")
)

// Symbols looked up in dynamic plugins.
const (
	SymbolInterface = "PluginInterface"
	SymbolNew       = "New"
	SymbolProvides  = "Provides"
)

// LoadState describes how a plugin is known to the manager.
type LoadState int

// Possible load states.
const (
	NotFound LoadState = iota
	Static
	Loaded
)

func (s LoadState) String() string {
	switch s {
	case Static:
		return "static"
	case Loaded:
		return "loaded"
	default:
		return "not found"
	}
}

type entry[T any] struct {
	name     string
	factory  func() T
	provides []string
	state    LoadState
}

// Manager keeps track of the plugins implementing one interface.
type Manager[T any] struct {
	mu sync.Mutex

	pluginInterface string
	directory       string

	plugins map[string]*entry[T]

	// aliases maps an alias to the names of the plugins providing it. The
	// first name is the one the alias resolves to.
	aliases map[string][]string
}

// New returns a manager for plugins implementing pluginInterface.
func New[T any](pluginInterface string) *Manager[T] {
	return &Manager[T]{
		pluginInterface: pluginInterface,
		plugins:         make(map[string]*entry[T]),
		aliases:         make(map[string][]string),
	}
}

// PluginInterface returns the interface string plugins must implement.
func (m *Manager[T]) PluginInterface() string {
	return m.pluginInterface
}

// Register adds a static plugin.
func (m *Manager[T]) Register(name string, factory func() T, provides ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.register(name, factory, provides, Static)
}

func (m *Manager[T]) register(
	name string,
	factory func() T,
	provides []string,
	state LoadState,
) error {
	if name == "" {
		return fmt.Errorf("empty plugin name")
	}
	if factory == nil {
		return fmt.Errorf("plugin %s: nil factory", name)
	}
	if _, ok := m.plugins[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrAlreadyRegistered)
	}

	m.plugins[name] = &entry[T]{
		name:     name,
		factory:  factory,
		provides: provides,
		state:    state,
	}

	for _, alias := range provides {
		if alias == name || slices.Contains(m.aliases[alias], name) {
			continue
		}
		m.aliases[alias] = append(m.aliases[alias], name)
	}

	return nil
}

// SetPluginDirectory sets the directory searched for dynamic plugins. A
// plugin named Foo is expected at <dir>/Foo.so.
func (m *Manager[T]) SetPluginDirectory(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.directory = dir
}

// PluginDirectory returns the directory searched for dynamic plugins.
func (m *Manager[T]) PluginDirectory() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.directory
}

// SetPreferredPlugins makes alias resolve to the first of names which
// provides it. Names which do not provide the alias are skipped. The remaining
// providers keep their relative order after the preferred ones.
func (m *Manager[T]) SetPreferredPlugins(alias string, names ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	providers, ok := m.aliases[alias]
	if !ok {
		return fmt.Errorf("alias %s: %w", alias, ErrNotFound)
	}

	ordered := make([]string, 0, len(providers))
	for _, name := range names {
		if slices.Contains(providers, name) && !slices.Contains(ordered, name) {
			ordered = append(ordered, name)
		}
	}
	for _, name := range providers {
		if !slices.Contains(ordered, name) {
			ordered = append(ordered, name)
		}
	}

	m.aliases[alias] = ordered
	return nil
}

// PluginList returns the sorted names of all known plugins.
func (m *Manager[T]) PluginList() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.plugins))
	for name := range m.plugins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// AliasList returns the sorted list of aliases provided by known plugins.
func (m *Manager[T]) AliasList() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	aliases := make([]string, 0, len(m.aliases))
	for alias := range m.aliases {
		aliases = append(aliases, alias)
	}
	slices.Sort(aliases)
	return aliases
}

// LoadState returns the state of a plugin without trying to load it.
func (m *Manager[T]) LoadState(name string) LoadState {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.plugins[m.resolve(name)]
	if !ok {
		return NotFound
	}
	return e.state
}

// Load makes sure a plugin is available, loading it from the plugin directory
// if it is not registered statically.
func (m *Manager[T]) Load(name string) (LoadState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.load(name)
	if err != nil {
		return NotFound, err
	}
	return e.state, nil
}

// Instantiate creates a new instance of a plugin which is already known to
// the manager.
func (m *Manager[T]) Instantiate(name string) (T, error) {
	m.mu.Lock()
	e, ok := m.plugins[m.resolve(name)]
	m.mu.Unlock()

	if !ok {
		var zero T
		return zero, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	return e.factory(), nil
}

// LoadAndInstantiate loads a plugin if needed and returns a new instance of it.
func (m *Manager[T]) LoadAndInstantiate(name string) (T, error) {
	m.mu.Lock()
	e, err := m.load(name)
	m.mu.Unlock()

	if err != nil {
		var zero T
		return zero, err
	}

	return e.factory(), nil
}

// resolve returns the plugin name an alias stands for. Plugin names take
// precedence over aliases.
func (m *Manager[T]) resolve(name string) string {
	if _, ok := m.plugins[name]; ok {
		return name
	}
	if providers := m.aliases[name]; len(providers) > 0 {
		return providers[0]
	}
	return name
}

func (m *Manager[T]) load(name string) (*entry[T], error) {
	if e, ok := m.plugins[m.resolve(name)]; ok {
		return e, nil
	}

	if m.directory == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	return m.loadDynamic(name)
}

func (m *Manager[T]) loadDynamic(name string) (*entry[T], error) {
	path := filepath.Join(m.directory, name+".so")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	factory, provides, err := lookupSymbols[T](p, m.pluginInterface)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := m.register(name, factory, provides, Loaded); err != nil {
		return nil, err
	}

	return m.plugins[name], nil
}

type symbolLookuper interface {
	Lookup(symName string) (plugin.Symbol, error)
}

func lookupSymbols[T any](
	p symbolLookuper,
	pluginInterface string,
) (func() T, []string, error) {
	sym, err := p.Lookup(SymbolInterface)
	if err != nil {
		return nil, nil, fmt.Errorf("looking up %s: %w", SymbolInterface, err)
	}

	iface, ok := sym.(*string)
	if !ok {
		return nil, nil, fmt.Errorf("%s is %T, not *string", SymbolInterface, sym)
	}
	if *iface != pluginInterface {
		return nil, nil, fmt.Errorf("%w: got %q, expected %q",
			ErrWrongInterface, *iface, pluginInterface)
	}

	sym, err = p.Lookup(SymbolNew)
	if err != nil {
		return nil, nil, fmt.Errorf("looking up %s: %w", SymbolNew, err)
	}

	var factory func() T
	switch f := sym.(type) {
	case func() T:
		factory = f
	case *func() T:
		factory = *f
	default:
		return nil, nil, fmt.Errorf("%w: %s is %T", ErrWrongInterface, SymbolNew, sym)
	}

	var provides []string
	if sym, err := p.Lookup(SymbolProvides); err == nil {
		if list, ok := sym.(*[]string); ok {
			provides = *list
		}
	}

	return factory, provides, nil
}
