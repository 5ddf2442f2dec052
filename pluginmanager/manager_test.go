package pluginmanager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter interface {
	Greet() string
}

type fixedGreeter string

func (g fixedGreeter) Greet() string { return string(g) }

func newTestManager(t *testing.T) *Manager[greeter] {
	t.Helper()

	m := New[greeter]("test.Greeter/1")
	require.NoError(t, m.Register("HelloGreeter", func() greeter {
		return fixedGreeter("hello")
	}, "AnyGreeter"))
	require.NoError(t, m.Register("HiGreeter", func() greeter {
		return fixedGreeter("hi")
	}, "AnyGreeter", "ShortGreeter"))

	return m
}

func TestRegisterAndInstantiate(t *testing.T) {
	m := newTestManager(t)

	g, err := m.LoadAndInstantiate("HelloGreeter")
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet())

	g, err = m.Instantiate("HiGreeter")
	require.NoError(t, err)
	assert.Equal(t, "hi", g.Greet())

	assert.Equal(t, []string{"HelloGreeter", "HiGreeter"}, m.PluginList())
	assert.Equal(t, []string{"AnyGreeter", "ShortGreeter"}, m.AliasList())
	assert.Equal(t, "test.Greeter/1", m.PluginInterface())
}

func TestRegisterErrors(t *testing.T) {
	m := newTestManager(t)

	err := m.Register("HelloGreeter", func() greeter { return fixedGreeter("") })
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	assert.Error(t, m.Register("", func() greeter { return fixedGreeter("") }))
	assert.Error(t, m.Register("NilGreeter", nil))
}

func TestAliases(t *testing.T) {
	m := newTestManager(t)

	g, err := m.LoadAndInstantiate("AnyGreeter")
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet(), "first registered provider wins")

	require.NoError(t, m.SetPreferredPlugins("AnyGreeter", "NotAProvider", "HiGreeter"))
	g, err = m.LoadAndInstantiate("AnyGreeter")
	require.NoError(t, err)
	assert.Equal(t, "hi", g.Greet())

	g, err = m.LoadAndInstantiate("ShortGreeter")
	require.NoError(t, err)
	assert.Equal(t, "hi", g.Greet())

	err = m.SetPreferredPlugins("UnknownAlias", "HiGreeter")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadStates(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		name     string
		expected LoadState
	}{
		{name: "HelloGreeter", expected: Static},
		{name: "AnyGreeter", expected: Static},
		{name: "NoSuchGreeter", expected: NotFound},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, m.LoadState(test.name))
		})
	}

	assert.Equal(t, "static", Static.String())
	assert.Equal(t, "loaded", Loaded.String())
	assert.Equal(t, "not found", NotFound.String())
}

func TestNotFound(t *testing.T) {
	m := newTestManager(t)

	_, err := m.LoadAndInstantiate("GStVideoImporter")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Instantiate("GStVideoImporter")
	assert.ErrorIs(t, err, ErrNotFound)

	state, err := m.Load("GStVideoImporter")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, NotFound, state)
}

func TestPluginDirectoryMissingFile(t *testing.T) {
	m := newTestManager(t)
	m.SetPluginDirectory(t.TempDir())
	assert.NotEmpty(t, m.PluginDirectory())

	_, err := m.LoadAndInstantiate("MissingGreeter")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPluginDirectoryInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "BrokenGreeter.so")
	require.NoError(t, os.WriteFile(path, []byte("not an ELF file"), 0o644))

	m := newTestManager(t)
	m.SetPluginDirectory(dir)

	_, err := m.LoadAndInstantiate("BrokenGreeter")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, NotFound, m.LoadState("BrokenGreeter"))
}

type fakePlugin map[string]any

func (p fakePlugin) Lookup(name string) (plugin.Symbol, error) {
	sym, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("symbol %s not found", name)
	}
	return sym, nil
}

func TestLookupSymbols(t *testing.T) {
	iface := "test.Greeter/1"
	otherIface := "test.Other/1"
	newFunc := func() greeter { return fixedGreeter("dynamic") }
	provides := []string{"AnyGreeter"}

	tests := []struct {
		name     string
		plugin   fakePlugin
		wantErr  error
		provides []string
	}{
		{
			name: "function symbol",
			plugin: fakePlugin{
				SymbolInterface: &iface,
				SymbolNew:       newFunc,
				SymbolProvides:  &provides,
			},
			provides: provides,
		},
		{
			name: "function variable",
			plugin: fakePlugin{
				SymbolInterface: &iface,
				SymbolNew:       &newFunc,
			},
		},
		{
			name: "wrong interface",
			plugin: fakePlugin{
				SymbolInterface: &otherIface,
				SymbolNew:       newFunc,
			},
			wantErr: ErrWrongInterface,
		},
		{
			name: "wrong factory type",
			plugin: fakePlugin{
				SymbolInterface: &iface,
				SymbolNew:       func() string { return "" },
			},
			wantErr: ErrWrongInterface,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			factory, provides, err := lookupSymbols[greeter](test.plugin, iface)
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "dynamic", factory().Greet())
			assert.Equal(t, test.provides, provides)
		})
	}

	_, _, err := lookupSymbols[greeter](fakePlugin{}, iface)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrWrongInterface))
}
