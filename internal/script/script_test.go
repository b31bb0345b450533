package script

import (
	"errors"
	"testing"
)

type fakeEngine struct {
	nextHandle      int
	sources         map[int]string
	properties      []string
	routes          []string
	failSetProperty bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{sources: map[int]string{}}
}

func (f *fakeEngine) CreateSource(kind string) (int, error) {
	f.nextHandle++
	f.sources[f.nextHandle] = kind
	return f.nextHandle, nil
}

func (f *fakeEngine) CreateGenerator(kind string, args map[string]string) (int, error) {
	f.nextHandle++
	return f.nextHandle, nil
}

func (f *fakeEngine) CreateEffect(kind string) (int, error) {
	f.nextHandle++
	return f.nextHandle, nil
}

func (f *fakeEngine) AttachGenerator(sourceHandle, generatorHandle int) error { return nil }

func (f *fakeEngine) SetProperty(handle int, name string, value float64) error {
	if f.failSetProperty {
		return errors.New("boom")
	}
	f.properties = append(f.properties, name)
	return nil
}

func (f *fakeEngine) ConfigRoute(sourceHandle, effectHandle int, gain, fadeSeconds float64) error {
	f.routes = append(f.routes, "configured")
	return nil
}

func (f *fakeEngine) RemoveRoute(sourceHandle, effectHandle int, fadeSeconds float64) error {
	f.routes = append(f.routes, "removed")
	return nil
}

func TestConsole_CreateSourceReturnsHandle(t *testing.T) {
	eng := newFakeEngine()
	c := NewConsole(eng)
	defer c.Close()

	if err := c.Run(`h = create_source("direct"); assert(h == 1)`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConsole_SetPropertyInvokesEngine(t *testing.T) {
	eng := newFakeEngine()
	c := NewConsole(eng)
	defer c.Close()

	if err := c.Run(`set_property(1, "gain", 0.5)`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eng.properties) != 1 || eng.properties[0] != "gain" {
		t.Fatalf("expected SetProperty to be called with 'gain', got %v", eng.properties)
	}
}

func TestConsole_ConfigRouteAndRemoveRoute(t *testing.T) {
	eng := newFakeEngine()
	c := NewConsole(eng)
	defer c.Close()

	if err := c.Run(`
		config_route(1, 2, 1.0)
		remove_route(1, 2)
	`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eng.routes) != 2 || eng.routes[0] != "configured" || eng.routes[1] != "removed" {
		t.Fatalf("unexpected route call sequence: %v", eng.routes)
	}
}

func TestConsole_EngineErrorSurfacesAsLuaError(t *testing.T) {
	eng := newFakeEngine()
	eng.failSetProperty = true
	c := NewConsole(eng)
	defer c.Close()

	err := c.Run(`
		local err = set_property(1, "gain", 0.5)
		if err then error(err) end
	`)
	if err == nil {
		t.Fatal("expected an error to propagate from a failing SetProperty call")
	}
}
