package keyboard

import (
	"sync"

	"codeberg.org/miketth/hyprkeymap/pkg/wayland"
)

// Registry holds the live keyboard devices.
type Registry struct {
	lock       sync.RWMutex
	devices    map[string]*Device
	nextSerial uint64
}

func NewRegistry() *Registry {
	return &Registry{
		devices:    make(map[string]*Device),
		nextSerial: 1,
	}
}

// Add registers a device, replacing any previous device of the same name.
// Handles to the replaced device stop resolving.
func (r *Registry) Add(name string, layouts []string, active Group, switcher Switcher) *Device {
	r.lock.Lock()
	defer r.lock.Unlock()

	dev := &Device{
		name:     name,
		layouts:  layouts,
		switcher: switcher,
		serial:   r.nextSerial,
		active:   active,
	}
	r.nextSerial++
	r.devices[name] = dev
	return dev
}

func (r *Registry) Remove(name string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.devices, name)
}

func (r *Registry) Get(name string) (*Device, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	dev, ok := r.devices[name]
	return dev, ok
}

func (r *Registry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	names := make([]string, 0, len(r.devices))
	for name := range r.devices {
		names = append(names, name)
	}
	return names
}

// Resolve turns a keyboard protocol object into a handle on the device it
// was created for. It fails for objects of other interfaces, destroyed
// objects and devices that are gone.
func (r *Registry) Resolve(ref *wayland.Resource) (Handle, bool) {
	if ref == nil || !ref.Alive() || ref.Interface() != KeyboardInterface {
		return Handle{}, false
	}

	name, ok := ref.Data().(string)
	if !ok {
		return Handle{}, false
	}

	dev, ok := r.Get(name)
	if !ok {
		return Handle{}, false
	}

	return Handle{registry: r, name: name, serial: dev.serial}, true
}

// Handle is a weak reference to a device. It never keeps the device alive
// and is re-resolved on every use.
type Handle struct {
	registry *Registry
	name     string
	serial   uint64
}

func (h Handle) Name() string {
	return h.name
}

// Device returns the device if it is still registered.
func (h Handle) Device() (*Device, bool) {
	if h.registry == nil {
		return nil, false
	}

	dev, ok := h.registry.Get(h.name)
	if !ok || dev.serial != h.serial {
		return nil, false
	}
	return dev, true
}
