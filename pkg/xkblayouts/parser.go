package xkblayouts

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

func ParseLayouts(path string) (*XkbConfigRegistry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return Decode(file)
}

// Decode reads an xkb rules registry such as evdev.xml.
func Decode(r io.Reader) (*XkbConfigRegistry, error) {
	registry := &XkbConfigRegistry{}
	if err := xml.NewDecoder(r).Decode(registry); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}

	registry.index()
	return registry, nil
}

// index maps descriptions to layouts. The first entry wins when a
// description is used twice.
func (r *XkbConfigRegistry) index() {
	r.byDescription = make(map[string]layoutRef)
	add := func(desc string, ref layoutRef) {
		if _, ok := r.byDescription[desc]; !ok {
			r.byDescription[desc] = ref
		}
	}

	for _, l := range r.LayoutList.Layout {
		add(l.ConfigItem.Description, layoutRef{layout: l.ConfigItem.Name})
		for _, v := range l.VariantList.Variant {
			add(v.ConfigItem.Description, layoutRef{layout: l.ConfigItem.Name, variant: v.ConfigItem.Name})
		}
	}
}

func (r *XkbConfigRegistry) GetLayoutPrettyName(layout, variant string) string {
	for _, l := range r.LayoutList.Layout {
		if l.ConfigItem.Name != layout {
			continue
		}
		if variant == "" {
			return l.ConfigItem.Description
		}

		for _, v := range l.VariantList.Variant {
			if v.ConfigItem.Name == variant {
				return v.ConfigItem.Description
			}
		}
	}

	return ""
}

// GetLayoutAndVariantFromPrettyName maps a description, as Hyprland reports
// the active keymap, back to layout and variant codes.
func (r *XkbConfigRegistry) GetLayoutAndVariantFromPrettyName(prettyName string) (string, string) {
	if r.byDescription == nil {
		r.index()
	}

	ref, ok := r.byDescription[prettyName]
	if !ok {
		return "", ""
	}
	return ref.layout, ref.variant
}
