package xkblayouts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const evdevXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE xkbConfigRegistry SYSTEM "xkb.dtd">
<xkbConfigRegistry version="1.1">
  <layoutList>
    <layout>
      <configItem>
        <name>us</name>
        <description>English (US)</description>
      </configItem>
      <variantList>
        <variant>
          <configItem>
            <name>intl</name>
            <description>English (US, intl., with dead keys)</description>
          </configItem>
        </variant>
      </variantList>
    </layout>
    <layout>
      <configItem>
        <name>de</name>
        <description>German</description>
      </configItem>
      <variantList>
        <variant>
          <configItem>
            <name>nodeadkeys</name>
            <description>German (no dead keys)</description>
          </configItem>
        </variant>
      </variantList>
    </layout>
  </layoutList>
</xkbConfigRegistry>`

func TestParseLayouts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evdev.xml")
	require.NoError(t, os.WriteFile(path, []byte(evdevXML), 0644))

	r, err := ParseLayouts(path)
	require.NoError(t, err)
	require.Len(t, r.LayoutList.Layout, 2)

	tests := []struct {
		pretty  string
		layout  string
		variant string
	}{
		{"English (US)", "us", ""},
		{"English (US, intl., with dead keys)", "us", "intl"},
		{"German", "de", ""},
		{"German (no dead keys)", "de", "nodeadkeys"},
		{"Klingon", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.pretty, func(t *testing.T) {
			layout, variant := r.GetLayoutAndVariantFromPrettyName(tt.pretty)
			assert.Equal(t, tt.layout, layout)
			assert.Equal(t, tt.variant, variant)

			if tt.layout != "" {
				assert.Equal(t, tt.pretty, r.GetLayoutPrettyName(tt.layout, tt.variant))
			}
		})
	}
}

func TestParseLayoutsErrors(t *testing.T) {
	_, err := ParseLayouts(filepath.Join(t.TempDir(), "missing.xml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Decode(strings.NewReader("<xkbConfigRegistry>"))
	assert.Error(t, err)
}
