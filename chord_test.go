package bindz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChordMatches(t *testing.T) {
	tests := []struct {
		name  string
		chord Chord
		key   Key
		mods  ModMask
		want  bool
	}{
		{"plain key", On('a'), 'a', ModNone, true},
		{"plain key ignores held mods", On('a'), 'a', ModCtrl | ModShift, true},
		{"wrong key", On('a'), 'b', ModNone, false},
		{"required mod held", On('a', ModShift), 'a', ModShift, true},
		{"required mod plus extra", On('a', ModShift), 'a', ModShift | ModAlt, true},
		{"required mod missing", On('a', ModShift), 'a', ModNone, false},
		{"one of two required", On('a', ModShift, ModCtrl), 'a', ModCtrl, false},
		{"both required", On('a', ModShift, ModCtrl), 'a', ModCtrl | ModShift, true},
		{"unbound", Unbound, 0, ModNone, false},
		{"unbound any key", Unbound, 'a', ModShift, false},
		{"special key", On(-14), -14, ModNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.chord.Matches(tt.key, tt.mods))
		})
	}
}

func TestChordZeroValueIsUnbound(t *testing.T) {
	var c Chord
	assert.Equal(t, Unbound, c)
	assert.False(t, c.IsBound())
	_, ok := c.Key()
	assert.False(t, ok)

	// Key zero is still a real key when bound
	assert.True(t, On(0).IsBound())
	assert.NotEqual(t, Unbound, On(0))
}

func TestChordString(t *testing.T) {
	assert.Equal(t, "<unbound>", Unbound.String())
	assert.Equal(t, "q", On('q').String())
	assert.Equal(t, "Ctrl+Shift+s", On('s', ModShift, ModCtrl).String())
	assert.Equal(t, "#32", On(' ').String())
	assert.Equal(t, "Alt+#-3", On(-3, ModAlt).String())
}

func TestModMask(t *testing.T) {
	m := ModCtrl | ModAlt
	assert.True(t, m.Has(ModCtrl))
	assert.True(t, m.Has(ModNone))
	assert.True(t, m.Has(ModCtrl|ModAlt))
	assert.False(t, m.Has(ModShift))
	assert.False(t, m.Has(ModCtrl|ModShift))

	assert.Equal(t, "", ModNone.String())
	assert.Equal(t, "Ctrl+Alt+Shift+Meta", (ModMeta | ModShift | ModAlt | ModCtrl).String())
}

func TestParseModMask(t *testing.T) {
	tests := []struct {
		in   string
		want ModMask
	}{
		{"", ModNone},
		{"  ", ModNone},
		{"Ctrl", ModCtrl},
		{"ctrl+shift", ModCtrl | ModShift},
		{"Shift + Alt", ModShift | ModAlt},
		{"C-S", ModCtrl | ModShift},
		{"cmd", ModMeta},
		{"Ctrl+Alt+Shift+Meta", ModCtrl | ModAlt | ModShift | ModMeta},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseModMask(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseModMask("Ctrl+Hyper")
	assert.ErrorIs(t, err, ErrUnknownModifier)

	// String output parses back
	for _, m := range []ModMask{ModShift, ModCtrl | ModMeta, ModCtrl | ModAlt | ModShift} {
		got, err := ParseModMask(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}
