package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	valid := map[string]ProtocolVersion{
		"1.0":   {1, 0},
		"1.1":   {1, 1},
		"2.0":   {2, 0},
		"10.23": {10, 23},
	}
	for in, want := range valid {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, in, got.String())
	}

	for _, in := range []string{"", "1", "abc", "1.0.0", "1.x", "-1.0", ".1", "1.", "70000.0"} {
		_, err := Parse(in)
		assert.Error(t, err, "Parse(%q)", in)
	}
}

func TestCompatibleRequiresSameMajor(t *testing.T) {
	v10 := ProtocolVersion{1, 0}
	v11 := ProtocolVersion{1, 1}
	v20 := ProtocolVersion{2, 0}

	assert.True(t, v10.Compatible(v11))
	assert.True(t, v11.Compatible(v10))
	assert.False(t, v10.Compatible(v20))
	assert.False(t, v20.Compatible(v10))
}

func TestCompatibleWith(t *testing.T) {
	tests := []struct {
		remote  string
		want    bool
		wantErr bool
	}{
		{"", true, false},
		{Current, true, false},
		{"1.7", true, false},
		{"2.0", false, false},
		{"one", false, true},
	}

	for _, tt := range tests {
		got, err := CompatibleWith(tt.remote)
		if tt.wantErr {
			assert.Error(t, err, tt.remote)
			continue
		}
		require.NoError(t, err, tt.remote)
		assert.Equal(t, tt.want, got, tt.remote)
	}
}

func TestCurrentParses(t *testing.T) {
	v, err := Parse(Current)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), v.Major)
}

func TestStringIncludesBuild(t *testing.T) {
	old := Build
	t.Cleanup(func() { Build = old })

	Build = "v1.2.3"
	assert.Equal(t, "rulebridge v1.2.3 (protocol "+Current+")", String())
}
