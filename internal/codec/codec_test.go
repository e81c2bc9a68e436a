package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `cbor:"name"`
	Count uint32 `cbor:"count"`
}

func TestMarshalDeterministic(t *testing.T) {
	t.Parallel()

	a := map[string]any{"zeta": 1, "alpha": 2, "mid": "x"}
	b := map[string]any{"mid": "x", "alpha": 2, "zeta": 1}

	encA, err := Marshal(a)
	require.NoError(t, err)
	encB, err := Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, encA, encB)
}

func TestRoundTripStruct(t *testing.T) {
	t.Parallel()

	data, err := Marshal(sample{Name: "creature", Count: 7})
	require.NoError(t, err)

	var got sample
	require.NoError(t, Unmarshal(data, &got))
	assert.Equal(t, sample{Name: "creature", Count: 7}, got)
}

func TestUnmarshalAnyUsesStringKeys(t *testing.T) {
	t.Parallel()

	data, err := Marshal(map[string]any{"nested": map[string]any{"k": "v"}})
	require.NoError(t, err)

	var got any
	require.NoError(t, Unmarshal(data, &got))
	m, ok := got.(map[string]any)
	require.True(t, ok)
	_, ok = m["nested"].(map[string]any)
	assert.True(t, ok)
}
