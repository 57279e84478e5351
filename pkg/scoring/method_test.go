package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	for _, m := range Methods {
		got, err := ParseMethod(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestParseMethodRejectsNearMisses(t *testing.T) {
	for _, s := range []string{"sid30", "SID_30", "VanWalraven", "van walraven", "", " van_walraven"} {
		_, err := ParseMethod(s)
		assert.ErrorIs(t, err, ErrUnknownMethod, s)
	}
}

func TestDefaultMethod(t *testing.T) {
	assert.Equal(t, MethodVanWalraven, DefaultMethod)
}
