package checked

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	require := require.New(t)

	sum, err := Add(1, 2)
	require.NoError(err)
	require.Equal(uint64(3), sum)

	_, err = Add(math.MaxUint64, 1)
	require.ErrorIs(err, ErrOverflow)
}

func TestSub(t *testing.T) {
	require := require.New(t)

	diff, err := Sub(5, 2)
	require.NoError(err)
	require.Equal(uint64(3), diff)

	_, err = Sub(2, 5)
	require.ErrorIs(err, ErrUnderflow)
}
