package ids

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	require := require.New(t)

	exp := IdentityKey{
		Type: Schemes.Ed25519,
		Raw:  common.FromHex("045b86101f804f3f4f2012ef31fff807e87de579a3faa7947d1b487a810e35dc2c3b6071ac465046634b5f4a8e09bf8e1f2e7eccb699356b9e6fd496ca4b1677d1"),
	}

	got, err := FromString("ed045b86101f804f3f4f2012ef31fff807e87de579a3faa7947d1b487a810e35dc2c3b6071ac465046634b5f4a8e09bf8e1f2e7eccb699356b9e6fd496ca4b1677d1")
	require.NoError(err)
	require.Equal(exp, got)

	got, err = FromString("0xed045b86101f804f3f4f2012ef31fff807e87de579a3faa7947d1b487a810e35dc2c3b6071ac465046634b5f4a8e09bf8e1f2e7eccb699356b9e6fd496ca4b1677d1")
	require.NoError(err)
	require.Equal(exp, got)

	_, err = FromString("")
	require.Error(err)

	_, err = FromString("0x")
	require.Error(err)
}

func TestIdentityKeyCopyIsDeep(t *testing.T) {
	require := require.New(t)

	k := IdentityKey{Type: Schemes.Ed25519, Raw: []byte{1, 2, 3}}
	cp := k.Copy()
	cp.Raw[0] = 9

	require.Equal(byte(1), k.Raw[0])
}

func TestSortIdentityKeys(t *testing.T) {
	require := require.New(t)

	a := IdentityKey{Type: Schemes.Ed25519, Raw: []byte{0x01}}
	b := IdentityKey{Type: Schemes.Ed25519, Raw: []byte{0x02}}
	c := IdentityKey{Type: Schemes.Ed25519, Raw: []byte{0x03}}

	sorted := SortIdentityKeys([]IdentityKey{c, a, b})
	require.Equal([]IdentityKey{a, b, c}, sorted)
}

func TestIdentityKeyJSONRoundTrip(t *testing.T) {
	require := require.New(t)

	k := IdentityKey{Type: Schemes.Ed25519, Raw: []byte{0xaa, 0xbb}}
	text, err := k.MarshalText()
	require.NoError(err)

	var got IdentityKey
	require.NoError(got.UnmarshalText(text))
	require.Equal(k, got)
}
