package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)

	addr := key.PubKey().Address()
	require.Len(t, addr.Bytes(), AddressLength)
	require.Equal(t, CertPrefix, addr.Prefix())

	decoded, err := DecodeAddress(addr.String())
	require.NoError(t, err)
	require.Equal(t, addr.Bytes(), decoded.Bytes())
	require.Equal(t, addr.Prefix(), decoded.Prefix())
}

func TestNewAddressRejectsBadLength(t *testing.T) {
	_, err := NewAddress(CertPrefix, make([]byte, 19))
	require.Error(t, err)
}

func TestPrivateKeyBytesRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)

	restored, err := PrivateKeyFromBytes(key.Bytes())
	require.NoError(t, err)
	require.Equal(t, key.PubKey().Address().Bytes(), restored.PubKey().Address().Bytes())
}
