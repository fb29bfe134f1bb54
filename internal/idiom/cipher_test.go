package idiom_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/idiomle/apps/go-server/internal/idiom"
)

func TestEncrypt_RoundTrip(t *testing.T) {
	for _, s := range []string{"一马当先", "画蛇添足", "", "abc", "𠀀字"} {
		code := idiom.Encrypt(s)
		got, err := idiom.Decrypt(code)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestEncrypt_DeterministicAndDistinct(t *testing.T) {
	a := idiom.Encrypt("一马当先")
	assert.Equal(t, a, idiom.Encrypt("一马当先"))
	assert.NotEqual(t, a, idiom.Encrypt("一马当后"))
	assert.NotContains(t, a, "一")
}

func TestEncrypt_PayloadIsPercentEncodedASCII(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(idiom.Encrypt("一马当先"))
	require.NoError(t, err)
	for _, c := range raw {
		assert.Less(t, c, byte(0x80))
	}
}

func TestDecrypt_RejectsGarbage(t *testing.T) {
	_, err := idiom.Decrypt("not base64 !!")
	assert.Error(t, err)

	_, err = idiom.Decrypt(base64.StdEncoding.EncodeToString([]byte("%zz")))
	assert.Error(t, err)
}
