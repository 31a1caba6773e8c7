package client

import (
	"crypto/rand"
	"errors"
	"math/big"
	"testing"

	"soroban_portfolio/internal/domain/entity"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/strkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomContractAddress(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	addr, err := strkey.Encode(strkey.VersionByteContract, raw)
	require.NoError(t, err)
	return addr
}

func TestScValRoundTrip(t *testing.T) {
	account := keypair.MustRandom().Address()
	contract := randomContractAddress(t)
	huge, _ := new(big.Int).SetString("170141183460469231731687303715884105727", 10) // 2^127-1
	negHuge := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))

	values := []entity.ScValue{
		entity.Void(),
		entity.BoolArg(true),
		entity.U32Arg(4294967295),
		entity.I64Arg(-42),
		entity.U64Arg(1 << 63),
		entity.I128Arg(big.NewInt(0)),
		entity.I128Arg(big.NewInt(-1)),
		entity.I128Arg(new(big.Int).Lsh(big.NewInt(1), 64)),
		entity.I128Arg(huge),
		entity.I128Arg(negHuge),
		entity.StringArg("USD Coin"),
		entity.SymbolArg("transfer"),
		entity.BytesArg([]byte{1, 2, 3}),
		entity.AddressArg(account),
		entity.AddressArg(contract),
		entity.VecArg(entity.U32Arg(1), entity.StringArg("x")),
	}
	for _, v := range values {
		t.Run(v.Kind.String()+"/"+v.String(), func(t *testing.T) {
			enc, err := EncodeScValBase64(v)
			require.NoError(t, err)
			dec, err := DecodeScValBase64(enc)
			require.NoError(t, err)
			assert.Equal(t, v.Kind, dec.Kind)
			assert.Equal(t, v.String(), dec.String())
		})
	}
}

func TestEncodeScVal_I128OutOfRange(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 127)
	_, err := EncodeScVal(entity.I128Arg(tooBig))
	assert.Error(t, err)
}

func TestEncodeAddress_RejectsBadChecksum(t *testing.T) {
	addr := randomContractAddress(t)
	last := addr[len(addr)-1]
	replacement := byte('A')
	if last == 'A' {
		replacement = 'B'
	}
	broken := addr[:len(addr)-1] + string(replacement)

	_, err := EncodeAddress(broken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrInvalidAddress))
}

func TestDecodeScValBase64_EmptyIsVoid(t *testing.T) {
	v, err := DecodeScValBase64("")
	require.NoError(t, err)
	assert.Equal(t, entity.ScVoid, v.Kind)
}
