package client

import (
	"fmt"
	"math/big"
	"strings"

	"soroban_portfolio/internal/domain/entity"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

var (
	two64     = new(big.Int).Lsh(big.NewInt(1), 64)
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// EncodeScVal converts a tagged value into its XDR form.
func EncodeScVal(v entity.ScValue) (xdr.ScVal, error) {
	switch v.Kind {
	case entity.ScVoid:
		return xdr.ScVal{Type: xdr.ScValTypeScvVoid}, nil
	case entity.ScBool:
		b := v.Bool
		return xdr.ScVal{Type: xdr.ScValTypeScvBool, B: &b}, nil
	case entity.ScU32:
		n, err := intInRange(v, 0, 1<<32-1)
		if err != nil {
			return xdr.ScVal{}, err
		}
		u := xdr.Uint32(n.Uint64())
		return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}, nil
	case entity.ScI32:
		n, err := intInRange(v, -1<<31, 1<<31-1)
		if err != nil {
			return xdr.ScVal{}, err
		}
		i := xdr.Int32(n.Int64())
		return xdr.ScVal{Type: xdr.ScValTypeScvI32, I32: &i}, nil
	case entity.ScU64:
		n := intOrZero(v)
		if n.Sign() < 0 || !n.IsUint64() {
			return xdr.ScVal{}, fmt.Errorf("value %s out of range for u64", n)
		}
		u := xdr.Uint64(n.Uint64())
		return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &u}, nil
	case entity.ScI64:
		n := intOrZero(v)
		if !n.IsInt64() {
			return xdr.ScVal{}, fmt.Errorf("value %s out of range for i64", n)
		}
		i := xdr.Int64(n.Int64())
		return xdr.ScVal{Type: xdr.ScValTypeScvI64, I64: &i}, nil
	case entity.ScI128:
		parts, err := toInt128Parts(intOrZero(v))
		if err != nil {
			return xdr.ScVal{}, err
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}, nil
	case entity.ScString:
		s := xdr.ScString(v.Str)
		return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &s}, nil
	case entity.ScSymbol:
		s := xdr.ScSymbol(v.Str)
		return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &s}, nil
	case entity.ScBytes:
		b := xdr.ScBytes(v.Bytes)
		return xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &b}, nil
	case entity.ScAddress:
		addr, err := EncodeAddress(v.Str)
		if err != nil {
			return xdr.ScVal{}, err
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &addr}, nil
	case entity.ScVec:
		items := make(xdr.ScVec, 0, len(v.Vec))
		for i, item := range v.Vec {
			enc, err := EncodeScVal(item)
			if err != nil {
				return xdr.ScVal{}, fmt.Errorf("vec item %d: %w", i, err)
			}
			items = append(items, enc)
		}
		vec := &items
		return xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &vec}, nil
	default:
		return xdr.ScVal{}, fmt.Errorf("unsupported value kind %s", v.Kind)
	}
}

// DecodeScVal converts an XDR value into a tagged value.
func DecodeScVal(v xdr.ScVal) (entity.ScValue, error) {
	switch v.Type {
	case xdr.ScValTypeScvVoid:
		return entity.Void(), nil
	case xdr.ScValTypeScvBool:
		return entity.BoolArg(v.B != nil && *v.B), nil
	case xdr.ScValTypeScvU32:
		return entity.U32Arg(uint32(*v.U32)), nil
	case xdr.ScValTypeScvI32:
		return entity.ScValue{Kind: entity.ScI32, Int: big.NewInt(int64(*v.I32))}, nil
	case xdr.ScValTypeScvU64:
		return entity.U64Arg(uint64(*v.U64)), nil
	case xdr.ScValTypeScvI64:
		return entity.I64Arg(int64(*v.I64)), nil
	case xdr.ScValTypeScvI128:
		return entity.I128Arg(fromInt128Parts(*v.I128)), nil
	case xdr.ScValTypeScvString:
		return entity.StringArg(string(*v.Str)), nil
	case xdr.ScValTypeScvSymbol:
		return entity.SymbolArg(string(*v.Sym)), nil
	case xdr.ScValTypeScvBytes:
		return entity.BytesArg([]byte(*v.Bytes)), nil
	case xdr.ScValTypeScvAddress:
		s, err := DecodeAddress(*v.Address)
		if err != nil {
			return entity.ScValue{}, err
		}
		return entity.AddressArg(s), nil
	case xdr.ScValTypeScvVec:
		if v.Vec == nil || *v.Vec == nil {
			return entity.VecArg(), nil
		}
		items := make([]entity.ScValue, 0, len(**v.Vec))
		for i, item := range **v.Vec {
			dec, err := DecodeScVal(item)
			if err != nil {
				return entity.ScValue{}, fmt.Errorf("vec item %d: %w", i, err)
			}
			items = append(items, dec)
		}
		return entity.VecArg(items...), nil
	default:
		return entity.ScValue{}, fmt.Errorf("unsupported XDR value type %s", v.Type)
	}
}

// EncodeScValBase64 encodes a value as base64 XDR.
func EncodeScValBase64(v entity.ScValue) (string, error) {
	sv, err := EncodeScVal(v)
	if err != nil {
		return "", err
	}
	return xdr.MarshalBase64(sv)
}

// DecodeScValBase64 decodes a base64 XDR value. An empty string decodes to Void.
func DecodeScValBase64(s string) (entity.ScValue, error) {
	if s == "" {
		return entity.Void(), nil
	}
	var sv xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(s, &sv); err != nil {
		return entity.ScValue{}, fmt.Errorf("failed to decode return value: %w", err)
	}
	return DecodeScVal(sv)
}

// EncodeAddress parses an account (G...) or contract (C...) strkey.
func EncodeAddress(address string) (xdr.ScAddress, error) {
	switch {
	case strings.HasPrefix(address, "C"):
		raw, err := strkey.Decode(strkey.VersionByteContract, address)
		if err != nil {
			return xdr.ScAddress{}, fmt.Errorf("contract address %q: %w", address, entity.ErrInvalidAddress)
		}
		var id xdr.ContractId
		copy(id[:], raw)
		return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeContract, ContractId: &id}, nil
	case strings.HasPrefix(address, "G"):
		var accountID xdr.AccountId
		if err := accountID.SetAddress(address); err != nil {
			return xdr.ScAddress{}, fmt.Errorf("account address %q: %w", address, entity.ErrInvalidAddress)
		}
		return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeAccount, AccountId: &accountID}, nil
	default:
		return xdr.ScAddress{}, fmt.Errorf("address %q: %w", address, entity.ErrInvalidAddress)
	}
}

// DecodeAddress renders an XDR address as a strkey.
func DecodeAddress(a xdr.ScAddress) (string, error) {
	switch a.Type {
	case xdr.ScAddressTypeScAddressTypeAccount:
		if a.AccountId == nil {
			return "", fmt.Errorf("account address without id")
		}
		return a.AccountId.Address(), nil
	case xdr.ScAddressTypeScAddressTypeContract:
		if a.ContractId == nil {
			return "", fmt.Errorf("contract address without id")
		}
		return strkey.Encode(strkey.VersionByteContract, a.ContractId[:])
	default:
		return "", fmt.Errorf("unsupported address type %s", a.Type)
	}
}

func intOrZero(v entity.ScValue) *big.Int {
	if v.Int == nil {
		return big.NewInt(0)
	}
	return v.Int
}

func intInRange(v entity.ScValue, lo, hi int64) (*big.Int, error) {
	n := intOrZero(v)
	if n.Cmp(big.NewInt(lo)) < 0 || n.Cmp(big.NewInt(hi)) > 0 {
		return nil, fmt.Errorf("value %s out of range for %s", n, v.Kind)
	}
	return n, nil
}

// toInt128Parts splits n into the two's-complement hi/lo halves.
func toInt128Parts(n *big.Int) (xdr.Int128Parts, error) {
	if n.Cmp(minInt128) < 0 || n.Cmp(maxInt128) > 0 {
		return xdr.Int128Parts{}, fmt.Errorf("value %s out of range for i128", n)
	}
	u := new(big.Int).Set(n)
	if u.Sign() < 0 {
		u.Add(u, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	lo := new(big.Int).And(u, new(big.Int).Sub(two64, big.NewInt(1)))
	hi := new(big.Int).Rsh(u, 64)
	return xdr.Int128Parts{
		Hi: xdr.Int64(int64(hi.Uint64())),
		Lo: xdr.Uint64(lo.Uint64()),
	}, nil
}

func fromInt128Parts(p xdr.Int128Parts) *big.Int {
	n := big.NewInt(int64(p.Hi))
	n.Mul(n, two64)
	return n.Add(n, new(big.Int).SetUint64(uint64(p.Lo)))
}
