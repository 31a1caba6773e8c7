package entity

import (
	"fmt"
	"math/big"
)

// ScKind tags the variant held by an ScValue.
type ScKind int

const (
	ScVoid ScKind = iota
	ScBool
	ScU32
	ScI32
	ScU64
	ScI64
	ScI128
	ScString
	ScSymbol
	ScBytes
	ScAddress
	ScVec
)

var scKindNames = map[ScKind]string{
	ScVoid:    "void",
	ScBool:    "bool",
	ScU32:     "u32",
	ScI32:     "i32",
	ScU64:     "u64",
	ScI64:     "i64",
	ScI128:    "i128",
	ScString:  "string",
	ScSymbol:  "symbol",
	ScBytes:   "bytes",
	ScAddress: "address",
	ScVec:     "vec",
}

func (k ScKind) String() string {
	if name, ok := scKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ScKind(%d)", int(k))
}

// ScValue is a typed contract argument or return value.
// Only the field matching Kind is meaningful.
type ScValue struct {
	Kind  ScKind
	Bool  bool
	Int   *big.Int // U32, I32, U64, I64, I128
	Str   string   // String, Symbol, Address
	Bytes []byte
	Vec   []ScValue
}

func Void() ScValue { return ScValue{Kind: ScVoid} }
func BoolArg(b bool) ScValue { return ScValue{Kind: ScBool, Bool: b} }
func U32Arg(v uint32) ScValue { return ScValue{Kind: ScU32, Int: new(big.Int).SetUint64(uint64(v))} }
func I64Arg(v int64) ScValue { return ScValue{Kind: ScI64, Int: big.NewInt(v)} }
func U64Arg(v uint64) ScValue { return ScValue{Kind: ScU64, Int: new(big.Int).SetUint64(v)} }
func StringArg(s string) ScValue { return ScValue{Kind: ScString, Str: s} }
func SymbolArg(s string) ScValue { return ScValue{Kind: ScSymbol, Str: s} }
func BytesArg(b []byte) ScValue { return ScValue{Kind: ScBytes, Bytes: b} }
func AddressArg(a string) ScValue { return ScValue{Kind: ScAddress, Str: a} }
func VecArg(v ...ScValue) ScValue { return ScValue{Kind: ScVec, Vec: v} }
func I128Arg(v *big.Int) ScValue { return ScValue{Kind: ScI128, Int: new(big.Int).Set(v)} }

// BigInt returns the integer payload of numeric values.
func (v ScValue) BigInt() (*big.Int, error) {
	switch v.Kind {
	case ScU32, ScI32, ScU64, ScI64, ScI128:
		if v.Int == nil {
			return big.NewInt(0), nil
		}
		return new(big.Int).Set(v.Int), nil
	default:
		return nil, fmt.Errorf("expected integer value, got %s", v.Kind)
	}
}

// Text returns the payload of string-like values.
func (v ScValue) Text() (string, error) {
	switch v.Kind {
	case ScString, ScSymbol, ScAddress:
		return v.Str, nil
	case ScBytes:
		return string(v.Bytes), nil
	default:
		return "", fmt.Errorf("expected string value, got %s", v.Kind)
	}
}

func (v ScValue) String() string {
	switch v.Kind {
	case ScVoid:
		return "void"
	case ScBool:
		return fmt.Sprintf("%t", v.Bool)
	case ScU32, ScI32, ScU64, ScI64, ScI128:
		if v.Int == nil {
			return "0"
		}
		return v.Int.String()
	case ScBytes:
		return fmt.Sprintf("%x", v.Bytes)
	case ScVec:
		return fmt.Sprintf("%v", v.Vec)
	default:
		return v.Str
	}
}
