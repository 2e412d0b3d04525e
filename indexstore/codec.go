package indexstore

import (
	"fmt"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// The document store keeps every hash, address and uint64 (block numbers
// among them) as a lowercase 0x-prefixed hex string zero-padded to a fixed
// width, and every byte blob as unpadded 0x-prefixed hex, so that the
// string filters FilterBuilder emits (and
// lexicographic range comparisons over them) match what is stored. The
// registry below teaches the driver that representation for the Ethereum
// types the Stored* documents carry.

var (
	tHash    = reflect.TypeOf(common.Hash{})
	tAddress = reflect.TypeOf(common.Address{})
	tUint64  = reflect.TypeOf(uint64(0))
	tBytes   = reflect.TypeOf([]byte(nil))
)

// Registry builds the BSON codec registry every collection handle uses.
func Registry() *bsoncodec.Registry {
	reg := bson.NewRegistry()

	reg.RegisterTypeEncoder(tHash, bsoncodec.ValueEncoderFunc(encodeHash))
	reg.RegisterTypeDecoder(tHash, bsoncodec.ValueDecoderFunc(decodeHash))
	reg.RegisterTypeEncoder(tAddress, bsoncodec.ValueEncoderFunc(encodeAddress))
	reg.RegisterTypeDecoder(tAddress, bsoncodec.ValueDecoderFunc(decodeAddress))
	reg.RegisterTypeEncoder(tUint64, bsoncodec.ValueEncoderFunc(encodeUint64))
	reg.RegisterTypeDecoder(tUint64, bsoncodec.ValueDecoderFunc(decodeUint64))
	reg.RegisterTypeEncoder(tBytes, bsoncodec.ValueEncoderFunc(encodeBytes))
	reg.RegisterTypeDecoder(tBytes, bsoncodec.ValueDecoderFunc(decodeBytes))

	return reg
}

func encodeHash(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	h := val.Interface().(common.Hash)
	return vw.WriteString(FormatHex(h.Hex(), HashHexLen))
}

func decodeHash(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	s, err := readHexString(vr)
	if err != nil {
		return err
	}
	val.Set(reflect.ValueOf(common.HexToHash(s)))
	return nil
}

func encodeAddress(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	a := val.Interface().(common.Address)
	return vw.WriteString(FormatHex(a.Hex(), AddressHexLen))
}

func decodeAddress(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	s, err := readHexString(vr)
	if err != nil {
		return err
	}
	val.Set(reflect.ValueOf(common.HexToAddress(s)))
	return nil
}

func encodeUint64(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	return vw.WriteString(formatUint64(val.Uint()))
}

func decodeUint64(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	switch vr.Type() {
	case bsontype.String:
		s, err := vr.ReadString()
		if err != nil {
			return err
		}
		var n uint64
		if _, err := fmt.Sscanf(s, "0x%x", &n); err != nil {
			return fmt.Errorf("indexstore: invalid hex number %q: %w", s, err)
		}
		val.SetUint(n)
		return nil
	case bsontype.Int64:
		n, err := vr.ReadInt64()
		if err != nil {
			return err
		}
		val.SetUint(uint64(n))
		return nil
	case bsontype.Int32:
		n, err := vr.ReadInt32()
		if err != nil {
			return err
		}
		val.SetUint(uint64(n))
		return nil
	default:
		return fmt.Errorf("indexstore: cannot decode %s into uint64", vr.Type())
	}
}

func encodeBytes(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	return vw.WriteString(hexutil.Encode(val.Bytes()))
}

func decodeBytes(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	switch vr.Type() {
	case bsontype.String:
		s, err := vr.ReadString()
		if err != nil {
			return err
		}
		b, err := hexutil.Decode(s)
		if err != nil {
			return fmt.Errorf("indexstore: invalid hex bytes %q: %w", s, err)
		}
		val.SetBytes(b)
		return nil
	case bsontype.Binary:
		b, _, err := vr.ReadBinary()
		if err != nil {
			return err
		}
		val.SetBytes(b)
		return nil
	case bsontype.Null:
		if err := vr.ReadNull(); err != nil {
			return err
		}
		val.SetBytes(nil)
		return nil
	default:
		return fmt.Errorf("indexstore: cannot decode %s into []byte", vr.Type())
	}
}

func readHexString(vr bsonrw.ValueReader) (string, error) {
	if vr.Type() == bsontype.Null {
		if err := vr.ReadNull(); err != nil {
			return "", err
		}
		return "0x0", nil
	}
	return vr.ReadString()
}
