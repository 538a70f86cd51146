package entities

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ArbParams is the wire shape the evaluator produces and the external
// flash-loan submitter consumes (§6). Lengths: len(TokenPath) == k+1,
// len(ProtocolPath) == len(ProtocolTypes) == len(Fees) == k, for a
// k-hop route.
type ArbParams struct {
	AmountIn      *uint256.Int
	TokenPath     []common.Address
	ProtocolPath  []common.Address
	ProtocolTypes []uint8
	Fees          []uint32
}

// Encode produces a byte-exact, length-prefixed serialization of the
// params: a 32-byte amount_in, a 4-byte token count and a 4-byte hop
// count (big-endian), then token_path addresses,
// protocol_path addresses, protocol_types bytes, and fees (4 bytes each,
// big-endian uint24-compatible). This is not the on-chain ABI encoding
// the flash-loan contract itself expects (that belongs to the external
// submitter, out of scope per §1) — it is the engine-internal
// round-trip format exercised by §8's idempotence property.
func (a *ArbParams) Encode() []byte {
	hops := len(a.ProtocolPath)
	tokenCount := len(a.TokenPath)

	buf := make([]byte, 0, 32+4+4*(1+tokenCount*20+hops*20+hops+hops*4))

	amountBytes := a.AmountIn.Bytes32()
	buf = append(buf, amountBytes[:]...)

	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(tokenCount))
	buf = append(buf, countBuf[:]...)
	binary.BigEndian.PutUint32(countBuf[:], uint32(hops))
	buf = append(buf, countBuf[:]...)

	for _, addr := range a.TokenPath {
		buf = append(buf, addr.Bytes()...)
	}
	for _, addr := range a.ProtocolPath {
		buf = append(buf, addr.Bytes()...)
	}
	buf = append(buf, a.ProtocolTypes...)
	for _, fee := range a.Fees {
		var feeBuf [4]byte
		binary.BigEndian.PutUint32(feeBuf[:], fee)
		buf = append(buf, feeBuf[:]...)
	}

	return buf
}

// DecodeArbParams is the inverse of Encode.
func DecodeArbParams(data []byte) (*ArbParams, error) {
	if len(data) < 40 {
		return nil, fmt.Errorf("arbparams: short input: %d bytes", len(data))
	}

	amountIn := new(uint256.Int).SetBytes(data[0:32])
	tokenCount := int(binary.BigEndian.Uint32(data[32:36]))
	hops := int(binary.BigEndian.Uint32(data[36:40]))

	offset := 40
	expected := offset + tokenCount*20 + hops*20 + hops + hops*4
	if len(data) != expected {
		return nil, fmt.Errorf("arbparams: expected %d bytes, got %d", expected, len(data))
	}

	tokenPath := make([]common.Address, tokenCount)
	for i := 0; i < tokenCount; i++ {
		tokenPath[i] = common.BytesToAddress(data[offset : offset+20])
		offset += 20
	}

	protocolPath := make([]common.Address, hops)
	for i := 0; i < hops; i++ {
		protocolPath[i] = common.BytesToAddress(data[offset : offset+20])
		offset += 20
	}

	protocolTypes := make([]uint8, hops)
	copy(protocolTypes, data[offset:offset+hops])
	offset += hops

	fees := make([]uint32, hops)
	for i := 0; i < hops; i++ {
		fees[i] = binary.BigEndian.Uint32(data[offset : offset+4])
		offset += 4
	}

	return &ArbParams{
		AmountIn:      amountIn,
		TokenPath:     tokenPath,
		ProtocolPath:  protocolPath,
		ProtocolTypes: protocolTypes,
		Fees:          fees,
	}, nil
}
