package services

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/jsenthil/tsuki/internal/domain/entities"
)

func hashN(n byte) common.Hash {
	var h common.Hash
	h[31] = n
	return h
}

func TestMempoolMirror_P90_SmallSet_ReturnsLast(t *testing.T) {
	mirror, err := NewMempoolMirror(100)
	if err != nil {
		t.Fatalf("NewMempoolMirror: %v", err)
	}
	prices := []uint64{10, 30, 20}
	for i, p := range prices {
		mirror.Push(entities.NewMempoolEntry(hashN(byte(i)), uint256.NewInt(p), nil))
	}
	got := mirror.P90GasPrice()
	if got == nil || got.Uint64() != 30 {
		t.Fatalf("expected max (30) for N<5, got %v", got)
	}
}

func TestMempoolMirror_P90_LargerSet(t *testing.T) {
	mirror, err := NewMempoolMirror(100)
	if err != nil {
		t.Fatalf("NewMempoolMirror: %v", err)
	}
	// 10 entries, prices 1..10. floor(0.9*10) = 9 -> sorted[9] = 10.
	for i := 1; i <= 10; i++ {
		mirror.Push(entities.NewMempoolEntry(hashN(byte(i)), uint256.NewInt(uint64(i)), nil))
	}
	got := mirror.P90GasPrice()
	if got == nil || got.Uint64() != 10 {
		t.Fatalf("expected p90 = 10, got %v", got)
	}
}

func TestMempoolMirror_RemoveByHash(t *testing.T) {
	mirror, err := NewMempoolMirror(10)
	if err != nil {
		t.Fatalf("NewMempoolMirror: %v", err)
	}
	h := hashN(1)
	mirror.Push(entities.NewMempoolEntry(h, uint256.NewInt(5), nil))
	mirror.RemoveByHash(h)
	if len(mirror.GetAll()) != 0 {
		t.Fatalf("expected mirror to be empty after removal")
	}
}

func TestMempoolMirror_Empty_ReturnsNil(t *testing.T) {
	mirror, err := NewMempoolMirror(10)
	if err != nil {
		t.Fatalf("NewMempoolMirror: %v", err)
	}
	if got := mirror.P90GasPrice(); got != nil {
		t.Fatalf("expected nil p90 for empty mirror, got %v", got)
	}
}

func TestNewMempoolEntry_EffectiveGasPriceIsMax(t *testing.T) {
	entry := entities.NewMempoolEntry(hashN(9), uint256.NewInt(10), uint256.NewInt(25))
	if entry.EffectiveGasPrice.Uint64() != 25 {
		t.Fatalf("expected effective gas price 25, got %d", entry.EffectiveGasPrice.Uint64())
	}
}
