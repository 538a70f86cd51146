package entities

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MempoolEntry is one pending transaction mirrored from the node's
// pending-tx subscription (§3): its hash plus the effective gas price
// used for p90 extraction. Effective gas price is the max of the legacy
// gas_price and the dynamic max_fee_per_gas, mirroring
// original_source/src/tx_pool.rs's fee selection.
type MempoolEntry struct {
	Hash              common.Hash
	EffectiveGasPrice *uint256.Int
}

// NewMempoolEntry computes the effective gas price for a pending
// transaction from its legacy and EIP-1559 fee fields. Either may be nil
// (absent on the wire); a nil value is treated as zero.
func NewMempoolEntry(hash common.Hash, gasPrice, maxFeePerGas *uint256.Int) MempoolEntry {
	effective := new(uint256.Int)
	if gasPrice != nil {
		effective.Set(gasPrice)
	}
	if maxFeePerGas != nil && maxFeePerGas.Gt(effective) {
		effective.Set(maxFeePerGas)
	}
	return MempoolEntry{Hash: hash, EffectiveGasPrice: effective}
}
