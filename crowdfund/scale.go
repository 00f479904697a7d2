// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crowdfund

import (
	"math/big"
)

// PowerScale is the fixed point scale used for voting power and milestone
// percentages. A voting power of PowerScale corresponds to 100% of the
// total voting power and a milestone percentage of PowerScale corresponds
// to 100% of the recipient grant.
//
// All divisions floor. The powers computed at bootstrap sum to PowerScale
// minus a remainder that is strictly smaller than the number of backers.
const PowerScale uint64 = 1e18

// powerShare returns amount*PowerScale/total.
func powerShare(amount, total uint64) uint64 {
	x := new(big.Int).SetUint64(amount)
	x.Mul(x, new(big.Int).SetUint64(PowerScale))
	x.Div(x, new(big.Int).SetUint64(total))
	return x.Uint64()
}

// applyShare returns value*share/PowerScale, i.e. the portion of value that
// a PowerScale scaled share corresponds to.
func applyShare(value, share uint64) uint64 {
	x := new(big.Int).SetUint64(value)
	x.Mul(x, new(big.Int).SetUint64(share))
	x.Div(x, new(big.Int).SetUint64(PowerScale))
	return x.Uint64()
}

// percentageSumValid returns whether the provided percentages sum to
// exactly PowerScale. The accumulation uses big integers so that a sum
// that wraps uint64 cannot masquerade as a valid plan.
func percentageSumValid(percentages []uint64) bool {
	sum := new(big.Int)
	for _, v := range percentages {
		sum.Add(sum, new(big.Int).SetUint64(v))
	}
	return sum.Cmp(new(big.Int).SetUint64(PowerScale)) == 0
}

// thresholdMet returns whether count strictly exceeds
// total*threshold/100.
func thresholdMet(count, total uint64, threshold uint32) bool {
	x := new(big.Int).SetUint64(total)
	x.Mul(x, new(big.Int).SetUint64(uint64(threshold)))
	x.Div(x, big.NewInt(100))
	return new(big.Int).SetUint64(count).Cmp(x) > 0
}
