// internal/dex/saber/farm.go
package saber

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/model"
	"github.com/rovshanmuradov/solana-amm-kit/internal/layout"
	"github.com/shopspring/decimal"
)

// rewardScale is the fixed-point scale of rewards-per-token values.
var rewardScale = new(big.Int).Lsh(big.NewInt(1), 64)

// Farm is a Quarry farm accepting one staking mint.
type Farm struct {
	Address               solana.PublicKey
	Rewarder              solana.PublicKey
	TokenMint             solana.PublicKey
	Bump                  uint8
	Index                 uint16
	TokenMintDecimals     uint8
	FamineTs              int64
	LastUpdateTs          int64
	RewardsPerTokenStored *big.Int
	AnnualRewardsRate     uint64
	RewardsShare          uint64
	TotalTokensDeposited  uint64
	NumMiners             uint64
}

// Miner is one owner's stake in a farm.
type Miner struct {
	Address             solana.PublicKey
	Farm                solana.PublicKey
	Owner               solana.PublicKey
	Bump                uint8
	Vault               solana.PublicKey
	RewardsEarned       uint64
	RewardsPerTokenPaid *big.Int
	Balance             uint64
	Index               uint64
}

// ParseFarm decodes a farm account.
func ParseFarm(data []byte, address solana.PublicKey) (*Farm, error) {
	var rec farmRecord
	if err := layout.Decode(FarmLayout, data, &rec); err != nil {
		return nil, err
	}
	return &Farm{
		Address:               address,
		Rewarder:              rec.Rewarder,
		TokenMint:             rec.TokenMint,
		Bump:                  rec.Bump,
		Index:                 rec.Index,
		TokenMintDecimals:     rec.TokenMintDecimals,
		FamineTs:              rec.FamineTs,
		LastUpdateTs:          rec.LastUpdateTs,
		RewardsPerTokenStored: rec.RewardsPerTokenStored.BigInt(),
		AnnualRewardsRate:     rec.AnnualRewardsRate,
		RewardsShare:          rec.RewardsShare,
		TotalTokensDeposited:  rec.TotalTokensDeposited,
		NumMiners:             rec.NumMiners,
	}, nil
}

// ParseMiner decodes a miner account.
func ParseMiner(data []byte, address solana.PublicKey) (*Miner, error) {
	var rec minerRecord
	if err := layout.Decode(MinerLayout, data, &rec); err != nil {
		return nil, err
	}
	return &Miner{
		Address:             address,
		Farm:                rec.Farm,
		Owner:               rec.Owner,
		Bump:                rec.Bump,
		Vault:               rec.Vault,
		RewardsEarned:       rec.RewardsEarned,
		RewardsPerTokenPaid: rec.RewardsPerTokenPaid.BigInt(),
		Balance:             rec.Balance,
		Index:               rec.Index,
	}, nil
}

// MinerAddress derives the miner PDA of owner in farm.
func MinerAddress(farm, owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress([][]byte{[]byte(minerSeed), farm[:], owner[:]}, QuarryMineID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive miner for farm %s: %w", farm, err)
	}
	return addr, bump, nil
}

// minerAccounts returns the miner PDA, its bump and its staking vault.
func minerAccounts(farm *Farm, owner solana.PublicKey) (miner solana.PublicKey, bump uint8, vault solana.PublicKey, err error) {
	miner, bump, err = MinerAddress(farm.Address, owner)
	if err != nil {
		return
	}
	vault, _, err = solana.FindAssociatedTokenAddress(miner, farm.TokenMint)
	if err != nil {
		err = fmt.Errorf("failed to derive miner vault: %w", err)
	}
	return
}

// UnclaimedRewards is balance × (stored − paid) ÷ 2^64 + earned, in raw
// reward units.
func UnclaimedRewards(farm *Farm, miner *Miner) (*big.Int, error) {
	if !miner.Farm.Equals(farm.Address) {
		return nil, &MissingAssociationError{Pool: miner.Address, Kind: "miner", Given: farm.Address}
	}

	delta := new(big.Int).Sub(farm.RewardsPerTokenStored, miner.RewardsPerTokenPaid)
	out := new(big.Int).Mul(new(big.Int).SetUint64(miner.Balance), delta)
	out.Quo(out, rewardScale)
	return out.Add(out, new(big.Int).SetUint64(miner.RewardsEarned)), nil
}

// UnclaimedRewardsHuman scales UnclaimedRewards by the reward mint's
// decimals.
func UnclaimedRewardsHuman(farm *Farm, miner *Miner, rewardDecimals uint8) (decimal.Decimal, error) {
	raw, err := UnclaimedRewards(farm, miner)
	if err != nil {
		return decimal.Zero, err
	}
	return model.ToHuman(raw, rewardDecimals), nil
}
