// internal/dex/saber/constants.go
package saber

import (
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/layout"
)

// Program IDs
var (
	SwapProgramID   = solana.MPK("SSwpkEEcbUqx4vtoEByFjSkhKdCT862DNVb52nZg1UZ")
	WrapProgramID   = solana.MPK("DecZY86MU5Gj7kppfUCEmd4LbXXuyZH1yHaP2NTqdiZB")
	QuarryMineID    = solana.MPK("QMNeHCGYnLVDn1icRAfQZpjPLBNkfGbSKRB83G5d8KB")
	RedeemProgramID = solana.MPK("RDM23yr8pr1kEAmhnFpaabPny6C9UVcEcok3Py5v86X")
)

// Well-known accounts
var (
	// AdminKey administers every curated stable-swap pool.
	AdminKey = solana.MPK("H9XuKqszWYirDmXDQ12TZXGtxqUYYn4oi7FKzAm7RHGc")

	// Rewarder is the Quarry rewarder all Saber farms belong to.
	Rewarder = solana.MPK("rXhAofQCT7NN9TUqigyEAUzV1uLL4boeD8CRkNBSkYk")

	SBRMint = solana.MPK("Saber2gLauYim4Mvftnrasomsv6NvAuncvMEZwcLpD1")
	IOUMint = solana.MPK("iouQcQBAiEXe6cKLS85zmZxUqaCqBdeHFpqKoSz615u")

	USDCUSTPool = solana.MPK("KwnjUuZhTMTSGAaavkLEmSyfobY16JNH4poL9oeeEvE")

	// claim_rewards mint chain
	saberMintWrapper     = solana.MPK("EVVDA3ZiAjTizemLGXNUN3gb6cffQFEYkFjFZokPmUPz")
	quarryMintWrapper    = solana.MPK("QMWoBmAyJLAsA1Lh9ugMTw2gciTihncciphzdNzdZYV")
	saberFarmMinter      = solana.MPK("GEoTC3gN12qHDniaDD7Zxvd5xtcZyEKkTPy42B44s82y")
	claimFeeTokenAccount = solana.MPK("4Snkea6wv3K6qzDTdyJiF2VTiLPmCoyHJCzAdkdTStBK")

	// redeem_all_tokens_from_mint_proxy accounts
	redeemer            = solana.MPK("CL9wkGFT3SZRRNa9dgaovuRV7jrVVigBUZ6DjcgySsCU")
	redeemerVault       = solana.MPK("ESg7xPUBioCqK4QaSvuZkhuekagvKcx326wNo3U7kRWc")
	mintProxyState      = solana.MPK("9qRjwMQYrkd5JvsENaYYxSCgwEuVhK4qAo5kCFHSmdmL")
	mintProxyProgram    = solana.MPK("GyktbGXbH9kvxP8RGfWsnFtuRgC7QCQo2WBqpo3ryk7L")
	mintProxyAuthority  = solana.MPK("UBEBk5idELqykEEaycYtQ7iBVrCg6NmvFSzMpdr22mL")
	redeemerMinterState = solana.MPK("GNSuMDSnUP9oK4HRtCi41zAbUzEqeLK1QPoby6dLVD9v")
)

// DefaultDenylist holds deprecated pools that discovery never returns.
var DefaultDenylist = []solana.PublicKey{
	solana.MPK("LeekqF2NMKiFNtYD6qXJHZaHx4hUdj4UiPu4t8sz7uK"),
	solana.MPK("2jQoGQRixdcfuRPt9Zui7pk6ivnrQv79mf8h13Tyoa9K"),
	solana.MPK("SPaiZAYyJBQHaSjtxFBKtLtQiCuG328r1mTfmvvydR5"),
	solana.MPK("HoNG9Z4jsA1qtkZhDRYBc67LF2cbusZahjyxXtXdKZgR"),
	solana.MPK("4Fss9Dy3vAUBuQ4SyEZz4vcLxeQqoFLZjdXhEUr3wqz3"),
}

// Stable-swap instruction tags
const (
	tagDeposit     uint8 = 2
	tagWithdrawOne uint8 = 4
)

// SBRDecimals is the precision of SBR and its IOU.
const SBRDecimals uint8 = 6

// minerSeed prefixes every miner PDA.
const minerSeed = "Miner"

// Anchor selectors for the wrap, mine and redeem programs.
var (
	SelectorWrap         = layout.Discriminator("deposit")
	SelectorUnwrap       = layout.Discriminator("withdraw_all")
	SelectorStake        = layout.Discriminator("stake_tokens")
	SelectorUnstake      = layout.Discriminator("withdraw_tokens")
	SelectorCreateMiner  = layout.Discriminator("create_miner")
	SelectorClaimRewards = layout.Discriminator("claim_rewards")
	SelectorRedeem       = layout.Discriminator("redeem_all_tokens_from_mint_proxy")
)
