// internal/dex/raydium/constants.go
package raydium

import (
	"github.com/gagliardetto/solana-go"
)

// Program IDs
var (
	ProgramIDV3 = solana.MPK("27haf8L6oxUeXrHrgEgsexjSY5hbVUWEmvv9Nyxg8vQv")
	ProgramIDV4 = solana.MPK("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")

	StakeProgramID   = solana.MPK("EhhTKczWMGQt46ynNeRX1WfeagwwJd7ufHvCDjRxjo5Q")
	StakeProgramIDV5 = solana.MPK("9KEPoZmtHUrBbhWN1v1KWLMkkvwY6WLtAVUCPRtRjP4z")

	// AmmAuthority signs for every pool vault.
	AmmAuthority = solana.MPK("5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1")

	// SBRAmmID is the SBR/USDC pool used to sell farm rewards.
	SBRAmmID = solana.MPK("5cmAS6Mj4pG2Vp9hhyu3kpK9yvC7P6ejh9HiobpTE6Jc")
)

// Pool versions
const (
	VersionV3 uint8 = 3
	VersionV4 uint8 = 4
)

// InstructionType is the one-byte tag leading every AMM payload.
type InstructionType uint8

const (
	InstructionTypeDeposit  InstructionType = 3
	InstructionTypeWithdraw InstructionType = 4
	InstructionTypeSwap     InstructionType = 9
)

// ProgramID maps a pool version to its AMM program.
func ProgramID(version uint8) (solana.PublicKey, error) {
	switch version {
	case VersionV3:
		return ProgramIDV3, nil
	case VersionV4:
		return ProgramIDV4, nil
	default:
		return solana.PublicKey{}, &VersionError{Version: version}
	}
}

// VersionOf maps the program owning a pool account to the pool version.
func VersionOf(program solana.PublicKey) (uint8, error) {
	switch {
	case program.Equals(ProgramIDV3):
		return VersionV3, nil
	case program.Equals(ProgramIDV4):
		return VersionV4, nil
	default:
		return 0, &ProgramError{Program: program}
	}
}
