// internal/dex/spltoken/instructions.go
package spltoken

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
)

// ATAInitProgramID creates associated token accounts without failing when the
// account already exists.
var ATAInitProgramID = solana.MustPublicKeyFromBase58("9tiP8yZcekzfGzSBmp7n9LaDHRjxP2w7wJj8tpPJtfG")

// CreateATAInstruction returns an idempotent create for owner's associated
// account of mint together with the account address.
func CreateATAInstruction(payer, owner, mint solana.PublicKey) (solana.Instruction, solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("failed to derive ATA for mint %s: %w", mint, err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: payer, IsWritable: true, IsSigner: true},
		{PublicKey: ata, IsWritable: true},
		{PublicKey: owner, IsWritable: true},
		{PublicKey: mint},
		{PublicKey: solana.SystemProgramID},
		{PublicKey: solana.TokenProgramID},
		{PublicKey: solana.SysVarRentPubkey},
		{PublicKey: solana.SPLAssociatedTokenAccountProgramID},
	}
	return solana.NewInstruction(ATAInitProgramID, accounts, []byte{}), ata, nil
}

// FundNativeInstructions moves lamports into an existing wrapped-SOL account
// and syncs its token balance.
func FundNativeInstructions(owner, account solana.PublicKey, lamports uint64) []solana.Instruction {
	return []solana.Instruction{
		system.NewTransferInstruction(lamports, owner, account).Build(),
		token.NewSyncNativeInstruction(account).Build(),
	}
}

// WrapNativeInstructions creates owner's wrapped-SOL account and funds it.
// The first instruction is the create.
func WrapNativeInstructions(owner solana.PublicKey, lamports uint64) ([]solana.Instruction, solana.PublicKey, error) {
	create, ata, err := CreateATAInstruction(owner, owner, solana.SolMint)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	return append([]solana.Instruction{create}, FundNativeInstructions(owner, ata, lamports)...), ata, nil
}

// CloseAccountInstruction closes account and returns its lamports to owner.
func CloseAccountInstruction(account, owner solana.PublicKey) solana.Instruction {
	return token.NewCloseAccountInstruction(account, owner, owner, nil).Build()
}

// IsNativeMint reports whether mint is wrapped SOL.
func IsNativeMint(mint solana.PublicKey) bool {
	return mint.Equals(solana.SolMint)
}
