// internal/blockchain/solbc/submit.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Signer pays for and signs transactions.
type Signer interface {
	Payer() solana.PublicKey
	SignTransaction(tx *solana.Transaction) error
}

// ErrConfirmationTimeout is returned when a sent transaction is not
// confirmed within the client's confirmation window.
var ErrConfirmationTimeout = errors.New("confirmation timeout")

// confirmTimeout bounds WaitForConfirmation.
const confirmTimeout = 30 * time.Second

// Send stamps instructions with a fresh blockhash, signs, submits and waits
// for confirmation. Expired blockhashes are retried; every other failure is
// returned at once.
func (c *Client) Send(ctx context.Context, instructions []solana.Instruction, signer Signer) (solana.Signature, error) {
	if len(instructions) == 0 {
		return solana.Signature{}, errors.New("no instructions to send")
	}

	op := func() (solana.Signature, error) {
		tx, err := c.signedTransaction(ctx, instructions, signer)
		if err != nil {
			return solana.Signature{}, err
		}
		return c.submitAndConfirm(ctx, tx)
	}

	sig, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(c.opts.Retries+1)),
		backoff.WithMaxElapsedTime(15*time.Second))
	if err != nil {
		c.logger.Error("Send transaction failed", zap.Error(err))
		return solana.Signature{}, err
	}
	c.logger.Info("Transaction confirmed", zap.String("signature", sig.String()))
	return sig, nil
}

func (c *Client) signedTransaction(ctx context.Context, instructions []solana.Instruction, signer Signer) (*solana.Transaction, error) {
	latest, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, newIOError("getLatestBlockhash", err)
	}

	tx, err := solana.NewTransaction(instructions, latest.Value.Blockhash, solana.TransactionPayer(signer.Payer()))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create transaction: %w", err))
	}
	if err := signer.SignTransaction(tx); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to sign transaction: %w", err))
	}
	return tx, nil
}

func (c *Client) submitAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.opts.Commitment,
	})
	if err != nil {
		if strings.Contains(err.Error(), "BlockhashNotFound") {
			return solana.Signature{}, newIOError("sendTransaction", err)
		}
		if failure, ok := AnalyzeSendError(err); ok {
			c.logger.Warn("Transaction simulation failed", failure.Fields()...)
		}
		return solana.Signature{}, backoff.Permanent(newIOError("sendTransaction", err))
	}

	if err := c.WaitForConfirmation(ctx, sig); err != nil {
		return sig, backoff.Permanent(fmt.Errorf("transaction %s not confirmed: %w", sig, err))
	}
	return sig, nil
}

// WaitForConfirmation polls signature status until it is confirmed or
// finalized.
func (c *Client) WaitForConfirmation(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(confirmTimeout)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return ErrConfirmationTimeout
		case <-ticker.C:
			statuses, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
			if err != nil {
				c.logger.Warn("Error getting signature statuses", zap.Error(err))
				continue
			}
			if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
				continue
			}
			status := statuses.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction failed on chain: %v", status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusFinalized ||
				status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed {
				return nil
			}
		}
	}
}
