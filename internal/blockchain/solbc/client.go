// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// rpcAPI is the subset of *rpc.Client used here.
type rpcAPI interface {
	GetMultipleAccountsWithOpts(ctx context.Context, accounts []solana.PublicKey, opts *rpc.GetMultipleAccountsOpts) (*rpc.GetMultipleAccountsResult, error)
	GetProgramAccountsWithOpts(ctx context.Context, program solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error)
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// Options tunes the client. Zero values fall back to defaults.
type Options struct {
	BatchSize      int
	Concurrency    int
	Retries        int
	RetryInterval  time.Duration
	RequestTimeout time.Duration
	Commitment     rpc.CommitmentType
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = 500 * time.Millisecond
	}
	if o.Commitment == "" {
		o.Commitment = rpc.CommitmentConfirmed
	}
	return o
}

// Client is a thin Ledger adapter over solana-go's RPC client. Transport
// failures are retried with exponential backoff and surface as IOError.
type Client struct {
	rpc    rpcAPI
	opts   Options
	logger *zap.Logger
}

var _ Ledger = (*Client)(nil)

// NewClient creates a client for rpcURL.
func NewClient(rpcURL string, opts Options, logger *zap.Logger) *Client {
	return newClient(rpc.New(rpcURL), opts, logger)
}

func newClient(api rpcAPI, opts Options, logger *zap.Logger) *Client {
	return &Client{
		rpc:    api,
		opts:   opts.withDefaults(),
		logger: logger.Named("solbc-client"),
	}
}

// BatchSize reports the configured getMultipleAccounts chunk size.
func (c *Client) BatchSize() int {
	return c.opts.BatchSize
}

// GetAccount fetches a single account.
func (c *Client) GetAccount(ctx context.Context, address solana.PublicKey) (*Account, error) {
	accounts, err := c.GetAccounts(ctx, []solana.PublicKey{address})
	if err != nil {
		return nil, err
	}
	if accounts[0] == nil {
		return nil, ErrAccountNotFound
	}
	return accounts[0], nil
}

// GetAccountOwner is an existence probe: a nil owner with a nil error means
// the account has not been created.
func (c *Client) GetAccountOwner(ctx context.Context, address solana.PublicKey) (*solana.PublicKey, error) {
	accounts, err := c.GetAccounts(ctx, []solana.PublicKey{address})
	if err != nil {
		return nil, err
	}
	if accounts[0] == nil {
		return nil, nil
	}
	owner := accounts[0].Owner
	return &owner, nil
}

// GetAccounts fetches addresses in chunks of BatchSize, running up to
// Concurrency requests at once, and returns results in input order.
func (c *Client) GetAccounts(ctx context.Context, addresses []solana.PublicKey) ([]*Account, error) {
	out := make([]*Account, len(addresses))
	if len(addresses) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)

	for start := 0; start < len(addresses); start += c.opts.BatchSize {
		end := start + c.opts.BatchSize
		if end > len(addresses) {
			end = len(addresses)
		}
		offset, chunk := start, addresses[start:end]

		g.Go(func() error {
			res, err := retry(gctx, c, "getMultipleAccounts", func(ctx context.Context) (*rpc.GetMultipleAccountsResult, error) {
				return c.rpc.GetMultipleAccountsWithOpts(ctx, chunk, &rpc.GetMultipleAccountsOpts{
					Commitment: c.opts.Commitment,
					Encoding:   solana.EncodingBase64,
				})
			})
			if err != nil {
				return err
			}
			for i, acc := range res.Value {
				if i >= len(chunk) {
					break
				}
				out[offset+i] = fromRPCAccount(chunk[i], acc)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.logger.Debug("GetAccounts error",
			zap.Int("addresses", len(addresses)),
			zap.Error(err))
		return nil, err
	}
	return out, nil
}

// FindProgramAccounts runs getProgramAccounts with a dataSize filter and an
// optional memcmp filter.
func (c *Client) FindProgramAccounts(ctx context.Context, program solana.PublicKey, size uint64, filter *Memcmp) ([]*Account, error) {
	opts := &rpc.GetProgramAccountsOpts{
		Commitment: c.opts.Commitment,
		Encoding:   solana.EncodingBase64,
		Filters:    []rpc.RPCFilter{{DataSize: size}},
	}
	if filter != nil {
		opts.Filters = append(opts.Filters, rpc.RPCFilter{
			Memcmp: &rpc.RPCFilterMemcmp{
				Offset: filter.Offset,
				Bytes:  solana.Base58(filter.Bytes),
			},
		})
	}

	res, err := retry(ctx, c, "getProgramAccounts", func(ctx context.Context) (rpc.GetProgramAccountsResult, error) {
		return c.rpc.GetProgramAccountsWithOpts(ctx, program, opts)
	})
	if err != nil {
		c.logger.Debug("FindProgramAccounts error",
			zap.String("program_id", program.String()),
			zap.Error(err))
		return nil, err
	}

	out := make([]*Account, 0, len(res))
	for _, keyed := range res {
		if keyed == nil {
			continue
		}
		out = append(out, fromRPCAccount(keyed.Pubkey, keyed.Account))
	}
	return out, nil
}

// GetTokenAccountsByOwner lists token-program accounts owned by owner.
func (c *Client) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]*Account, error) {
	programID := solana.TokenProgramID
	res, err := retry(ctx, c, "getTokenAccountsByOwner", func(ctx context.Context) (*rpc.GetTokenAccountsResult, error) {
		return c.rpc.GetTokenAccountsByOwner(ctx, owner,
			&rpc.GetTokenAccountsConfig{ProgramId: &programID},
			&rpc.GetTokenAccountsOpts{
				Commitment: c.opts.Commitment,
				Encoding:   solana.EncodingBase64,
			})
	})
	if err != nil {
		return nil, err
	}

	out := make([]*Account, 0, len(res.Value))
	for _, ta := range res.Value {
		if ta == nil {
			continue
		}
		acc := ta.Account
		out = append(out, fromRPCAccount(ta.Pubkey, &acc))
	}
	return out, nil
}

func fromRPCAccount(address solana.PublicKey, acc *rpc.Account) *Account {
	if acc == nil {
		return nil
	}
	out := &Account{
		Address:  address,
		Owner:    acc.Owner,
		Lamports: acc.Lamports,
	}
	if acc.Data != nil {
		out.Data = acc.Data.GetBinary()
	}
	return out
}

// retry runs op with the client's backoff policy. Every attempt gets its own
// RequestTimeout when one is configured. The final error is an IOError.
func retry[T any](ctx context.Context, c *Client, method string, op func(ctx context.Context) (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.opts.RetryInterval
	policy.MaxInterval = c.opts.RetryInterval * 10

	notify := func(err error, d time.Duration) {
		c.logger.Warn("RPC call failed, retrying",
			zap.String("method", method),
			zap.Duration("backoff", d),
			zap.Error(err))
	}

	attempt := func() (T, error) {
		callCtx := ctx
		if c.opts.RequestTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.opts.RequestTimeout)
			defer cancel()
		}
		return op(callCtx)
	}

	res, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.opts.Retries+1)),
		backoff.WithNotify(notify))
	if err != nil {
		var zero T
		return zero, newIOError(method, err)
	}
	return res, nil
}
