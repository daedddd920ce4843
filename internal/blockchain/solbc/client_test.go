package solbc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRPC struct {
	mock.Mock
}

func (m *mockRPC) GetMultipleAccountsWithOpts(ctx context.Context, accounts []solana.PublicKey, opts *rpc.GetMultipleAccountsOpts) (*rpc.GetMultipleAccountsResult, error) {
	args := m.Called(ctx, accounts, opts)
	res, _ := args.Get(0).(*rpc.GetMultipleAccountsResult)
	return res, args.Error(1)
}

func (m *mockRPC) GetProgramAccountsWithOpts(ctx context.Context, program solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	args := m.Called(ctx, program, opts)
	res, _ := args.Get(0).(rpc.GetProgramAccountsResult)
	return res, args.Error(1)
}

func (m *mockRPC) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error) {
	args := m.Called(ctx, owner, conf, opts)
	res, _ := args.Get(0).(*rpc.GetTokenAccountsResult)
	return res, args.Error(1)
}

func (m *mockRPC) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	args := m.Called(ctx, commitment)
	res, _ := args.Get(0).(*rpc.GetLatestBlockhashResult)
	return res, args.Error(1)
}

func (m *mockRPC) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	args := m.Called(ctx, tx, opts)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *mockRPC) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	args := m.Called(ctx, searchTransactionHistory, signatures)
	res, _ := args.Get(0).(*rpc.GetSignatureStatusesResult)
	return res, args.Error(1)
}

func newTestClient(api rpcAPI, opts Options) *Client {
	opts.RetryInterval = time.Millisecond
	return newClient(api, opts, zap.NewNop())
}

func keys(n int) []solana.PublicKey {
	out := make([]solana.PublicKey, n)
	for i := range out {
		out[i] = solana.NewWallet().PublicKey()
	}
	return out
}

// accountsFor echoes one account per requested key, using the key as data.
func accountsFor(addrs []solana.PublicKey, missing map[solana.PublicKey]bool) *rpc.GetMultipleAccountsResult {
	res := &rpc.GetMultipleAccountsResult{Value: make([]*rpc.Account, len(addrs))}
	for i, a := range addrs {
		if missing[a] {
			continue
		}
		res.Value[i] = &rpc.Account{
			Owner:    solana.TokenProgramID,
			Lamports: 1,
			Data:     rpc.DataBytesOrJSONFromBytes(a.Bytes()),
		}
	}
	return res
}

func TestGetAccountsChunksAndKeepsOrder(t *testing.T) {
	api := new(mockRPC)
	addrs := keys(5)
	missing := map[solana.PublicKey]bool{addrs[3]: true}

	for _, chunk := range [][]solana.PublicKey{addrs[0:2], addrs[2:4], addrs[4:5]} {
		api.On("GetMultipleAccountsWithOpts", mock.Anything, chunk, mock.Anything).
			Return(accountsFor(chunk, missing), nil).Once()
	}

	client := newTestClient(api, Options{BatchSize: 2})
	got, err := client.GetAccounts(context.Background(), addrs)
	require.NoError(t, err)
	require.Len(t, got, 5)

	for i, a := range addrs {
		if missing[a] {
			assert.Nil(t, got[i])
			continue
		}
		require.NotNil(t, got[i])
		assert.Equal(t, a, got[i].Address)
		assert.Equal(t, a.Bytes(), got[i].Data)
	}
	api.AssertNumberOfCalls(t, "GetMultipleAccountsWithOpts", 3)
}

func TestGetAccountsDefaultBatchSize(t *testing.T) {
	api := new(mockRPC)
	addrs := keys(DefaultBatchSize + 1)

	api.On("GetMultipleAccountsWithOpts", mock.Anything, addrs[:DefaultBatchSize], mock.Anything).
		Return(accountsFor(addrs[:DefaultBatchSize], nil), nil).Once()
	api.On("GetMultipleAccountsWithOpts", mock.Anything, addrs[DefaultBatchSize:], mock.Anything).
		Return(accountsFor(addrs[DefaultBatchSize:], nil), nil).Once()

	client := newTestClient(api, Options{})
	assert.Equal(t, DefaultBatchSize, client.BatchSize())

	got, err := client.GetAccounts(context.Background(), addrs)
	require.NoError(t, err)
	assert.Len(t, got, len(addrs))
	api.AssertExpectations(t)
}

func TestGetAccountsRetriesTransientFailure(t *testing.T) {
	api := new(mockRPC)
	addrs := keys(1)

	api.On("GetMultipleAccountsWithOpts", mock.Anything, addrs, mock.Anything).
		Return(nil, errors.New("429 too many requests")).Once()
	api.On("GetMultipleAccountsWithOpts", mock.Anything, addrs, mock.Anything).
		Return(accountsFor(addrs, nil), nil).Once()

	client := newTestClient(api, Options{Retries: 2})
	got, err := client.GetAccounts(context.Background(), addrs)
	require.NoError(t, err)
	assert.NotNil(t, got[0])
	api.AssertNumberOfCalls(t, "GetMultipleAccountsWithOpts", 2)
}

func TestGetAccountsWrapsIOError(t *testing.T) {
	api := new(mockRPC)
	addrs := keys(1)
	cause := errors.New("connection refused")

	api.On("GetMultipleAccountsWithOpts", mock.Anything, addrs, mock.Anything).Return(nil, cause)

	client := newTestClient(api, Options{Retries: 1})
	_, err := client.GetAccounts(context.Background(), addrs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExternalIO))
	assert.True(t, errors.Is(err, cause))

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "getMultipleAccounts", ioErr.Method)
	api.AssertNumberOfCalls(t, "GetMultipleAccountsWithOpts", 2)
}

func TestGetAccountNotFound(t *testing.T) {
	api := new(mockRPC)
	addr := solana.NewWallet().PublicKey()

	api.On("GetMultipleAccountsWithOpts", mock.Anything, []solana.PublicKey{addr}, mock.Anything).
		Return(&rpc.GetMultipleAccountsResult{Value: []*rpc.Account{nil}}, nil)

	client := newTestClient(api, Options{})
	_, err := client.GetAccount(context.Background(), addr)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestFindProgramAccountsFilters(t *testing.T) {
	api := new(mockRPC)
	program := solana.NewWallet().PublicKey()
	admin := solana.NewWallet().PublicKey()
	found := solana.NewWallet().PublicKey()

	api.On("GetProgramAccountsWithOpts", mock.Anything, program, mock.MatchedBy(func(opts *rpc.GetProgramAccountsOpts) bool {
		if len(opts.Filters) != 2 {
			return false
		}
		size, memcmp := opts.Filters[0], opts.Filters[1].Memcmp
		return size.DataSize == 395 &&
			memcmp != nil &&
			memcmp.Offset == 75 &&
			solana.PublicKeyFromBytes(memcmp.Bytes).Equals(admin)
	})).Return(rpc.GetProgramAccountsResult{
		{Pubkey: found, Account: &rpc.Account{Owner: program, Data: rpc.DataBytesOrJSONFromBytes([]byte{1, 2, 3})}},
		nil,
	}, nil)

	client := newTestClient(api, Options{})
	got, err := client.FindProgramAccounts(context.Background(), program, 395, &Memcmp{Offset: 75, Bytes: admin.Bytes()})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, found, got[0].Address)
	assert.Equal(t, []byte{1, 2, 3}, got[0].Data)
	api.AssertExpectations(t)
}

func TestFindProgramAccountsSizeOnly(t *testing.T) {
	api := new(mockRPC)
	program := solana.NewWallet().PublicKey()

	api.On("GetProgramAccountsWithOpts", mock.Anything, program, mock.MatchedBy(func(opts *rpc.GetProgramAccountsOpts) bool {
		return len(opts.Filters) == 1 && opts.Filters[0].DataSize == 114 && opts.Filters[0].Memcmp == nil
	})).Return(rpc.GetProgramAccountsResult{}, nil)

	client := newTestClient(api, Options{})
	got, err := client.FindProgramAccounts(context.Background(), program, 114, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	api.AssertExpectations(t)
}

func TestGetAccountOwner(t *testing.T) {
	api := new(mockRPC)
	addrs := keys(2)

	api.On("GetMultipleAccountsWithOpts", mock.Anything, addrs[:1], mock.Anything).
		Return(accountsFor(addrs[:1], nil), nil)
	api.On("GetMultipleAccountsWithOpts", mock.Anything, addrs[1:], mock.Anything).
		Return(&rpc.GetMultipleAccountsResult{Value: []*rpc.Account{nil}}, nil)

	client := newTestClient(api, Options{})

	owner, err := client.GetAccountOwner(context.Background(), addrs[0])
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, solana.TokenProgramID, *owner)

	owner, err = client.GetAccountOwner(context.Background(), addrs[1])
	require.NoError(t, err)
	assert.Nil(t, owner)
}
