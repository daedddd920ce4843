// Package solbctest provides a testify mock of solbc.Ledger.
package solbctest

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/blockchain/solbc"
	"github.com/stretchr/testify/mock"
)

// MockLedger implements solbc.Ledger.
type MockLedger struct {
	mock.Mock
}

var _ solbc.Ledger = (*MockLedger)(nil)

func (m *MockLedger) GetAccount(ctx context.Context, address solana.PublicKey) (*solbc.Account, error) {
	args := m.Called(ctx, address)
	var acc *solbc.Account
	if fn, ok := args.Get(0).(func(context.Context, solana.PublicKey) *solbc.Account); ok {
		acc = fn(ctx, address)
	} else {
		acc, _ = args.Get(0).(*solbc.Account)
	}
	if fn, ok := args.Get(1).(func(context.Context, solana.PublicKey) error); ok {
		return acc, fn(ctx, address)
	}
	return acc, args.Error(1)
}

func (m *MockLedger) GetAccounts(ctx context.Context, addresses []solana.PublicKey) ([]*solbc.Account, error) {
	args := m.Called(ctx, addresses)
	if fn, ok := args.Get(0).(func(context.Context, []solana.PublicKey) []*solbc.Account); ok {
		return fn(ctx, addresses), args.Error(1)
	}
	accs, _ := args.Get(0).([]*solbc.Account)
	return accs, args.Error(1)
}

func (m *MockLedger) FindProgramAccounts(ctx context.Context, program solana.PublicKey, size uint64, filter *solbc.Memcmp) ([]*solbc.Account, error) {
	args := m.Called(ctx, program, size, filter)
	accs, _ := args.Get(0).([]*solbc.Account)
	return accs, args.Error(1)
}

func (m *MockLedger) GetAccountOwner(ctx context.Context, address solana.PublicKey) (*solana.PublicKey, error) {
	args := m.Called(ctx, address)
	owner, _ := args.Get(0).(*solana.PublicKey)
	return owner, args.Error(1)
}

func (m *MockLedger) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]*solbc.Account, error) {
	args := m.Called(ctx, owner)
	accs, _ := args.Get(0).([]*solbc.Account)
	return accs, args.Error(1)
}

// Key returns a fresh random public key.
func Key() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

// AccountMap answers GetAccounts from a fixed set of accounts, returning nil
// for addresses it does not hold.
func AccountMap(accounts ...*solbc.Account) func(addresses []solana.PublicKey) []*solbc.Account {
	byAddr := make(map[solana.PublicKey]*solbc.Account, len(accounts))
	for _, acc := range accounts {
		byAddr[acc.Address] = acc
	}
	return func(addresses []solana.PublicKey) []*solbc.Account {
		out := make([]*solbc.Account, len(addresses))
		for i, a := range addresses {
			out[i] = byAddr[a]
		}
		return out
	}
}

// ServeAccounts wires GetAccounts and GetAccount on m to a fixed set of
// accounts.
func (m *MockLedger) ServeAccounts(accounts ...*solbc.Account) {
	lookup := AccountMap(accounts...)
	m.On("GetAccounts", mock.Anything, mock.Anything).Return(
		func(_ context.Context, addresses []solana.PublicKey) []*solbc.Account {
			return lookup(addresses)
		},
		nil,
	)
	m.On("GetAccount", mock.Anything, mock.Anything).Return(
		func(_ context.Context, address solana.PublicKey) *solbc.Account {
			return lookup([]solana.PublicKey{address})[0]
		},
		func(_ context.Context, address solana.PublicKey) error {
			if lookup([]solana.PublicKey{address})[0] == nil {
				return solbc.ErrAccountNotFound
			}
			return nil
		},
	)
}
