package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"poolfund.backend/internal/config"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/internal/domain/services"
	"poolfund.backend/pkg/logger"
)

// Token units on the allocator chain.
const (
	usdtDecimals = 6
	dctDecimals  = 9
)

var erc20ABI = mustParseABI(`[
	{"inputs":[{"internalType":"address","name":"to","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`)

var executeERC20Transfer = func(ctx context.Context, rpcURL, operatorPrivateKey, tokenContract, toAddress string, amount *big.Int) (string, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return "", err
	}
	defer client.Close()

	privateKeyHex := strings.TrimPrefix(operatorPrivateKey, "0x")
	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return "", domainerrors.BadRequest("invalid operator private key")
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return "", err
	}
	if chainID == nil {
		return "", fmt.Errorf("chain id is nil")
	}
	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	if err != nil {
		return "", err
	}
	auth.Context = ctx

	contract := bind.NewBoundContract(common.HexToAddress(tokenContract), erc20ABI, client, client, client)
	tx, err := contract.Transact(auth, "transfer", common.HexToAddress(toAddress), amount)
	if err != nil {
		return "", err
	}
	return tx.Hash().Hex(), nil
}

// EVMAllocator settles approved withdrawals on-chain and reads DCT
// balances for marked valuation. It satisfies both AllocatorBridge and
// BalanceSource.
type EVMAllocator struct {
	client *EVMClient
	cfg    config.BridgeConfig
}

// NewEVMAllocator dials the configured RPC endpoint.
func NewEVMAllocator(cfg config.BridgeConfig) (*EVMAllocator, error) {
	client, err := NewEVMClient(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial allocator rpc: %w", err)
	}
	return &EVMAllocator{client: client, cfg: cfg}, nil
}

// NewEVMAllocatorWithClient injects a client. Intended for unit tests.
func NewEVMAllocatorWithClient(cfg config.BridgeConfig, client *EVMClient) *EVMAllocator {
	return &EVMAllocator{client: client, cfg: cfg}
}

// DCTBalance reads the wallet's DCT token balance, converted from
// on-chain units (9 decimals) to a decimal amount.
func (a *EVMAllocator) DCTBalance(ctx context.Context, wallet string) (decimal.Decimal, error) {
	if wallet == "" {
		return decimal.Zero, domainerrors.BadRequest("wallet address is empty")
	}
	raw, err := a.client.GetTokenBalance(ctx, a.cfg.DCTContract, wallet)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromBigInt(raw, -dctDecimals), nil
}

// Release transfers the net USDT amount to the investor's wallet signed
// by the operator key. Called after the ledger transition committed; the
// caller records the hash and logs failures for reconciliation.
func (a *EVMAllocator) Release(ctx context.Context, input services.ReleaseInput) (*services.ReleaseResult, error) {
	if a.cfg.OperatorPrivateKey == "" {
		return nil, domainerrors.BadRequest("operator private key is not configured")
	}
	if input.Wallet == "" {
		return nil, domainerrors.BadRequest("investor wallet is not set")
	}

	units := input.AmountUsdt.Shift(usdtDecimals).BigInt()
	txHash, err := executeERC20Transfer(ctx, a.cfg.RPCURL, a.cfg.OperatorPrivateKey, a.cfg.USDTContract, input.Wallet, units)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "allocator release submitted",
		zap.String("investor_id", input.InvestorID.String()),
		zap.String("cycle_id", input.CycleID.String()),
		zap.String("amount_usdt", input.AmountUsdt.String()),
		zap.String("tx_hash", txHash),
	)
	return &services.ReleaseResult{TxHash: txHash}, nil
}

// Close releases the underlying RPC connection.
func (a *EVMAllocator) Close() {
	if a.client != nil {
		a.client.Close()
	}
}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
