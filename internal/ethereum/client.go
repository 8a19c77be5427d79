package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rishbCLN/civic-issue-reporting/internal/chain"
	"github.com/rishbCLN/civic-issue-reporting/internal/config"
)

// Client 合约调用客户端
type Client struct {
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	chainId    *big.Int
	contract   *bind.BoundContract
	address    common.Address
}

// Init 创建合约调用客户端
// 复用链管理器持有的RPC连接
func Init(cfg config.ChainConfig, manager *chain.Manager) (*Client, error) {
	contract, err := manager.GetContract(chain.CivicContractName)
	if err != nil {
		return nil, err
	}

	// 解析私钥
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	ethClient := manager.GetClient()
	bound := bind.NewBoundContract(
		contract.GetAddress(), contract.GetABI(), ethClient, ethClient, ethClient)

	return &Client{
		client:     ethClient,
		privateKey: privateKey,
		chainId:    big.NewInt(cfg.ChainId),
		contract:   bound,
		address:    contract.GetAddress(),
	}, nil
}

// Call 执行只读合约调用
func (c *Client) Call(ctx context.Context, results *[]interface{}, method string, args ...interface{}) error {
	opts := &bind.CallOpts{Context: ctx}
	if err := c.contract.Call(opts, results, method, args...); err != nil {
		return fmt.Errorf("contract call %s failed: %w", method, err)
	}
	return nil
}

// Transact 执行状态变更合约调用并等待交易上链
// 只有交易被打包且执行成功才返回回执
func (c *Client) Transact(ctx context.Context, method string, args ...interface{}) (*types.Receipt, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, c.chainId)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx

	tx, err := c.contract.Transact(auth, method, args...)
	if err != nil {
		return nil, fmt.Errorf("contract transaction %s failed: %w", method, err)
	}

	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
	}

	return receipt, nil
}

// GetAccountAddress 获取签名账户地址
func (c *Client) GetAccountAddress() common.Address {
	return crypto.PubkeyToAddress(c.privateKey.PublicKey)
}

// GetContractAddress 获取合约地址
func (c *Client) GetContractAddress() common.Address {
	return c.address
}

// GetLatestBlock 获取最新区块号
func (c *Client) GetLatestBlock(ctx context.Context) (uint64, error) {
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Uint64(), nil
}
