package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rishbCLN/civic-issue-reporting/internal/chain"
	"github.com/rishbCLN/civic-issue-reporting/internal/ethereum"
)

// rpcGateway 基于RPC客户端的合约网关
type rpcGateway struct {
	client  *ethereum.Client
	manager *chain.Manager
}

// NewRPCGateway 创建合约网关
func NewRPCGateway(client *ethereum.Client, manager *chain.Manager) Gateway {
	return &rpcGateway{client: client, manager: manager}
}

func (g *rpcGateway) EnsureDeployed(ctx context.Context) error {
	return g.manager.EnsureDeployed(ctx, chain.CivicContractName)
}

func (g *rpcGateway) IssueCount(ctx context.Context) (uint64, error) {
	var results []interface{}
	if err := g.client.Call(ctx, &results, "issueCount"); err != nil {
		return 0, err
	}

	count, ok := results[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected issueCount result type %T", results[0])
	}
	return count.Uint64(), nil
}

func (g *rpcGateway) GetIssue(ctx context.Context, issueId uint64) (*IssueRecord, error) {
	var results []interface{}
	if err := g.client.Call(ctx, &results, "getIssue", new(big.Int).SetUint64(issueId)); err != nil {
		return nil, err
	}
	if len(results) != 7 {
		return nil, fmt.Errorf("unexpected getIssue result length %d", len(results))
	}

	id, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected getIssue id type %T", results[0])
	}
	reporter, ok := results[1].(common.Address)
	if !ok {
		return nil, fmt.Errorf("unexpected getIssue reporter type %T", results[1])
	}
	location, ok := results[2].(string)
	if !ok {
		return nil, fmt.Errorf("unexpected getIssue location type %T", results[2])
	}
	description, ok := results[3].(string)
	if !ok {
		return nil, fmt.Errorf("unexpected getIssue description type %T", results[3])
	}
	imageHash, ok := results[4].(string)
	if !ok {
		return nil, fmt.Errorf("unexpected getIssue imageHash type %T", results[4])
	}
	statusOrdinal, ok := results[5].(uint8)
	if !ok {
		return nil, fmt.Errorf("unexpected getIssue status type %T", results[5])
	}
	timestamp, ok := results[6].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected getIssue timestamp type %T", results[6])
	}

	return &IssueRecord{
		ID:          id.Uint64(),
		Reporter:    reporter.Hex(),
		Location:    location,
		Description: description,
		ImageHash:   imageHash,
		Status:      int(statusOrdinal),
		Timestamp:   timestamp.Int64(),
	}, nil
}

func (g *rpcGateway) ReportIssue(ctx context.Context, location, description, imageHash string) (uint64, error) {
	receipt, err := g.client.Transact(ctx, "reportIssue", location, description, imageHash)
	if err != nil {
		return 0, err
	}

	// 从回执日志中提取合约分配的问题ID
	civicContract, err := g.manager.GetContract(chain.CivicContractName)
	if err != nil {
		return 0, err
	}
	reportedID := civicContract.GetABI().Events["IssueReported"].ID

	for _, log := range receipt.Logs {
		if len(log.Topics) >= 2 && log.Topics[0] == reportedID {
			return new(big.Int).SetBytes(log.Topics[1].Bytes()).Uint64(), nil
		}
	}

	return 0, fmt.Errorf("transaction %s mined but no IssueReported event found", receipt.TxHash.Hex())
}

func (g *rpcGateway) UpdateIssueStatus(ctx context.Context, issueId uint64, statusOrdinal int) error {
	_, err := g.client.Transact(ctx, "updateIssueStatus",
		new(big.Int).SetUint64(issueId), uint8(statusOrdinal))
	return err
}

func (g *rpcGateway) ConfirmIssue(ctx context.Context, issueId uint64) error {
	_, err := g.client.Transact(ctx, "confirmIssue", new(big.Int).SetUint64(issueId))
	return err
}

func (g *rpcGateway) ConfirmationCount(ctx context.Context, issueId uint64) (int, error) {
	var results []interface{}
	if err := g.client.Call(ctx, &results, "getConfirmationCount", new(big.Int).SetUint64(issueId)); err != nil {
		return 0, err
	}

	count, ok := results[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected getConfirmationCount result type %T", results[0])
	}
	return int(count.Int64()), nil
}

func (g *rpcGateway) HasUserConfirmed(ctx context.Context, issueId uint64, userAddress string) (bool, error) {
	var results []interface{}
	err := g.client.Call(ctx, &results, "hasUserConfirmed",
		new(big.Int).SetUint64(issueId), common.HexToAddress(userAddress))
	if err != nil {
		return false, err
	}

	confirmed, ok := results[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected hasUserConfirmed result type %T", results[0])
	}
	return confirmed, nil
}

func (g *rpcGateway) FundIssue(ctx context.Context, issueId uint64, amount int64) error {
	_, err := g.client.Transact(ctx, "fundIssue",
		new(big.Int).SetUint64(issueId), big.NewInt(amount))
	return err
}

func (g *rpcGateway) WithdrawFunds(ctx context.Context, issueId uint64, amount int64) error {
	_, err := g.client.Transact(ctx, "withdrawFunds",
		new(big.Int).SetUint64(issueId), big.NewInt(amount))
	return err
}

func (g *rpcGateway) GetIssueFunding(ctx context.Context, issueId uint64) (*Funding, error) {
	var results []interface{}
	if err := g.client.Call(ctx, &results, "getIssueFunding", new(big.Int).SetUint64(issueId)); err != nil {
		return nil, err
	}
	if len(results) != 3 {
		return nil, fmt.Errorf("unexpected getIssueFunding result length %d", len(results))
	}

	values := make([]int64, 3)
	for i, result := range results {
		v, ok := result.(*big.Int)
		if !ok {
			return nil, fmt.Errorf("unexpected getIssueFunding result type %T", result)
		}
		values[i] = v.Int64()
	}

	return &Funding{
		TotalFunding: values[0],
		FundsUsed:    values[1],
		Available:    values[2],
	}, nil
}

func (g *rpcGateway) GetUserFunding(ctx context.Context, issueId uint64, userAddress string) (int64, error) {
	var results []interface{}
	err := g.client.Call(ctx, &results, "getUserFunding",
		new(big.Int).SetUint64(issueId), common.HexToAddress(userAddress))
	if err != nil {
		return 0, err
	}

	amount, ok := results[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected getUserFunding result type %T", results[0])
	}
	return amount.Int64(), nil
}
