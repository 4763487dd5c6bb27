package datasources

import (
	"context"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/holiman/uint256"
)

const evmABI = `[
	{"type":"function","name":"ownerOf","stateMutability":"view",
		"inputs":[{"name":"tokenId","type":"uint256"}],
		"outputs":[{"name":"owner","type":"address"}]},
	{"type":"function","name":"checkDelegateForAll","stateMutability":"view",
		"inputs":[{"name":"delegate","type":"address"},{"name":"vault","type":"address"}],
		"outputs":[{"name":"valid","type":"bool"}]}
]`

var parsedEVMABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(evmABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// EVMClient is the subset of ethclient.Client used by EVMDatasource.
type EVMClient interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// EVMDatasource reads NFT ownership, delegations and the chain id from an EVM node.
type EVMDatasource struct {
	client             EVMClient
	delegationRegistry common.Address
}

func NewEVMDatasource(client EVMClient, delegationRegistry common.Address) *EVMDatasource {
	return &EVMDatasource{
		client:             client,
		delegationRegistry: delegationRegistry,
	}
}

func (d *EVMDatasource) Name() string {
	return "evm_node"
}

// OwnerOf returns the owner of an ERC-721 token. A reverted call (e.g. nonexistent token) returns errs.NotFound.
func (d *EVMDatasource) OwnerOf(ctx context.Context, token common.Address, tokenID *uint256.Int) (common.Address, error) {
	var owner common.Address
	if err := d.call(ctx, token, "ownerOf", []any{&owner}, tokenID.ToBig()); err != nil {
		return common.Address{}, errors.Wrapf(err, "ownerOf(%s) on %s", tokenID.Dec(), token.Hex())
	}
	return owner, nil
}

// IsDelegatedForAll calls checkDelegateForAll on the delegation registry.
// Without a configured registry nobody is delegated.
func (d *EVMDatasource) IsDelegatedForAll(ctx context.Context, delegate, vault common.Address) (bool, error) {
	if d.delegationRegistry == (common.Address{}) {
		return false, nil
	}
	var valid bool
	if err := d.call(ctx, d.delegationRegistry, "checkDelegateForAll", []any{&valid}, delegate, vault); err != nil {
		return false, errors.Wrap(err, "checkDelegateForAll")
	}
	return valid, nil
}

// ChainID asks the node for its chain id on every call so a fork is observed.
func (d *EVMDatasource) ChainID(ctx context.Context) (uint64, error) {
	chainID, err := d.client.ChainID(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get chain id")
	}
	if !chainID.IsUint64() {
		return 0, errors.Wrapf(errs.OverflowUint64, "chain id %s", chainID.String())
	}
	return chainID.Uint64(), nil
}

func (d *EVMDatasource) call(ctx context.Context, contract common.Address, method string, out []any, args ...any) error {
	input, err := parsedEVMABI.Pack(method, args...)
	if err != nil {
		return errors.Wrap(err, "failed to pack call")
	}
	output, err := d.client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: input}, nil)
	if err != nil {
		var dataErr rpc.DataError
		if errors.As(err, &dataErr) {
			return errors.Wrapf(errs.NotFound, "call reverted: %v", err)
		}
		return errors.Wrap(err, "failed to call contract")
	}
	if len(output) == 0 {
		return errors.Wrapf(errs.NotFound, "no contract code at %s", contract.Hex())
	}
	if err := parsedEVMABI.UnpackIntoInterface(out[0], method, output); err != nil {
		return errors.Wrap(err, "failed to unpack result")
	}
	return nil
}
