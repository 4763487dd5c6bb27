package postgres

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/pkg/decimals"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// DECIMAL columns hold unsigned integers of up to 256 bits.

func numeric(v *uint256.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimals.ToDecimal(v, 0)
}

func numericUint64(v uint64) decimal.Decimal {
	return decimals.ToDecimal(v, 0)
}

func toUint256(d decimal.Decimal) (*uint256.Int, error) {
	v, err := decimals.ParseUnits(d.String(), 0)
	if err != nil {
		return nil, errors.Wrap(err, "invalid numeric column")
	}
	return v, nil
}

func toUint64(d decimal.Decimal) (uint64, error) {
	v, err := toUint256(d)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, errors.Wrapf(errs.OverflowUint64, "numeric column %s", d.String())
	}
	return v.Uint64(), nil
}

func address(s string) common.Address {
	if s == "" {
		return common.Address{}
	}
	return common.HexToAddress(s)
}

func hash(s string) common.Hash {
	if s == "" {
		return common.Hash{}
	}
	return common.HexToHash(s)
}

// uint64Scanner collects DECIMAL columns scanned into uint64 fields.
type uint64Scanner struct {
	targets []*uint64
	values  []*decimal.Decimal
}

func (s *uint64Scanner) dest(target *uint64) *decimal.Decimal {
	value := new(decimal.Decimal)
	s.targets = append(s.targets, target)
	s.values = append(s.values, value)
	return value
}

func (s *uint64Scanner) resolve() error {
	for i, target := range s.targets {
		v, err := toUint64(*s.values[i])
		if err != nil {
			return err
		}
		*target = v
	}
	return nil
}
