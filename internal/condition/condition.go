package condition

import (
	"math/big"

	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// Operator is a comparison applied to an index value against a threshold.
type Operator uint8

const (
	GT Operator = iota
	LT
	GTE
	LTE
	EQ
)

var operatorNames = map[Operator]string{
	GT:  "gt",
	LT:  "lt",
	GTE: "gte",
	LTE: "lte",
	EQ:  "eq",
}

var ErrUnknownOperator = errors.New("unknown comparison operator")

func (o Operator) String() string {
	if s, ok := operatorNames[o]; ok {
		return s
	}
	return "unknown"
}

func ParseOperator(s string) (Operator, error) {
	for op, name := range operatorNames {
		if name == s {
			return op, nil
		}
	}
	return 0, errors.From(ErrUnknownOperator, logan.F{"operator": s})
}

// Condition makes an order fillable only once the index value satisfies
// the comparison. Immutable once its bytes are hashed into an order.
type Condition struct {
	IndexID   *big.Int
	Operator  Operator
	Threshold *big.Int
}

func New(indexID int64, op Operator, threshold *big.Int) Condition {
	return Condition{
		IndexID:   big.NewInt(indexID),
		Operator:  op,
		Threshold: threshold,
	}
}

func (c Condition) Validate() error {
	if c.IndexID == nil || c.IndexID.Sign() < 0 {
		return errors.New("index id must be a non-negative integer")
	}
	if c.Threshold == nil || c.Threshold.Sign() < 0 {
		return errors.New("threshold must be a non-negative integer")
	}
	if _, ok := operatorNames[c.Operator]; !ok {
		return ErrUnknownOperator
	}
	return nil
}

// Evaluate compares value against the condition threshold. Values are scaled
// fixed-point integers, so the comparison is exact.
func Evaluate(c Condition, value *big.Int) bool {
	cmp := value.Cmp(c.Threshold)
	switch c.Operator {
	case GT:
		return cmp > 0
	case LT:
		return cmp < 0
	case GTE:
		return cmp >= 0
	case LTE:
		return cmp <= 0
	case EQ:
		return cmp == 0
	}
	return false
}
