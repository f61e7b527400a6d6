package money

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// Money is a fixed-point monetary amount. All cart/order totals go through
// this type; float64 accumulation is not acceptable for money.
//
// It marshals to a DynamoDB number attribute and to a bare JSON number.
type Money struct {
	d decimal.Decimal
}

// Zero returns a zero amount.
func Zero() Money { return Money{} }

// FromInt builds an amount from a whole number of currency units.
func FromInt(n int64) Money { return Money{decimal.NewFromInt(n)} }

// FromFloat builds an amount from a float. Intended for boundary
// conversion (request parsing, seeding), not for arithmetic.
func FromFloat(f float64) Money { return Money{decimal.NewFromFloat(f)} }

// FromString parses a decimal string like "299.8".
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money{d}, nil
}

// FromDecimal wraps a raw decimal.
func FromDecimal(d decimal.Decimal) Money { return Money{d} }

func (m Money) Add(o Money) Money { return Money{m.d.Add(o.d)} }

func (m Money) Mul(o Money) Money { return Money{m.d.Mul(o.d)} }

// MulInt scales the amount by an integer quantity.
func (m Money) MulInt(n int64) Money { return Money{m.d.Mul(decimal.NewFromInt(n))} }

// Round2 rounds half away from zero to two decimal places.
func (m Money) Round2() Money { return Money{m.d.Round(2)} }

func (m Money) IsZero() bool     { return m.d.IsZero() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

// Cmp returns -1, 0 or 1 comparing m to o.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) String() string { return m.d.String() }

// MarshalJSON renders the amount as a bare JSON number, matching the
// wire format the frontend consumes.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("unmarshal money: %w", err)
	}
	m.d = d
	return nil
}

// MarshalDynamoDBAttributeValue stores the amount as a number attribute.
func (m Money) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: m.d.String()}, nil
}

// UnmarshalDynamoDBAttributeValue accepts number or string attributes.
func (m *Money) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	var raw string
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	default:
		return fmt.Errorf("unmarshal money: unexpected attribute type %T", av)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("unmarshal money %q: %w", raw, err)
	}
	m.d = d
	return nil
}

// compile-time checks that Money round-trips through attributevalue.
var (
	_ attributevalue.Marshaler   = Money{}
	_ attributevalue.Unmarshaler = (*Money)(nil)
)
