package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the declared type of a column.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDate
	KindOption
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindOption:
		return "option"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

var (
	ErrNotNumber     = errors.New("not a number")
	ErrNotDate       = errors.New("not a date")
	ErrUnknownOption = errors.New("value not in option set")
	ErrReadOnly      = errors.New("column is read-only")
	ErrUnknownColumn = errors.New("unknown column")
	ErrRowOutOfRange = errors.New("row out of range")
)

// Column describes one named column of a table.
type Column struct {
	Name     string
	Kind     Kind
	Options  []string
	ReadOnly bool
}

// Text, Number, Date and Option build column descriptors.
func Text(name string) Column   { return Column{Name: name, Kind: KindText} }
func Number(name string) Column { return Column{Name: name, Kind: KindNumber} }
func Date(name string) Column   { return Column{Name: name, Kind: KindDate} }

func Option(name string, options ...string) Column {
	return Column{Name: name, Kind: KindOption, Options: options}
}

// Locked returns a read-only copy of the column.
func (c Column) Locked() Column {
	c.ReadOnly = true
	return c
}

// Parse validates raw user input against the column. It is used on edit;
// values read back from a store go through Coerce instead.
func (c Column) Parse(raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Empty(), nil
	}
	switch c.Kind {
	case KindNumber:
		d, ok := ParseAmount(raw)
		if !ok {
			return Value{}, fmt.Errorf("%s: %q: %w", c.Name, raw, ErrNotNumber)
		}
		return NumberValue(d), nil
	case KindDate:
		t, ok := ParseDate(raw)
		if !ok {
			return Value{}, fmt.Errorf("%s: %q: %w", c.Name, raw, ErrNotDate)
		}
		return DateValue(t), nil
	case KindOption:
		if !slices.Contains(c.Options, raw) {
			return Value{}, fmt.Errorf("%s: %q: %w", c.Name, raw, ErrUnknownOption)
		}
		return OptionValue(raw), nil
	default:
		return TextValue(raw), nil
	}
}

// Coerce converts a stored cell to the column kind, falling back to a text
// value when the cell does not fit.
func (c Column) Coerce(raw string) Value {
	v, err := c.Parse(raw)
	if err != nil {
		return TextValue(strings.TrimSpace(raw))
	}
	return v
}

// Value is a single cell. The zero Value is empty.
type Value struct {
	kind Kind
	set  bool
	text string
	num  decimal.Decimal
	at   time.Time
}

func Empty() Value { return Value{} }

func TextValue(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: KindText, set: true, text: s}
}

func NumberValue(d decimal.Decimal) Value { return Value{kind: KindNumber, set: true, num: d} }

func IntValue(n int64) Value { return NumberValue(decimal.NewFromInt(n)) }

func DateValue(t time.Time) Value { return Value{kind: KindDate, set: true, at: t} }

func OptionValue(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: KindOption, set: true, text: s}
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsEmpty() bool { return !v.set }
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate || !v.set {
		return time.Time{}, false
	}
	return v.at, true
}

// Decimal returns the numeric content of the cell. Text cells holding a
// number-like string are parsed too.
func (v Value) Decimal() (decimal.Decimal, bool) {
	if !v.set {
		return decimal.Zero, false
	}
	if v.kind == KindNumber {
		return v.num, true
	}
	if v.kind == KindText || v.kind == KindOption {
		return ParseAmount(v.text)
	}
	return decimal.Zero, false
}

// String is the serialized cell content.
func (v Value) String() string {
	if !v.set {
		return ""
	}
	switch v.kind {
	case KindNumber:
		return v.num.String()
	case KindDate:
		if v.at.Hour() == 0 && v.at.Minute() == 0 && v.at.Second() == 0 {
			return v.at.Format(dateLayout)
		}
		return v.at.Format(dateTimeLayout)
	default:
		return v.text
	}
}

// Equal compares serialized content.
func (v Value) Equal(o Value) bool { return v.String() == o.String() }
