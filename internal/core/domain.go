package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Inflow  Kind = "inflow"
	Outflow Kind = "outflow"
)

const (
	CategoryTax     Category = "tax"
	CategoryPayroll Category = "payroll"
	CategoryOther   Category = "other"
)

type (
	// Kind distinguishes money coming in from money going out.
	Kind string

	// Category classifies outflows. It is never set on inflows.
	Category string

	Date struct {
		time.Time
	}

	// Entry is a single recorded inflow or outflow. Entries are owned by
	// the ledger exclusively; nothing else holds a reference to them.
	Entry struct {
		ID          string    `json:"id"`
		Kind        Kind      `json:"kind"`
		Amount      Money     `json:"amount"`
		Description string    `json:"description,omitempty"`
		Category    Category  `json:"category,omitempty"`
		Date        Date      `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
	}
)

var (
	ErrEmptyID            = errors.New("empty entry id")
	ErrInvalidKind        = errors.New("invalid kind")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidDate        = errors.New("invalid date")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

func (k Kind) Validate() error {
	switch k {
	case Inflow, Outflow:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (c Category) Validate() error {
	switch c {
	case CategoryTax, CategoryPayroll, CategoryOther:
		return nil
	default:
		return ErrInvalidCategory
	}
}

// Label returns the display name used in reports.
func (c Category) Label() string {
	switch c {
	case CategoryTax:
		return "Impostos"
	case CategoryPayroll:
		return "Folha de Pagamento"
	default:
		return "Outras"
	}
}

// Label returns the display name used in reports.
func (k Kind) Label() string {
	if k == Inflow {
		return "Entrada"
	}
	return "Saída"
}

// NewDate creates a Date at day granularity in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthKey returns the YYYY-MM bucket key for the date.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// YearKey returns the YYYY grouping key for the date.
func (d Date) YearKey() string {
	return d.Format("2006")
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(e.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if e.Category != "" {
		if e.Kind != Outflow {
			return fmt.Errorf("category %q set on %s entry: %w", e.Category, e.Kind, ErrInvalidCategory)
		}
		if err := e.Category.Validate(); err != nil {
			return err
		}
	}
	return e.Date.Validate()
}

// EffectiveCategory returns the category an outflow aggregates under.
// Outflows recorded without a category count as Other.
func (e Entry) EffectiveCategory() Category {
	if e.Category == "" {
		return CategoryOther
	}
	return e.Category
}

// Signed returns the amount in cents with inflows positive and outflows
// negative.
func (e Entry) Signed() int64 {
	if e.Kind == Inflow {
		return e.Amount.Cents
	}
	return -e.Amount.Cents
}
