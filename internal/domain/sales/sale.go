package sales

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sicua/backend/internal/domain/shared"
)

// SaleStatus is the invoicing state of a sale
type SaleStatus string

const (
	SaleStatusPending  SaleStatus = "PENDING"
	SaleStatusInvoiced SaleStatus = "INVOICED"
)

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Invoiced is terminal.
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	return s == SaleStatusPending && target == SaleStatusInvoiced
}

// Client identifies who bought. Both fields are optional; a sale with
// neither is anonymous.
type Client struct {
	Name *string
	ID   *string
}

// NewClient trims the values and drops blanks
func NewClient(name, id *string) Client {
	return Client{Name: trimmedOrNil(name), ID: trimmedOrNil(id)}
}

// IsAnonymous returns true if no client information was given
func (c Client) IsAnonymous() bool {
	return c.Name == nil && c.ID == nil
}

// DisplayName returns the client name, the client id, or a placeholder
func (c Client) DisplayName() string {
	switch {
	case c.Name != nil:
		return *c.Name
	case c.ID != nil:
		return *c.ID
	}
	return "Anonymous"
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

// Sale is a recorded checkout. Apart from the invoiced flag it never
// changes after creation.
type Sale struct {
	shared.BaseAggregateRoot
	ID             uuid.UUID
	Client         Client
	IdempotencyKey *string
	Items          []SaleItem
	Total          decimal.Decimal
	Invoiced       bool
	InvoicedAt     *time.Time
	SoldAt         time.Time
}

// NewSale builds a sale from item snapshots, in the given order
func NewSale(client Client, items []SaleItem) (*Sale, error) {
	if len(items) == 0 {
		return nil, shared.ErrEmptyCart
	}

	s := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ID:                uuid.New(),
		Client:            client,
		Items:             make([]SaleItem, len(items)),
	}
	s.SoldAt = s.CreatedAt
	copy(s.Items, items)
	for i := range s.Items {
		s.Items[i].LineNo = i + 1
	}
	s.Total = sumSubtotals(s.Items)

	s.AddDomainEvent(NewSaleCreatedEvent(s))
	return s, nil
}

// SetIdempotencyKey records the client supplied key used to create the sale
func (s *Sale) SetIdempotencyKey(key string) {
	s.IdempotencyKey = trimmedOrNil(&key)
}

// Status returns the invoicing state
func (s *Sale) Status() SaleStatus {
	if s.Invoiced {
		return SaleStatusInvoiced
	}
	return SaleStatusPending
}

// MarkInvoiced moves the sale to invoiced. Calling it on an invoiced sale
// is a no-op; the return value tells whether anything changed.
func (s *Sale) MarkInvoiced() bool {
	if !s.Status().CanTransitionTo(SaleStatusInvoiced) {
		return false
	}
	now := time.Now()
	s.Invoiced = true
	s.InvoicedAt = &now
	s.IncrementVersion()
	s.AddDomainEvent(NewSaleInvoicedEvent(s))
	return true
}

// ItemCount returns the number of units sold across all lines
func (s *Sale) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// CheckTotals verifies every subtotal and the sale total against the snapshots
func (s *Sale) CheckTotals() error {
	for _, it := range s.Items {
		if !it.Subtotal.Equal(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))) {
			return shared.NewDomainError(shared.CodeInvalidState, "sale item subtotal does not match price times quantity")
		}
	}
	if !s.Total.Equal(sumSubtotals(s.Items)) {
		return shared.NewDomainError(shared.CodeInvalidState, "sale total does not match the sum of its items")
	}
	return nil
}

func sumSubtotals(items []SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}
	return total
}
