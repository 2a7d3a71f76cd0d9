package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appcatalog "github.com/sicua/backend/internal/application/catalog"
	"github.com/sicua/backend/internal/application/event"
	"github.com/sicua/backend/internal/domain/catalog"
	"github.com/sicua/backend/internal/domain/sales"
	"github.com/sicua/backend/internal/domain/shared"
	"github.com/sicua/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	// DefaultMaxAttempts bounds how often a sale is retried after the stock
	// it read was changed by a concurrent writer.
	DefaultMaxAttempts = 3

	// DefaultStoreName is printed on receipts when none is configured
	DefaultStoreName = "Store"

	idempotencyKeyPrefix = "sale:"
)

// SaleService records sales and tracks their invoicing state
type SaleService struct {
	txScope     TransactionScope
	saleRepo    sales.SaleRepository
	events      *event.Dispatcher
	idempotency shared.IdempotencyStore
	metrics     *telemetry.StoreMetrics
	logger      *zap.Logger
	storeName   string
	maxAttempts int
	keyTTL      time.Duration
}

// NewSaleService creates a new SaleService
func NewSaleService(
	txScope TransactionScope,
	saleRepo sales.SaleRepository,
	events *event.Dispatcher,
	logger *zap.Logger,
) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		txScope:     txScope,
		saleRepo:    saleRepo,
		events:      events,
		logger:      logger,
		storeName:   DefaultStoreName,
		maxAttempts: DefaultMaxAttempts,
		keyTTL:      shared.DefaultIdempotencyTTL,
	}
}

// SetIdempotencyStore enables replay protection for requests that carry a key
func (s *SaleService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

// SetMetrics sets the business metrics recorder
func (s *SaleService) SetMetrics(m *telemetry.StoreMetrics) {
	s.metrics = m
}

// SetStoreName sets the name printed on receipts
func (s *SaleService) SetStoreName(name string) {
	if name != "" {
		s.storeName = name
	}
}

// SetIdempotencyTTL sets how long a claimed idempotency key is held
func (s *SaleService) SetIdempotencyTTL(ttl time.Duration) {
	if ttl > 0 {
		s.keyTTL = ttl
	}
}

// SetMaxAttempts sets how many times a sale is tried on stock conflicts
func (s *SaleService) SetMaxAttempts(n int) {
	if n > 0 {
		s.maxAttempts = n
	}
}

// CreateSale validates every line in the order given, snapshots product data
// into the sale and decrements stock. Either the sale and all decrements are
// stored, or nothing is.
func (s *SaleService) CreateSale(ctx context.Context, req CreateSaleRequest) (resp *SaleResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "CreateSale")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrItemsCount, len(req.Items))

	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
			s.metrics.RecordSaleRejected(ctx, errorCode(err))
		}
	}()

	if len(req.Items) == 0 {
		return nil, shared.ErrEmptyCart
	}

	if req.IdempotencyKey != "" {
		replay, release, claimErr := s.claimIdempotencyKey(ctx, req.IdempotencyKey)
		if claimErr != nil {
			return nil, claimErr
		}
		if replay != nil {
			response := ToSaleResponse(replay)
			return &response, nil
		}
		defer func() {
			if err != nil {
				release()
			}
		}()
	}

	var sale *sales.Sale
	var plan *catalog.StockPlan
	for attempt := 1; ; attempt++ {
		sale, plan, err = s.recordSale(ctx, req)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrStockConflict) || attempt >= s.maxAttempts {
			return nil, err
		}
		telemetry.AddEvent(span, "stock_conflict", telemetry.SpanAttrAttempt, attempt)
		s.logger.Info("Stock changed during sale, retrying", zap.Int("attempt", attempt))
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSaleID, sale.ID.String(),
		telemetry.SpanAttrAmount, sale.Total.String(),
	)
	s.logger.Info("Sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.Int("lines", len(sale.Items)),
		zap.String("total", sale.Total.String()))

	s.events.Dispatch(ctx, sale)
	stockEvents := make([]shared.DomainEvent, 0, plan.Len())
	for _, line := range plan.Lines() {
		stockEvents = append(stockEvents, catalog.NewStockDecreasedEvent(line, sale.ID.String()))
	}
	s.events.Publish(ctx, stockEvents...)
	s.metrics.RecordSaleCreated(ctx, sale.ItemCount(), sale.Total)

	response := ToSaleResponse(sale)
	return &response, nil
}

// recordSale runs one attempt inside a transaction
func (s *SaleService) recordSale(ctx context.Context, req CreateSaleRequest) (*sales.Sale, *catalog.StockPlan, error) {
	var sale *sales.Sale
	var plan *catalog.StockPlan

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ledger := appcatalog.NewStockLedger(repos.ProductRepo())
		reservation := ledger.NewReservation()
		items := make([]sales.SaleItem, 0, len(req.Items))

		for i, line := range req.Items {
			if line.UnitPriceOverride != nil {
				field := fmt.Sprintf("items[%d].unit_price_override", i)
				if line.UnitPriceOverride.IsNegative() {
					return shared.NewValidationError(field, "price override cannot be negative")
				}
				if shared.ExceedsMoneyScale(*line.UnitPriceOverride) {
					return shared.NewValidationError(field, "price override cannot have more than 4 decimal places")
				}
			}
			product, err := reservation.Add(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}

			price := product.Price
			if line.UnitPriceOverride != nil {
				price = *line.UnitPriceOverride
			}
			item, err := sales.NewSaleItem(product.ID, product.Name, price, line.Quantity)
			if err != nil {
				return err
			}
			item.PriceOverridden = line.UnitPriceOverride != nil
			items = append(items, item)
		}

		var err error
		sale, err = sales.NewSale(sales.NewClient(req.ClientName, req.ClientID), items)
		if err != nil {
			return err
		}
		if req.IdempotencyKey != "" {
			sale.SetIdempotencyKey(req.IdempotencyKey)
		}

		plan = reservation.Plan()
		if err := ledger.Apply(ctx, plan); err != nil {
			return err
		}
		return repos.SaleRepo().Create(ctx, sale)
	})
	if err != nil {
		return nil, nil, err
	}
	return sale, plan, nil
}

// claimIdempotencyKey returns the sale already stored under key, or claims the
// key for this request. release gives the claim back if the sale fails.
func (s *SaleService) claimIdempotencyKey(ctx context.Context, key string) (*sales.Sale, func(), error) {
	noop := func() {}

	existing, err := s.saleRepo.FindByIdempotencyKey(ctx, key)
	if err == nil {
		s.logger.Info("Replaying sale for idempotency key", zap.String("sale_id", existing.ID.String()))
		return existing, noop, nil
	}
	var nf *shared.SaleNotFoundError
	if !errors.As(err, &nf) {
		return nil, noop, err
	}

	if s.idempotency == nil {
		return nil, noop, nil
	}
	storeKey := idempotencyKeyPrefix + key
	first, err := s.idempotency.MarkProcessed(ctx, storeKey, s.keyTTL)
	if err != nil {
		s.logger.Warn("Idempotency store unavailable, continuing without it", zap.Error(err))
		return nil, noop, nil
	}
	if !first {
		// Either the first request finished since the lookup or it is still running
		if existing, err := s.saleRepo.FindByIdempotencyKey(ctx, key); err == nil {
			return existing, noop, nil
		}
		return nil, noop, shared.NewDomainError(shared.CodeConcurrencyConflict,
			"A sale with this idempotency key is already being processed")
	}

	release := func() {
		if err := s.idempotency.Release(context.WithoutCancel(ctx), storeKey); err != nil {
			s.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
		}
	}
	return nil, release, nil
}

// MarkInvoiced moves a sale to invoiced. Invoicing an invoiced sale
// succeeds without changing it.
func (s *SaleService) MarkInvoiced(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "MarkInvoiced")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrSaleID, id.String())

	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if sale.MarkInvoiced() {
		if err := s.saleRepo.Save(ctx, sale); err != nil {
			if !errors.Is(err, shared.ErrConcurrencyConflict) {
				telemetry.RecordError(span, err)
				return nil, err
			}
			// Lost to a concurrent writer; the only possible change is invoicing
			sale, err = s.saleRepo.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if !sale.Invoiced {
				return nil, shared.ErrConcurrencyConflict
			}
		} else {
			s.logger.Info("Sale invoiced", zap.String("sale_id", id.String()))
			s.events.Dispatch(ctx, sale)
			s.metrics.RecordSaleInvoiced(ctx)
		}
	}

	response := ToSaleResponse(sale)
	return &response, nil
}

// GetSale retrieves a sale by ID
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// GetReceipt renders the receipt content of a sale
func (s *SaleService) GetReceipt(ctx context.Context, id uuid.UUID) (*sales.Receipt, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sales.NewReceipt(sale, s.storeName), nil
}

// ListSales retrieves sales, newest first unless asked otherwise
func (s *SaleService) ListSales(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, shared.NewValidationError("to", "end date is before start date")
	}

	domainFilter := sales.SaleFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "sold_at",
			OrderDir: filter.OrderDir,
		},
		From:     filter.From,
		Invoiced: filter.Invoiced,
		ClientID: filter.ClientID,
	}
	if filter.To != nil {
		// the date is inclusive
		end := filter.To.Add(24*time.Hour - time.Nanosecond)
		domainFilter.To = &end
	}

	list, err := s.saleRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.saleRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSaleResponses(list), total, nil
}

func errorCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return "INTERNAL_ERROR"
}
