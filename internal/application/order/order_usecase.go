package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	appinventory "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/metrics"
)

const entityOrder = "order"

// OrderUseCase alta, edición y borrado lógico de órdenes. Crear una orden descuenta stock
// con un movimiento de salida en la misma transacción.
type OrderUseCase struct {
	txRunner  TxRunner
	orderRepo repository.OrderRepository
	itemRepo  repository.ItemRepository
	guard     appinventory.Guard
	metrics   *metrics.StockMetrics
	now       func() time.Time
}

// Option ajusta el caso de uso.
type Option func(*OrderUseCase)

// WithGuard activa la serialización por ítem.
func WithGuard(g appinventory.Guard) Option { return func(uc *OrderUseCase) { uc.guard = g } }

// WithMetrics registra validaciones y mutaciones.
func WithMetrics(m *metrics.StockMetrics) Option { return func(uc *OrderUseCase) { uc.metrics = m } }

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option { return func(uc *OrderUseCase) { uc.now = now } }

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	itemRepo repository.ItemRepository,
	opts ...Option,
) *OrderUseCase {
	uc := &OrderUseCase{
		txRunner:  txRunner,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func validateOrderNo(orderNo string) error {
	if strings.TrimSpace(orderNo) == "" {
		return domain.Invalid("order_no es obligatorio")
	}
	if len([]rune(orderNo)) > entity.OrderNoMaxLen {
		return domain.Invalid("order_no admite máximo %d caracteres", entity.OrderNoMaxLen)
	}
	return nil
}

func validateOrderFields(orderNo string, itemID, qty int) error {
	if err := validateOrderNo(orderNo); err != nil {
		return err
	}
	if itemID <= 0 {
		return domain.Invalid("item_id debe ser > 0")
	}
	if qty < 1 || qty > entity.MaxQty {
		return domain.Invalid("qty debe estar entre 1 y %d", entity.MaxQty)
	}
	return nil
}

// Create registra la orden al precio actual del ítem y agrega la salida de stock correspondiente.
func (uc *OrderUseCase) Create(ctx context.Context, actor string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if err := validateOrderFields(in.OrderNo, in.ItemID, in.Qty); err != nil {
		return nil, err
	}
	release, err := uc.guard.Acquire(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		order *entity.Order
		item  *entity.Item
	)
	err = uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, movRepo repository.InventoryMovementRepository, orderRepo repository.OrderRepository) error {
		exists, err := orderRepo.ExistsByOrderNo(ctx, in.OrderNo)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("orden %s: %w", in.OrderNo, domain.ErrDuplicate)
		}
		item, err = uc.guard.LoadItem(ctx, itemRepo, in.ItemID)
		if err != nil {
			return err
		}
		if err := uc.validateAvailability(ctx, movRepo, item.ID, in.Qty); err != nil {
			return err
		}

		now := uc.now()
		order = &entity.Order{OrderNo: in.OrderNo, ItemID: item.ID, Qty: in.Qty, Price: item.Price}
		order.StampCreated(actor, now)
		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}
		withdrawal := &entity.InventoryMovement{ItemID: item.ID, Qty: in.Qty, Type: entity.MovementTypeWithdrawal}
		withdrawal.StampCreated(actor, now)
		if err := movRepo.Create(ctx, withdrawal); err != nil {
			return fmt.Errorf("registrar salida de la orden %s: %w", in.OrderNo, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.IncMutation(entityOrder, "create")
	return toOrderResponse(order, item.Name), nil
}

// Update solo valida el incremento de qty (delta > 0). El precio lo fija quien llama.
// La salida registrada al crear la orden no se ajusta.
func (uc *OrderUseCase) Update(ctx context.Context, actor string, in dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	if err := validateOrderFields(in.OrderNo, in.ItemID, in.Qty); err != nil {
		return nil, err
	}
	if !in.Price.GreaterThanOrEqual(entity.MinPrice) {
		return nil, domain.Invalid("price debe ser >= %s", entity.MinPrice)
	}
	release, err := uc.guard.Acquire(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		order *entity.Order
		item  *entity.Item
	)
	err = uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, movRepo repository.InventoryMovementRepository, orderRepo repository.OrderRepository) error {
		order, err = loadActiveOrder(ctx, orderRepo, in.OrderNo)
		if err != nil {
			return err
		}
		item, err = uc.guard.LoadItem(ctx, itemRepo, in.ItemID)
		if err != nil {
			return err
		}
		if delta := in.Qty - order.Qty; delta > 0 {
			if err := uc.validateAvailability(ctx, movRepo, item.ID, delta); err != nil {
				return err
			}
		}
		order.ItemID = item.ID
		order.Qty = in.Qty
		order.Price = in.Price
		order.StampUpdated(actor, uc.now())
		return orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.IncMutation(entityOrder, "update")
	return toOrderResponse(order, item.Name), nil
}

// Delete borrado lógico sin devolver stock. Una orden ya eliminada se informa como no encontrada
// (el error también coincide con ErrAlreadyDeleted).
func (uc *OrderUseCase) Delete(ctx context.Context, actor string, orderNo string) error {
	if err := validateOrderNo(orderNo); err != nil {
		return err
	}
	err := uc.txRunner.Run(ctx, func(_ repository.ItemRepository, _ repository.InventoryMovementRepository, orderRepo repository.OrderRepository) error {
		order, err := loadActiveOrder(ctx, orderRepo, orderNo)
		if err != nil {
			return err
		}
		if err := order.MarkDeleted(actor, uc.now()); err != nil {
			return err
		}
		return orderRepo.Update(ctx, order)
	})
	if err != nil {
		return err
	}
	uc.metrics.IncMutation(entityOrder, "delete")
	return nil
}

// Get devuelve la orden aunque esté eliminada.
func (uc *OrderUseCase) Get(ctx context.Context, orderNo string) (*dto.OrderResponse, error) {
	order, item, err := uc.load(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	name := ""
	if item != nil {
		name = item.Name
	}
	return toOrderResponse(order, name), nil
}

// List página de órdenes activas.
func (uc *OrderUseCase) List(ctx context.Context, page, size int) (*dto.PageResponse[dto.OrderResponse], error) {
	p, err := repository.NewPage(page, size)
	if err != nil {
		return nil, err
	}
	list, total, err := uc.orderRepo.ListActive(ctx, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	names := make(map[int]string)
	content := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		name, ok := names[o.ItemID]
		if !ok {
			item, err := uc.itemRepo.GetByID(ctx, o.ItemID)
			if err != nil {
				return nil, err
			}
			if item != nil {
				name = item.Name
			}
			names[o.ItemID] = name
		}
		content = append(content, *toOrderResponse(o, name))
	}
	return &dto.PageResponse[dto.OrderResponse]{
		Content:       content,
		Page:          p.Number,
		TotalPages:    p.TotalPages(total),
		TotalElements: total,
		Size:          p.Size,
	}, nil
}

// load orden (incluso eliminada) y su ítem, que puede ser nil.
func (uc *OrderUseCase) load(ctx context.Context, orderNo string) (*entity.Order, *entity.Item, error) {
	if err := validateOrderNo(orderNo); err != nil {
		return nil, nil, err
	}
	order, err := uc.orderRepo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, fmt.Errorf("orden %s: %w", orderNo, domain.ErrNotFound)
	}
	item, err := uc.itemRepo.GetByID(ctx, order.ItemID)
	if err != nil {
		return nil, nil, err
	}
	return order, item, nil
}

func (uc *OrderUseCase) validateAvailability(ctx context.Context, ledger inventory.Ledger, itemID, qty int) error {
	err := inventory.NewStockValidator(ledger).ValidateAvailability(ctx, itemID, qty)
	uc.metrics.ObserveValidation(metrics.CheckAvailability, appinventory.ValidationResult(err))
	return err
}

// loadActiveOrder una orden eliminada cuenta como no encontrada.
func loadActiveOrder(ctx context.Context, repo repository.OrderRepository, orderNo string) (*entity.Order, error) {
	order, err := repo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("orden %s: %w", orderNo, domain.ErrNotFound)
	}
	if order.IsDeleted() {
		return nil, fmt.Errorf("orden %s: %w: %w", orderNo, domain.ErrNotFound, domain.ErrAlreadyDeleted)
	}
	return order, nil
}

func toOrderResponse(o *entity.Order, itemName string) *dto.OrderResponse {
	return &dto.OrderResponse{
		OrderNo:       o.OrderNo,
		ItemID:        o.ItemID,
		ItemName:      itemName,
		Qty:           o.Qty,
		Price:         o.Price,
		Total:         o.Total(),
		AuditResponse: dto.NewAuditResponse(o.Record),
	}
}
