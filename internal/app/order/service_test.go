package order

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmanWeb/bobatea/internal/adapter/logger"
	"github.com/ArmanWeb/bobatea/internal/domain"
	"github.com/ArmanWeb/bobatea/internal/hub"
	"github.com/ArmanWeb/bobatea/internal/interfaces"
)

type fakeStoreRepo struct {
	stores map[int64]*domain.Store
}

func (f *fakeStoreRepo) FindByID(ctx context.Context, id int64) (*domain.Store, error) {
	store, ok := f.stores[id]
	if !ok {
		return nil, domain.ErrStoreNotFound
	}
	return store, nil
}

func (f *fakeStoreRepo) ListActive(ctx context.Context) ([]*domain.Store, error) { return nil, nil }

func (f *fakeStoreRepo) RefreshUTCOffset(ctx context.Context, storeID int64, offset int) error {
	return nil
}

type captureOrderRepo struct {
	created *domain.Order
	nextSeq int
	seqKeys []string

	createErr error
}

func (c *captureOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	if c.createErr != nil {
		return c.createErr
	}
	order.ID = 42
	c.created = order
	return nil
}

func (c *captureOrderRepo) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (c *captureOrderRepo) FindByPickupCode(ctx context.Context, storeID int64, code string) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (c *captureOrderRepo) UpdateStatus(ctx context.Context, order *domain.Order, expectedVersion int) error {
	return nil
}

func (c *captureOrderRepo) GetStatusHistory(ctx context.Context, orderID int64) ([]*domain.TransitionLog, error) {
	return nil, nil
}

func (c *captureOrderRepo) NextPickupSeq(ctx context.Context, storeID int64, businessDate string) (int, error) {
	c.nextSeq++
	c.seqKeys = append(c.seqKeys, fmt.Sprintf("%d/%s", storeID, businessDate))
	return c.nextSeq, nil
}

func testStore() *domain.Store {
	return &domain.Store{
		ID:         1,
		Name:       "Arbat",
		Timezone:   "Europe/Moscow",
		CutoffHour: 4,
		Active:     true,
	}
}

func testCommand() interfaces.CreateOrderCommand {
	return interfaces.CreateOrderCommand{
		StoreID: 1,
		Channel: domain.CodeTypeOnline,
		Items: []interfaces.CreateOrderItemCommand{
			{ProductID: "p-1", Name: "Taro Latte", Quantity: 2, Price: 450},
			{ProductID: "p-2", Name: "Matcha", Quantity: 1, Price: 390},
		},
	}
}

func TestCreateOrderSnapshotsAttribution(t *testing.T) {
	orders := &captureOrderRepo{}
	stores := &fakeStoreRepo{stores: map[int64]*domain.Store{1: testStore()}}
	notifier := hub.New(8)
	defer notifier.Shutdown()
	svc := NewService(orders, stores, notifier, logger.Nop())

	created, err := svc.CreateOrder(context.Background(), testCommand())
	require.NoError(t, err)

	assert.Equal(t, "Europe/Moscow", created.StoreTimezone)
	assert.Equal(t, 3, created.StoreUTCOffset)
	assert.Equal(t, 4, created.CutoffHour)
	assert.NotEmpty(t, created.BusinessDate)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, 1, created.Version)
	assert.InDelta(t, 1290.0, created.TotalAmount, 1e-9)
	require.NotNil(t, orders.created, "order must be persisted")
}

func TestCreateOrderPickupCodeAndNumber(t *testing.T) {
	orders := &captureOrderRepo{}
	stores := &fakeStoreRepo{stores: map[int64]*domain.Store{1: testStore()}}
	notifier := hub.New(8)
	defer notifier.Shutdown()
	svc := NewService(orders, stores, notifier, logger.Nop())

	online, err := svc.CreateOrder(context.Background(), testCommand())
	require.NoError(t, err)
	assert.Equal(t, "T0001", online.PickupCode)
	assert.Regexp(t, `^ORD_\d{8}_S1_0001$`, online.Number)

	cmd := testCommand()
	cmd.Channel = domain.CodeTypeOffline
	kiosk, err := svc.CreateOrder(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "X0002", kiosk.PickupCode)

	require.Len(t, orders.seqKeys, 2)
	assert.Equal(t, orders.seqKeys[0], orders.seqKeys[1], "same store and business date share one counter")
}

func TestCreateOrderPublishesCreatedEvent(t *testing.T) {
	orders := &captureOrderRepo{}
	stores := &fakeStoreRepo{stores: map[int64]*domain.Store{1: testStore()}}
	notifier := hub.New(8)
	defer notifier.Shutdown()
	sub := notifier.Subscribe(hub.StoreRoom(1))
	svc := NewService(orders, stores, notifier, logger.Nop())

	created, err := svc.CreateOrder(context.Background(), testCommand())
	require.NoError(t, err)

	ev := <-sub.C()
	assert.Equal(t, hub.EventOrderCreated, ev.Name)
	assert.Equal(t, created.ID, ev.OrderID)
	assert.Equal(t, created.PickupCode, ev.PickupCode)
	assert.Equal(t, "2x Taro Latte, 1x Matcha", ev.ItemsSummary)
}

func TestCreateOrderInactiveStoreRejected(t *testing.T) {
	store := testStore()
	store.Active = false
	orders := &captureOrderRepo{}
	stores := &fakeStoreRepo{stores: map[int64]*domain.Store{1: store}}
	notifier := hub.New(8)
	defer notifier.Shutdown()
	svc := NewService(orders, stores, notifier, logger.Nop())

	_, err := svc.CreateOrder(context.Background(), testCommand())
	require.Error(t, err)
	assert.Nil(t, orders.created)
}

func TestCreateOrderUnknownStore(t *testing.T) {
	orders := &captureOrderRepo{}
	stores := &fakeStoreRepo{stores: map[int64]*domain.Store{}}
	notifier := hub.New(8)
	defer notifier.Shutdown()
	svc := NewService(orders, stores, notifier, logger.Nop())

	_, err := svc.CreateOrder(context.Background(), testCommand())
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
}

func TestCreateOrderBadTimezoneSurfaces(t *testing.T) {
	store := testStore()
	store.Timezone = "Mars/Olympus"
	orders := &captureOrderRepo{}
	stores := &fakeStoreRepo{stores: map[int64]*domain.Store{1: store}}
	notifier := hub.New(8)
	defer notifier.Shutdown()
	svc := NewService(orders, stores, notifier, logger.Nop())

	_, err := svc.CreateOrder(context.Background(), testCommand())
	require.Error(t, err)
	assert.Nil(t, orders.created)
}

func TestCreateOrderEmptyItemsRejected(t *testing.T) {
	orders := &captureOrderRepo{}
	stores := &fakeStoreRepo{stores: map[int64]*domain.Store{1: testStore()}}
	notifier := hub.New(8)
	defer notifier.Shutdown()
	svc := NewService(orders, stores, notifier, logger.Nop())

	cmd := testCommand()
	cmd.Items = nil
	_, err := svc.CreateOrder(context.Background(), cmd)
	require.Error(t, err)
	assert.Zero(t, orders.nextSeq, "no pickup code burned on an invalid order")
}
