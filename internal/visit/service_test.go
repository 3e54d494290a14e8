package visit

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layali-lounge/qrmenu-backend/internal/cart"
	"github.com/layali-lounge/qrmenu-backend/internal/session"
	"github.com/layali-lounge/qrmenu-backend/pkg/logger"
)

type stubOrderChecker struct {
	open  map[string]bool
	err   error
	calls int
}

func (s *stubOrderChecker) HasOpenOrder(_ context.Context, tableNo string) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.open[tableNo], nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestCaptureTable(t *testing.T) {
	svc := NewService(&stubOrderChecker{}, testLogger())
	ctx := context.Background()

	visit := session.NewVisit()
	svc.CaptureTable(ctx, visit, "  T3 ")
	assert.Equal(t, "T3", visit.TableNo())

	svc.CaptureTable(ctx, visit, "")
	assert.Equal(t, "T3", visit.TableNo(), "blank param keeps the earlier scan")

	svc.CaptureTable(ctx, visit, "T9")
	assert.Equal(t, "T9", visit.TableNo(), "a new scan moves the visit")
}

func TestExpireStaleCartClearsClosedTable(t *testing.T) {
	checker := &stubOrderChecker{open: map[string]bool{}}
	svc := NewService(checker, testLogger())
	ctx := context.Background()

	visit := session.NewVisit()
	visit.SetTableNo("T3")
	visit.AddItem(cart.ProductKey(uuid.New()), 2, "")
	visit.MarkSubmitted()

	require.NoError(t, svc.ExpireStaleCart(ctx, visit))
	assert.True(t, visit.Cart().IsEmpty())
	assert.False(t, visit.HasSubmittedOrder())
}

func TestExpireStaleCartKeepsOpenTable(t *testing.T) {
	checker := &stubOrderChecker{open: map[string]bool{"T3": true}}
	svc := NewService(checker, testLogger())
	ctx := context.Background()

	visit := session.NewVisit()
	visit.SetTableNo("T3")
	visit.AddItem(cart.ProductKey(uuid.New()), 2, "")
	visit.MarkSubmitted()

	require.NoError(t, svc.ExpireStaleCart(ctx, visit))
	assert.False(t, visit.Cart().IsEmpty())
	assert.True(t, visit.HasSubmittedOrder())
}

func TestExpireStaleCartSkipsUnsubmittedVisits(t *testing.T) {
	checker := &stubOrderChecker{}
	svc := NewService(checker, testLogger())
	ctx := context.Background()

	visit := session.NewVisit()
	visit.SetTableNo("T3")
	visit.AddItem(cart.ProductKey(uuid.New()), 1, "")

	require.NoError(t, svc.ExpireStaleCart(ctx, visit))
	assert.False(t, visit.Cart().IsEmpty(), "never-checked-out carts are left alone")
	assert.Zero(t, checker.calls, "no storage read without a submitted order")
}

func TestExpireStaleCartPropagatesStorageErrors(t *testing.T) {
	checker := &stubOrderChecker{err: errors.New("db down")}
	svc := NewService(checker, testLogger())

	visit := session.NewVisit()
	visit.SetTableNo("T3")
	visit.AddItem(cart.ProductKey(uuid.New()), 1, "")
	visit.MarkSubmitted()

	assert.Error(t, svc.ExpireStaleCart(context.Background(), visit))
	assert.False(t, visit.Cart().IsEmpty())
}

func TestCoerceAddQty(t *testing.T) {
	assert.Equal(t, 3, CoerceAddQty("3", 50))
	assert.Equal(t, 1, CoerceAddQty("garbage", 50))
	assert.Equal(t, 1, CoerceAddQty("", 50))
	assert.Equal(t, 1, CoerceAddQty("0", 50))
	assert.Equal(t, 1, CoerceAddQty("-5", 50))
	assert.Equal(t, 50, CoerceAddQty("900", 50))
	assert.Equal(t, 2, CoerceAddQty(" 2 ", 50))
}

func TestCoerceSetQty(t *testing.T) {
	assert.Equal(t, 3, CoerceSetQty("3", 50))
	assert.Equal(t, 0, CoerceSetQty("0", 50))
	assert.Equal(t, 0, CoerceSetQty("-2", 50))
	assert.Equal(t, 1, CoerceSetQty("garbage", 50))
	assert.Equal(t, 50, CoerceSetQty("900", 50))
}

func TestCoerceDelta(t *testing.T) {
	assert.Equal(t, 1, CoerceDelta("1"))
	assert.Equal(t, -1, CoerceDelta("-1"))
	assert.Equal(t, 0, CoerceDelta("garbage"), "malformed deltas leave the row untouched")
	assert.Equal(t, 0, CoerceDelta(""))
}

func TestClampQty(t *testing.T) {
	assert.Equal(t, 3, ClampQty(3, 50))
	assert.Equal(t, 0, ClampQty(-4, 50))
	assert.Equal(t, 50, ClampQty(120, 50))
}
