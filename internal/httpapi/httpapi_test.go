package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livebookd/livebook/internal/orderbook"
	"github.com/livebookd/livebook/internal/registry"
)

func newTestAPI(t *testing.T) (*API, *registry.Registry) {
	t.Helper()
	reg := registry.New(nil, false)
	go reg.Run()
	t.Cleanup(reg.Close)
	return New(reg), reg
}

func TestHandlePriceTips(t *testing.T) {
	api, reg := newTestAPI(t)
	reg.InstallSnapshot(orderbook.BTCUSDT, orderbook.Snapshot{
		Pair:         orderbook.BTCUSDT,
		Bids:         []orderbook.Entry{{Price: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(1)}},
		Asks:         []orderbook.Entry{{Price: decimal.NewFromInt(101), Quantity: decimal.NewFromInt(2)}},
		LastUpdateID: 1,
	})

	req := httptest.NewRequest(http.MethodGet, "/prices/price-tips/BTCUSDT", nil)
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"bid":["100","1"],"ask":["101","2"]}`, rec.Body.String())
}

func TestHandlePriceTipsUnknownPair(t *testing.T) {
	api, _ := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/prices/price-tips/DOGEUSDT", nil)
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePriceTipsEmptySide(t *testing.T) {
	api, reg := newTestAPI(t)
	reg.InstallSnapshot(orderbook.BTCUSDT, orderbook.Snapshot{Pair: orderbook.BTCUSDT})

	req := httptest.NewRequest(http.MethodGet, "/prices/price-tips/BTCUSDT", nil)
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleExecutionPrice(t *testing.T) {
	api, reg := newTestAPI(t)
	reg.InstallSnapshot(orderbook.ETHUSDT, orderbook.Snapshot{
		Pair: orderbook.ETHUSDT,
		Asks: []orderbook.Entry{
			{Price: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(1)},
			{Price: decimal.NewFromInt(101), Quantity: decimal.NewFromInt(2)},
		},
		LastUpdateID: 1,
	})

	req := httptest.NewRequest(http.MethodGet, "/prices/execution-price?pair=ETHUSDT&operation=buy&amount=2", nil)
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "Average Price: 100.5", string(body))
}

func TestHandleExecutionPriceInvalidAmount(t *testing.T) {
	api, _ := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/prices/execution-price?pair=BTCUSDT&operation=buy&amount=not-a-number", nil)
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExecutionPriceUnknownOperation(t *testing.T) {
	api, _ := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/prices/execution-price?pair=BTCUSDT&operation=hold&amount=1", nil)
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
