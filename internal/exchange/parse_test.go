package exchange

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livebookd/livebook/internal/orderbook"
)

func TestParseSnapshot(t *testing.T) {
	body := []byte(`{
		"lastUpdateId": 160,
		"bids": [["0.0024", "10"], ["0.0023", "5"]],
		"asks": [["0.0026", "100"], ["0.0027", "1000"]]
	}`)

	snap, err := parseSnapshot(orderbook.BTCUSDT, body)
	require.NoError(t, err)
	assert.Equal(t, int64(160), snap.LastUpdateID)
	require.Len(t, snap.Bids, 2)
	assert.True(t, snap.Bids[0].Price.Equal(mustDec("0.0024")))
	assert.True(t, snap.Asks[1].Quantity.Equal(mustDec("1000")))
}

func TestParseSnapshotMalformedPrice(t *testing.T) {
	body := []byte(`{"lastUpdateId":1,"bids":[["not-a-number","1"]],"asks":[]}`)
	_, err := parseSnapshot(orderbook.BTCUSDT, body)
	assert.Error(t, err)
}

func TestParseDiffFrameRoutesBySymbol(t *testing.T) {
	bySymbol := map[string]orderbook.Pair{
		"BTCUSDT": orderbook.BTCUSDT,
		"ETHUSDT": orderbook.ETHUSDT,
	}
	frame := []byte(`{
		"stream": "ethusdt@depth",
		"data": {
			"e": "depthUpdate",
			"s": "ETHUSDT",
			"U": 157,
			"u": 160,
			"b": [["0.0024", "10"]],
			"a": [["0.0026", "0"]]
		}
	}`)

	pair, diff, err := parseDiffFrame(bySymbol, frame)
	require.NoError(t, err)
	assert.Equal(t, orderbook.ETHUSDT, pair)
	assert.Equal(t, int64(157), diff.FirstUpdateID)
	assert.Equal(t, int64(160), diff.LastUpdateID)
	require.Len(t, diff.Bids, 1)
	require.Len(t, diff.Asks, 1)
}

func TestParseDiffFrameUnknownSymbol(t *testing.T) {
	bySymbol := map[string]orderbook.Pair{"BTCUSDT": orderbook.BTCUSDT}
	frame := []byte(`{"stream":"dogeusdt@depth","data":{"s":"DOGEUSDT","U":1,"u":2,"b":[],"a":[]}}`)
	_, _, err := parseDiffFrame(bySymbol, frame)
	assert.Error(t, err)
}

func mustDec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}
