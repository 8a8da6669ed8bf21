package exchange

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/livebookd/livebook/internal/orderbook"
)

// parseSnapshot decodes a REST depth-snapshot body into a Snapshot for pair.
func parseSnapshot(pair orderbook.Pair, body []byte) (orderbook.Snapshot, error) {
	var resp restDepthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return orderbook.Snapshot{}, errors.Wrap(err, "decode depth snapshot")
	}

	bids, err := parseLevels(resp.Bids)
	if err != nil {
		return orderbook.Snapshot{}, errors.Wrap(err, "parse snapshot bids")
	}
	asks, err := parseLevels(resp.Asks)
	if err != nil {
		return orderbook.Snapshot{}, errors.Wrap(err, "parse snapshot asks")
	}

	return orderbook.Snapshot{
		Pair:         pair,
		Bids:         bids,
		Asks:         asks,
		LastUpdateID: resp.LastUpdateID,
	}, nil
}

// parseDiffFrame decodes one combined-stream websocket frame into the pair it
// names (routed by the embedded symbol, since one connection carries every
// tracked pair's depth stream) and its Diff.
func parseDiffFrame(bySymbol map[string]orderbook.Pair, frame []byte) (orderbook.Pair, orderbook.Diff, error) {
	var env combinedStreamEnvelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return 0, orderbook.Diff{}, errors.Wrap(err, "decode combined stream envelope")
	}

	pair, ok := bySymbol[env.Data.Symbol]
	if !ok {
		return 0, orderbook.Diff{}, fmt.Errorf("depth event for untracked symbol %q", env.Data.Symbol)
	}

	bids, err := parseChanges(env.Data.Bids)
	if err != nil {
		return 0, orderbook.Diff{}, errors.Wrap(err, "parse diff bids")
	}
	asks, err := parseChanges(env.Data.Asks)
	if err != nil {
		return 0, orderbook.Diff{}, errors.Wrap(err, "parse diff asks")
	}

	return pair, orderbook.Diff{
		Pair:          pair,
		FirstUpdateID: env.Data.FirstUpdateID,
		LastUpdateID:  env.Data.LastUpdateID,
		Bids:          bids,
		Asks:          asks,
	}, nil
}

func parseLevels(raw [][2]string) ([]orderbook.Entry, error) {
	out := make([]orderbook.Entry, 0, len(raw))
	for _, lvl := range raw {
		price, qty, err := decodePriceQty(lvl)
		if err != nil {
			return nil, err
		}
		out = append(out, orderbook.Entry{Price: price, Quantity: qty})
	}
	return out, nil
}

func parseChanges(raw [][2]string) ([]orderbook.Change, error) {
	out := make([]orderbook.Change, 0, len(raw))
	for _, lvl := range raw {
		price, qty, err := decodePriceQty(lvl)
		if err != nil {
			return nil, err
		}
		out = append(out, orderbook.Change{Price: price, Quantity: qty})
	}
	return out, nil
}

func decodePriceQty(lvl [2]string) (price, qty decimal.Decimal, err error) {
	price, err = decimal.NewFromString(lvl[0])
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, errors.Wrap(err, "price")
	}
	qty, err = decimal.NewFromString(lvl[1])
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, errors.Wrap(err, "quantity")
	}
	return price, qty, nil
}
