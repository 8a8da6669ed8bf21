package exchange

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/livebookd/livebook/internal/orderbook"
)

// snapshotLimit is the depth passed to the REST endpoint. 1000 is Binance's
// maximum and matches the original client's choice.
const snapshotLimit = 1000

// FetchSnapshot retrieves the current full depth snapshot for pair over
// REST. Grounded on original_source/src/binance.rs's get_orderbook_snapshot.
func (g *Gateway) FetchSnapshot(ctx context.Context, pair orderbook.Pair) (orderbook.Snapshot, error) {
	url := fmt.Sprintf("%s/api/v3/depth?symbol=%s&limit=%d", g.cfg.RESTBaseURL, pair.String(), snapshotLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return orderbook.Snapshot{}, errors.Wrap(err, "build snapshot request")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return orderbook.Snapshot{}, errors.Wrap(err, "fetch depth snapshot")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return orderbook.Snapshot{}, errors.Wrap(err, "read snapshot body")
	}
	if resp.StatusCode != http.StatusOK {
		return orderbook.Snapshot{}, fmt.Errorf("depth snapshot for %s: unexpected status %d", pair, resp.StatusCode)
	}

	return parseSnapshot(pair, body)
}
