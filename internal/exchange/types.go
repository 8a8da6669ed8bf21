// Package exchange bridges the upstream exchange's REST depth snapshot and
// websocket diff-depth stream to the orderbook registry. It owns all JSON
// parsing of exchange payloads; nothing outside this package ever sees raw
// wire shapes, per spec section 1's core/collaborator boundary.
package exchange

// restDepthResponse is the Binance-shaped REST snapshot body:
// GET /api/v3/depth?symbol=...&limit=....
type restDepthResponse struct {
	LastUpdateID int64       `json:"lastUpdateId"`
	Bids         [][2]string `json:"bids"`
	Asks         [][2]string `json:"asks"`
}

// combinedStreamEnvelope wraps every message on a combined-streams
// websocket connection (wss://.../stream?streams=a@depth/b@depth).
type combinedStreamEnvelope struct {
	Stream string          `json:"stream"`
	Data   diffStreamEvent `json:"data"`
}

// diffStreamEvent is the Binance depthUpdate event embedded in Data above.
type diffStreamEvent struct {
	EventType     string      `json:"e"`
	Symbol        string      `json:"s"`
	FirstUpdateID int64       `json:"U"`
	LastUpdateID  int64       `json:"u"`
	Bids          [][2]string `json:"b"`
	Asks          [][2]string `json:"a"`
}
