// Package httpapi exposes the order book registry over HTTP: price tips and
// VWAP execution-price queries, matching the original service's /prices
// contract. Grounded on the route shapes in original_source/src/prices.rs
// and src/main.rs, reimplemented with gorilla/mux.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/livebookd/livebook/internal/orderbook"
	"github.com/livebookd/livebook/internal/registry"
)

// API wires the registry into an HTTP router.
type API struct {
	reg *registry.Registry
}

// New constructs an API over reg.
func New(reg *registry.Registry) *API {
	return &API{reg: reg}
}

// Router builds the mux.Router serving this API's routes under /prices.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	prices := r.PathPrefix("/prices").Subrouter()
	prices.HandleFunc("/price-tips/{pair}", a.handlePriceTips).Methods(http.MethodGet)
	prices.HandleFunc("/execution-price", a.handleExecutionPrice).Methods(http.MethodGet)
	return r
}

// priceTipsResponse mirrors the original's JSON shape: each side is a
// [price, quantity] pair of strings.
type priceTipsResponse struct {
	Bid [2]string `json:"bid"`
	Ask [2]string `json:"ask"`
}

func (a *API) handlePriceTips(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["pair"]
	pair, ok := orderbook.ParsePair(symbol)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown pair %q", symbol), http.StatusBadRequest)
		return
	}

	res := a.reg.Tips(pair)
	if res.Err != nil {
		writeOrderbookError(w, res.Err)
		return
	}

	resp := priceTipsResponse{
		Bid: [2]string{res.Bid.Price.String(), res.Bid.Quantity.String()},
		Ask: [2]string{res.Ask.Price.String(), res.Ask.Quantity.String()},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (a *API) handleExecutionPrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	pair, ok := orderbook.ParsePair(q.Get("pair"))
	if !ok {
		http.Error(w, fmt.Sprintf("unknown pair %q", q.Get("pair")), http.StatusBadRequest)
		return
	}

	side, ok := parseOperation(q.Get("operation"))
	if !ok {
		http.Error(w, fmt.Sprintf("unknown operation %q, want buy or sell", q.Get("operation")), http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		http.Error(w, "amount must be a decimal number", http.StatusBadRequest)
		return
	}

	price, err := a.reg.ExecutionPrice(pair, side, amount)
	if err != nil {
		writeOrderbookError(w, err)
		return
	}

	fmt.Fprintf(w, "Average Price: %s", price.String())
}

func parseOperation(op string) (orderbook.Side, bool) {
	switch op {
	case "buy":
		return orderbook.Buy, true
	case "sell":
		return orderbook.Sell, true
	default:
		return "", false
	}
}

// writeOrderbookError maps a domain error to an HTTP status per spec section
// 6: 400 for a client-side naming or input mistake, 500 when the book itself
// is in a state the request cannot be answered from.
func writeOrderbookError(w http.ResponseWriter, err error) {
	switch err {
	case orderbook.ErrUnknownPair, orderbook.ErrInvalidAmount:
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
