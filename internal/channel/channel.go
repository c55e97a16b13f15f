package channel

import (
	"fmt"
	"strings"
)

// Channel identifies a logical channel family. Its value is the wire
// template, with {name} placeholders filled from caller parameters.
type Channel string

// Channel families supported by the Paradex WebSocket API.
const (
	Account         Channel = "account"
	BalanceEvents   Channel = "balance_events"
	BBO             Channel = "bbo.{market}"
	Fills           Channel = "fills.{market}"
	FundingData     Channel = "funding_data.{market}"
	FundingPayments Channel = "funding_payments.{market}"
	MarketsSummary  Channel = "markets_summary"
	Orders          Channel = "orders.{market}"
	OrderBook       Channel = "order_book.{market}.snapshot@15@100ms"
	OrderBookDeltas Channel = "order_book.{market}.deltas"
	PointsData      Channel = "points_data.{market}.{program}"
	Positions       Channel = "positions"
	Trades          Channel = "trades.{market}"
	Tradebusts      Channel = "tradebusts"
	Transaction     Channel = "transaction"
	Transfers       Channel = "transfers"
)

// Params maps placeholder names to substitution values.
type Params map[string]string

// byName maps short channel names (as used in config files) to families.
var byName = map[string]Channel{
	"account":           Account,
	"balance_events":    BalanceEvents,
	"bbo":               BBO,
	"fills":             Fills,
	"funding_data":      FundingData,
	"funding_payments":  FundingPayments,
	"markets_summary":   MarketsSummary,
	"orders":            Orders,
	"order_book":        OrderBook,
	"order_book_deltas": OrderBookDeltas,
	"points_data":       PointsData,
	"positions":         Positions,
	"trades":            Trades,
	"tradebusts":        Tradebusts,
	"transaction":       Transaction,
	"transfers":         Transfers,
}

// restricted channels permit at most one active subscriber per
// connection. None of them carry placeholders, so the resolved string
// equals the template.
var restricted = map[string]bool{
	"account":         true,
	"balance_events":  true,
	"markets_summary": true,
	"positions":       true,
	"tradebusts":      true,
	"transaction":     true,
	"transfers":       true,
}

// FromName looks up a channel family by its short name.
func FromName(name string) (Channel, bool) {
	c, ok := byName[name]
	return c, ok
}

// Restricted reports whether a resolved channel permits at most one
// concurrent subscriber.
func Restricted(resolved string) bool {
	return restricted[resolved]
}

// Resolve substitutes placeholders from params into the channel
// template. A placeholder with no matching parameter fails; there is
// no default or partial substitution. Extra parameters are ignored.
func (c Channel) Resolve(params Params) (string, error) {
	tmpl := string(c)
	if !strings.ContainsRune(tmpl, '{') {
		return tmpl, nil
	}

	var b strings.Builder
	b.Grow(len(tmpl))

	for {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			b.WriteString(tmpl)
			return b.String(), nil
		}
		closing := strings.IndexByte(tmpl[open:], '}')
		if closing < 0 {
			return "", fmt.Errorf("channel %q: unterminated placeholder", string(c))
		}
		closing += open

		name := tmpl[open+1 : closing]
		value, ok := params[name]
		if !ok {
			return "", fmt.Errorf("channel %q: missing parameter %q", string(c), name)
		}

		b.WriteString(tmpl[:open])
		b.WriteString(value)
		tmpl = tmpl[closing+1:]
	}
}
