package channel

import (
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		channel Channel
		params  Params
		want    string
	}{
		{
			name:    "no placeholders",
			channel: Positions,
			params:  nil,
			want:    "positions",
		},
		{
			name:    "single market placeholder",
			channel: Fills,
			params:  Params{"market": "ETH-USD-PERP"},
			want:    "fills.ETH-USD-PERP",
		},
		{
			name:    "placeholder mid-template",
			channel: OrderBook,
			params:  Params{"market": "BTC-USD-PERP"},
			want:    "order_book.BTC-USD-PERP.snapshot@15@100ms",
		},
		{
			name:    "two placeholders",
			channel: PointsData,
			params:  Params{"market": "ETH-USD-PERP", "program": "maker"},
			want:    "points_data.ETH-USD-PERP.maker",
		},
		{
			name:    "extra params ignored",
			channel: Trades,
			params:  Params{"market": "ETH-USD-PERP", "program": "unused"},
			want:    "trades.ETH-USD-PERP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.channel.Resolve(tt.params)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveMissingParam(t *testing.T) {
	tests := []struct {
		name    string
		channel Channel
		params  Params
		missing string
	}{
		{"no params at all", Fills, nil, "market"},
		{"empty params", BBO, Params{}, "market"},
		{"partial params", PointsData, Params{"market": "ETH-USD-PERP"}, "program"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.channel.Resolve(tt.params)
			if err == nil {
				t.Fatalf("Resolve = %q, want error", got)
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("error %q does not name missing parameter %q", err, tt.missing)
			}
		})
	}
}

func TestResolveDistinctParams(t *testing.T) {
	eth, err := Fills.Resolve(Params{"market": "ETH-USD-PERP"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	btc, err := Fills.Resolve(Params{"market": "BTC-USD-PERP"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if eth == btc {
		t.Errorf("distinct params resolved to the same channel %q", eth)
	}

	eth2, _ := Fills.Resolve(Params{"market": "ETH-USD-PERP"})
	if eth != eth2 {
		t.Errorf("identical params resolved differently: %q vs %q", eth, eth2)
	}
}

func TestRestricted(t *testing.T) {
	for _, resolved := range []string{
		"account", "balance_events", "markets_summary",
		"positions", "tradebusts", "transaction", "transfers",
	} {
		if !Restricted(resolved) {
			t.Errorf("Restricted(%q) = false, want true", resolved)
		}
	}

	for _, resolved := range []string{
		"fills.ETH-USD-PERP", "trades.BTC-USD-PERP", "bbo.ETH-USD-PERP", "pong",
	} {
		if Restricted(resolved) {
			t.Errorf("Restricted(%q) = true, want false", resolved)
		}
	}
}

func TestFromName(t *testing.T) {
	c, ok := FromName("order_book_deltas")
	if !ok {
		t.Fatal("FromName(order_book_deltas) not found")
	}
	if c != OrderBookDeltas {
		t.Errorf("FromName = %q, want %q", c, OrderBookDeltas)
	}

	if _, ok := FromName("no_such_channel"); ok {
		t.Error("FromName(no_such_channel) = true, want false")
	}
}
