package model

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func TestMembershipKind_TextRoundTrip(t *testing.T) {
	for _, k := range []MembershipKind{KindNone, KindPermanent, KindTemporary, KindTokenBased, KindCrossChain} {
		text, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", k, err)
		}
		var got MembershipKind
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", text, err)
		}
		if got != k {
			t.Fatalf("round trip %v -> %s -> %v", k, text, got)
		}
	}

	var k MembershipKind
	if err := k.UnmarshalText([]byte("gold")); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestMembershipStatus_Active(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name   string
		status MembershipStatus
		want   bool
	}{
		{"not member", NotMember, false},
		{"permanent", MembershipStatus{IsMember: true, Kind: KindPermanent}, true},
		{"temporary active", MembershipStatus{IsMember: true, Kind: KindTemporary, ExpiresAt: &later}, true},
		{"temporary expired", MembershipStatus{IsMember: true, Kind: KindTemporary, ExpiresAt: &earlier}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Active(now); got != tt.want {
				t.Fatalf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMembershipStatus_JSON(t *testing.T) {
	exp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	raw, err := json.Marshal(MembershipStatus{IsMember: true, Kind: KindTemporary, ExpiresAt: &exp})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"kind":"temporary"`) {
		t.Fatalf("unexpected json: %s", raw)
	}

	raw, err = json.Marshal(NotMember)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(raw), "expires_at") {
		t.Fatalf("expires_at should be omitted: %s", raw)
	}
}

func TestNetwork_ExplorerLinks(t *testing.T) {
	n := Network{ChainID: 1, ExplorerURL: "https://etherscan.io/"}
	addr := common.HexToAddress("0x1234567890123456789012345678901234567890")
	if got := n.AddressURL(addr); got != "https://etherscan.io/address/"+addr.Hex() {
		t.Fatalf("unexpected address url: %s", got)
	}
	if got := (Network{}).TxURL(common.Hash{}); got != "" {
		t.Fatalf("expected empty url, got %s", got)
	}
}

func TestPlan(t *testing.T) {
	c := MembershipConditions{
		MonthlyPrice: big.NewInt(100),
		QuarterPrice: big.NewInt(250),
		YearPrice:    big.NewInt(900),
	}
	tests := []struct {
		plan  Plan
		units int64
		price int64
	}{
		{PlanMonthly, 1, 100},
		{PlanQuarterly, 3, 250},
		{PlanYearly, 12, 900},
	}
	for _, tt := range tests {
		t.Run(tt.plan.String(), func(t *testing.T) {
			if tt.plan.Units() != tt.units {
				t.Fatalf("Units() = %d, want %d", tt.plan.Units(), tt.units)
			}
			if c.Price(tt.plan).Int64() != tt.price {
				t.Fatalf("Price() = %s, want %d", c.Price(tt.plan), tt.price)
			}
			parsed, err := ParsePlan(strings.ToUpper(tt.plan.String()))
			if err != nil || parsed != tt.plan {
				t.Fatalf("ParsePlan: %v, %v", parsed, err)
			}
		})
	}
	if _, err := ParsePlan("weekly"); err == nil {
		t.Fatal("expected error for unknown plan")
	}
}

func TestCacheEntry_Fresh(t *testing.T) {
	now := time.Now()
	e := CacheEntry{Status: NotMember, FetchedAt: now.Add(-10 * time.Second)}
	if !e.Fresh(now, 30*time.Second) {
		t.Fatal("expected fresh entry")
	}
	if e.Fresh(now, 5*time.Second) {
		t.Fatal("expected stale entry")
	}
}

func TestTokenGate_MarshalJSON(t *testing.T) {
	chain := uint64(8453)
	g := TokenGate{
		TokenAddress:   common.HexToAddress("0x00000000000000000000000000000000000000b1"),
		Kind:           TokenCrossChain,
		RequiredAmount: big.NewInt(5),
		ChainID:        &chain,
	}
	raw, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, want := range []string{`"kind":"CrossChain"`, `"required_amount":"5"`, `"chain_id":8453`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("json %s missing %s", raw, want)
		}
	}
}
