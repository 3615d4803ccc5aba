package treasury

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"pgregory.net/rapid"

	"zns/pkg/domain"
)

type balances struct {
	payer, beneficiary, escrow, sink *uint256.Int
}

func snapshot(t *rapid.T, f *fixture) balances {
	read := func(a common.Address) *uint256.Int {
		b, err := f.balance(a)
		if err != nil {
			t.Fatal(err)
		}
		return b
	}
	return balances{
		payer:       read(f.payer),
		beneficiary: read(f.beneficiary),
		escrow:      read(f.treasury.Address()),
		sink:        read(f.vault),
	}
}

func diff(a, b *uint256.Int) *uint256.Int {
	return new(uint256.Int).Sub(a, b)
}

func TestConservationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rootFee := rapid.Uint64Range(0, domain.PercentageBasis).Draw(t, "rootFee")
		price := uint256.NewInt(rapid.Uint64Range(0, 1_000_000_000_000).Draw(t, "price"))
		fee := uint256.NewInt(rapid.Uint64Range(0, 1_000_000_000_000).Draw(t, "fee"))
		stake := rapid.Bool().Draw(t, "stake")

		f, err := newFixture(rootFee, uint256.NewInt(10_000_000_000_000))
		if err != nil {
			t.Fatal(err)
		}
		child := domain.HashOf(f.parent, "cat")
		protocolFee, err := domain.Percent(new(uint256.Int).Add(price, fee), rootFee)
		if err != nil {
			t.Fatal(err)
		}

		before := snapshot(t, f)
		if stake {
			err = f.treasury.StakeForDomain(f.ctx, f.registrar, f.parent, child, f.payer, price, fee)
		} else {
			err = f.treasury.ProcessDirectPayment(f.ctx, f.registrar, f.parent, child, f.payer, price, fee)
		}
		if err != nil {
			t.Fatal(err)
		}
		after := snapshot(t, f)

		paid := diff(before.payer, after.payer)
		want := new(uint256.Int).Add(price, fee)
		want.Add(want, protocolFee)
		if !paid.Eq(want) {
			t.Fatalf("payer paid %s, want %s", paid.Dec(), want.Dec())
		}
		if got := diff(after.sink, before.sink); !got.Eq(protocolFee) {
			t.Fatalf("sink got %s, want %s", got.Dec(), protocolFee.Dec())
		}

		escrowed := diff(after.escrow, before.escrow)
		received := diff(after.beneficiary, before.beneficiary)
		if stake {
			if !escrowed.Eq(price) || !received.Eq(fee) {
				t.Fatalf("escrow %s beneficiary %s, want %s and %s", escrowed.Dec(), received.Dec(), price.Dec(), fee.Dec())
			}
			return
		}
		if !escrowed.IsZero() {
			t.Fatalf("direct payment escrowed %s", escrowed.Dec())
		}
		if total := new(uint256.Int).Add(price, fee); !received.Eq(total) {
			t.Fatalf("beneficiary got %s, want %s", received.Dec(), total.Dec())
		}
		if _, ok, _ := f.treasury.Stake(f.ctx, child); ok {
			t.Fatal("direct payment recorded a stake")
		}
	})
}

func TestRefundExactnessProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rootFee := rapid.Uint64Range(0, domain.PercentageBasis).Draw(t, "rootFee")
		price := uint256.NewInt(rapid.Uint64Range(1, 1_000_000_000_000).Draw(t, "price"))

		f, err := newFixture(rootFee, uint256.NewInt(10_000_000_000_000))
		if err != nil {
			t.Fatal(err)
		}
		child := domain.HashOf(f.parent, "cat")
		if err := f.treasury.StakeForDomain(f.ctx, f.registrar, f.parent, child, f.payer, price, domain.Zero()); err != nil {
			t.Fatal(err)
		}
		before := snapshot(t, f)
		owner := common.HexToAddress("0xca7")
		if err := f.treasury.UnstakeForDomain(f.ctx, f.registrar, child, owner); err != nil {
			t.Fatal(err)
		}
		after := snapshot(t, f)

		protocolFee, err := domain.Percent(price, rootFee)
		if err != nil {
			t.Fatal(err)
		}
		refund, err := f.balance(owner)
		if err != nil {
			t.Fatal(err)
		}
		if want := diff(price, protocolFee); !refund.Eq(want) {
			t.Fatalf("refund %s, want %s", refund.Dec(), want.Dec())
		}
		if !after.beneficiary.Eq(before.beneficiary) {
			t.Fatal("beneficiary balance changed on refund")
		}
		if !after.escrow.IsZero() {
			t.Fatalf("escrow keeps %s", after.escrow.Dec())
		}
	})
}
