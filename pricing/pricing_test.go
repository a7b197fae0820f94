package pricing

import (
	"math"
	"testing"
)

func TestCalculate_FiveKmLarge(t *testing.T) {
	b := Calculate("large", 5)

	if got := b.Subtotal.String(); got != "12" {
		t.Errorf("expected subtotal 12, got %s", got)
	}
	if got := b.PlatformFee.String(); got != "1.2" {
		t.Errorf("expected platform fee 1.2, got %s", got)
	}
	if got := b.Total.String(); got != "13.2" {
		t.Errorf("expected total 13.2, got %s", got)
	}
	if got := b.GigWorkerPayout.String(); got != "12" {
		t.Errorf("expected payout 12, got %s", got)
	}
}

func TestCalculate_Multipliers(t *testing.T) {
	cases := []struct {
		size  string
		total string
	}{
		{"small", "2.2"},
		{"medium", "3.3"},
		{"large", "4.4"},
	}
	for _, tc := range cases {
		t.Run(tc.size, func(t *testing.T) {
			b := Calculate(tc.size, 1)
			if got := b.Total.String(); got != tc.total {
				t.Errorf("expected total %s for 1km %s, got %s", tc.total, tc.size, got)
			}
		})
	}
}

func TestCalculate_UnknownSizePricesAsSmall(t *testing.T) {
	unknown := Calculate("envelope", 3)
	small := Calculate("small", 3)
	if !unknown.Total.Equal(small.Total) {
		t.Errorf("expected unknown size to price as small: %s vs %s", unknown.Total, small.Total)
	}
}

func TestCalculate_ZeroDistance(t *testing.T) {
	b := Calculate("small", 0)
	if got := b.Total.String(); got != "1.1" {
		t.Errorf("expected base fee plus platform fee, got %s", got)
	}
}

func TestDistance(t *testing.T) {
	// Syntagma Square to Piraeus port, roughly 8.5km as the crow flies.
	km := Distance(37.9755, 23.7348, 37.9420, 23.6465)
	if km < 8 || km > 9.5 {
		t.Errorf("expected ~8.5km, got %.2f", km)
	}

	if d := Distance(37.9755, 23.7348, 37.9755, 23.7348); d != 0 {
		t.Errorf("expected zero distance for identical points, got %f", d)
	}
}

func TestEstimate(t *testing.T) {
	locker := Coords{Lat: 37.9755, Lng: 23.7348}
	delivery := Coords{Lat: 37.9420, Lng: 23.6465}

	b := Estimate("medium", locker, delivery)
	want := Distance(locker.Lat, locker.Lng, delivery.Lat, delivery.Lng)
	if math.Abs(b.DistanceKm-math.Round(want*100)/100) > 0.001 {
		t.Errorf("expected distance %.2f in breakdown, got %.2f", want, b.DistanceKm)
	}
	if !b.Total.GreaterThan(b.PlatformFee) {
		t.Errorf("expected total to exceed fee")
	}
}

func TestRates_MatchesFormula(t *testing.T) {
	rates := Rates()
	if len(rates.PackageSizes) != 3 {
		t.Fatalf("expected 3 package tiers, got %d", len(rates.PackageSizes))
	}
	for size, rate := range rates.PackageSizes {
		b := Calculate(size, 0)
		if got := b.SizeMultiplier.InexactFloat64(); got != rate.Multiplier {
			t.Errorf("rate card multiplier for %s is %v, formula uses %v", size, rate.Multiplier, got)
		}
	}
}
