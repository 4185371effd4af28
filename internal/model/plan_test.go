package model

import (
	"testing"
	"time"
)

func TestDailyQuota(t *testing.T) {
	tests := []struct {
		name string
		plan Plan
		want int
	}{
		{"free", PlanFree, 5},
		{"pro", PlanPro, 500},
		{"business", PlanBusiness, 2000},
		{"unknown_falls_back_to_free", Plan("enterprise"), 5},
		{"empty_falls_back_to_free", Plan(""), 5},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.plan.DailyQuota(); got != test.want {
				t.Fatalf("expected quota %d, got %d", test.want, got)
			}
		})
	}
}

func TestEffectiveUsage(t *testing.T) {
	today := UsageDay(time.Now())

	tests := []struct {
		name string
		user User
		want int
	}{
		{"same_day", User{UsageCount: 3, UsageResetDate: today}, 3},
		{"stale_day", User{UsageCount: 99, UsageResetDate: "2020-01-01"}, 0},
		{"never_used", User{}, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.user.EffectiveUsage(today); got != test.want {
				t.Fatalf("expected usage %d, got %d", test.want, got)
			}
		})
	}
}
