package storage

import (
	"testing"
	"time"

	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/models"
)

func TestClassifyUpsert(t *testing.T) {
	tests := []struct {
		name         string
		storedHash   string
		storedActive bool
		incomingHash string
		want         models.UpsertResult
	}{
		{
			name:         "same hash and active",
			storedHash:   "abc",
			storedActive: true,
			incomingHash: "abc",
			want:         models.UpsertUnchanged,
		},
		{
			name:         "hash changed",
			storedHash:   "abc",
			storedActive: true,
			incomingHash: "def",
			want:         models.UpsertUpdated,
		},
		{
			name:         "reappeared after deactivation",
			storedHash:   "abc",
			storedActive: false,
			incomingHash: "abc",
			want:         models.UpsertUpdated,
		},
		{
			name:         "hash changed and inactive",
			storedHash:   "abc",
			storedActive: false,
			incomingHash: "def",
			want:         models.UpsertUpdated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyUpsert(tt.storedHash, tt.storedActive, tt.incomingHash)
			if got != tt.want {
				t.Errorf("classifyUpsert() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDaysActive(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		firstSeen time.Time
		lastSeen  time.Time
		want      int
	}{
		{"same instant", base, base, 0},
		{"under a day", base, base.Add(23 * time.Hour), 0},
		{"exactly one day", base, base.Add(24 * time.Hour), 1},
		{"twelve and a half days", base, base.Add(300 * time.Hour), 12},
		{"lastSeen before firstSeen", base, base.Add(-time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := daysActive(tt.firstSeen, tt.lastSeen); got != tt.want {
				t.Errorf("daysActive() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrStoreUnavailable(t *testing.T) {
	if models.ErrStoreUnavailable == nil {
		t.Fatal("ErrStoreUnavailable should not be nil")
	}
	if models.ErrStoreUnavailable.Error() != "offer store unavailable" {
		t.Errorf("ErrStoreUnavailable message = %q", models.ErrStoreUnavailable.Error())
	}
}
