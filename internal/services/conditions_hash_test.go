package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"surfcast/internal/clients"
	"surfcast/internal/models"
)

func snapshotWith(mutate func(*ConditionsSnapshot)) *ConditionsSnapshot {
	tide := 1.23
	snap := &ConditionsSnapshot{
		SpotName: "uluwatu",
		Marine: clients.CurrentMarine{
			SwellHeightM:      1.84,
			SwellPeriodS:      13.2,
			SwellDirectionDeg: 212,
			WindSpeedKmh:      11,
			WindDirectionDeg:  94,
		},
		EffectiveHeightM: 2.07,
		TideHeightM:      &tide,
		Score: models.ScoreResult{
			Score: 71,
		},
	}
	if mutate != nil {
		mutate(snap)
	}
	return snap
}

func TestConditionsHash_StableWithinBuckets(t *testing.T) {
	base := ConditionsHash(snapshotWith(nil))

	tests := []struct {
		name   string
		mutate func(*ConditionsSnapshot)
	}{
		{"height jitter below 0.05 m", func(s *ConditionsSnapshot) { s.EffectiveHeightM = 2.09 }},
		{"wind jitter below 2 km/h", func(s *ConditionsSnapshot) { s.Marine.WindSpeedKmh = 9.4 }},
		{"direction jitter below 5 deg", func(s *ConditionsSnapshot) { s.Marine.SwellDirectionDeg = 209 }},
		{"period jitter below half a second", func(s *ConditionsSnapshot) { s.Marine.SwellPeriodS = 12.8 }},
		{"score jitter below half a bucket", func(s *ConditionsSnapshot) { s.Score.Score = 69 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, base, ConditionsHash(snapshotWith(tt.mutate)))
		})
	}
}

func TestConditionsHash_ChangesAcrossBuckets(t *testing.T) {
	base := ConditionsHash(snapshotWith(nil))

	tests := []struct {
		name   string
		mutate func(*ConditionsSnapshot)
	}{
		{"height moved a bucket", func(s *ConditionsSnapshot) { s.EffectiveHeightM = 2.31 }},
		{"wind moved a bucket", func(s *ConditionsSnapshot) { s.Marine.WindSpeedKmh = 18 }},
		{"direction moved a bucket", func(s *ConditionsSnapshot) { s.Marine.SwellDirectionDeg = 231 }},
		{"period moved a bucket", func(s *ConditionsSnapshot) { s.Marine.SwellPeriodS = 14.6 }},
		{"score moved a bucket", func(s *ConditionsSnapshot) { s.Score.Score = 79 }},
		{"tide became unknown", func(s *ConditionsSnapshot) { s.TideHeightM = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, ConditionsHash(snapshotWith(tt.mutate)))
		})
	}
}
