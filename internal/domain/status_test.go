package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diary-service/internal/domain"
)

func TestParseStatusRoundTrip(t *testing.T) {
	for _, s := range domain.Statuses() {
		parsed, ok := domain.ParseStatus(s.String())
		require.True(t, ok, "label %q should parse", s.String())
		assert.Equal(t, s, parsed)
		assert.Equal(t, s, domain.StatusFromCode(s.Code()))
	}
}

func TestStatusCodesMatchStoredValues(t *testing.T) {
	assert.Equal(t, 1, domain.StatusPlanned.Code())
	assert.Equal(t, 2, domain.StatusWatching.Code())
	assert.Equal(t, 3, domain.StatusWatched.Code())
}

func TestParseStatusRejectsUnknownLabels(t *testing.T) {
	for _, label := range []string{"", "bogus", "done", "3"} {
		_, ok := domain.ParseStatus(label)
		assert.False(t, ok, "label %q should be rejected", label)
	}

	s, ok := domain.ParseStatus("  Watched ")
	require.True(t, ok)
	assert.Equal(t, domain.StatusWatched, s)
}

func TestUnknownCodeFallsBackToPlanned(t *testing.T) {
	for _, code := range []int{0, -1, 4, 99} {
		s := domain.StatusFromCode(code)
		assert.Equal(t, domain.StatusPlanned, s)
		assert.Equal(t, "planned", s.String())
	}
}

func TestCountByStatus(t *testing.T) {
	entries := []*domain.DiaryEntry{
		{Status: domain.StatusPlanned},
		{Status: domain.StatusWatched},
		{Status: domain.StatusWatched},
		{Status: domain.StatusWatching},
	}
	stats := domain.CountByStatus(entries)
	assert.Equal(t, domain.DiaryStats{Total: 4, Planned: 1, Watching: 1, Watched: 2}, stats)
	assert.Len(t, domain.FilterByStatus(entries, domain.StatusWatched), 2)
}

func TestOptionalRatingDistinguishesNullFromMissing(t *testing.T) {
	var missing domain.SetRatingRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &missing))
	assert.False(t, missing.Rating.Set)

	var null domain.SetRatingRequest
	require.NoError(t, json.Unmarshal([]byte(`{"rating":null}`), &null))
	assert.True(t, null.Rating.Set)
	assert.Nil(t, null.Rating.Value)

	var four domain.SetRatingRequest
	require.NoError(t, json.Unmarshal([]byte(`{"rating":4}`), &four))
	require.NotNil(t, four.Rating.Value)
	assert.Equal(t, 4, *four.Rating.Value)

	var bad domain.SetRatingRequest
	assert.Error(t, json.Unmarshal([]byte(`{"rating":"four"}`), &bad))
}
