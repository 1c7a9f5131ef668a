package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSearchMode_IsValid tests search mode validation
func TestSearchMode_IsValid(t *testing.T) {
	for _, m := range AllSearchModes() {
		assert.True(t, m.IsValid(), "mode %s", m)
	}
	assert.False(t, SearchMode("").IsValid())
	assert.False(t, SearchMode("hybrid").IsValid())
}

// TestSearchMode_Kinds tests the kind family each mode covers
func TestSearchMode_Kinds(t *testing.T) {
	assert.Equal(t, []Kind{KindOrigin, KindVSOrigin}, SearchModeOrigin.Kinds())
	assert.Equal(t, []Kind{KindSummarize, KindVSSummarize}, SearchModeSummarize.Kinds())
	assert.Nil(t, SearchModeAll.Kinds())
}

// TestSearchMode_Matches tests kind membership per mode
func TestSearchMode_Matches(t *testing.T) {
	tests := []struct {
		name string
		mode SearchMode
		kind Kind
		want bool
	}{
		{"origin matches origin", SearchModeOrigin, KindOrigin, true},
		{"origin matches vs_origin", SearchModeOrigin, KindVSOrigin, true},
		{"origin rejects summarize", SearchModeOrigin, KindSummarize, false},
		{"summarize matches vs_summarize", SearchModeSummarize, KindVSSummarize, true},
		{"summarize rejects vs_origin", SearchModeSummarize, KindVSOrigin, false},
		{"all matches everything", SearchModeAll, KindSummarize, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mode.Matches(tt.kind))
		})
	}
}
