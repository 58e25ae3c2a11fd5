package ism_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gaiac/pkg/ism"
)

func TestDecodeCandidates_BareArray(t *testing.T) {
	data := []byte(`[
		{"name": "消耗趋势", "type": "trend_analysis", "fields": [{"name": "ROI"}]},
		{"name": "素材明细", "provenance": "call_1"}
	]`)

	candidates, pending, err := ism.DecodeCandidates(data)
	require.NoError(t, err)
	require.Empty(t, pending)
	require.Len(t, candidates, 2)

	assert.Equal(t, "消耗趋势", candidates[0].Name)
	assert.Equal(t, "trend_analysis", candidates[0].Type)
	require.Len(t, candidates[0].Fields, 1)
	assert.Equal(t, "ROI", candidates[0].Fields[0].Name)

	assert.Equal(t, []string{"call_1"}, candidates[1].Provenance)
	assert.Equal(t, -1, candidates[1].BatchIndex)
}

func TestDecodeCandidates_Envelope(t *testing.T) {
	for _, key := range []string{"candidates", "interfaces"} {
		data := []byte(`{"` + key + `": [{"name": "总筛选项"}]}`)
		candidates, _, err := ism.DecodeCandidates(data)
		require.NoError(t, err, key)
		require.Len(t, candidates, 1, key)
		assert.Equal(t, "总筛选项", candidates[0].Name)
	}
}

func TestDecodeCandidates_DimensionsAndMetrics(t *testing.T) {
	data := []byte(`[{
		"name": "消耗趋势",
		"dimensions": [{"name": "日期"}],
		"metrics": [{"name": "消耗"}]
	}]`)

	candidates, _, err := ism.DecodeCandidates(data)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Len(t, candidates[0].Fields, 2)

	assert.Equal(t, ism.KindDimension, candidates[0].Fields[0].Kind)
	assert.Equal(t, ism.KindMeasure, candidates[0].Fields[1].Kind)
}

func TestDecodeCandidates_MalformedEntryGoesPending(t *testing.T) {
	data := []byte(`[
		{"name": "素材明细"},
		"just a string"
	]`)

	candidates, pending, err := ism.DecodeCandidates(data)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Len(t, pending, 1)
	assert.Contains(t, pending[0], "candidate[1]")
}

func TestDecodeCandidates_InvalidDocument(t *testing.T) {
	_, _, err := ism.DecodeCandidates([]byte(`"not a document"`))
	require.Error(t, err)
}

func TestDecodeCandidates_Batch(t *testing.T) {
	data := []byte(`[{
		"name": "batch response",
		"provenance": "call_7",
		"batch": [
			{"name": "消耗趋势"},
			{"name": "素材明细"}
		]
	}]`)

	candidates, _, err := ism.DecodeCandidates(data)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Len(t, candidates[0].Batch, 2)
	assert.Equal(t, "素材明细", candidates[0].Batch[1].Name)
}
