package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_NormalizeDefaults(t *testing.T) {
	p := Policy{}.Normalize()
	assert.Equal(t, DefaultPolicy(), p)
}

func TestPolicy_NormalizeClampsMinCacheSize(t *testing.T) {
	p := Policy{MinCacheSize: 20, MaxResults: 10, CandidateSampleSize: 50}.Normalize()

	assert.Equal(t, 10, p.MinCacheSize)
	assert.Equal(t, 10, p.MaxResults)
	assert.Equal(t, 50, p.CandidateSampleSize)
	// 满额缓存必须命中，否则每次请求都会重算
	assert.True(t, p.CacheHit(10))
	assert.False(t, p.CacheHit(9))
}

func TestPolicy_NormalizeClampsAgainstDefaultMaxResults(t *testing.T) {
	p := Policy{MinCacheSize: 30}.Normalize()

	assert.Equal(t, DefaultPolicy().MaxResults, p.MaxResults)
	assert.Equal(t, p.MaxResults, p.MinCacheSize)
}
