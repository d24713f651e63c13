package matching

// Policy 缓存与排序参数
type Policy struct {
	// 缓存行数达到该值即直接返回缓存
	MinCacheSize int
	MaxResults   int
	// 每次重算最多评分的候选数
	CandidateSampleSize int
}

func DefaultPolicy() Policy {
	return Policy{
		MinCacheSize:        5,
		MaxResults:          10,
		CandidateSampleSize: 150,
	}
}

// Normalize 非法值回退到默认值
func (p Policy) Normalize() Policy {
	d := DefaultPolicy()
	if p.MinCacheSize <= 0 {
		p.MinCacheSize = d.MinCacheSize
	}
	if p.MaxResults <= 0 {
		p.MaxResults = d.MaxResults
	}
	if p.CandidateSampleSize <= 0 {
		p.CandidateSampleSize = d.CandidateSampleSize
	}
	// 缓存最多保存 MaxResults 行
	if p.MinCacheSize > p.MaxResults {
		p.MinCacheSize = p.MaxResults
	}
	return p
}

// CacheHit 缓存行数是否足够
func (p Policy) CacheHit(cached int) bool {
	return cached >= p.MinCacheSize
}
