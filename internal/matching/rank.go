package matching

import (
	"sort"
)

// Ranked 排序后的候选
type Ranked struct {
	Candidate Candidate
	Result    Result
}

// Rank 评分、过滤非正分、按分数稳定降序并截断到 limit
func Rank(subject Profile, candidates []Candidate, limit int) []Ranked {
	ranked := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		r := Score(subject, c)
		if r.Score <= 0 {
			continue
		}
		ranked = append(ranked, Ranked{Candidate: c, Result: r})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.Score > ranked[j].Result.Score
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
