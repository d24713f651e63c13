package matching

import (
	"strings"

	"github.com/qs3c/skill_exchange_server/internal/model"
)

const (
	pointsTeachCategory = 5.0
	pointsTeachTag      = 3.0
	pointsLearnCategory = 4.0
	pointsLearnTag      = 2.0
	pointsOnline        = 2.0
	pointsPremium       = 1.5

	maxReasons    = 3
	maxReasonTags = 3
)

// Result 单个候选的评分结果
type Result struct {
	Score   float64
	Reasons []string
}

// Score 计算候选与当前用户的匹配分数及原因
func Score(subject Profile, c Candidate) Result {
	var score float64
	reasons := NewStringSet()

	if m := c.Profile.TeachCategories.Intersect(subject.LearnCategories); len(m) > 0 {
		score += pointsTeachCategory * float64(len(m))
		reasons.Add("Teaches " + strings.Join(m, ", "))
	}

	if m := c.Profile.TeachTags.Intersect(subject.LearnTags); len(m) > 0 {
		score += pointsTeachTag * float64(len(m))
		reasons.Add("Expertise in " + strings.Join(firstN(m, maxReasonTags), ", "))
	}

	if m := c.Profile.LearnCategories.Intersect(subject.TeachCategories); len(m) > 0 {
		score += pointsLearnCategory * float64(len(m))
		reasons.Add("Wants to learn " + strings.Join(m, ", "))
	}

	if m := c.Profile.LearnTags.Intersect(subject.TeachTags); len(m) > 0 {
		score += pointsLearnTag * float64(len(m))
		reasons.Add("Interested in " + strings.Join(firstN(m, maxReasonTags), ", "))
	}

	if c.Availability == model.AvailabilityOnline {
		score += pointsOnline
	}

	if c.SubscriptionTier != "" && c.SubscriptionTier != model.TierFree {
		score += pointsPremium
		reasons.Add("Premium member")
	}

	return Result{
		Score:   score,
		Reasons: firstN(reasons.Values(), maxReasons),
	}
}

func firstN(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}
