package matching

import (
	"github.com/qs3c/skill_exchange_server/internal/model"
)

// Profile 用户的教学/学习画像
type Profile struct {
	TeachCategories *StringSet
	TeachTags       *StringSet
	LearnCategories *StringSet
	LearnTags       *StringSet
}

func NewProfile() Profile {
	return Profile{
		TeachCategories: NewStringSet(),
		TeachTags:       NewStringSet(),
		LearnCategories: NewStringSet(),
		LearnTags:       NewStringSet(),
	}
}

// BuildProfile 汇总教授和学习的技能分类与标签
func BuildProfile(teaching, learning []model.Skill) Profile {
	p := NewProfile()
	for _, s := range teaching {
		p.TeachCategories.Add(s.Category)
		for _, t := range s.Tags {
			p.TeachTags.Add(t.Name)
		}
	}
	for _, s := range learning {
		p.LearnCategories.Add(s.Category)
		for _, t := range s.Tags {
			p.LearnTags.Add(t.Name)
		}
	}
	return p
}

// IsEmpty 没有任何分类和标签
func (p Profile) IsEmpty() bool {
	return p.TeachCategories.Len() == 0 && p.TeachTags.Len() == 0 &&
		p.LearnCategories.Len() == 0 && p.LearnTags.Len() == 0
}

// Candidate 参与评分的候选用户
type Candidate struct {
	User             *model.User
	Profile          Profile
	Availability     string
	SubscriptionTier string
}

// CandidateFromUser 由预加载了 SkillsTeaching/SkillsLearning 的用户构造候选
func CandidateFromUser(u *model.User) Candidate {
	return Candidate{
		User:             u,
		Profile:          BuildProfile(u.SkillsTeaching, u.SkillsLearning),
		Availability:     u.Availability,
		SubscriptionTier: u.SubscriptionTier,
	}
}
