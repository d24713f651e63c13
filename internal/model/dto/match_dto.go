package dto

// 匹配结果来源
const (
	MatchSourceCache     = "cache"
	MatchSourceGenerated = "generated"
)

// MatchUser 匹配用户摘要
type MatchUser struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Username         string `json:"username"`
	ProfileImg       string `json:"profileImg"`
	Headline         string `json:"headline"`
	Availability     string `json:"availability"`
	SubscriptionTier string `json:"subscriptionTier"`
	Skillcoins       int    `json:"skillcoins"`
}

// MatchEntry 单条匹配
type MatchEntry struct {
	ID          string     `json:"id"`
	UserID      int64      `json:"userId"`
	MatchUserID int64      `json:"matchUserId"`
	Score       float64    `json:"score"`
	Reasons     []string   `json:"reasons"`
	MatchUser   *MatchUser `json:"matchUser"`
}

// MatchListResponse GET /api/matches 响应
type MatchListResponse struct {
	Source string        `json:"source"`
	Items  []*MatchEntry `json:"items"`
}
