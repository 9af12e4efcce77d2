package portal

import "github.com/mmcdole/lumen/internal/domain"

// likeStatusResponse is the body of GET /api/{domain}/{id}/like
type likeStatusResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// myScoreResponse is the body of GET /api/review-scores/my/{type}/{refId}
type myScoreResponse struct {
	Score *float64 `json:"score"`
}

// scoreRequest is the body of review submissions
type scoreRequest struct {
	Score float64 `json:"score"`
}

// procedurePageResponse is one backend page of procedures
type procedurePageResponse = domain.Page[domain.Procedure]
