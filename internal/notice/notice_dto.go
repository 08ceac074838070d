package notice

import "time"

type NoticeResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Priority    string   `json:"priority"`
	TargetRoles []string `json:"target_roles"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
}

func mapToResponse(n Notice) NoticeResponse {
	return NoticeResponse{
		ID:          n.ID.String(),
		Title:       n.Title,
		Content:     n.Content,
		Priority:    n.Priority,
		TargetRoles: []string(n.TargetRoles),
		StartDate:   n.StartDate.UTC().Format(time.RFC3339),
		EndDate:     n.EndDate.UTC().Format(time.RFC3339),
	}
}
