package dto

type CreatePodcastRequest struct {
	URL string `json:"url" binding:"required,url"`
}

type ListPodcastsRequest struct {
	Status   string `form:"status"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListPodcastsResponse struct {
	Podcasts   []PodcastDTO `json:"podcasts"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type PodcastDTO struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type AudioLinkResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}
