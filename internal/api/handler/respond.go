package handler

// Response envelope shared by all endpoints:
// { success, data?, error?, count?, total?, pagination? }
// Error responses are rendered by the central HTTP error handler.

type envelope struct {
	Success    bool                `json:"success"`
	Data       any                 `json:"data,omitempty"`
	Count      *int                `json:"count,omitempty"`
	Total      *int64              `json:"total,omitempty"`
	Pagination *paginationResponse `json:"pagination,omitempty"`
}

type paginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

func ok(data any) envelope {
	return envelope{Success: true, Data: data}
}

func okList(data any, count int, total int64, p paginationResponse) envelope {
	return envelope{
		Success:    true,
		Data:       data,
		Count:      &count,
		Total:      &total,
		Pagination: &p,
	}
}
