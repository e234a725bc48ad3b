package models

import "time"

// Summary is the popup payload derived from the encyclopedia service.
// Degraded is set when the upstream fetch failed and only the outbound
// link survives.
type Summary struct {
	Title     string    `json:"title"`
	Extract   string    `json:"extract,omitempty"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	PageURL   string    `json:"page_url,omitempty"`
	Degraded  bool      `json:"degraded"`
	FetchedAt time.Time `json:"fetched_at"`
}

// summaryResponse 对应百科摘要接口的返回结构
// 仅保留弹窗需要的字段

// SummaryUpstream mirrors the fields consumed from the encyclopedia
// summary endpoint.
type SummaryUpstream struct {
	Title     string `json:"title"`
	Extract   string `json:"extract"`
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}
