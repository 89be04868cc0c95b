package cv

type saveResponse struct {
	OK        bool  `json:"ok"`
	VersionID int64 `json:"version_id"`
}

type textResponse struct {
	Text      string `json:"text"`
	Pages     int    `json:"pages"`
	VersionID int64  `json:"version_id,omitempty"`
}

type fieldDetails struct {
	Field string `json:"field"`
	Rule  string `json:"rule,omitempty"`
}
