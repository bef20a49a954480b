package dto

// VoteRequest payload for FAQ feedback.
type VoteRequest struct {
	Helpful *bool `json:"helpful"`
}

// FAQResponse is a published FAQ entry.
type FAQResponse struct {
	ID              string   `json:"id"`
	Question        string   `json:"question"`
	Answer          string   `json:"answer"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
	HelpfulCount    int      `json:"helpfulCount"`
	NotHelpfulCount int      `json:"notHelpfulCount"`
}
