package request

type IssueTokenRequest struct {
	Subject string `json:"subject" binding:"required,max=128"`
}
