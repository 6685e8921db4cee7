package pubsub

// Channels.
const (
	ChannelClaimEvents = "claims:events"
)

// Event types on ChannelClaimEvents. Key is the claim id.
const (
	EventClaimCreated          = "claim.created"
	EventClaimDocumentUploaded = "claim.document_uploaded"
)

// ClaimCreatedPayload accompanies EventClaimCreated.
type ClaimCreatedPayload struct {
	ClaimID         string `json:"claim_id"`
	PolicyReference string `json:"policy_reference"`
	UserID          string `json:"user_id"`
}

// DocumentUploadedPayload accompanies EventClaimDocumentUploaded.
type DocumentUploadedPayload struct {
	ClaimID     string `json:"claim_id"`
	DocumentKey string `json:"document_key"`
	Size        int64  `json:"size"`
	UserID      string `json:"user_id"`
}
