package businessflow

// ClientMetadata carries per-request client information into the flows.
type ClientMetadata struct {
	IP        string
	UserAgent string
	RequestID string
	Referrer  string
}
