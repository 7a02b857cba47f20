package v1

// VBDClient is the typed client for the case-reporting server's sync API.
type VBDClient struct {
	Transport *Transport
	Sync      *SyncEndpoint
	Reference *ReferenceEndpoint
}

// NewVBDClient initializes the API client.
func NewVBDClient(baseURL string, token string) *VBDClient {
	t := NewTransport(baseURL, token)
	return &VBDClient{
		Transport: t,
		Sync:      &SyncEndpoint{transport: t},
		Reference: &ReferenceEndpoint{transport: t},
	}
}
