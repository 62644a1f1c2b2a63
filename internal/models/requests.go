package models

// LeadSubmitRequest is the public lead/reseller form payload.
type LeadSubmitRequest struct {
	Name        string `json:"name" binding:"required"`
	Number      string `json:"number" binding:"required"`
	Email       string `json:"email,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Message     string `json:"message,omitempty"`
	Reseller    bool   `json:"reseller,omitempty"`
}

// SiteChatSubmitRequest is the public site-chat widget payload.
type SiteChatSubmitRequest struct {
	Name    string `json:"name" binding:"required"`
	Number  string `json:"number" binding:"required"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message" binding:"required"`
}

// WebhookMessageRequest is a channel-native inbound message event. The
// phone portion of RemoteJid is extracted before identity resolution.
type WebhookMessageRequest struct {
	WhatsappID  uint   `json:"whatsapp_id" binding:"required"`
	RemoteJid   string `json:"remote_jid" binding:"required"`
	Participant string `json:"participant,omitempty"`
	Body        string `json:"body"`
	FromMe      bool   `json:"from_me"`
	MediaType   string `json:"media_type,omitempty"`
	PushName    string `json:"push_name,omitempty"`
}

// InboundResult is returned by the public submit endpoints. Token is the
// ticket protocol uuid used by unauthenticated site-chat clients to poll.
type InboundResult struct {
	ContactID uint   `json:"contact_id"`
	TicketID  uint   `json:"ticket_id"`
	Token     string `json:"token"`
}
