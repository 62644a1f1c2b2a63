package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapdesk-io/zapdesk/internal/events"
	"github.com/zapdesk-io/zapdesk/internal/lock"
	"github.com/zapdesk-io/zapdesk/internal/models"
	"github.com/zapdesk-io/zapdesk/internal/repository"
)

type fakeGateway struct {
	mu    sync.Mutex
	sends []string
	done  chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{done: make(chan struct{}, 8)}
}

func (g *fakeGateway) Send(ctx context.Context, connectionID uint, jid, payload string) error {
	g.mu.Lock()
	g.sends = append(g.sends, payload)
	g.mu.Unlock()
	g.done <- struct{}{}
	return nil
}

func (g *fakeGateway) wait(t *testing.T) {
	t.Helper()
	select {
	case <-g.done:
	case <-time.After(time.Second):
		t.Fatal("welcome dispatch never happened")
	}
}

type inboundFixture struct {
	svc       *InboundService
	contacts  *repository.MemoryContactRepository
	tickets   *repository.MemoryTicketRepository
	messages  *repository.MemoryMessageRepository
	configs   *repository.MemoryEntryConfigRepository
	queues    *repository.MemoryQueueRepository
	whatsapps *repository.MemoryWhatsappRepository
	gateway   *fakeGateway
}

func newInboundFixture() *inboundFixture {
	contacts := repository.NewMemoryContactRepository()
	tickets := repository.NewMemoryTicketRepository()
	messages := repository.NewMemoryMessageRepository()
	configs := repository.NewMemoryEntryConfigRepository()
	queues := repository.NewMemoryQueueRepository()
	tags := repository.NewMemoryTagRepository()
	whatsapps := repository.NewMemoryWhatsappRepository()
	gateway := newFakeGateway()
	bus := events.NewBus()

	identity := NewIdentityService(contacts)
	entryConfig := NewEntryConfigService(configs, queues, tags, whatsapps)
	ticketSvc := NewTicketService(tickets, lock.NewKeyedMutex(2*time.Second))
	messageSvc := NewMessageService(messages, tickets, bus)
	welcome := NewWelcomeService(gateway)

	return &inboundFixture{
		svc:       NewInboundService(identity, entryConfig, ticketSvc, messageSvc, welcome, contacts, whatsapps, bus),
		contacts:  contacts,
		tickets:   tickets,
		messages:  messages,
		configs:   configs,
		queues:    queues,
		whatsapps: whatsapps,
		gateway:   gateway,
	}
}

func TestSubmitLeadFullPipeline(t *testing.T) {
	f := newInboundFixture()
	f.queues.Add(1, "Atendimento")
	f.whatsapps.Add(1, "Principal", true)
	require.NoError(t, f.configs.Upsert(context.Background(), &models.ChannelEntryConfig{
		TenantID:       1,
		EntrySource:    models.EntrySourceLead,
		WelcomeMessage: models.NullableString("Bem-vindo!"),
	}))

	result, err := f.svc.SubmitLead(context.Background(), 1, &models.LeadSubmitRequest{
		Name:    "Maria",
		Number:  "(14) 98125-2988",
		Message: "quero saber mais",
	})
	require.NoError(t, err)
	assert.NotZero(t, result.ContactID)
	assert.NotZero(t, result.TicketID)
	assert.NotEmpty(t, result.Token)

	ticket, err := f.tickets.GetByID(context.Background(), 1, result.TicketID)
	require.NoError(t, err)
	assert.Equal(t, models.EntrySourceLead, ticket.EntrySource)
	assert.Equal(t, "quero saber mais", ticket.LastMessage)

	msgs, err := f.messages.ListByTicket(context.Background(), result.TicketID, false, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "quero saber mais", msgs[0].Body)

	f.gateway.wait(t)
}

func TestSubmitLeadResellerRoutesSeparately(t *testing.T) {
	f := newInboundFixture()
	f.queues.Add(1, "Atendimento")
	f.whatsapps.Add(1, "Principal", true)
	ctx := context.Background()

	lead, err := f.svc.SubmitLead(ctx, 1, &models.LeadSubmitRequest{Name: "M", Number: "5514981252988"})
	require.NoError(t, err)
	reseller, err := f.svc.SubmitLead(ctx, 1, &models.LeadSubmitRequest{Name: "M", Number: "5514981252988", Reseller: true})
	require.NoError(t, err)

	assert.Equal(t, lead.ContactID, reseller.ContactID, "same person, one contact")
	assert.NotEqual(t, lead.TicketID, reseller.TicketID, "entry sources keep independent tickets")
}

func TestSubmitSiteChatRepeatReusesTicket(t *testing.T) {
	f := newInboundFixture()
	f.queues.Add(1, "Atendimento")
	f.whatsapps.Add(1, "Principal", true)
	ctx := context.Background()

	req := &models.SiteChatSubmitRequest{Name: "Ana", Number: "(11) 97777-1234", Message: "oi"}
	first, err := f.svc.SubmitSiteChat(ctx, 1, req)
	require.NoError(t, err)
	second, err := f.svc.SubmitSiteChat(ctx, 1, req)
	require.NoError(t, err)

	assert.Equal(t, first.TicketID, second.TicketID)
	assert.Equal(t, first.Token, second.Token)
}

func TestSubmitLeadWithoutConnectionFails(t *testing.T) {
	f := newInboundFixture()
	f.queues.Add(1, "Atendimento")

	_, err := f.svc.SubmitLead(context.Background(), 1, &models.LeadSubmitRequest{Name: "M", Number: "5514981252988"})
	assert.Error(t, err)
}

func TestHandleWebhookMessage(t *testing.T) {
	f := newInboundFixture()
	conn := f.whatsapps.Add(1, "Principal", true)
	ctx := context.Background()

	result, err := f.svc.HandleWebhookMessage(ctx, 1, &models.WebhookMessageRequest{
		WhatsappID: conn.ID,
		RemoteJid:  "5514981252988@s.whatsapp.net",
		Body:       "oi",
		PushName:   "Maria",
	})
	require.NoError(t, err)

	ticket, err := f.tickets.GetByID(ctx, 1, result.TicketID)
	require.NoError(t, err)
	assert.Equal(t, models.EntrySourceWhatsapp, ticket.EntrySource)
	assert.Equal(t, 1, ticket.UnreadMessages)

	contact, err := f.contacts.GetByID(ctx, 1, result.ContactID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", contact.Name)
	assert.Equal(t, "5514981252988", models.DerefString(contact.CanonicalNumber))
}

func TestHandleWebhookRejectsForeignConnection(t *testing.T) {
	f := newInboundFixture()
	f.whatsapps.Add(1, "Principal", true)
	foreign := f.whatsapps.Add(2, "Outra", true)
	ctx := context.Background()

	_, err := f.svc.HandleWebhookMessage(ctx, 1, &models.WebhookMessageRequest{
		WhatsappID: foreign.ID,
		RemoteJid:  "5514981252988@s.whatsapp.net",
		Body:       "oi",
	})
	require.ErrorIs(t, err, models.ErrCrossTenantReference)

	_, err = f.contacts.GetByID(ctx, 1, 1)
	assert.ErrorIs(t, err, models.ErrContactNotFound, "rejection must precede any write")
}

func TestHandleWebhookFromMeDoesNotBumpUnread(t *testing.T) {
	f := newInboundFixture()
	conn := f.whatsapps.Add(1, "Principal", true)

	result, err := f.svc.HandleWebhookMessage(context.Background(), 1, &models.WebhookMessageRequest{
		WhatsappID: conn.ID,
		RemoteJid:  "5514981252988@s.whatsapp.net",
		Body:       "resposta",
		FromMe:     true,
	})
	require.NoError(t, err)

	ticket, err := f.tickets.GetByID(context.Background(), 1, result.TicketID)
	require.NoError(t, err)
	assert.Zero(t, ticket.UnreadMessages)
}

func TestHandleWebhookGroupJid(t *testing.T) {
	f := newInboundFixture()
	conn := f.whatsapps.Add(1, "Principal", true)

	result, err := f.svc.HandleWebhookMessage(context.Background(), 1, &models.WebhookMessageRequest{
		WhatsappID:  conn.ID,
		RemoteJid:   "123456789012345678@g.us",
		Participant: "5514981252988@s.whatsapp.net",
		Body:        "mensagem no grupo",
	})
	require.NoError(t, err)

	ticket, err := f.tickets.GetByID(context.Background(), 1, result.TicketID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusGroup, ticket.Status)
	assert.True(t, ticket.IsGroup)
}

func TestExtractJidNumber(t *testing.T) {
	tests := []struct {
		jid     string
		number  string
		isGroup bool
	}{
		{"5514981252988@s.whatsapp.net", "5514981252988", false},
		{"5514981252988:12@s.whatsapp.net", "5514981252988", false},
		{"123456789012345678@g.us", "123456789012345678", true},
		{"5514981252988", "5514981252988", false},
	}
	for _, tt := range tests {
		number, isGroup := ExtractJidNumber(tt.jid)
		assert.Equal(t, tt.number, number, tt.jid)
		assert.Equal(t, tt.isGroup, isGroup, tt.jid)
	}
}
