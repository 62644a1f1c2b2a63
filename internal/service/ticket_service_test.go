package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapdesk-io/zapdesk/internal/lock"
	"github.com/zapdesk-io/zapdesk/internal/models"
	"github.com/zapdesk-io/zapdesk/internal/repository"
)

func newTicketService() (*TicketService, *repository.MemoryTicketRepository) {
	tickets := repository.NewMemoryTicketRepository()
	return NewTicketService(tickets, lock.NewKeyedMutex(2*time.Second)), tickets
}

func baseRequest() *models.FindOrCreateTicketRequest {
	return &models.FindOrCreateTicketRequest{
		TenantID:        1,
		ContactID:       10,
		WhatsappID:      3,
		EntrySource:     models.EntrySourceLead,
		DefaultQueueID:  5,
		DefaultTagID:    7,
		UnreadIncrement: 1,
		LastMessage:     "hello",
	}
}

func TestFindOrCreateTicketCreates(t *testing.T) {
	svc, tickets := newTicketService()

	ticket, created, err := svc.FindOrCreateTicket(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.TicketStatusPending, ticket.Status)
	assert.Equal(t, uint(5), models.DerefUint(ticket.QueueID))
	assert.Equal(t, 1, ticket.UnreadMessages)
	assert.Equal(t, "hello", ticket.LastMessage)
	assert.NotEmpty(t, ticket.Protocol)
	assert.Equal(t, []uint{7}, tickets.TagIDs(ticket.ID))
}

func TestFindOrCreateTicketReusesActive(t *testing.T) {
	svc, _ := newTicketService()
	ctx := context.Background()

	first, created, err := svc.FindOrCreateTicket(ctx, baseRequest())
	require.NoError(t, err)
	require.True(t, created)

	req := baseRequest()
	req.LastMessage = "second"
	second, created, err := svc.FindOrCreateTicket(ctx, req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.UnreadMessages)
	assert.Equal(t, "second", second.LastMessage)
}

func TestFindOrCreateTicketConcurrentIdempotency(t *testing.T) {
	svc, _ := newTicketService()

	const calls = 30
	ids := make([]uint, calls)
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ticket, _, err := svc.FindOrCreateTicket(context.Background(), baseRequest())
			require.NoError(t, err)
			ids[i] = ticket.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id, "all concurrent calls must resolve to one ticket")
	}
}

func TestFindOrCreateTicketEntrySourceIsolation(t *testing.T) {
	svc, _ := newTicketService()
	ctx := context.Background()

	lead, _, err := svc.FindOrCreateTicket(ctx, baseRequest())
	require.NoError(t, err)

	req := baseRequest()
	req.EntrySource = models.EntrySourceSiteChat
	chat, created, err := svc.FindOrCreateTicket(ctx, req)
	require.NoError(t, err)

	assert.True(t, created, "a different entry source must open its own ticket")
	assert.NotEqual(t, lead.ID, chat.ID)
}

func TestFindOrCreateTicketClosedDoesNotMatch(t *testing.T) {
	svc, tickets := newTicketService()
	ctx := context.Background()

	first, _, err := svc.FindOrCreateTicket(ctx, baseRequest())
	require.NoError(t, err)

	first.Status = models.TicketStatusClosed
	require.NoError(t, tickets.Update(ctx, first))

	second, created, err := svc.FindOrCreateTicket(ctx, baseRequest())
	require.NoError(t, err)
	assert.True(t, created, "a closed ticket must not satisfy active matching")
	assert.NotEqual(t, first.ID, second.ID)
}

func TestFindOrCreateTicketReopensClosedOnRequest(t *testing.T) {
	svc, tickets := newTicketService()
	ctx := context.Background()

	first, _, err := svc.FindOrCreateTicket(ctx, baseRequest())
	require.NoError(t, err)

	first.Status = models.TicketStatusClosed
	require.NoError(t, tickets.Update(ctx, first))

	req := baseRequest()
	req.CreateEvenIfClosedExists = true
	reopened, created, err := svc.FindOrCreateTicket(ctx, req)
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, first.ID, reopened.ID)
	assert.Equal(t, models.TicketStatusPending, reopened.Status)
}

func TestFindOrCreateTicketForwardReusesAnyStatus(t *testing.T) {
	svc, tickets := newTicketService()
	ctx := context.Background()

	first, _, err := svc.FindOrCreateTicket(ctx, baseRequest())
	require.NoError(t, err)

	first.Status = models.TicketStatusClosed
	require.NoError(t, tickets.Update(ctx, first))

	req := baseRequest()
	req.Forward = true
	target, created, err := svc.FindOrCreateTicket(ctx, req)
	require.NoError(t, err)

	assert.False(t, created, "forwarding must reuse the existing thread")
	assert.Equal(t, first.ID, target.ID)
}

func TestFindOrCreateTicketGroupContact(t *testing.T) {
	svc, _ := newTicketService()

	req := baseRequest()
	req.GroupContact = true
	ticket, _, err := svc.FindOrCreateTicket(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.TicketStatusGroup, ticket.Status)
	assert.True(t, ticket.IsGroup)
}

func TestFindOrCreateTicketExplicitAssignmentWins(t *testing.T) {
	svc, _ := newTicketService()

	req := baseRequest()
	req.QueueID = 9
	req.UserID = 4
	ticket, _, err := svc.FindOrCreateTicket(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, uint(9), models.DerefUint(ticket.QueueID))
	assert.Equal(t, uint(4), models.DerefUint(ticket.UserID))
}

func TestFindOrCreateTicketUserOnlySkipsDefaultQueue(t *testing.T) {
	svc, _ := newTicketService()

	req := baseRequest()
	req.UserID = 4
	ticket, _, err := svc.FindOrCreateTicket(context.Background(), req)
	require.NoError(t, err)

	assert.Nil(t, ticket.QueueID, "an explicit agent assignment suppresses the default queue")
}

func TestResetUnread(t *testing.T) {
	svc, _ := newTicketService()
	ctx := context.Background()

	ticket, _, err := svc.FindOrCreateTicket(ctx, baseRequest())
	require.NoError(t, err)
	require.Equal(t, 1, ticket.UnreadMessages)

	require.NoError(t, svc.ResetUnread(ctx, 1, ticket.ID))

	got, err := svc.GetByID(ctx, 1, ticket.ID)
	require.NoError(t, err)
	assert.Zero(t, got.UnreadMessages)
}
