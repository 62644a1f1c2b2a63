package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapdesk-io/zapdesk/internal/models"
	"github.com/zapdesk-io/zapdesk/internal/repository"
)

type entryConfigFixture struct {
	svc       *EntryConfigService
	configs   *repository.MemoryEntryConfigRepository
	queues    *repository.MemoryQueueRepository
	tags      *repository.MemoryTagRepository
	whatsapps *repository.MemoryWhatsappRepository
}

func newEntryConfigFixture() *entryConfigFixture {
	configs := repository.NewMemoryEntryConfigRepository()
	queues := repository.NewMemoryQueueRepository()
	tags := repository.NewMemoryTagRepository()
	whatsapps := repository.NewMemoryWhatsappRepository()
	return &entryConfigFixture{
		svc:       NewEntryConfigService(configs, queues, tags, whatsapps),
		configs:   configs,
		queues:    queues,
		tags:      tags,
		whatsapps: whatsapps,
	}
}

func TestGetConfigComputedDefaultIsDeterministic(t *testing.T) {
	f := newEntryConfigFixture()
	queue := f.queues.Add(1, "Atendimento")
	f.queues.Add(1, "Suporte")
	ctx := context.Background()

	first, err := f.svc.GetConfig(ctx, 1, models.EntrySourceLead)
	require.NoError(t, err)
	second, err := f.svc.GetConfig(ctx, 1, models.EntrySourceLead)
	require.NoError(t, err)

	assert.False(t, first.Stored)
	assert.Equal(t, queue.ID, first.QueueID, "default queue is the tenant's lowest-id queue")
	assert.Equal(t, first.QueueID, second.QueueID)
	assert.Equal(t, first.TagID, second.TagID, "repeated calls must not mint duplicate tags")

	tag, err := f.tags.GetByID(ctx, 1, first.TagID)
	require.NoError(t, err)
	require.NotNil(t, tag)
	assert.Equal(t, "Lead", tag.Name)
}

func TestGetConfigDefaultIsNotPersisted(t *testing.T) {
	f := newEntryConfigFixture()
	f.queues.Add(1, "Atendimento")

	_, err := f.svc.GetConfig(context.Background(), 1, models.EntrySourceSiteChat)
	require.NoError(t, err)

	stored, err := f.configs.Get(context.Background(), 1, models.EntrySourceSiteChat)
	require.NoError(t, err)
	assert.Nil(t, stored, "computed defaults must never be written")
}

func TestGetConfigStoredWinsVerbatim(t *testing.T) {
	f := newEntryConfigFixture()
	f.queues.Add(1, "Atendimento")
	queueID := uint(42)
	require.NoError(t, f.configs.Upsert(context.Background(), &models.ChannelEntryConfig{
		TenantID:       1,
		EntrySource:    models.EntrySourceLead,
		QueueID:        &queueID,
		WelcomeMessage: models.NullableString("Bem-vindo!"),
	}))

	resolved, err := f.svc.GetConfig(context.Background(), 1, models.EntrySourceLead)
	require.NoError(t, err)

	assert.True(t, resolved.Stored)
	assert.Equal(t, uint(42), resolved.QueueID)
	assert.Zero(t, resolved.TagID, "stored nulls are returned verbatim, not defaulted")
	assert.Equal(t, "Bem-vindo!", resolved.WelcomeMessage)
}

func TestGetConfigRejectsUnknownEntrySource(t *testing.T) {
	f := newEntryConfigFixture()
	_, err := f.svc.GetConfig(context.Background(), 1, "carrier_pigeon")
	assert.ErrorIs(t, err, models.ErrInvalidEntrySource)
}

func TestCreateOrUpdateValidatesTenantOwnership(t *testing.T) {
	f := newEntryConfigFixture()
	foreignQueue := f.queues.Add(2, "Other tenant queue")
	ctx := context.Background()

	_, err := f.svc.CreateOrUpdate(ctx, 1, &models.EntryConfigUpdateRequest{
		EntrySource: models.EntrySourceLead,
		QueueID:     &foreignQueue.ID,
	})
	assert.ErrorIs(t, err, models.ErrCrossTenantReference)

	stored, gerr := f.configs.Get(ctx, 1, models.EntrySourceLead)
	require.NoError(t, gerr)
	assert.Nil(t, stored, "validation failures must not write")
}

func TestCreateOrUpdateUpserts(t *testing.T) {
	f := newEntryConfigFixture()
	queue := f.queues.Add(1, "Atendimento")
	conn := f.whatsapps.Add(1, "Principal", true)
	ctx := context.Background()

	first, err := f.svc.CreateOrUpdate(ctx, 1, &models.EntryConfigUpdateRequest{
		EntrySource: models.EntrySourceLead,
		QueueID:     &queue.ID,
		WhatsappID:  &conn.ID,
	})
	require.NoError(t, err)

	second, err := f.svc.CreateOrUpdate(ctx, 1, &models.EntryConfigUpdateRequest{
		EntrySource:    models.EntrySourceLead,
		WelcomeMessage: "Olá!",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "one row per (tenant, entry source)")
	assert.Nil(t, second.QueueID, "the update replaces the row wholesale")
	assert.Equal(t, "Olá!", models.DerefString(second.WelcomeMessage))
}
