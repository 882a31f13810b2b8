package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kenza-oss/kleerlogistics/pkg/db/models"
	"github.com/kenza-oss/kleerlogistics/pkg/enums"
	"github.com/kenza-oss/kleerlogistics/pkg/logger"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A distinct shared-cache database per test keeps rows from leaking
	// between tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func newOutboxRow(t *testing.T, db *gorm.DB, createdAt time.Time, publishedAt *time.Time, attempts int) *models.OutboxEvent {
	t.Helper()

	row := &models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventDeliveryConfirmed,
		AggregateType: enums.AggregateShipment,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		CreatedAt:     createdAt,
		PublishedAt:   publishedAt,
		AttemptCount:  attempts,
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestEmitStoresEnvelope(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), logger.New(logger.Options{ServiceName: "test"}))

	actorID := uuid.New()
	aggregateID := uuid.New()
	err := svc.Emit(context.Background(), db, DomainEvent{
		EventType:     enums.EventDeliveryConfirmed,
		AggregateType: enums.AggregateShipment,
		AggregateID:   aggregateID,
		Version:       1,
		Actor:         &ActorRef{UserID: actorID, Role: "traveler"},
		Data:          map[string]string{"tracking_number": "KL-2026-AB12CD34"},
	})
	require.NoError(t, err)

	var row models.OutboxEvent
	require.NoError(t, db.First(&row, "aggregate_id = ?", aggregateID).Error)
	assert.Equal(t, enums.EventDeliveryConfirmed, row.EventType)
	assert.Nil(t, row.PublishedAt)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(row.Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, actorID, envelope.Actor.UserID)

	var data map[string]string
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, "KL-2026-AB12CD34", data["tracking_number"])
}

func TestEmitIfNotExistsSkipsDuplicates(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)

	event := DomainEvent{
		EventType:     enums.EventDeliveryConfirmed,
		AggregateType: enums.AggregateShipment,
		AggregateID:   uuid.New(),
		Version:       1,
		Data:          map[string]string{},
	}
	require.NoError(t, svc.EmitIfNotExists(context.Background(), db, event))
	require.NoError(t, svc.EmitIfNotExists(context.Background(), db, event))

	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ?", event.AggregateID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMarkFailedTxAccumulatesAttempts(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	row := newOutboxRow(t, db, time.Now(), nil, 0)
	require.NoError(t, repo.MarkFailedTx(db, row.ID, errors.New("publish timeout")))
	require.NoError(t, repo.MarkFailedTx(db, row.ID, errors.New("publish timeout")))

	var stored models.OutboxEvent
	require.NoError(t, db.First(&stored, "id = ?", row.ID).Error)
	assert.Equal(t, 2, stored.AttemptCount)
	require.NotNil(t, stored.LastError)
	assert.Equal(t, "publish timeout", *stored.LastError)
	assert.Nil(t, stored.PublishedAt)
}

func TestMarkPublishedTxStampsRow(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	row := newOutboxRow(t, db, time.Now(), nil, 1)
	require.NoError(t, repo.MarkPublishedTx(db, row.ID))

	var stored models.OutboxEvent
	require.NoError(t, db.First(&stored, "id = ?", row.ID).Error)
	require.NotNil(t, stored.PublishedAt)
}

func TestDeletePublishedBeforePurgesTerminalRows(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	now := time.Now()
	old := now.Add(-48 * time.Hour)

	oldPublished := old.Add(time.Minute)
	publishedOld := newOutboxRow(t, db, old, &oldPublished, 1)
	recentPublished := now.Add(-time.Minute)
	publishedRecent := newOutboxRow(t, db, now.Add(-time.Hour), &recentPublished, 1)
	exhaustedOld := newOutboxRow(t, db, old, nil, 5)
	pendingFresh := newOutboxRow(t, db, now, nil, 2)

	deleted, err := repo.DeletePublishedBefore(context.Background(), db, now.Add(-24*time.Hour), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	ids := map[uuid.UUID]bool{}
	var remaining []models.OutboxEvent
	require.NoError(t, db.Where("id IN ?", []uuid.UUID{
		publishedOld.ID, publishedRecent.ID, exhaustedOld.ID, pendingFresh.ID,
	}).Find(&remaining).Error)
	for _, row := range remaining {
		ids[row.ID] = true
	}
	assert.False(t, ids[publishedOld.ID], "old published rows are purged")
	assert.True(t, ids[publishedRecent.ID], "recent published rows survive")
	assert.False(t, ids[exhaustedOld.ID], "exhausted unpublished rows are purged")
	assert.True(t, ids[pendingFresh.ID], "pending rows survive")
}

func TestRepositoryRequiresTransaction(t *testing.T) {
	repo := NewRepository(nil)

	assert.Error(t, repo.Insert(nil, models.OutboxEvent{}))
	_, err := repo.FetchUnpublishedForPublish(nil, 10, 5)
	assert.Error(t, err)
	assert.Error(t, repo.MarkPublishedTx(nil, uuid.New()))
	assert.Error(t, repo.MarkFailedTx(nil, uuid.New(), errors.New("x")))
	_, err = repo.DeletePublishedBefore(context.Background(), nil, time.Now(), 5)
	assert.Error(t, err)
}
