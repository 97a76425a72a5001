package dynamodb

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	ddb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	miniclient "github.com/truora/minidyn/aws-v2/client"
	"go.uber.org/zap"

	"inspect-backend/domain/inspection"
	apperrors "inspect-backend/pkg/errors"
)

func TestItemStoreUpsertAndList(t *testing.T) {
	store, _ := newItemStore(t)
	ctx := context.Background()

	item, err := store.Upsert(ctx, "ins-1", inspection.ItemUpdate{
		RoomID:    "R1",
		RoomName:  "Kitchen",
		ItemID:    "i1",
		ItemName:  "Fire extinguisher",
		Status:    "pass",
		Comments:  "ok",
		VenueID:   strPtr("V1"),
		VenueName: strPtr("Hall A"),
	}, "2026-08-30T10:00:00+08:00")
	require.NoError(t, err)

	assert.Equal(t, "ins-1", item.InspectionID)
	assert.Equal(t, "R1", item.RoomID)
	assert.Equal(t, "i1", item.ItemID)
	assert.Equal(t, "pass", item.Status)
	assert.Equal(t, "V1", item.VenueID)
	assert.Equal(t, "2026-08-30T10:00:00+08:00", item.CreatedAt)
	assert.Equal(t, "2026-08-30T10:00:00+08:00", item.UpdatedAt)

	items, err := store.List(ctx, "ins-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, *item, items[0])
}

func TestItemStoreUpsertPreservesCreatedAt(t *testing.T) {
	store, _ := newItemStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, "ins-1", inspection.ItemUpdate{
		RoomID: "R1", ItemID: "i1", Status: "fail",
	}, "2026-08-30T10:00:00+08:00")
	require.NoError(t, err)

	item, err := store.Upsert(ctx, "ins-1", inspection.ItemUpdate{
		RoomID: "R1", ItemID: "i1", Status: "pass", Comments: "fixed",
	}, "2026-08-30T11:00:00+08:00")
	require.NoError(t, err)

	assert.Equal(t, "2026-08-30T10:00:00+08:00", item.CreatedAt)
	assert.Equal(t, "2026-08-30T11:00:00+08:00", item.UpdatedAt)
	assert.Equal(t, "pass", item.Status)
	assert.Equal(t, "fixed", item.Comments)

	items, err := store.List(ctx, "ins-1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestItemStoreUpsertNormalizesStatus(t *testing.T) {
	store, _ := newItemStore(t)
	ctx := context.Background()

	for raw, want := range map[string]string{
		" PASS ":  "pass",
		"Fail":    "fail",
		"NA":      "na",
		"":        "pending",
		"unknown": "pending",
	} {
		item, err := store.Upsert(ctx, "ins-1", inspection.ItemUpdate{
			RoomID: "R1", ItemID: "i-" + want + raw, Status: raw,
		}, "2026-08-30T10:00:00+08:00")
		require.NoError(t, err)
		assert.Equal(t, want, item.Status, "raw status %q", raw)
	}
}

func TestItemStoreUpsertValidation(t *testing.T) {
	store, _ := newItemStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, "", inspection.ItemUpdate{RoomID: "R1", ItemID: "i1"}, "ts")
	assert.True(t, apperrors.IsValidation(err))

	_, err = store.Upsert(ctx, "ins-1", inspection.ItemUpdate{ItemID: "i1"}, "ts")
	assert.True(t, apperrors.IsValidation(err))

	_, err = store.Upsert(ctx, "ins-1", inspection.ItemUpdate{RoomID: "R1"}, "ts")
	assert.True(t, apperrors.IsValidation(err))
}

func TestItemStoreRejectsTableWithoutSortKey(t *testing.T) {
	ctx := context.Background()
	client := miniclient.NewClient()
	require.NoError(t, miniclient.AddTable(ctx, client, "flat-items", "inspection_id", ""))

	schemas := NewKeySchemaCache(client, zap.NewNop())
	store := NewItemStore(client, "flat-items", schemas, zap.NewNop())

	_, err := store.Upsert(ctx, "ins-1", inspection.ItemUpdate{RoomID: "R1", ItemID: "i1"}, "ts")
	require.Error(t, err)
	assert.True(t, apperrors.IsStoreError(err))
}

func TestItemStoreRecoversKeysFromSortKey(t *testing.T) {
	store, client := newItemStore(t)
	ctx := context.Background()

	// Records written by older handlers carry only the table keys and a
	// status, no roomId/itemId attributes.
	_, err := client.PutItem(ctx, &ddb.PutItemInput{
		TableName: aws.String(testItemsTable),
		Item: map[string]types.AttributeValue{
			"inspection_id": &types.AttributeValueMemberS{Value: "ins-legacy"},
			"room_item":     &types.AttributeValueMemberS{Value: "R9#i9"},
			"status":        &types.AttributeValueMemberS{Value: "pass"},
		},
	})
	require.NoError(t, err)

	items, err := store.List(ctx, "ins-legacy")
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "R9", items[0].RoomID)
	assert.Equal(t, "i9", items[0].ItemID)
	assert.Equal(t, "pass", items[0].Status)
}

func TestItemStoreDeleteAllChunksBatches(t *testing.T) {
	store, _ := newItemStore(t)
	ctx := context.Background()

	// More than one BatchWriteItem chunk worth of records.
	for i := 0; i < 30; i++ {
		_, err := store.Upsert(ctx, "ins-1", inspection.ItemUpdate{
			RoomID: "R1",
			ItemID: fmt.Sprintf("i%02d", i),
			Status: "pass",
		}, "2026-08-30T10:00:00+08:00")
		require.NoError(t, err)
	}

	// Another inspection's records must survive the delete.
	_, err := store.Upsert(ctx, "ins-2", inspection.ItemUpdate{
		RoomID: "R1", ItemID: "i1", Status: "pass",
	}, "2026-08-30T10:00:00+08:00")
	require.NoError(t, err)

	deleted, err := store.DeleteAll(ctx, "ins-1")
	require.NoError(t, err)
	assert.Equal(t, 30, deleted)

	items, err := store.List(ctx, "ins-1")
	require.NoError(t, err)
	assert.Empty(t, items)

	other, err := store.List(ctx, "ins-2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestItemStoreDeleteAllEmpty(t *testing.T) {
	store, _ := newItemStore(t)

	deleted, err := store.DeleteAll(context.Background(), "ins-none")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestItemStoreFailureMapsToStoreError(t *testing.T) {
	store, client := newItemStore(t)
	ctx := context.Background()

	// Warm the schema cache so the failure hits the data call.
	_, err := store.Upsert(ctx, "ins-1", inspection.ItemUpdate{
		RoomID: "R1", ItemID: "i1", Status: "pass",
	}, "ts")
	require.NoError(t, err)

	miniclient.EmulateFailure(client, miniclient.FailureConditionInternalServerError)
	defer miniclient.EmulateFailure(client, miniclient.FailureConditionNone)

	_, err = store.Upsert(ctx, "ins-1", inspection.ItemUpdate{
		RoomID: "R1", ItemID: "i2", Status: "pass",
	}, "ts")
	require.Error(t, err)
	assert.True(t, apperrors.IsStoreError(err))

	_, err = store.List(ctx, "ins-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsStoreError(err))
}
