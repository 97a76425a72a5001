package dynamodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	miniclient "github.com/truora/minidyn/aws-v2/client"
	"go.uber.org/zap"
)

const (
	testItemsTable    = "inspection-items"
	testMetadataTable = "inspection-metadata"
	testVenuesTable   = "venue-rooms"
	testIndexName     = "status-completedAt-index"
)

// newStoreClient spins up an in-memory table set matching the deployed
// shape: a composite-key items table, a simple-key metadata table with the
// sparse completed index, and a simple-key venues table.
func newStoreClient(t *testing.T) (*miniclient.Client, *KeySchemaCache) {
	t.Helper()

	ctx := context.Background()
	client := miniclient.NewClient()

	require.NoError(t, miniclient.AddTable(ctx, client, testItemsTable, "inspection_id", "room_item"))
	require.NoError(t, miniclient.AddTable(ctx, client, testMetadataTable, "inspectionId", ""))
	require.NoError(t, miniclient.AddTable(ctx, client, testVenuesTable, "venueId", ""))
	require.NoError(t, miniclient.AddIndex(ctx, client, testMetadataTable, testIndexName, "status", "completedAt"))

	return client, NewKeySchemaCache(client, zap.NewNop())
}

func newItemStore(t *testing.T) (*ItemStore, *miniclient.Client) {
	t.Helper()

	client, schemas := newStoreClient(t)

	return NewItemStore(client, testItemsTable, schemas, zap.NewNop()), client
}

func newMetadataStore(t *testing.T) (*MetadataStore, *miniclient.Client) {
	t.Helper()

	client, schemas := newStoreClient(t)

	return NewMetadataStore(client, testMetadataTable, testIndexName, schemas, zap.NewNop()), client
}

func newVenueStore(t *testing.T) (*VenueStore, *miniclient.Client) {
	t.Helper()

	client, schemas := newStoreClient(t)

	return NewVenueStore(client, testVenuesTable, schemas, zap.NewNop()), client
}

func strPtr(s string) *string { return &s }
