package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"eie-registry/internal/model"
	"eie-registry/internal/repository"
	"eie-registry/internal/service"
	"eie-registry/internal/storage"
	"eie-registry/internal/testutil"
	"eie-registry/internal/ws"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxNotifier_RecordsUploadEventsOnly(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewOutboxRepo(db)
	n := NewOutboxNotifier(db, repo, zerolog.Nop())

	n.Publish(ws.EventProductStatusChanged, map[string]interface{}{"gtin_code": testutil.GTINs[0]})
	n.Publish(ws.EventUploadStatusChanged, map[string]interface{}{"product_file_id": "f-1", "upload_status": "LOADED"})

	pending, err := repo.GetPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.EventUploadStatusChanged, pending[0].EventType)
	assert.Equal(t, "f-1", pending[0].AggregateID)
	assert.JSONEq(t, `{"product_file_id":"f-1","upload_status":"LOADED"}`, pending[0].Payload)
}

func TestHubRelay_DeliversWorkerFinishToAPIHub(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	outbox := repository.NewOutboxRepo(db)
	org := testutil.CreateInstitution(t, db, "Elettro Spa")
	seedOutbox(t, db, testutil.GTINs[1])

	// recorded before the API came up, not replayed
	NewOutboxNotifier(db, outbox, zerolog.Nop()).Publish(ws.EventUploadStatusChanged, map[string]interface{}{"product_file_id": "old"})

	hub := ws.NewHub(zerolog.Nop())
	relay := NewHubRelay(outbox, hub, time.Second, 10, zerolog.Nop())
	require.NoError(t, relay.skipBacklog(ctx))

	store := storage.NewMemoryStore()
	uploads := repository.NewUploadRepo(db)
	upload := &model.Upload{
		FileName:           "piani.csv",
		Category:           model.CategoryCookingHobs,
		UploadStatus:       model.UploadUploaded,
		FindProductsNumber: 1,
		ObjectKey:          "uploads/piani.csv",
		OrganizationID:     org.ID,
		OrganizationName:   org.Name,
	}
	require.NoError(t, uploads.Create(upload))
	require.NoError(t, store.Put(ctx, upload.ObjectKey, []byte(
		"Codice GTIN/EAN;Codice prodotto;Categoria;Paese di Produzione;Marca;Modello\n"+
			testutil.GTINs[0]+";HOB-1;COOKINGHOBS;IT;Acme;Flame 60\n"), "text/csv"))

	// the worker process has no hub of its own
	worker := service.NewUploadProcessor(uploads, repository.NewProductRepo(db), store, nil, db,
		NewOutboxNotifier(db, outbox, zerolog.Nop()), zerolog.Nop())
	require.NoError(t, worker.Process(ctx, upload.ID))
	assert.Empty(t, hub.Broadcast)

	n, err := relay.Forward(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, hub.Broadcast, 2)

	var started, finished map[string]interface{}
	require.NoError(t, json.Unmarshal(<-hub.Broadcast, &started))
	require.NoError(t, json.Unmarshal(<-hub.Broadcast, &finished))
	assert.Equal(t, ws.EventUploadStatusChanged, started["type"])
	assert.Equal(t, string(model.UploadInProgress), started["upload_status"])
	assert.Equal(t, ws.EventUploadStatusChanged, finished["type"])
	assert.Equal(t, upload.ID.String(), finished["product_file_id"])
	assert.Equal(t, string(model.UploadLoaded), finished["upload_status"])
	assert.EqualValues(t, 1, finished["added_products_number"])

	n, err = relay.Forward(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
