package repository_test

import (
	"context"
	"testing"
	"time"

	"eie-registry/internal/model"
	"eie-registry/internal/repository"
	"eie-registry/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleRepo_SeedDefaultsGrantsPrivileges(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRoleRepo(db)

	// seeding twice must not duplicate anything
	require.NoError(t, repository.NewPrivilegeRepo(db).SeedDefaults())
	require.NoError(t, repo.SeedDefaults())
	require.NoError(t, repo.SeedDefaults())

	roles, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, roles, 3)

	l2, err := repo.FindByCode(model.RoleInvitaliaL2)
	require.NoError(t, err)
	codes := make([]string, len(l2.Privileges))
	for i, p := range l2.Privileges {
		codes[i] = p.Code
	}
	assert.ElementsMatch(t, model.DefaultPrivilegeCodes(model.RoleInvitaliaL2), codes)

	producer, err := repo.FindByCode(model.RoleProducer)
	require.NoError(t, err)
	assert.Len(t, producer.Privileges, len(model.DefaultPrivilegeCodes(model.RoleProducer)))

	found, err := repository.NewPrivilegeRepo(db).FindByCodes(append(model.DefaultPrivilegeCodes(model.RoleProducer), "no_such_privilege"))
	require.NoError(t, err)
	assert.Len(t, found, len(model.DefaultPrivilegeCodes(model.RoleProducer)))
}

func TestProductRepo_ListFiltersAndPages(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)
	orgA := testutil.CreateInstitution(t, db, "Alpha")
	orgB := testutil.CreateInstitution(t, db, "Beta")

	testutil.CreateProduct(t, db, testutil.GTINs[0], model.StatusUploaded, orgA)
	testutil.CreateProduct(t, db, testutil.GTINs[1], model.StatusUploaded, orgA)
	testutil.CreateProduct(t, db, testutil.GTINs[2], model.StatusApproved, orgA)
	testutil.CreateProduct(t, db, testutil.GTINs[3], model.StatusUploaded, orgB)

	items, total, err := repo.List(repository.ProductFilter{OrganizationID: &orgA.ID, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)

	items, total, err = repo.List(repository.ProductFilter{OrganizationID: &orgA.ID, Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 1)

	items, total, err = repo.List(repository.ProductFilter{Status: string(model.StatusUploaded), Size: 10, Sort: "gtinCode,asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 3)
	assert.Equal(t, testutil.GTINs[0], items[0].GtinCode)

	items, _, err = repo.List(repository.ProductFilter{GtinCode: "5901", Size: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, testutil.GTINs[1], items[0].GtinCode)

	_, total, err = repo.List(repository.ProductFilter{Brand: "acm", Category: string(model.CategoryWashingMachines), Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestProductRepo_UpdateStatusIf(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)
	org := testutil.CreateInstitution(t, db, "Alpha")
	p := testutil.CreateProduct(t, db, testutil.GTINs[0], model.StatusUploaded, org)

	ok, err := repo.UpdateStatusIf(db, p.ID, model.StatusUploaded, model.StatusSupervised, "check label", "reviewer")
	require.NoError(t, err)
	assert.True(t, ok)

	// stale from status loses
	ok, err = repo.UpdateStatusIf(db, p.ID, model.StatusUploaded, model.StatusRejected, "", "other")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByGTIN(p.GtinCode)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSupervised, got.Status)
	assert.Equal(t, "check label", got.Motivation)
}

func TestProductRepo_CountByStatusAndExisting(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)
	orgA := testutil.CreateInstitution(t, db, "Alpha")
	orgB := testutil.CreateInstitution(t, db, "Beta")
	testutil.CreateProduct(t, db, testutil.GTINs[0], model.StatusUploaded, orgA)
	testutil.CreateProduct(t, db, testutil.GTINs[1], model.StatusRejected, orgA)
	testutil.CreateProduct(t, db, testutil.GTINs[2], model.StatusRejected, orgB)

	counts, err := repo.CountByStatus(nil)
	require.NoError(t, err)
	require.Len(t, counts, len(model.ProductStatuses))
	byStatus := map[model.ProductStatus]int64{}
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}
	assert.Equal(t, int64(1), byStatus[model.StatusUploaded])
	assert.Equal(t, int64(2), byStatus[model.StatusRejected])
	assert.Equal(t, int64(0), byStatus[model.StatusApproved])

	counts, err = repo.CountByStatus(&orgB.ID)
	require.NoError(t, err)
	for _, c := range counts {
		if c.Status == model.StatusRejected {
			assert.Equal(t, int64(1), c.Count)
		} else {
			assert.Zero(t, c.Count)
		}
	}

	existing, err := repo.ExistingGTINs([]string{testutil.GTINs[0], testutil.GTINs[4]})
	require.NoError(t, err)
	assert.Equal(t, []string{testutil.GTINs[0]}, existing)
}

func TestUploadRepo_FinishAndBatchList(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUploadRepo(db)
	org := testutil.CreateInstitution(t, db, "Alpha")

	loaded := &model.Upload{FileName: "lavatrici.csv", Category: model.CategoryWashingMachines, UploadStatus: model.UploadUploaded, OrganizationID: org.ID}
	pending := &model.Upload{FileName: "forni.csv", Category: model.CategoryOvens, UploadStatus: model.UploadUploaded, OrganizationID: org.ID}
	require.NoError(t, repo.Create(loaded))
	require.NoError(t, repo.Create(pending))

	require.NoError(t, repo.UpdateStatus(pending.ID, model.UploadInProgress))
	require.NoError(t, repo.Finish(db, loaded.ID, model.UploadEprelError, 3, "reports/x.csv"))

	got, err := repo.FindByID(loaded.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UploadEprelError, got.UploadStatus)
	assert.Equal(t, 3, got.AddedProductsNumber)
	assert.True(t, got.HasReport)
	assert.NotNil(t, got.ProcessedAt)

	items, err := repo.BatchList(&org.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, loaded.ID, items[0].ID)
	assert.Equal(t, "lavatrici.csv", items[0].Name)

	list, total, err := repo.List(repository.UploadFilter{OrganizationID: &org.ID, Size: 10, Status: string(model.UploadInProgress)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, pending.ID, list[0].ID)
}

func TestConsentRepo_AcceptIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewConsentRepo(db)
	userID := uuid.New()

	c, err := repo.Find(userID, 1)
	require.NoError(t, err)
	assert.Nil(t, c)

	first, err := repo.Accept(userID, 1)
	require.NoError(t, err)
	second, err := repo.Accept(userID, 1)
	require.NoError(t, err)
	assert.Equal(t, first.AcceptedAt.Unix(), second.AcceptedAt.Unix())

	c, err = repo.Find(userID, 2)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestOutboxRepo_PendingAndMark(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewOutboxRepo(db)

	var events []*model.OutboxEvent
	for _, gtin := range testutil.GTINs[:3] {
		ev, err := model.ProductStatusChanged{
			EventID:    uuid.New(),
			GtinCode:   gtin,
			From:       model.StatusUploaded,
			To:         model.StatusSupervised,
			OccurredAt: time.Now(),
		}.ToOutbox()
		require.NoError(t, err)
		events = append(events, ev)
	}
	require.NoError(t, repo.Add(db, events))

	pending, err := repo.GetPending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, testutil.GTINs[0], pending[0].AggregateID)
	assert.Contains(t, pending[0].Payload, `"to":"SUPERVISED"`)

	require.NoError(t, repo.MarkProcessed(ctx, pending[0].ID))

	pending, err = repo.GetPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
	assert.Equal(t, testutil.GTINs[1], pending[0].AggregateID)
}

func TestStatusHistoryRepo_Movement(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewStatusHistoryRepo(db)
	orgA := testutil.CreateInstitution(t, db, "Alpha")
	orgB := testutil.CreateInstitution(t, db, "Beta")
	pA := testutil.CreateProduct(t, db, testutil.GTINs[0], model.StatusRejected, orgA)
	pB := testutil.CreateProduct(t, db, testutil.GTINs[1], model.StatusApproved, orgB)

	entries := []model.ProductStatusHistory{
		{ProductID: pA.ID, GtinCode: pA.GtinCode, Action: "supervised", FromStatus: model.StatusUploaded, ToStatus: model.StatusSupervised},
		{ProductID: pA.ID, GtinCode: pA.GtinCode, Action: "rejected", FromStatus: model.StatusSupervised, ToStatus: model.StatusRejected},
		{ProductID: pB.ID, GtinCode: pB.GtinCode, Action: "approved", FromStatus: model.StatusWaitApproved, ToStatus: model.StatusApproved},
	}
	require.NoError(t, repo.Create(db, entries))

	history, err := repo.FindByProductID(pA.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.ElementsMatch(t, []string{"supervised", "rejected"}, []string{history[0].Action, history[1].Action})

	now := time.Now()
	all, err := repo.GetStatusMovement(now.Add(-time.Hour), now.Add(time.Hour), nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, now.UTC().Format("2006-01-02"), all[0].Date)
	assert.Equal(t, int64(1), all[0].Supervised)
	assert.Equal(t, int64(1), all[0].Rejected)
	assert.Equal(t, int64(1), all[0].Approved)

	onlyA, err := repo.GetStatusMovement(now.Add(-time.Hour), now.Add(time.Hour), &orgA.ID)
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Zero(t, onlyA[0].Approved)
}
