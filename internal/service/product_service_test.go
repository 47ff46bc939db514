package service

import (
	"context"
	"errors"
	"testing"

	"eie-registry/internal/model"
	"eie-registry/internal/repository"
	"eie-registry/internal/testutil"
	"eie-registry/internal/workflow"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type productFixture struct {
	db       *gorm.DB
	svc      ProductService
	producer *model.Institution
	other    *model.Institution
	l1       Actor
	l2       Actor
	owner    Actor
}

func newProductFixture(t *testing.T) *productFixture {
	t.Helper()
	db := testutil.NewDB(t)
	invitalia := testutil.CreateInstitution(t, db, "Invitalia")
	producer := testutil.CreateInstitution(t, db, "Elettro Spa")
	other := testutil.CreateInstitution(t, db, "Altro Srl")

	svc := NewProductService(
		repository.NewProductRepo(db),
		repository.NewStatusHistoryRepo(db),
		repository.NewOutboxRepo(db),
		db, nil, zerolog.Nop(),
	)
	return &productFixture{
		db:       db,
		svc:      svc,
		producer: producer,
		other:    other,
		l1:       ActorFromUser(testutil.CreateUser(t, db, "l1@invitalia.it", model.RoleInvitaliaL1, invitalia)),
		l2:       ActorFromUser(testutil.CreateUser(t, db, "l2@invitalia.it", model.RoleInvitaliaL2, invitalia)),
		owner:    ActorFromUser(testutil.CreateUser(t, db, "op@elettro.it", model.RoleProducer, producer)),
	}
}

func (f *productFixture) status(t *testing.T, gtin string) model.ProductStatus {
	t.Helper()
	p, err := repository.NewProductRepo(f.db).FindByGTIN(gtin)
	require.NoError(t, err)
	return p.Status
}

func TestChangeStatus_SupervisedMixed(t *testing.T) {
	f := newProductFixture(t)
	testutil.CreateProduct(t, f.db, testutil.GTINs[0], model.StatusUploaded, f.producer)
	testutil.CreateProduct(t, f.db, testutil.GTINs[1], model.StatusWaitApproved, f.producer)

	res, err := f.svc.ChangeStatus(StatusChangeRequest{
		Action:     "supervised",
		GtinCodes:  []string{testutil.GTINs[0], testutil.GTINs[1], testutil.GTINs[0]},
		Motivation: "  etichetta da verificare ",
	}, f.l1)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, model.StatusSupervised, res.Status)
	assert.Equal(t, "invitalia.supervised.mixed", res.MessageKey)
	assert.Equal(t, model.StatusSupervised, f.status(t, testutil.GTINs[0]))

	detail, err := f.svc.Get(testutil.GTINs[1], f.l1)
	require.NoError(t, err)
	require.Len(t, detail.History, 1)
	assert.Equal(t, model.StatusWaitApproved, detail.History[0].FromStatus)
	assert.Equal(t, "etichetta da verificare", detail.History[0].Motivation)
	assert.Equal(t, model.RoleInvitaliaL1, detail.History[0].ActorRole)
	assert.Equal(t, []workflow.Action{workflow.ActionWaitApproved, workflow.ActionRejected}, detail.AvailableActions)

	pending, err := repository.NewOutboxRepo(f.db).GetPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestChangeStatus_ApproveUniform(t *testing.T) {
	f := newProductFixture(t)
	testutil.CreateProduct(t, f.db, testutil.GTINs[0], model.StatusWaitApproved, f.producer)
	testutil.CreateProduct(t, f.db, testutil.GTINs[1], model.StatusWaitApproved, f.other)

	res, err := f.svc.ChangeStatus(StatusChangeRequest{
		Action:        "approved",
		GtinCodes:     []string{testutil.GTINs[0], testutil.GTINs[1]},
		CurrentStatus: string(model.StatusWaitApproved),
	}, f.l2)
	require.NoError(t, err)
	assert.Equal(t, "invitalia_admin.approved", res.MessageKey)
	assert.Equal(t, model.StatusApproved, f.status(t, testutil.GTINs[1]))
}

func TestChangeStatus_AllOrNothing(t *testing.T) {
	f := newProductFixture(t)
	testutil.CreateProduct(t, f.db, testutil.GTINs[0], model.StatusUploaded, f.producer)
	testutil.CreateProduct(t, f.db, testutil.GTINs[1], model.StatusApproved, f.producer)

	_, err := f.svc.ChangeStatus(StatusChangeRequest{
		Action:     "rejected",
		GtinCodes:  []string{testutil.GTINs[0], testutil.GTINs[1], testutil.GTINs[5]},
		Motivation: "dati errati",
	}, f.l1)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, []string{testutil.GTINs[1], testutil.GTINs[5]}, conflict.GtinCodes)

	assert.Equal(t, model.StatusUploaded, f.status(t, testutil.GTINs[0]))
	pending, err := repository.NewOutboxRepo(f.db).GetPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestChangeStatus_CurrentStatusMismatch(t *testing.T) {
	f := newProductFixture(t)
	testutil.CreateProduct(t, f.db, testutil.GTINs[0], model.StatusUploaded, f.producer)
	testutil.CreateProduct(t, f.db, testutil.GTINs[1], model.StatusSupervised, f.producer)

	_, err := f.svc.ChangeStatus(StatusChangeRequest{
		Action:        "wait-approved",
		GtinCodes:     []string{testutil.GTINs[0], testutil.GTINs[1]},
		CurrentStatus: string(model.StatusUploaded),
	}, f.l1)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []string{testutil.GTINs[1]}, conflict.GtinCodes)
}

func TestChangeStatus_Refusals(t *testing.T) {
	f := newProductFixture(t)
	testutil.CreateProduct(t, f.db, testutil.GTINs[0], model.StatusRejected, f.producer)
	long := make([]byte, 201)
	for i := range long {
		long[i] = 'x'
	}

	cases := []struct {
		name  string
		req   StatusChangeRequest
		actor Actor
		want  error
	}{
		{"unknown action", StatusChangeRequest{Action: "deleted", GtinCodes: []string{testutil.GTINs[0]}}, f.l2, workflow.ErrUnknownAction},
		{"l1 restores", StatusChangeRequest{Action: "restored", GtinCodes: []string{testutil.GTINs[0]}, Motivation: "ok"}, f.l1, workflow.ErrForbiddenAction},
		{"producer reviews", StatusChangeRequest{Action: "supervised", GtinCodes: []string{testutil.GTINs[0]}, Motivation: "ok"}, f.owner, workflow.ErrForbiddenAction},
		{"missing motivation", StatusChangeRequest{Action: "restored", GtinCodes: []string{testutil.GTINs[0]}}, f.l2, workflow.ErrMotivationRequired},
		{"long motivation", StatusChangeRequest{Action: "restored", GtinCodes: []string{testutil.GTINs[0]}, Motivation: string(long)}, f.l2, ErrMotivationTooLong},
		{"no products", StatusChangeRequest{Action: "approved", GtinCodes: []string{" "}}, f.l2, ErrNoProducts},
		{"bad current status", StatusChangeRequest{Action: "approved", GtinCodes: []string{testutil.GTINs[0]}, CurrentStatus: "DRAFT"}, f.l2, ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.ChangeStatus(tc.req, tc.actor)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, model.StatusRejected, f.status(t, testutil.GTINs[0]))
}

func TestChangeStatus_Restore(t *testing.T) {
	f := newProductFixture(t)
	testutil.CreateProduct(t, f.db, testutil.GTINs[0], model.StatusRejected, f.producer)

	res, err := f.svc.ChangeStatus(StatusChangeRequest{
		Action:     "restored",
		GtinCodes:  []string{testutil.GTINs[0]},
		Motivation: "documentazione integrata",
	}, f.l2)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUploaded, res.Status)
	assert.Equal(t, "invitalia_admin.restored", res.MessageKey)
}

func TestProductList_ProducerScope(t *testing.T) {
	f := newProductFixture(t)
	testutil.CreateProduct(t, f.db, testutil.GTINs[0], model.StatusUploaded, f.producer)
	testutil.CreateProduct(t, f.db, testutil.GTINs[1], model.StatusUploaded, f.other)

	// the producer cannot widen its scope through the filter
	page, err := f.svc.List(repository.ProductFilter{OrganizationID: &f.other.ID}, f.owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, testutil.GTINs[0], page.Content[0].GtinCode)
	assert.Equal(t, repository.DefaultPageSize, page.PageSize)

	page, err = f.svc.List(repository.ProductFilter{}, f.l1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.Equal(t, 1, page.TotalPages)

	_, err = f.svc.Get(testutil.GTINs[1], f.owner)
	assert.ErrorIs(t, err, ErrProductNotFound)

	detail, err := f.svc.Get(testutil.GTINs[0], f.owner)
	require.NoError(t, err)
	assert.Empty(t, detail.AvailableActions)
}
