package counseling_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/counseling"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/session"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/user"
	appfs "github.com/jurnalspendapol-design/rubikon-mobile/fs"
	emailsvc "github.com/jurnalspendapol-design/rubikon-mobile/services/email"
	"github.com/jurnalspendapol-design/rubikon-mobile/storage/cache"
	inmemdb "github.com/jurnalspendapol-design/rubikon-mobile/storage/database/inmem"
	"github.com/jurnalspendapol-design/rubikon-mobile/storage/repos"
	testutil "github.com/jurnalspendapol-design/rubikon-mobile/tests"
)

type fixture struct {
	svc    *counseling.Service
	mailer *emailsvc.ConsoleServiceMock
	locks  *session.Manager
	budi   user.User
	siti   user.User
}

func setup(t *testing.T) fixture {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf, logger)

	db := inmemdb.Open()
	users := repos.NewUserRepository(db)
	mailer := emailsvc.NewConsoleServiceMock(logger, conf)
	locks := session.NewManager(cache.NewMemoryStore(), conf)
	return fixture{
		svc:    counseling.NewService(repos.NewCounselingRepository(db), testutil.NewValidator(conf), mailer, logger, locks, conf),
		mailer: mailer,
		locks:  locks,
		budi:   testutil.CreateUser(t, users, "Budi", "budi@siswa.com", "rahasia1", user.RoleStudent),
		siti:   testutil.CreateUser(t, users, "Siti", "siti@siswa.com", "rahasia2", user.RoleStudent),
	}
}

func individual(name string) counseling.Submission {
	f := counseling.NewIndividualForm(name)
	f.Hobby = "Menggambar"
	f.ToggleReason(counseling.Reasons[1])
	f.Story = "Saya sering diejek di kelas."
	f.PrivacyAgreed = true
	return counseling.Submission{Type: counseling.ModeIndividual, Individual: &f}
}

func group(name string) counseling.Submission {
	f := counseling.NewGroupForm(name)
	f.GroupName = "Sahabat 8B"
	_ = f.ToggleTopic("Bestie Goals")
	f.WhyInterested = "Ingin lebih akrab."
	return counseling.Submission{Type: counseling.ModeGroup, Group: &f}
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)

	req, err := fx.svc.Submit(ctx, fx.budi.ID, individual("  Budi "))
	require.NoError(t, err)
	assert.NotZero(t, req.ID)
	assert.Equal(t, counseling.StatusPending, req.Status)
	assert.Equal(t, "Menunggu", req.StatusLabel)
	assert.Equal(t, counseling.Reasons[1], req.ProblemType)
	assert.Contains(t, req.FormData, `"nama":"Budi"`)
	assert.Empty(t, req.Actions)

	req, err = fx.svc.Submit(ctx, fx.siti.ID, group("Siti"))
	require.NoError(t, err)
	assert.Equal(t, counseling.GroupPreferredTime, req.PreferredTime)

	all, err := fx.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Siti", all[0].StudentName, "newest first")
	assert.Equal(t, []string{counseling.ActionAccept, counseling.ActionReject}, all[0].Actions)

	mine, err := fx.svc.ListForStudent(ctx, fx.budi.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, counseling.ModeIndividual, mine[0].Type)
}

func TestService_Submit_invalid(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)

	sub := individual("Budi")
	sub.Individual.PrivacyAgreed = false
	_, err := fx.svc.Submit(ctx, fx.budi.ID, sub)
	assert.Equal(t, counseling.ErrPrivacyNotAgreed, err)

	sub = individual("Budi")
	sub.Individual.Hobby = " "
	_, err = fx.svc.Submit(ctx, fx.budi.ID, sub)
	assert.Error(t, err)

	// the answers of the other mode are not checked
	sub = group("Budi")
	broken := counseling.NewIndividualForm("")
	sub.Individual = &broken
	_, err = fx.svc.Submit(ctx, fx.budi.ID, sub)
	assert.NoError(t, err)

	reqs, err := fx.svc.ListForStudent(ctx, fx.budi.ID)
	require.NoError(t, err)
	assert.Len(t, reqs, 1)
}

func TestService_Submit_busy(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)

	ok, err := fx.locks.Lock(ctx, fmt.Sprintf("submit:counseling:%d", fx.budi.ID), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = fx.svc.Submit(ctx, fx.budi.ID, individual("Budi"))
	assert.Equal(t, core.ErrBusy, errors.Cause(err))
}

func TestService_review(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)

	first, err := fx.svc.Submit(ctx, fx.budi.ID, individual("Budi"))
	require.NoError(t, err)
	second, err := fx.svc.Submit(ctx, fx.siti.ID, group("Siti"))
	require.NoError(t, err)

	accepted, err := fx.svc.Accept(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, counseling.StatusAccepted, accepted.Status)
	assert.Equal(t, "Disetujui", accepted.StatusLabel)
	assert.Empty(t, accepted.Actions)

	rejected, err := fx.svc.Reject(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, counseling.StatusRejected, rejected.Status)

	_, err = fx.svc.Reject(ctx, first.ID)
	assert.Equal(t, core.ErrInvalidTransition, err)

	_, err = fx.svc.Accept(ctx, 999)
	assert.Equal(t, counseling.ErrNotFound, errors.Cause(err))

	msgs := fx.mailer.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "budi@siswa.com", msgs[0].To[0].Address)
	assert.Contains(t, msgs[0].TextContent, "disetujui")
	assert.Equal(t, "siti@siswa.com", msgs[1].To[0].Address)
	assert.Contains(t, msgs[1].TextContent, "ditolak")
}

func TestService_Confirm(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)

	req, err := fx.svc.Submit(ctx, fx.budi.ID, individual("Budi"))
	require.NoError(t, err)

	_, err = fx.svc.Confirm(ctx, fx.budi.ID, req.ID)
	assert.Equal(t, core.ErrInvalidTransition, err, "pending requests cannot be confirmed")

	_, err = fx.svc.Accept(ctx, req.ID)
	require.NoError(t, err)

	mine, err := fx.svc.ListForStudent(ctx, fx.budi.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{counseling.ActionConfirm}, mine[0].Actions)
	assert.NotEmpty(t, mine[0].StatusNote)

	_, err = fx.svc.Confirm(ctx, fx.siti.ID, req.ID)
	assert.Equal(t, counseling.ErrNotFound, err, "only the owner can confirm")

	confirmed, err := fx.svc.Confirm(ctx, fx.budi.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, counseling.StatusConfirmed, confirmed.Status)
	assert.Equal(t, "Dikonfirmasi", confirmed.StatusLabel)
	assert.Empty(t, confirmed.Actions)

	_, err = fx.svc.Confirm(ctx, fx.budi.ID, req.ID)
	assert.Equal(t, core.ErrInvalidTransition, err)
}
