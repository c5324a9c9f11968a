package app

import (
	"context"
	"testing"

	"labflow/domain/audit"
	"labflow/domain/core"
	"labflow/domain/experiment"
	"labflow/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testActor = Actor{Name: "Dr. Kim", Role: "PI", IP: "10.0.0.1"}

func newTestExperimentService() (*ExperimentService, *fakeExperimentRepo, *fakeAuditRepo) {
	repo := newFakeExperimentRepo()
	audits := &fakeAuditRepo{}
	return NewExperimentService(repo, audits), repo, audits
}

func createTestExperiment(t *testing.T, s *ExperimentService) *experiment.Experiment {
	t.Helper()
	e, err := s.Create(context.Background(), core.ProjectID("proj-1"), "Run 1",
		[]experiment.Parameter{{Name: "Temperature", Unit: "C"}},
		[]experiment.DataRow{{"Temperature": 20.0}}, nil, testActor)
	require.NoError(t, err)
	return e
}

func TestCreateExperimentAuditsAction(t *testing.T) {
	s, _, audits := newTestExperimentService()
	e := createTestExperiment(t, s)

	assert.Equal(t, 1, e.Version)
	require.Len(t, audits.entries, 1)
	assert.Equal(t, audit.ActionCreate, audits.entries[0].Action)
	assert.Equal(t, "Dr. Kim", audits.entries[0].UserName)
	assert.True(t, audits.entries[0].Verify())
}

func TestCreateExperimentRequiresName(t *testing.T) {
	s, _, _ := newTestExperimentService()
	_, err := s.Create(context.Background(), core.ProjectID("proj-1"), "", nil, nil, nil, testActor)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestUpdateSnapshotsPreviousVersion(t *testing.T) {
	s, repo, _ := newTestExperimentService()
	e := createTestExperiment(t, s)

	newName := "Run 1 revised"
	updated, err := s.Update(context.Background(), e.ID, ExperimentUpdate{
		Name:   &newName,
		Data:   []experiment.DataRow{{"Temperature": 22.0}},
		Reason: "corrected transcription error",
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "Run 1 revised", updated.Name)

	versions, err := s.Versions(context.Background(), e.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].VersionNumber)
	assert.Equal(t, "Run 1", versions[0].Name)
	assert.Equal(t, "corrected transcription error", versions[0].ChangeReason)

	stored, _ := repo.GetByID(context.Background(), e.ID)
	assert.Equal(t, 22.0, stored.Data[0]["Temperature"])
}

func TestUpdateRequiresReason(t *testing.T) {
	s, _, _ := newTestExperimentService()
	e := createTestExperiment(t, s)

	_, err := s.Update(context.Background(), e.ID, ExperimentUpdate{}, testActor)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestUpdateRejectedWhenSigned(t *testing.T) {
	s, _, _ := newTestExperimentService()
	e := createTestExperiment(t, s)

	_, err := s.Sign(context.Background(), e.ID, "Dr. Kim", "", testActor)
	require.NoError(t, err)

	newName := "tampered"
	_, err = s.Update(context.Background(), e.ID, ExperimentUpdate{Name: &newName, Reason: "edit"}, testActor)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConflict, errors.GetCode(err))
}

func TestRestoreRollsBackContentAndBumpsVersion(t *testing.T) {
	s, _, audits := newTestExperimentService()
	e := createTestExperiment(t, s)

	newName := "Run 1 v2"
	_, err := s.Update(context.Background(), e.ID, ExperimentUpdate{Name: &newName, Reason: "rename"}, testActor)
	require.NoError(t, err)

	restored, err := s.Restore(context.Background(), e.ID, 1, testActor)
	require.NoError(t, err)

	assert.Equal(t, "Run 1", restored.Name)
	assert.Equal(t, 3, restored.Version, "restore moves forward, not backward")

	versions, _ := s.Versions(context.Background(), e.ID)
	assert.Len(t, versions, 2, "restore snapshots the pre-restore state")

	last := audits.entries[len(audits.entries)-1]
	assert.Equal(t, audit.ActionRestore, last.Action)
}

func TestSignAndVerifySignature(t *testing.T) {
	s, repo, _ := newTestExperimentService()
	e := createTestExperiment(t, s)

	signed, err := s.Sign(context.Background(), e.ID, "Dr. Kim", "Dr. Osei", testActor)
	require.NoError(t, err)
	assert.True(t, signed.Signed)
	assert.Equal(t, "Dr. Osei", signed.WitnessName)
	assert.False(t, signed.SignatureHash.IsEmpty())

	ok, err := s.VerifySignature(context.Background(), e.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Tamper directly with stored content; verification must fail
	stored, _ := repo.GetByID(context.Background(), e.ID)
	stored.Result = "altered"
	require.NoError(t, repo.Update(context.Background(), stored))

	ok, err = s.VerifySignature(context.Background(), e.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSignTwiceRejected(t *testing.T) {
	s, _, _ := newTestExperimentService()
	e := createTestExperiment(t, s)

	_, err := s.Sign(context.Background(), e.ID, "Dr. Kim", "", testActor)
	require.NoError(t, err)
	_, err = s.Sign(context.Background(), e.ID, "Dr. Lee", "", testActor)
	assert.Error(t, err)
}

func TestDeleteRequiresReason(t *testing.T) {
	s, _, _ := newTestExperimentService()
	e := createTestExperiment(t, s)

	err := s.Delete(context.Background(), e.ID, "", testActor)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	require.NoError(t, s.Delete(context.Background(), e.ID, "duplicate entry", testActor))
	_, err = s.Get(context.Background(), e.ID)
	assert.Error(t, err)
}

func TestUpdateStatusStampsCompletedAt(t *testing.T) {
	s, _, _ := newTestExperimentService()
	e := createTestExperiment(t, s)

	success := true
	updated, err := s.UpdateStatus(context.Background(), e.ID, StatusUpdate{
		Status:  experiment.StatusCompleted,
		Success: &success,
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, experiment.StatusCompleted, updated.Status)
	assert.False(t, updated.CompletedAt.IsZero())
}

func TestSuccessRate(t *testing.T) {
	s, _, _ := newTestExperimentService()
	projectID := core.ProjectID("proj-1")

	outcomes := []struct {
		success  *bool
		category experiment.FailureCategory
	}{
		{boolPtr(true), ""},
		{boolPtr(true), ""},
		{boolPtr(false), experiment.FailureContamination},
		{nil, ""},
	}
	for i, o := range outcomes {
		e, err := s.Create(context.Background(), projectID, "Run", nil, nil, nil, testActor)
		require.NoError(t, err, i)
		_, err = s.UpdateStatus(context.Background(), e.ID, StatusUpdate{
			Status:          experiment.StatusCompleted,
			Success:         o.success,
			FailureCategory: o.category,
		}, testActor)
		require.NoError(t, err)
	}

	rate, err := s.SuccessRate(context.Background(), projectID)
	require.NoError(t, err)

	assert.Equal(t, 4, rate.Total)
	assert.Equal(t, 2, rate.Succeeded)
	assert.Equal(t, 1, rate.Failed)
	assert.Equal(t, 1, rate.Pending)
	assert.InDelta(t, 2.0/3.0, rate.Rate, 1e-9)
	assert.Equal(t, 1, rate.ByCategory["contamination"])
}

func TestCommentsLifecycle(t *testing.T) {
	s, _, _ := newTestExperimentService()
	e := createTestExperiment(t, s)

	c := &experiment.Comment{
		ExperimentID: e.ID,
		Content:      "Check calibration on row 3",
		AuthorName:   "Dr. Osei",
	}
	require.NoError(t, s.AddComment(context.Background(), c))
	assert.Equal(t, "general", c.CommentType)
	assert.False(t, c.ID.IsEmpty())

	comments, err := s.Comments(context.Background(), e.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	require.NoError(t, s.ResolveComment(context.Background(), c.ID))
	comments, _ = s.Comments(context.Background(), e.ID)
	assert.True(t, comments[0].IsResolved)

	require.NoError(t, s.DeleteComment(context.Background(), c.ID))
	comments, _ = s.Comments(context.Background(), e.ID)
	assert.Empty(t, comments)
}

func boolPtr(b bool) *bool { return &b }
