package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/compliance-tracker/internal/domain"
	apperrors "github.com/spec-kit/compliance-tracker/pkg/util"
)

func newGroupFixture() (*GroupService, *fakeGroupRepo, *fakeTaskRepo) {
	groups := newFakeGroupRepo()
	tasks := newFakeTaskRepo()
	return NewGroupService(groups, tasks, zap.NewNop()), groups, tasks
}

func TestGroupCreateValidation(t *testing.T) {
	svc, _, _ := newGroupFixture()

	_, err := svc.Create(context.Background(), GroupInput{Name: "   "})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestGroupDeleteDetachesTasks(t *testing.T) {
	svc, _, tasks := newGroupFixture()
	ctx := context.Background()

	group, err := svc.Create(ctx, GroupInput{Name: "Q3 audit"})
	require.NoError(t, err)

	task := &domain.Task{Title: "Collect evidence", GroupID: &group.ID}
	require.NoError(t, tasks.Create(ctx, task))

	require.NoError(t, svc.Delete(ctx, group.ID.Hex()))

	detached, err := tasks.GetByID(ctx, task.ID.Hex())
	require.NoError(t, err)
	assert.Nil(t, detached.GroupID)
}
