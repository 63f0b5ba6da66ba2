package updater

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ranjith-H7/backend/internal/common"
)

func TestSchedulerRejectsInvalidSchedule(t *testing.T) {
	svc := newTestService(newMockStorage())
	sched := NewScheduler(svc, common.NewSilentLogger())

	err := sched.Start("not a cron expression")
	assert.Error(t, err)
}

func TestSchedulerStartStop(t *testing.T) {
	svc := newTestService(newMockStorage())
	sched := NewScheduler(svc, common.NewSilentLogger())

	require.NoError(t, sched.Start("*/10 * * * *"))
	sched.Stop()
}
