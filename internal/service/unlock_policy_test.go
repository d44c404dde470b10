package service

import (
	"testing"

	"care_training_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func modulesN(n int) []model.TrainingModule {
	out := make([]model.TrainingModule, n)
	for i := range out {
		out[i].ID = uint(i + 1)
		out[i].Position = i + 1
	}
	return out
}

func progressRow(moduleID uint, status model.ProgressStatus) model.ModuleProgress {
	return model.ModuleProgress{TraineeID: 1, ModuleID: moduleID, Status: status}
}

func stateNames(states []ModuleState) []ModuleStateName {
	out := make([]ModuleStateName, len(states))
	for i, s := range states {
		out[i] = s.State
	}
	return out
}

func TestDeriveModuleStates(t *testing.T) {
	tests := []struct {
		name     string
		modules  int
		progress []model.ModuleProgress
		policy   UnlockPolicy
		want     []ModuleStateName
	}{
		{
			name:    "fresh trainee sequential",
			modules: 3,
			policy:  UnlockSequential,
			want:    []ModuleStateName{StateUnlocked, StateLocked, StateLocked},
		},
		{
			name:    "fresh trainee open",
			modules: 3,
			policy:  UnlockOpen,
			want:    []ModuleStateName{StateUnlocked, StateUnlocked, StateUnlocked},
		},
		{
			name:     "first completed unlocks second",
			modules:  3,
			progress: []model.ModuleProgress{progressRow(1, model.StatusCompleted)},
			policy:   UnlockSequential,
			want:     []ModuleStateName{StateCompleted, StateUnlocked, StateLocked},
		},
		{
			name:     "in progress does not unlock next",
			modules:  3,
			progress: []model.ModuleProgress{progressRow(1, model.StatusCompleted), progressRow(2, model.StatusInProgress)},
			policy:   UnlockSequential,
			want:     []ModuleStateName{StateCompleted, StateInProgress, StateLocked},
		},
		{
			name:     "not started row counts as no progress",
			modules:  2,
			progress: []model.ModuleProgress{progressRow(1, model.StatusNotStarted)},
			policy:   UnlockSequential,
			want:     []ModuleStateName{StateUnlocked, StateLocked},
		},
		{
			name:     "first module in progress still accessible",
			modules:  2,
			progress: []model.ModuleProgress{progressRow(1, model.StatusInProgress)},
			policy:   UnlockSequential,
			want:     []ModuleStateName{StateInProgress, StateLocked},
		},
		{
			name:    "empty module list",
			modules: 0,
			policy:  UnlockSequential,
			want:    []ModuleStateName{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states := DeriveModuleStates(modulesN(tt.modules), tt.progress, tt.policy)
			assert.Equal(t, tt.want, stateNames(states))
			for _, s := range states {
				assert.Equal(t, s.State != StateLocked, s.Unlocked)
			}
		})
	}
}

func TestDeriveModuleStatesSequentialProperty(t *testing.T) {
	// 任意完成组合下：第一个模块总可访问，K>1 解锁当且仅当 K-1 已完成
	const n = 6
	for mask := 0; mask < 1<<n; mask++ {
		var progress []model.ModuleProgress
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				progress = append(progress, progressRow(uint(i+1), model.StatusCompleted))
			}
		}
		states := DeriveModuleStates(modulesN(n), progress, UnlockSequential)
		assert.True(t, states[0].Unlocked)
		for k := 1; k < n; k++ {
			if mask&(1<<k) != 0 {
				continue
			}
			prevDone := mask&(1<<(k-1)) != 0
			assert.Equal(t, prevDone, states[k].Unlocked, "mask=%b k=%d", mask, k)
		}
	}
}

func TestPolicyHolder(t *testing.T) {
	h := NewPolicyHolder(UnlockSequential)
	assert.Equal(t, UnlockSequential, h.Get())
	h.Set(UnlockOpen)
	assert.Equal(t, UnlockOpen, h.Get())
}
