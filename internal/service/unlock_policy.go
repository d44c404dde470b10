package service

import (
	"care_training_backend/internal/model"
	"care_training_backend/internal/util"
	"sync/atomic"
)

type UnlockPolicy string

const (
	UnlockSequential UnlockPolicy = util.UnlockSequential
	UnlockOpen       UnlockPolicy = util.UnlockOpen
)

type ModuleStateName string

const (
	StateLocked     ModuleStateName = "locked"
	StateUnlocked   ModuleStateName = "unlocked"
	StateInProgress ModuleStateName = "in_progress"
	StateCompleted  ModuleStateName = "completed"
)

type ModuleState struct {
	ModuleID uint            `json:"moduleId"`
	Position int             `json:"position"`
	State    ModuleStateName `json:"state"`
	Unlocked bool            `json:"unlocked"`
}

// DeriveModuleStates modules 需按 (position, id) 排好序
func DeriveModuleStates(modules []model.TrainingModule, progress []model.ModuleProgress, policy UnlockPolicy) []ModuleState {
	byModule := make(map[uint]model.ProgressStatus, len(progress))
	for _, p := range progress {
		byModule[p.ModuleID] = p.Status
	}

	states := make([]ModuleState, 0, len(modules))
	prevCompleted := false
	for i, m := range modules {
		status := byModule[m.ID]

		var state ModuleStateName
		switch {
		case status == model.StatusCompleted:
			state = StateCompleted
		case status == model.StatusInProgress:
			state = StateInProgress
		case policy == UnlockOpen, i == 0, prevCompleted:
			state = StateUnlocked
		default:
			state = StateLocked
		}

		states = append(states, ModuleState{
			ModuleID: m.ID,
			Position: m.Position,
			State:    state,
			Unlocked: state != StateLocked,
		})
		prevCompleted = status == model.StatusCompleted
	}
	return states
}

// PolicyHolder 配置热更新时替换解锁策略
type PolicyHolder struct {
	v atomic.Value
}

func NewPolicyHolder(p UnlockPolicy) *PolicyHolder {
	h := &PolicyHolder{}
	h.Set(p)
	return h
}

func (h *PolicyHolder) Get() UnlockPolicy {
	return h.v.Load().(UnlockPolicy)
}

func (h *PolicyHolder) Set(p UnlockPolicy) {
	h.v.Store(p)
}
