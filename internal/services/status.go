package services

import (
	"sync"
	"time"
)

// StepStatus is the lifecycle of one onboarding step as surfaced by the
// status endpoint.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
	StepSkipped    StepStatus = "skipped"
)

// Onboarding steps in execution order.
const (
	StepMerchantRecord = "create_merchant_record"
	StepCreateFolders  = "create_folders"
	StepProducts       = "process_products"
	StepDocuments      = "convert_documents"
	StepConfig         = "generate_config"
)

var orderedSteps = []string{
	StepMerchantRecord,
	StepCreateFolders,
	StepProducts,
	StepDocuments,
	StepConfig,
}

// StepState is the reported state of one step for one merchant.
type StepState struct {
	Step      string     `json:"step"`
	Status    StepStatus `json:"status"`
	Message   string     `json:"message,omitempty"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunStatus is the full status document for one merchant's latest run.
type RunStatus struct {
	MerchantID string      `json:"merchant_id"`
	JobID      string      `json:"job_id"`
	Running    bool        `json:"running"`
	Steps      []StepState `json:"steps"`
	StartedAt  time.Time   `json:"started_at"`
}

// StatusTracker keeps the latest run status per merchant in memory. A new run
// resets the merchant's steps to pending; readers always get a copy.
type StatusTracker struct {
	mu   sync.Mutex
	runs map[string]*RunStatus
}

func NewStatusTracker() *StatusTracker {
	return &StatusTracker{runs: map[string]*RunStatus{}}
}

// Begin resets the merchant's status for a fresh run.
func (t *StatusTracker) Begin(merchantID, jobID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now().UTC()
	steps := make([]StepState, len(orderedSteps))
	for i, step := range orderedSteps {
		steps[i] = StepState{Step: step, Status: StepPending, UpdatedAt: now}
	}
	t.runs[merchantID] = &RunStatus{
		MerchantID: merchantID,
		JobID:      jobID,
		Running:    true,
		Steps:      steps,
		StartedAt:  now,
	}
}

// Update records a step transition. Unknown merchants and steps are ignored.
func (t *StatusTracker) Update(merchantID, step string, status StepStatus, message, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	run, ok := t.runs[merchantID]
	if !ok {
		return
	}
	for i := range run.Steps {
		if run.Steps[i].Step != step {
			continue
		}
		run.Steps[i].Status = status
		run.Steps[i].Message = message
		run.Steps[i].Error = errMsg
		run.Steps[i].UpdatedAt = time.Now().UTC()
		return
	}
}

// Finish marks the merchant's run as no longer running.
func (t *StatusTracker) Finish(merchantID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if run, ok := t.runs[merchantID]; ok {
		run.Running = false
	}
}

// Get returns a copy of the merchant's latest run status, or nil when the
// merchant has never run.
func (t *StatusTracker) Get(merchantID string) *RunStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	run, ok := t.runs[merchantID]
	if !ok {
		return nil
	}
	out := *run
	out.Steps = make([]StepState, len(run.Steps))
	copy(out.Steps, run.Steps)
	return &out
}
