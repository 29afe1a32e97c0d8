package scheme

type Status string

const (
	StatusDraft                  Status = "draft"
	StatusSubmitted              Status = "submitted"
	StatusSteps1To4Approved      Status = "steps_1_4_approved"
	StatusPSORequested           Status = "pso_requested"
	StatusPSOApproved            Status = "pso_approved"
	StatusSubscribersAdded       Status = "subscribers_added"
	StatusFinalAgreementUploaded Status = "final_agreement_uploaded"
	StatusLive                   Status = "live"
	StatusCompleted              Status = "completed"
	StatusRejected               Status = "rejected"
	StatusTerminated             Status = "terminated"
)

// Statuses lists every status in canonical order, side branches last.
var Statuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusSteps1To4Approved,
	StatusPSORequested,
	StatusPSOApproved,
	StatusSubscribersAdded,
	StatusFinalAgreementUploaded,
	StatusLive,
	StatusCompleted,
	StatusRejected,
	StatusTerminated,
}

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition may leave s.
// rejected counts as terminal here even though submit can revive it.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusTerminated || s == StatusRejected
}

// HasPSO reports whether a scheme in status s carries a PSO number.
func (s Status) HasPSO() bool {
	switch s {
	case StatusPSOApproved, StatusSubscribersAdded, StatusFinalAgreementUploaded,
		StatusLive, StatusCompleted, StatusTerminated:
		return true
	}
	return false
}

// Op names a lifecycle operation.
type Op string

const (
	OpSubmit          Op = "submit_for_review"
	OpApproveSteps    Op = "approve_steps_1_4"
	OpRequestPSO      Op = "request_pso"
	OpApprovePSO      Op = "approve_pso"
	OpReject          Op = "reject"
	OpAddSubscribers  Op = "add_subscribers"
	OpUploadAgreement Op = "upload_final_agreement"
	OpActivate        Op = "activate"
	OpPublish         Op = "publish"
	OpTerminate       Op = "terminate"
	OpComplete        Op = "complete"
	OpDelete          Op = "delete"
	OpUpdateDraft     Op = "update_draft"
	OpRecordProgress  Op = "record_progress"
)

// transitions maps an operation to the statuses it may start from.
var transitions = map[Op][]Status{
	OpSubmit:          {StatusDraft, StatusRejected},
	OpApproveSteps:    {StatusSubmitted},
	OpRequestPSO:      {StatusSteps1To4Approved},
	OpApprovePSO:      {StatusPSORequested},
	OpAddSubscribers:  {StatusPSOApproved},
	OpUploadAgreement: {StatusSubscribersAdded},
	OpActivate:        {StatusFinalAgreementUploaded},
	OpPublish:         {StatusLive},
	OpTerminate:       {StatusLive, StatusSubscribersAdded, StatusFinalAgreementUploaded},
	OpComplete:        {StatusLive},
	OpDelete:          {StatusDraft, StatusRejected},
	OpUpdateDraft:     {StatusDraft, StatusRejected},
	OpRecordProgress:  {StatusLive},
	OpReject: {
		StatusDraft,
		StatusSubmitted,
		StatusSteps1To4Approved,
		StatusPSORequested,
		StatusPSOApproved,
		StatusSubscribersAdded,
		StatusFinalAgreementUploaded,
		StatusLive,
	},
}

// StateMachine enforces which operation may run from which status.
type StateMachine struct {
	allowed map[Op][]Status
}

// NewStateMachine returns the canonical machine. With directPSO the admin may
// approve a PSO straight from submitted, skipping steps 1-4 and the request.
func NewStateMachine(directPSO bool) *StateMachine {
	allowed := make(map[Op][]Status, len(transitions))
	for op, from := range transitions {
		allowed[op] = append([]Status(nil), from...)
	}
	if directPSO {
		allowed[OpApprovePSO] = append(allowed[OpApprovePSO], StatusSubmitted)
	}
	return &StateMachine{allowed: allowed}
}

// CanApply checks if op is permitted while the scheme is in status from.
func (sm *StateMachine) CanApply(op Op, from Status) bool {
	for _, s := range sm.allowed[op] {
		if s == from {
			return true
		}
	}
	return false
}

// AllowedFrom returns the statuses op may start from.
func (sm *StateMachine) AllowedFrom(op Op) []Status {
	return append([]Status(nil), sm.allowed[op]...)
}

// AvailableOps lists the operations applicable in status s, in a stable order.
func (sm *StateMachine) AvailableOps(s Status) []Op {
	order := []Op{
		OpUpdateDraft, OpSubmit, OpApproveSteps, OpRequestPSO, OpApprovePSO,
		OpAddSubscribers, OpUploadAgreement, OpActivate, OpPublish,
		OpComplete, OpTerminate, OpReject, OpDelete,
	}
	out := make([]Op, 0, 4)
	for _, op := range order {
		if sm.CanApply(op, s) {
			out = append(out, op)
		}
	}
	return out
}
