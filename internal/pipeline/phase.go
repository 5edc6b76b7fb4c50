package pipeline

type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseWorkersStarting
	PhaseStreaming
	PhaseDraining
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseWorkersStarting:
		return "WORKERS_STARTING"
	case PhaseStreaming:
		return "STREAMING"
	case PhaseDraining:
		return "DRAINING"
	case PhaseComplete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}
