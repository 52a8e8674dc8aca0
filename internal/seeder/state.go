package seeder

// State is a step of a seeding run.
type State int

const (
	StateIdle State = iota
	StateTokenAcquired
	StateSchemaSampled
	StateDataGenerated
	StateDataParsed
	StateBatchSubmitted
	StateSucceeded
	StateFailed
)

var stateNames = [...]string{
	StateIdle:           "Idle",
	StateTokenAcquired:  "TokenAcquired",
	StateSchemaSampled:  "SchemaSampled",
	StateDataGenerated:  "DataGenerated",
	StateDataParsed:     "DataParsed",
	StateBatchSubmitted: "BatchSubmitted",
	StateSucceeded:      "Succeeded",
	StateFailed:         "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}
