package ingestion

// RunState is the lifecycle of a single ingestion run. Transitions are strictly
// forward: Pending → Extracting → Embedding → Persisting → Completed. A failure
// anywhere before Completed moves the run to Failed; the storage transaction
// boundary guarantees previously stored rows survive any failure before commit.
type RunState string

const (
	StatePending    RunState = "pending"
	StateExtracting RunState = "extracting"
	StateEmbedding  RunState = "embedding"
	StatePersisting RunState = "persisting"
	StateCompleted  RunState = "completed"
	StateFailed     RunState = "failed"
)

// StateFunc receives run state transitions. Coordinators call it on every
// transition; a nil StateFunc is ignored.
type StateFunc func(RunState)

// Notify invokes f if it is set.
func (f StateFunc) Notify(s RunState) {
	if f != nil {
		f(s)
	}
}

// IngestConfig tunes the document pipeline.
type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
	EmbedBatch   int
}

func (c *IngestConfig) withDefaults() IngestConfig {
	out := IngestConfig{ChunkSize: DefaultChunkSize, ChunkOverlap: DefaultChunkOverlap, EmbedBatch: DefaultEmbedBatchSize}
	if c == nil {
		return out
	}
	if c.ChunkSize > 0 {
		out.ChunkSize = c.ChunkSize
	}
	if c.ChunkOverlap >= 0 {
		out.ChunkOverlap = c.ChunkOverlap
	}
	if c.EmbedBatch > 0 {
		out.EmbedBatch = c.EmbedBatch
	}
	return out
}
