package analysisapi

import (
	"time"

	"github.com/NotCoffee418/ignyte_sensor/pkg/pipeline"
	"github.com/google/uuid"
)

// Envelope is one published pipeline run.
type Envelope struct {
	SnapshotID  uuid.UUID       `json:"snapshotId"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Result      pipeline.Result `json:"result"`
}
