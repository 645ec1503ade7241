package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// IDGenerator produces an id for a step that has none.
type IDGenerator func(stepType StepType, path string) StepID

var sequenceCounter atomic.Uint64

// HashIDGenerator generates IDs based on step type and path hash
func HashIDGenerator(stepType StepType, path string) StepID {
	h := sha256.New()
	h.Write([]byte(stepType))
	h.Write([]byte(path))
	_, _ = fmt.Fprintf(h, "%d", time.Now().UnixNano())
	hash := hex.EncodeToString(h.Sum(nil))[:8]
	return StepID(fmt.Sprintf("%s-%s", stepType, hash))
}

// SequenceIDGenerator generates sequential IDs (useful for testing)
func SequenceIDGenerator(stepType StepType, _ string) StepID {
	seq := sequenceCounter.Add(1)
	return StepID(fmt.Sprintf("%s-%d", stepType, seq))
}

// ResetSequenceCounter resets the sequence counter (for testing)
func ResetSequenceCounter() {
	sequenceCounter.Store(0)
}
