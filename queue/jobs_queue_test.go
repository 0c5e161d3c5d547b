package queue

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The processing list stores the JSON exactly as dequeued; removal by value
// only works if re-marshaling an unmarshaled job reproduces those bytes.
func TestJobMarshalStableAcrossRequeue(t *testing.T) {
	job := newJob(JobTypeStatusCheck, map[string]interface{}{
		"checkout_request_id": "ws_CO_191220191020363925",
	})

	stored, err := json.Marshal(job)
	require.NoError(t, err)

	var dequeued Job
	require.NoError(t, json.Unmarshal(stored, &dequeued))

	restored, err := json.Marshal(dequeued)
	require.NoError(t, err)
	assert.Equal(t, string(stored), string(restored))
}

// Retry bookkeeping changes the job's JSON, so the snapshot used to remove
// the job from the processing list has to be taken before it runs.
func TestRecordFailureChangesMarshaledForm(t *testing.T) {
	job := newJob(JobTypeFinalizePayment, map[string]interface{}{
		"checkout_request_id": "ws_CO_191220191020363925",
	})

	before, err := json.Marshal(&job)
	require.NoError(t, err)

	job.recordFailure(errors.New("gateway timeout"), time.Now())

	after, err := json.Marshal(&job)
	require.NoError(t, err)

	assert.NotEqual(t, string(before), string(after))
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, "gateway timeout", job.Data["last_error"])
	assert.NotNil(t, job.Data["failed_at"])
}

func TestRecordFailureInitializesData(t *testing.T) {
	job := Job{ID: "1", Type: JobTypeSendReceipt}

	job.recordFailure(errors.New("smtp unreachable"), time.Now())

	require.NotNil(t, job.Data)
	assert.Equal(t, "smtp unreachable", job.Data["last_error"])
}
