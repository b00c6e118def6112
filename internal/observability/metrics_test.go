package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAPIRequestsTotal(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("rooms.get", "404"))

	APIRequestsTotal.WithLabelValues("rooms.get", "404").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("rooms.get", "404")))
}

func TestAPIRequestDuration(t *testing.T) {
	APIRequestDuration.WithLabelValues("auth.login", "200").Observe(0.05)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(APIRequestDuration), 1)
}

func TestStorageMetrics(t *testing.T) {
	before := testutil.ToFloat64(StorageErrorsTotal.WithLabelValues("file", "set"))

	StorageErrorsTotal.WithLabelValues("file", "set").Inc()
	StorageOpDuration.WithLabelValues("file", "set").Observe(0.002)

	assert.Equal(t, before+1, testutil.ToFloat64(StorageErrorsTotal.WithLabelValues("file", "set")))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(StorageOpDuration), 1)
}

func TestRoomFetchesDiscarded(t *testing.T) {
	before := testutil.ToFloat64(RoomFetchesDiscarded)
	RoomFetchesDiscarded.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(RoomFetchesDiscarded))
}
