package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnixMilliTime_Unmarshal(t *testing.T) {
	t.Run("unix milliseconds", func(t *testing.T) {
		var ts UnixMilliTime
		require.NoError(t, json.Unmarshal([]byte("1700000000000"), &ts))
		assert.True(t, ts.Equal(time.UnixMilli(1700000000000)))
	})

	t.Run("rfc3339 fallback", func(t *testing.T) {
		var ts UnixMilliTime
		require.NoError(t, json.Unmarshal([]byte(`"2023-11-14T22:13:20Z"`), &ts))
		assert.Equal(t, 2023, ts.Year())
	})
}

func TestUnixMilliTime_Marshal(t *testing.T) {
	ts := UnixMilliTime{Time: time.UnixMilli(1700000000000)}
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", string(data))
}

func TestFederatedIdentity_WireFormat(t *testing.T) {
	var identity FederatedIdentity
	require.NoError(t, json.Unmarshal(
		[]byte(`{"identityProvider":"google","userId":"g-123","userName":"alice@gmail.com"}`),
		&identity,
	))

	assert.Equal(t, "google", identity.Provider)
	assert.Equal(t, "g-123", identity.UserID)
	assert.Equal(t, "alice@gmail.com", identity.UserName)

	data, err := json.Marshal(identity)
	require.NoError(t, err)
	assert.JSONEq(t, `{"identityProvider":"google","userId":"g-123","userName":"alice@gmail.com"}`, string(data))
}
