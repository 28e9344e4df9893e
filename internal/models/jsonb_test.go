package models

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONBScan(t *testing.T) {
	var j JSONB
	require.NoError(t, j.Scan(nil))
	assert.Equal(t, "{}", string(j))

	require.NoError(t, j.Scan([]byte(`{"a":1}`)))
	assert.Equal(t, `{"a":1}`, string(j))

	require.NoError(t, j.Scan(`{"b":2}`))
	assert.Equal(t, `{"b":2}`, string(j))

	assert.Error(t, j.Scan(42))
}

func TestJSONBEmbedsRawDocument(t *testing.T) {
	j, err := NewJSONB(map[string]any{"reason": "wrong_password"})
	require.NoError(t, err)

	out, err := json.Marshal(AuditLog{Action: "LOGIN_FAILURE", Metadata: j})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"metadata":{"reason":"wrong_password"}`)

	m, err := j.Map()
	require.NoError(t, err)
	assert.Equal(t, "wrong_password", m["reason"])
}

func TestJSONBEmptyValue(t *testing.T) {
	v, err := JSONB(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}
