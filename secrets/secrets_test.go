package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarName(t *testing.T) {
	assert.Equal(t, "MARKET_RISK_POLYGON_API_KEY", VarName("market_risk", "polygon_api_key"))
	assert.Equal(t, "MARKET_RISK_POLYGON_API_KEY", VarName("market-risk", "polygon.api.key"))
	assert.Equal(t, "S3_K9", VarName("s3", "k9"))
}

func TestEnvStore(t *testing.T) {
	s := NewEnvStoreFrom(map[string]string{
		"MARKET_RISK_POLYGON_API_KEY": "secret-value",
		"EMPTY_VALUE":                 "",
	})
	ctx := context.Background()

	v, err := s.Get(ctx, "market_risk", "polygon_api_key")
	require.NoError(t, err)
	assert.Equal(t, "secret-value", v)

	_, err = s.Get(ctx, "market_risk", "other")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "MARKET_RISK_OTHER")

	_, err = s.Get(ctx, "empty", "value")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMapStore(t *testing.T) {
	s := MapStore{"scope/key": "v"}

	v, err := s.Get(context.Background(), "scope", "key")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	_, err = s.Get(context.Background(), "scope", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
