package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContracts_Text(t *testing.T) {
	out, _, err := execute(t, "contracts")
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "svg-animated")
	assert.Contains(t, out, "physics-audio")
	assert.Contains(t, out, "model/gltf+json")
}

func TestContracts_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "contracts")
	require.NoError(t, err)

	var resp struct {
		Status string
		Data   struct {
			Contracts []struct {
				Name string `json:"name"`
				Base string `json:"base"`
			} `json:"contracts"`
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Contracts, 10)
	assert.Equal(t, "svg", resp.Data.Contracts[0].Name)
	assert.Empty(t, resp.Data.Contracts[0].Base)
	assert.Equal(t, "physics-svg", resp.Data.Contracts[6].Name)
	assert.Equal(t, "physics", resp.Data.Contracts[6].Base)
}
