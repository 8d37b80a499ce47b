package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", `
pe_num: 4
lane_num: 8
cache_size: 1024
word_byte: 4
block_shape: [2, 4]
at_num: 4
mem_latency: 100
cache_latency: 2
freq: 1000000000
channel: 2
bandwidth_per_channel: 16
nn_filepath: /data/nn
ss_filepath: /data/ss
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.PeNum)
	assert.Equal(t, 8, cfg.LaneNum)
	assert.Equal(t, [2]int{2, 4}, cfg.BlockShape)
	assert.Equal(t, defaultVarFactor, cfg.VarFactor)
}

func TestLoadTOML(t *testing.T) {
	path := writeTemp(t, "cfg.toml", `
pe_num = 4
lane_num = 8
cache_size = 1024
word_byte = 4
block_shape = [2, 4]
at_num = 4
mem_latency = 100
cache_latency = 2
freq = 1000000000
channel = 2
bandwidth_per_channel = 16
nn_filepath = "/data/nn"
ss_filepath = ""
var_factor = 3.0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.PeNum)
	assert.Equal(t, 3.0, cfg.VarFactor)
}

func TestLoadMissingRequiredField(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", `
lane_num: 8
cache_size: 1024
word_byte: 4
nn_filepath: /data/nn
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
