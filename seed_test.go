package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"camper/config"
	"camper/resources"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type phraseLoader struct{ emptyLoader }

func (phraseLoader) LoadPhrases() (*resources.Phrases, error) {
	return &resources.Phrases{Phrases: []string{"Aloha!"}, Verbs: []string{"nailed"}, Compliments: []string{"Awesome!"}}, nil
}

func TestPrintSeed(t *testing.T) {
	assert := assert.New(t)
	idx, err := resources.Load(phraseLoader{}, "development")
	require.NoError(t, err)

	var out bytes.Buffer
	printSeed(&out, idx)
	assert.Contains(out.String(), "environment: development\n")
	assert.Contains(out.String(), "    Join\n")
	assert.Contains(out.String(), "1 challenges, 0 field guides, 0 nonprofits\n")
	assert.Contains(out.String(), "sample: Aloha! You nailed it. Awesome!\n")
}

func TestWriteDefaultConfig(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "conf", "camper.yaml")

	require.NoError(t, writeDefaultConfig(path, false))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(config.DefaultConfig().Listen, cfg.Listen)

	assert.Error(writeDefaultConfig(path, false))

	require.NoError(t, os.WriteFile(path, []byte("listen: \":1\"\n"), 0600))
	require.NoError(t, writeDefaultConfig(path, true))
	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(config.DefaultConfig().Listen, cfg.Listen)
}
