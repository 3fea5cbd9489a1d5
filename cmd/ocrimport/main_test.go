package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winelist/internal/domain"
)

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "carta.txt")
	require.NoError(t, os.WriteFile(file, []byte("VINI ROSSI\nChianti Classico Riserva\n28\n6\n"), 0o600))
	t.Setenv("WINELIST_LLM_API_KEY", "")

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	err := app.Run(context.Background(), []string{"ocrimport", "parse", "--file", file})
	require.NoError(t, err)

	var items []domain.WineItem
	require.NoError(t, json.Unmarshal(out.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Chianti Classico Riserva", items[0].Nome)
	assert.Equal(t, "28", items[0].Prezzo)
	assert.Equal(t, "6", items[0].PrezzoBicchiere)
	assert.Equal(t, "Rossi", items[0].Sezione)
}

func TestParseCommand_EmptyFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	require.NoError(t, app.Run(context.Background(), []string{"ocrimport", "parse", "-f", file}))
	assert.Equal(t, "[]\n", out.String())
}

func TestParseCommand_MissingFile(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}

	err := app.Run(context.Background(), []string{"ocrimport", "parse", "--file", filepath.Join(t.TempDir(), "nope.txt")})
	assert.Error(t, err)
}
