package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp(t *testing.T) {
	app := newApp()
	require.NotNil(t, app)
	assert.Equal(t, appName, app.Name)
	assert.NotEmpty(t, app.Commands)

	names := make([]string, 0, len(app.Commands))
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.Contains(t, names, "import")
	assert.Contains(t, names, "eval")
	assert.Contains(t, names, "query")
	assert.Contains(t, names, "server")
}

func TestOptional(t *testing.T) {
	assert.Nil(t, optional(""))
	assert.Nil(t, optional("undefined"))

	v := optional("manifold")
	require.NotNil(t, v)
	assert.Equal(t, "manifold", *v)
}

func TestEncode(t *testing.T) {
	assert.NoError(t, encode(map[string]string{"a": "b"}))

	outputFormat = formatYAML
	defer func() { outputFormat = formatJSON }()
	assert.NoError(t, encode(map[string]string{"a": "b"}))
}
