package docs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

var routerLine = regexp.MustCompile(`@Router\s+(\S+)\s+\[(\w+)\]`)

func TestDocListsAnnotatedRoutes(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	files, err := filepath.Glob(filepath.Join("..", "internal", "server", "*_handlers.go"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		src, err := os.ReadFile(file)
		require.NoError(t, err)
		for _, m := range routerLine.FindAllStringSubmatch(string(src), -1) {
			path, method := m[1], strings.ToLower(m[2])
			ops, ok := doc.Paths[path]
			if assert.True(t, ok, "%s missing from doc (%s)", path, filepath.Base(file)) {
				assert.Contains(t, ops, method, "%s %s missing from doc", method, path)
			}
		}
	}
}
