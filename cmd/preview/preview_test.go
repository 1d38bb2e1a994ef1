package preview_test

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelvasco/dindinho/cmd/preview"
	"github.com/rafaelvasco/dindinho/cmd/root"
)

var registerOnce sync.Once

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	registerOnce.Do(func() {
		root.Cmd.AddCommand(preview.Cmd)
	})

	var out bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetErr(&out)
	root.Cmd.SetArgs(args)
	err := root.Cmd.Execute()
	return out.String(), err
}

func TestPreviewCommandMetadata(t *testing.T) {
	assert.Contains(t, preview.Cmd.Use, "preview")
	assert.Contains(t, preview.Cmd.Short, "import")
	assert.NotNil(t, preview.Cmd.RunE)
}

func TestPreviewCommandEndToEnd(t *testing.T) {
	t.Setenv("DINDINHO_AI_ENABLED", "")
	t.Setenv("GEMINI_API_KEY", "")

	statement := filepath.Join(t.TempDir(), "fatura.csv")
	content := "\"Data\",\"Lançamento\",\"Categoria\",\"Tipo\",\"Valor\"\n" +
		"\"03/01/2026\",\"APPLE.COM/BILL\",\"Serviços\",\"Compra à vista\",\"R$ 119,90\"\n"
	require.NoError(t, os.WriteFile(statement, []byte(content), 0o644))

	out, err := executeRoot(t, "preview", statement, "--data-dir", t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, out, "Dialect: credit_card")
	assert.Contains(t, out, "APPLE.COM/BILL")
	assert.Contains(t, out, "R$ 119,90")
	assert.Contains(t, out, "import")
}

func TestPreviewCommandRejectsUnknownFormat(t *testing.T) {
	t.Setenv("DINDINHO_AI_ENABLED", "")

	statement := filepath.Join(t.TempDir(), "other.csv")
	require.NoError(t, os.WriteFile(statement, []byte("id,amount\n1,2.50\n"), 0o644))

	_, err := executeRoot(t, "preview", statement, "--data-dir", t.TempDir())
	require.Error(t, err)
}
