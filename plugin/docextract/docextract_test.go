package docextract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileType(t *testing.T) {
	require.Equal(t, "pdf", FileType("demanda.pdf"))
	require.Equal(t, "pdf", FileType("DEMANDA.PDF"))
	require.Equal(t, "txt", FileType("notas.txt"))
	require.Equal(t, "md", FileType("minuta.md"))
	require.Empty(t, FileType("foto.png"))
	require.Empty(t, FileType("sin_extension"))
}

func TestExtractPlainText(t *testing.T) {
	content := "CONTRATO DE ARRENDAMIENTO\nCláusula primera: ..."
	r := strings.NewReader(content)

	text, err := NewExtractor().Extract(context.Background(), "contrato.txt", r, int64(len(content)))
	require.NoError(t, err)
	require.Equal(t, content, text)
}

func TestExtractMarkdown(t *testing.T) {
	content := "# Minuta\n\n- punto uno"
	r := strings.NewReader(content)

	text, err := NewExtractor().Extract(context.Background(), "minuta.md", r, int64(len(content)))
	require.NoError(t, err)
	require.Equal(t, content, text)
}

func TestExtractRejectsUnsupportedType(t *testing.T) {
	r := strings.NewReader("binary")
	_, err := NewExtractor().Extract(context.Background(), "foto.png", r, 6)
	require.Error(t, err)
}
