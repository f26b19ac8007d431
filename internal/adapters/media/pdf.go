package media

import (
	"context"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

// ExtractText implements core.TextExtractor for PDF files.
func (t *Toolkit) ExtractText(ctx context.Context, path string) (string, error) {
	out, err := t.run(ctx, t.cfg.PDFToTextPath, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", core.ErrExtraction(core.CodeDocumentFailed, "não foi possível extrair o texto do PDF").WithCause(err)
	}
	return string(out), nil
}
