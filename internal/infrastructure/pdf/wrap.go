package pdf

import (
	"strings"
	"sync"

	"github.com/phpdave11/gofpdf"
)

// TextMeasurer mide el ancho (mm) de un texto con la fuente activa a un tamaño dado.
type TextMeasurer interface {
	Width(s string, size float64, bold bool) float64
}

// fpdfMeasurer usa las métricas de las fuentes core de gofpdf, el mismo backend que
// usa Maroto al dibujar, para que el corte de líneas coincida con lo renderizado.
type fpdfMeasurer struct {
	mu     sync.Mutex
	family string
	doc    *gofpdf.Fpdf
	tr     func(string) string
}

func newFPDFMeasurer(family string) *fpdfMeasurer {
	doc := gofpdf.New("P", "mm", "A4", "")
	return &fpdfMeasurer{
		family: family,
		doc:    doc,
		tr:     doc.UnicodeTranslatorFromDescriptor(""), // UTF-8 → cp1252
	}
}

func (m *fpdfMeasurer) Width(s string, size float64, bold bool) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	style := ""
	if bold {
		style = "B"
	}
	m.doc.SetFont(m.family, style, size)
	return m.doc.GetStringWidth(m.tr(s))
}

// wrapText parte text en líneas cuyo ancho medido no supere maxWidth.
// Acumula palabras hasta que la siguiente desbordaría; entonces vacía la línea.
// Los saltos de línea explícitos se respetan; una palabra más ancha que maxWidth
// queda sola en su línea.
func wrapText(text string, maxWidth float64, width func(string) float64) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		current := words[0]
		for _, w := range words[1:] {
			candidate := current + " " + w
			if width(candidate) > maxWidth {
				lines = append(lines, current)
				current = w
				continue
			}
			current = candidate
		}
		lines = append(lines, current)
	}
	return lines
}
