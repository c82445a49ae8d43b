//go:build !pdfcpu
// +build !pdfcpu

package pdf

import "errors"

// ErrPDFDisabled is returned when the pdfcpu fallback is not enabled in the
// build.
var ErrPDFDisabled = errors.New("pdfcpu fallback disabled")

// ExtractPages is a stub for default builds without the "pdfcpu" tag. The
// fallback implementation lives in fallback.go.
func ExtractPages(data []byte, pageCap, perPageCap int) ([]string, error) {
	return nil, ErrPDFDisabled
}
