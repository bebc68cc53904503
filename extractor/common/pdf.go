package common

import (
	"bytes"
	"errors"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dslipak/pdf"
)

// ExtractPagesFromPDFReader extracts the visible text of every page of
// a PDF, in page order. Each page becomes one flat string with text
// tokens joined by single spaces; no layout information is kept.
func ExtractPagesFromPDFReader(reader io.Reader) ([]string, error) {
	var rAt io.ReaderAt
	var size int64

	switch v := reader.(type) {
	case io.ReaderAt:
		rAt = v
		if seeker, ok := reader.(io.Seeker); ok {
			cur, _ := seeker.Seek(0, io.SeekCurrent)
			end, _ := seeker.Seek(0, io.SeekEnd)
			seeker.Seek(cur, io.SeekStart)
			size = end
		} else {
			return nil, errors.New("reader is io.ReaderAt but not io.Seeker, cannot determine size")
		}
	default:
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(reader); err != nil {
			return nil, err
		}
		b := buf.Bytes()
		rAt = bytes.NewReader(b)
		size = int64(len(b))
	}

	r, err := pdf.NewReader(rAt, size)
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	pages := make([]string, 0, numPages)

	for no := 1; no <= numPages; no++ {
		page := r.Page(no)
		rows, err := page.GetTextByRow()
		if err != nil {
			log.Printf("Warning: error getting text from page %d: %v", no, err)
			continue
		}

		var builder strings.Builder
		for _, row := range rows {
			for _, text := range row.Content {
				if builder.Len() > 0 {
					builder.WriteByte(' ')
				}
				builder.WriteString(text.S)
			}
		}

		pages = append(pages, builder.String())
	}

	return pages, nil
}

// ExtractPagesFromPDF is ExtractPagesFromPDFReader for a file on disk.
func ExtractPagesFromPDF(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ExtractPagesFromPDFReader(file)
}
