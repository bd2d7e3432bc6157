package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/tsawler/pdfoutline/internal/command"
)

// CLIEngine runs the tesseract command line program and reads word boxes
// from its TSV output. It needs no cgo and serves builds without the ocr tag.
type CLIEngine struct {
	// Bin is the binary name or path; "tesseract" when empty.
	Bin string

	// TessdataDir overrides the language data directory.
	TessdataDir string

	// Runner executes the binary; command.Exec when nil.
	Runner command.Runner
}

func (e *CLIEngine) bin() string {
	if e.Bin == "" {
		return "tesseract"
	}
	return e.Bin
}

// Recognize implements Engine. The process is killed when ctx ends.
func (e *CLIEngine) Recognize(ctx context.Context, req Request) (Result, error) {
	f, err := os.CreateTemp("", "pdfoutline-ocr-*.png")
	if err != nil {
		return Result{}, fmt.Errorf("failed to create temp image: %w", err)
	}
	defer os.Remove(f.Name())
	_, err = f.Write(req.Image)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to write temp image: %w", err)
	}

	// tesseract <img> stdout -l <langs> --psm 3 [--tessdata-dir d] [-c whitelist] tsv
	args := []string{f.Name(), "stdout", "-l", req.Languages, "--psm", "3"}
	if e.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.TessdataDir)
	}
	if req.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+req.Whitelist)
	}
	args = append(args, "tsv")

	runner := e.Runner
	if runner == nil {
		runner = command.Exec{}
	}
	out, stderr, err := runner.Run(ctx, e.bin(), args...)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("tesseract: %w: %s", err,
			command.Truncate(strings.TrimSpace(string(stderr)), 512))
	}
	return Result{Words: ParseTSV(out)}, nil
}

// Close implements Engine.
func (e *CLIEngine) Close() error { return nil }

// ParseTSV reads the word rows (level 5) of tesseract TSV output:
//
//	level page_num block_num par_num line_num word_num left top width height conf text
func ParseTSV(data []byte) []Word {
	var words []Word
	for _, ln := range strings.Split(string(data), "\n") {
		cols := strings.Split(strings.TrimRight(ln, "\r"), "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		txt := strings.TrimSpace(cols[11])
		if txt == "" {
			continue
		}
		var nums [4]int
		ok := true
		for i := range nums {
			n, err := strconv.Atoi(cols[6+i])
			if err != nil {
				ok = false
				break
			}
			nums[i] = n
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if !ok || err != nil || conf < 0 {
			continue
		}
		words = append(words, Word{
			Text:       txt,
			Box:        image.Rect(nums[0], nums[1], nums[0]+nums[2], nums[1]+nums[3]),
			Confidence: conf,
		})
	}
	return words
}
