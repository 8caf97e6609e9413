package app

import (
	"io"

	"github.com/cheggaaa/pb/v3"

	"github.com/ayusman/mocap-replay/internal/detector"
)

// Progress is a consumer stage that reports flushed frames on a progress bar.
type Progress struct {
	bar *pb.ProgressBar
}

// NewProgress creates a progress stage writing to w. The bar starts when
// SetTotal is called with the recording length.
func NewProgress(w io.Writer) *Progress {
	bar := pb.New(0)
	bar.SetWriter(w)
	return &Progress{bar: bar}
}

// SetTotal sets the number of frames and starts drawing.
func (p *Progress) SetTotal(total int) {
	p.bar.SetTotal(int64(total))
	if !p.bar.IsStarted() {
		p.bar.Start()
	}
}

// Update moves the bar to frame.
func (p *Progress) Update(buf *detector.Tree, frame int) (*detector.Tree, int) {
	p.bar.SetCurrent(int64(frame))
	return buf, frame
}

// Current returns the last reported frame.
func (p *Progress) Current() int64 {
	return p.bar.Current()
}

// Finish stops drawing the bar.
func (p *Progress) Finish() {
	if p.bar.IsStarted() {
		p.bar.Finish()
	}
}
