package media

import (
	"context"
	"math"
	"strconv"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

// ExtractFrames implements core.FrameExtractor. Frames are taken at n evenly
// spaced positions between the first and last frame and encoded as JPEG.
func (t *Toolkit) ExtractFrames(ctx context.Context, path string, n int) ([]core.Media, error) {
	p, err := t.probe(ctx, path)
	if err != nil {
		return nil, core.ErrExtraction(core.CodeFramesFailed, "Não foi possível abrir o vídeo para extrair frames").WithCause(err)
	}
	s, ok := p.stream("video")
	if !ok {
		return nil, core.ErrExtraction(core.CodeFramesFailed, "o arquivo não contém faixa de vídeo")
	}
	fps := frameRate(s)
	if fps <= 0 {
		return nil, core.ErrExtraction(core.CodeFramesFailed, "taxa de quadros desconhecida")
	}

	total := frameCount(s, p.duration(s), fps)
	if total == 0 {
		return nil, nil
	}

	frames := make([]core.Media, 0, n)
	for _, idx := range Linspace(0, total-1, n) {
		data, err := t.frameAt(ctx, path, float64(idx)/fps)
		if err != nil {
			// Keep what was extracted so far.
			t.logger.Warn("frame extraction stopped", "path", path, "frame", idx, "error", err)
			break
		}
		frames = append(frames, core.Media{MIMEType: "image/jpeg", Data: data})
	}
	return frames, nil
}

func (t *Toolkit) frameAt(ctx context.Context, path string, seconds float64) ([]byte, error) {
	return t.run(ctx, t.cfg.FFmpegPath,
		"-v", "error",
		"-ss", strconv.FormatFloat(seconds, 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"pipe:1")
}

func frameCount(s probeStream, duration, fps float64) int {
	if n, err := strconv.Atoi(s.NbFrames); err == nil && n > 0 {
		return n
	}
	return int(math.Floor(duration * fps))
}

// Linspace returns n integers evenly spaced over [start, stop], truncated
// toward zero.
func Linspace(start, stop, n int) []int {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []int{start}
	}
	out := make([]int, n)
	step := float64(stop-start) / float64(n-1)
	for i := range out {
		out[i] = start + int(float64(i)*step)
	}
	out[n-1] = stop
	return out
}
