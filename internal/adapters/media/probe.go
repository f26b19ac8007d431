package media

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

// probeResult is the subset of ffprobe's JSON output we read.
type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration   string `json:"duration"`
		FormatName string `json:"format_name"`
		Size       string `json:"size"`
	} `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NbFrames     string `json:"nb_frames"`
	Duration     string `json:"duration"`
	SampleRate   string `json:"sample_rate"`
	Channels     int    `json:"channels"`
}

func (p probeResult) stream(kind string) (probeStream, bool) {
	for _, s := range p.Streams {
		if s.CodecType == kind {
			return s, true
		}
	}
	return probeStream{}, false
}

func (p probeResult) duration(s probeStream) float64 {
	if d, err := strconv.ParseFloat(p.Format.Duration, 64); err == nil {
		return d
	}
	if d, err := strconv.ParseFloat(s.Duration, 64); err == nil {
		return d
	}
	return 0
}

func parseProbe(data []byte) (probeResult, error) {
	var p probeResult
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parsing ffprobe output: %w", err)
	}
	return p, nil
}

func (t *Toolkit) probe(ctx context.Context, path string) (probeResult, error) {
	out, err := t.run(ctx, t.cfg.FFprobePath,
		"-v", "error", "-print_format", "json", "-show_format", "-show_streams", path)
	if err != nil {
		return probeResult{}, err
	}
	return parseProbe(out)
}

// parseRate reads ffprobe rates such as "30000/1001" or "25".
func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// AudioProber reports audio duration, sample rate, channels, format and size.
type AudioProber struct {
	*Toolkit
}

// Audio returns the audio metadata extractor.
func (t *Toolkit) Audio() AudioProber {
	return AudioProber{t}
}

// Extract implements core.FeatureExtractor.
func (a AudioProber) Extract(ctx context.Context, path string) (map[string]any, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, core.ErrExtraction(core.CodeMetadataFailed, "não foi possível abrir o áudio").WithCause(err)
	}
	p, err := a.probe(ctx, path)
	if err != nil {
		return nil, core.ErrExtraction(core.CodeMetadataFailed, "não foi possível ler o áudio").WithCause(err)
	}
	return audioInfo(p, path, st.Size())
}

func audioInfo(p probeResult, path string, size int64) (map[string]any, error) {
	s, ok := p.stream("audio")
	if !ok {
		return nil, core.ErrExtraction(core.CodeMetadataFailed, "o arquivo não contém faixa de áudio")
	}
	rate, _ := strconv.Atoi(s.SampleRate)
	return map[string]any{
		"duracao":    round2(p.duration(s)),
		"frame_rate": rate,
		"canais":     s.Channels,
		"formato":    strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		"tamanho_mb": round2(float64(size) / (1024 * 1024)),
	}, nil
}

// VideoProber reports video duration, frame rate and resolution.
type VideoProber struct {
	*Toolkit
}

// Video returns the video metadata extractor.
func (t *Toolkit) Video() VideoProber {
	return VideoProber{t}
}

// Extract implements core.FeatureExtractor.
func (v VideoProber) Extract(ctx context.Context, path string) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, core.ErrExtraction(core.CodeMetadataFailed, "Não foi possível abrir o vídeo").WithCause(err)
	}
	p, err := v.probe(ctx, path)
	if err != nil {
		return nil, core.ErrExtraction(core.CodeMetadataFailed, "Não foi possível abrir o vídeo").WithCause(err)
	}
	return videoInfo(p)
}

func videoInfo(p probeResult) (map[string]any, error) {
	s, ok := p.stream("video")
	if !ok {
		return nil, core.ErrExtraction(core.CodeMetadataFailed, "o arquivo não contém faixa de vídeo")
	}
	fps := frameRate(s)
	duration := p.duration(s)
	if duration == 0 && fps > 0 {
		if n, err := strconv.Atoi(s.NbFrames); err == nil {
			duration = float64(n) / fps
		}
	}
	return map[string]any{
		"duracao":   round2(duration),
		"fps":       round2(fps),
		"resolucao": fmt.Sprintf("%dx%d", s.Width, s.Height),
	}, nil
}

func frameRate(s probeStream) float64 {
	if fps := parseRate(s.AvgFrameRate); fps > 0 {
		return fps
	}
	return parseRate(s.RFrameRate)
}
