package browser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/playwright-enhanced/pwe/common"
)

// ScreenshotMode controls screenshots taken when a test fails.
type ScreenshotMode string

// Screenshot modes.
const (
	ScreenshotsNo   ScreenshotMode = "no"
	ScreenshotsYes  ScreenshotMode = "yes"
	ScreenshotsFull ScreenshotMode = "full"
)

// ParseScreenshotMode parses a --screenshots-on-fail value.
func ParseScreenshotMode(s string) (ScreenshotMode, error) {
	v, err := choice("screenshots-on-fail", strings.ToLower(s),
		string(ScreenshotsYes), string(ScreenshotsNo), string(ScreenshotsFull))
	if err != nil {
		return "", err
	}
	return ScreenshotMode(v), nil
}

// VideoMode controls video recording. The zero value disables it.
type VideoMode struct {
	Enabled bool
	// Width and Height are zero unless a size was requested.
	Width, Height int
}

var (
	errVideoValue = errors.New("can only be 'yes', 'no' or a width x height string such as '800x640'")
	errVideoSize  = errors.New("width x height option must both be valid integers")
)

// ParseVideoMode parses a --video-on-fail value: yes, no or a size
// such as 800x640.
func ParseVideoMode(s string) (VideoMode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "no":
		return VideoMode{}, nil
	case v == "yes":
		return VideoMode{Enabled: true}, nil
	case !strings.Contains(v, "x"):
		return VideoMode{}, fmt.Errorf("%w: argument --video-on-fail: %w", common.ErrUsage, errVideoValue)
	}

	w, h, _ := strings.Cut(v, "x")
	width, err := strconv.Atoi(w)
	if err != nil {
		return VideoMode{}, fmt.Errorf("%w: argument --video-on-fail: %w", common.ErrUsage, errVideoSize)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return VideoMode{}, fmt.Errorf("%w: argument --video-on-fail: %w", common.ErrUsage, errVideoSize)
	}
	return VideoMode{Enabled: true, Width: width, Height: height}, nil
}

// HasSize returns true if a video size was requested.
func (m VideoMode) HasSize() bool {
	return m.Enabled && (m.Width != 0 || m.Height != 0)
}

func (m VideoMode) String() string {
	switch {
	case !m.Enabled:
		return "no"
	case m.HasSize():
		return fmt.Sprintf("%dx%d", m.Width, m.Height)
	default:
		return "yes"
	}
}

// ArtifactPolicy decides which artifacts are recorded during an
// execution, where they are written and whether they are kept.
type ArtifactPolicy struct {
	dir         string
	screenshots ScreenshotMode
	video       VideoMode
	trace       bool
}

// NewArtifactPolicy returns the artifact policy of opts writing to dir.
func NewArtifactPolicy(opts *Options, dir string) *ArtifactPolicy {
	return &ArtifactPolicy{
		dir:         dir,
		screenshots: opts.ScreenshotsOnFail,
		video:       opts.VideoOnFail,
		trace:       opts.TraceOnFail,
	}
}

// Dir returns the artifacts directory.
func (p *ArtifactPolicy) Dir() string { return p.dir }

// Screenshots returns the screenshot mode.
func (p *ArtifactPolicy) Screenshots() ScreenshotMode { return p.screenshots }

// RecordVideo returns true if pages are recorded.
func (p *ArtifactPolicy) RecordVideo() bool { return p.video.Enabled }

// Trace returns true if contexts are traced.
func (p *ArtifactPolicy) Trace() bool { return p.trace }

// ContextKwargs returns the context parameters required to record the
// requested artifacts. They are merged over the resolved context
// configuration.
func (p *ArtifactPolicy) ContextKwargs() common.ContextConfig {
	cfg := common.ContextConfig{}
	if !p.video.Enabled {
		return cfg
	}
	cfg[common.ContextRecordVideoDir] = p.dir + string(filepath.Separator)
	if p.video.HasSize() {
		cfg[common.ContextRecordVideoSizeWidth] = p.video.Width
		cfg[common.ContextRecordVideoSizeHeight] = p.video.Height
	}
	return cfg
}

// Retain returns true if the artifacts of an execution are kept.
// Only failed executions keep their artifacts.
func (p *ArtifactPolicy) Retain(failed bool) bool {
	return failed
}

// VideoPath returns where the video of the idx-th page of test is kept.
func (p *ArtifactPolicy) VideoPath(test string, engine common.Engine, idx int) string {
	return filepath.Join(p.dir, fmt.Sprintf("%s-%s-%d.webm", Slug(test), engine, idx))
}

// ScreenshotPath returns where the screenshot of the idx-th page of test is kept.
func (p *ArtifactPolicy) ScreenshotPath(test string, engine common.Engine, idx int) string {
	return filepath.Join(p.dir, fmt.Sprintf("%s-%s-%d.png", Slug(test), engine, idx))
}

// TracePath returns where the trace of test is kept.
func (p *ArtifactPolicy) TracePath(test string, engine common.Engine) string {
	return filepath.Join(p.dir, fmt.Sprintf("%s-%s-trace.zip", Slug(test), engine))
}

// Slug turns a test name into a lower case file name made of ASCII
// letters, digits and dashes. Accented letters lose their accent.
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
