package player

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/llehouerou/quartz/internal/logger"
)

const (
	statePollInterval = 500 * time.Millisecond
	leadOutWindow     = 5 * time.Second
	watcherInterval   = 200 * time.Millisecond
	messageBufferSize = 16
)

// source is one decoded remote stream.
type source struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	body     *seekBuffer
	duration time.Duration
}

func (s *source) close() {
	if s.streamer != nil {
		_ = s.streamer.Close()
	}
	if s.body != nil {
		_ = s.body.Close()
	}
}

// position returns the source's stream clock.
func (s *source) position() time.Duration {
	return s.format.SampleRate.D(s.streamer.Position())
}

var _ Pipeline = (*BeepPipeline)(nil)

// BeepPipeline renders signed stream URLs through the speaker. It fetches
// the URL over HTTP, decodes FLAC or MP3, and splices queued next sources
// for gapless transitions.
type BeepPipeline struct {
	mu sync.Mutex

	status     Status
	pendingURI string
	current    *source
	next       *source
	ctrl       *beep.Ctrl
	splice     *spliceStreamer

	sampleRate  beep.SampleRate
	speakerInit bool

	messages      chan Message
	aboutToFinish func()
	leadOutSent   bool
	switchPing    chan struct{}

	httpClient *http.Client

	watcherStop chan struct{}
	closed      bool
}

// NewBeepPipeline creates an idle pipeline in the Null state.
func NewBeepPipeline() *BeepPipeline {
	return &BeepPipeline{
		status:     Null,
		messages:   make(chan Message, messageBufferSize),
		switchPing: make(chan struct{}, 1),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Messages returns the pipeline bus.
func (p *BeepPipeline) Messages() <-chan Message { return p.messages }

// OnAboutToFinish registers the lead-out callback.
func (p *BeepPipeline) OnAboutToFinish(fn func()) {
	p.mu.Lock()
	p.aboutToFinish = fn
	p.mu.Unlock()
}

// State returns the most recently confirmed state.
func (p *BeepPipeline) State() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// SetURI loads a source. When a track is already playing this queues the
// source for a gapless splice; otherwise it becomes the pending source for
// the next transition out of Null/Ready.
func (p *BeepPipeline) SetURI(uri string) {
	p.mu.Lock()
	playing := p.current != nil && (p.status == Playing || p.status == Paused)
	p.mu.Unlock()

	if !playing {
		p.mu.Lock()
		p.pendingURI = uri
		p.mu.Unlock()
		return
	}

	src, err := p.open(uri)
	if err != nil {
		p.emit(Message{Kind: MsgError, Err: fmt.Errorf("load next source: %w", err)})
		return
	}

	p.mu.Lock()
	if p.next != nil {
		p.next.close()
	}
	p.next = src
	splice := p.splice
	stream := p.resampledLocked(src)
	p.mu.Unlock()

	if splice != nil {
		splice.SetNext(stream)
	}
}

// SetState drives the pipeline toward target and waits for confirmation.
func (p *BeepPipeline) SetState(ctx context.Context, target Status) error {
	if err := p.transition(target); err != nil {
		return err
	}
	return p.waitForState(ctx, target)
}

func (p *BeepPipeline) transition(target Status) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("pipeline closed")
	}
	if p.status == target {
		return nil
	}

	switch target {
	case Playing, Paused:
		if p.current == nil {
			if p.pendingURI == "" {
				return fmt.Errorf("no uri loaded")
			}
			if err := p.prerollLocked(); err != nil {
				return err
			}
		}
		speaker.Lock()
		p.ctrl.Paused = target == Paused
		speaker.Unlock()
		p.setStatusLocked(target)

	case Ready:
		p.teardownLocked(false)
		p.setStatusLocked(Ready)

	case Null:
		p.teardownLocked(true)
		p.setStatusLocked(Null)
	}

	return nil
}

// prerollLocked opens the pending URI and hooks it to the speaker, paused.
func (p *BeepPipeline) prerollLocked() error {
	uri := p.pendingURI

	// Opening does network I/O; drop the lock for it.
	p.mu.Unlock()
	src, err := p.open(uri)
	p.mu.Lock()
	if err != nil {
		return err
	}

	if !p.speakerInit {
		p.sampleRate = src.format.SampleRate
		if err := speaker.Init(p.sampleRate, p.sampleRate.N(time.Second/10)); err != nil {
			src.close()
			return fmt.Errorf("init speaker: %w", err)
		}
		p.speakerInit = true
	}

	p.current = src
	p.pendingURI = ""
	p.leadOutSent = false

	p.splice = &spliceStreamer{current: p.resampledLocked(src)}
	p.splice.onSwitch = p.signalSwitch
	p.ctrl = &beep.Ctrl{Streamer: p.splice, Paused: true}

	speaker.Clear()
	speaker.Play(beep.Seq(p.ctrl, beep.Callback(p.handleEOS)))

	p.watcherStop = make(chan struct{})
	go p.watch(p.watcherStop)

	p.emit(Message{Kind: MsgStreamStart})
	p.emit(Message{Kind: MsgAsyncDone, RunningTime: 0})
	return nil
}

// resampledLocked adapts a source to the speaker's sample rate.
func (p *BeepPipeline) resampledLocked(src *source) beep.Streamer {
	if p.speakerInit && src.format.SampleRate != p.sampleRate {
		return beep.Resample(4, src.format.SampleRate, p.sampleRate, src.streamer)
	}
	return src.streamer
}

func (p *BeepPipeline) teardownLocked(dropPending bool) {
	if p.watcherStop != nil {
		close(p.watcherStop)
		p.watcherStop = nil
	}
	if p.speakerInit {
		speaker.Clear()
	}
	if p.current != nil {
		p.current.close()
		p.current = nil
	}
	if p.next != nil {
		p.next.close()
		p.next = nil
	}
	p.ctrl = nil
	p.splice = nil
	p.leadOutSent = false
	if dropPending {
		p.pendingURI = ""
	}
}

func (p *BeepPipeline) setStatusLocked(s Status) {
	p.status = s
	p.emit(Message{Kind: MsgStateChanged, State: s})
}

// waitForState polls until the pipeline confirms the target state.
func (p *BeepPipeline) waitForState(ctx context.Context, target Status) error {
	for {
		if p.State() == target {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", target, ctx.Err())
		case <-time.After(statePollInterval):
		}
	}
}

// Position returns the current stream clock.
func (p *BeepPipeline) Position() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return 0, false
	}
	speaker.Lock()
	pos := p.current.position()
	speaker.Unlock()
	return pos, true
}

// Duration returns the current source duration.
func (p *BeepPipeline) Duration() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return 0, false
	}
	return p.current.duration, true
}

// Seek moves the stream clock within the current source.
func (p *BeepPipeline) Seek(pos time.Duration, flags SeekFlags) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return fmt.Errorf("seek: no source loaded")
	}

	sample := p.current.format.SampleRate.N(pos)
	if flags == SeekFlushKeyUnit {
		// Key-unit seeks snap to frame boundaries. FLAC frames hold 4096
		// samples; close enough for both codecs.
		sample -= sample % 4096
	}

	speaker.Lock()
	err := p.current.streamer.Seek(sample)
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	p.emit(Message{Kind: MsgAsyncDone, RunningTime: pos})
	return nil
}

// Close tears the pipeline down.
func (p *BeepPipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.teardownLocked(true)
	p.status = Null
	p.mu.Unlock()
	close(p.messages)
	return nil
}

// watch fires the lead-out callback when the current source nears its end
// and services splice handoffs signalled from the speaker thread.
func (p *BeepPipeline) watch(stop chan struct{}) {
	ticker := time.NewTicker(watcherInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-p.switchPing:
			p.completeSwitch()
			continue
		case <-ticker.C:
		}

		p.mu.Lock()
		if p.current == nil || p.status != Playing || p.leadOutSent {
			p.mu.Unlock()
			continue
		}
		speaker.Lock()
		remaining := p.current.duration - p.current.position()
		speaker.Unlock()
		fire := remaining <= leadOutWindow
		if fire {
			p.leadOutSent = true
		}
		cb := p.aboutToFinish
		p.mu.Unlock()

		if fire && cb != nil {
			logger.Debug("pipeline: about to finish")
			cb()
		}
	}
}

// signalSwitch runs on the speaker thread when the splice hands off to the
// queued next source. The speaker mutex is held here and Position/Seek/watch
// take p.mu before that same mutex, so touching p.mu from this side would
// invert the lock order. One non-blocking ping, nothing else; the watcher
// does the bookkeeping.
func (p *BeepPipeline) signalSwitch() {
	select {
	case p.switchPing <- struct{}{}:
	default:
	}
}

// completeSwitch promotes the spliced source to current. Runs on the
// watcher goroutine; until it does, Position reports the tail of the old
// source, which the next clock tick corrects.
func (p *BeepPipeline) completeSwitch() {
	p.mu.Lock()
	if p.next == nil {
		p.mu.Unlock()
		return
	}
	if p.current != nil {
		p.current.close()
	}
	p.current = p.next
	p.next = nil
	p.leadOutSent = false
	p.mu.Unlock()

	p.emit(Message{Kind: MsgStreamStart})
}

// handleEOS runs on the speaker thread when the whole sequence drains with
// no next source queued.
func (p *BeepPipeline) handleEOS() {
	p.emit(Message{Kind: MsgEOS})
}

// emit never blocks; the bus drops messages if the consumer stalls.
func (p *BeepPipeline) emit(m Message) {
	select {
	case p.messages <- m:
	default:
		logger.Warn("pipeline: dropping bus message", logger.String("kind", m.Kind.String()))
	}
}

// open fetches a signed URL and decodes it.
func (p *BeepPipeline) open(uri string) (*source, error) {
	resp, err := p.httpClient.Get(uri)
	if err != nil {
		return nil, fmt.Errorf("fetch stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch stream: status %d", resp.StatusCode)
	}

	body := newSeekBuffer(resp.Body)

	kind := contentKind(resp.Header.Get("Content-Type"), uri)
	if resp.ContentLength > 0 {
		logger.Debug("stream opened",
			logger.String("kind", kind),
			logger.String("size", humanize.IBytes(uint64(resp.ContentLength))))
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch kind {
	case "flac":
		streamer, format, err = flac.Decode(body)
	case "mp3":
		streamer, format, err = mp3.Decode(body)
	default:
		body.Close()
		return nil, fmt.Errorf("unsupported stream type %q", resp.Header.Get("Content-Type"))
	}
	if err != nil {
		body.Close()
		return nil, fmt.Errorf("decode stream: %w", err)
	}

	return &source{
		streamer: streamer,
		format:   format,
		body:     body,
		duration: format.SampleRate.D(streamer.Len()),
	}, nil
}

// contentKind decides the codec from the response mime type, falling back
// to the URL path.
func contentKind(mimeType, uri string) string {
	switch {
	case strings.Contains(mimeType, "flac"):
		return "flac"
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return "mp3"
	}
	path := uri
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	switch {
	case strings.HasSuffix(path, ".flac"):
		return "flac"
	case strings.HasSuffix(path, ".mp3"):
		return "mp3"
	}
	return ""
}
