package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/nayana/internal/action"
	"github.com/ayusman/nayana/internal/capture"
	"github.com/ayusman/nayana/internal/display"
	"github.com/ayusman/nayana/internal/gesture"
	"github.com/ayusman/nayana/internal/landmark"
	"github.com/ayusman/nayana/internal/stats"
	"github.com/ayusman/nayana/internal/store"
)

// Console messages.
const (
	BannerActive     = "Eye Controlled Mouse is active"
	BannerExitHint   = "Open your mouth wide to exit the program"
	MsgMouthOpen     = "Mouth open detected - exiting program"
	MsgTimeLimit     = "Session time limit reached - exiting"
	PeriodicTitle    = "Gesture Accuracy Report:"
	FinalReportTitle = "Final Accuracy Report:"
)

// ErrAlreadyRun is returned when Run is called a second time on the same Loop.
var ErrAlreadyRun = errors.New("session loop already ran")

// Persister stores session history. *store.SessionRepository implements it.
type Persister interface {
	Create(sess *store.Session) error
	SaveStats(id string, snapshot []stats.KindStats, at time.Time) error
	Finish(id, reason string, endedAt time.Time) error
}

// Options configures a Loop. Camera, Detector and Dispatcher are required.
type Options struct {
	Camera     capture.Camera
	Detector   landmark.Detector
	Display    display.Display
	Dispatcher *action.Dispatcher
	Classifier *gesture.Classifier
	Recorder   *stats.Recorder
	Config     Config

	// Clock defaults to time.Now.
	Clock func() time.Time
	// Report receives the banner and accuracy reports. Defaults to stdout.
	Report io.Writer
	// Store is optional.
	Store Persister

	// SessionID defaults to a random UUID.
	SessionID string
	// Pointer names the automation backend, for the session record.
	Pointer string

	// OnTerminate is called once with the terminal reason after cleanup.
	OnTerminate func(Reason)
}

// Loop is the single-threaded frame loop of one session.
type Loop struct {
	opts     Options
	cfg      Config
	id       string
	enabled  atomic.Bool
	resumed  atomic.Bool
	ran      atomic.Bool
	termOnce sync.Once
	sess     *Context
}

// New validates opts and creates a Loop.
func New(opts Options) (*Loop, error) {
	if opts.Camera == nil {
		return nil, errors.New("session: camera is required")
	}
	if opts.Detector == nil {
		return nil, errors.New("session: detector is required")
	}
	if opts.Dispatcher == nil {
		return nil, errors.New("session: dispatcher is required")
	}
	if opts.Display == nil {
		opts.Display = display.NewHeadless()
	}
	if opts.Classifier == nil {
		opts.Classifier = gesture.NewClassifier(gesture.DefaultThresholds())
	}
	if opts.Recorder == nil {
		opts.Recorder = stats.NewRecorder()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Report == nil {
		opts.Report = os.Stdout
	}

	id := opts.SessionID
	if id == "" {
		id = uuid.New().String()
	}

	l := &Loop{
		opts: opts,
		cfg:  opts.Config.withDefaults(),
		id:   id,
	}
	l.enabled.Store(true)
	return l, nil
}

// ID returns the session ID.
func (l *Loop) ID() string {
	return l.id
}

// Recorder returns the session statistics.
func (l *Loop) Recorder() *stats.Recorder {
	return l.opts.Recorder
}

// Enabled reports whether gestures are being evaluated.
func (l *Loop) Enabled() bool {
	return l.enabled.Load()
}

// SetEnabled pauses or resumes gesture evaluation. While paused, frames are
// still read and shown but no landmarks are detected and no actions fire.
func (l *Loop) SetEnabled(enabled bool) {
	if l.enabled.Swap(enabled) != enabled && enabled {
		l.resumed.Store(true)
	}
	log.Info().Str("session", l.id).Bool("enabled", enabled).Msg("gesture control toggled")
}

// Run executes the loop until a terminal reason. The error is non-nil only
// for CaptureFailure. The final report is written exactly once.
func (l *Loop) Run(ctx context.Context) (Reason, error) {
	if l.ran.Swap(true) {
		return CaptureFailure, ErrAlreadyRun
	}

	start := l.opts.Clock()
	l.sess = NewContext(l.id, start, l.cfg, l.opts.Recorder)

	fmt.Fprintln(l.opts.Report, BannerActive)
	fmt.Fprintln(l.opts.Report, BannerExitHint)

	l.persistStart(start)

	log.Info().
		Str("session", l.id).
		Dur("max_duration", l.cfg.MaxDuration).
		Dur("debounce", l.cfg.DebounceInterval).
		Msg("session started")

	reason, err := l.loop(ctx)
	l.terminate(reason, err)
	return reason, err
}

func (l *Loop) loop(ctx context.Context) (Reason, error) {
	if !l.opts.Camera.IsOpen() {
		if err := l.opts.Camera.Open(); err != nil {
			return CaptureFailure, fmt.Errorf("open camera: %w", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return Cancelled, nil
		default:
		}

		if reason, done, err := l.step(); done {
			return reason, err
		}
	}
}

// step runs one iteration. done is true when the session must terminate.
func (l *Loop) step() (Reason, bool, error) {
	frame, err := l.opts.Camera.ReadFrame()
	if err != nil {
		return CaptureFailure, true, fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	now := l.opts.Clock()

	var snap *landmark.Snapshot
	if l.enabled.Load() {
		if l.resumed.Swap(false) {
			l.sess.Tracker.Reset()
		}
		snap = l.detect(frame)
		if snap != nil && l.evaluate(snap, now) {
			fmt.Fprintln(l.opts.Report, MsgMouthOpen)
			return MouthOpenGesture, true, nil
		}
	}

	if err := l.opts.Display.Show(frame, snap); err != nil {
		log.Warn().Err(err).Msg("failed to show frame")
	}
	if l.opts.Display.PollKey() == display.KeyQuit {
		return UserQuitKey, true, nil
	}

	if l.sess.reportDue(now, l.cfg.ReportInterval) {
		l.report(PeriodicTitle)
		l.checkpoint(now)
	}

	if l.sess.Elapsed(now) > l.cfg.MaxDuration {
		fmt.Fprintln(l.opts.Report, MsgTimeLimit)
		return SessionTimeout, true, nil
	}

	return 0, false, nil
}

// detect returns the landmarks of the frame, or nil when no face is usable.
func (l *Loop) detect(frame *gocv.Mat) *landmark.Snapshot {
	snap, err := l.opts.Detector.Detect(frame)
	if err != nil {
		log.Warn().Err(err).Msg("landmark detection failed")
		return nil
	}
	return snap
}

// evaluate runs the gesture pipeline on one snapshot and reports whether the
// quit gesture fired.
func (l *Loop) evaluate(snap *landmark.Snapshot, now time.Time) bool {
	rec := l.sess.Recorder
	d := l.opts.Classifier.Evaluate(snap, l.sess.Tracker)

	if d.Quit {
		rec.Record(stats.Event{Kind: stats.Quit, Timestamp: now, Succeeded: true})
		return true
	}

	if d.HasGaze {
		l.record(l.opts.Dispatcher.MoveCursor(d.Gaze))
	}

	if d.LeftWink && l.sess.ClickGate.Allow(now) {
		l.record(l.opts.Dispatcher.Click(stats.LeftClick))
	}
	if d.RightWink && l.sess.ClickGate.Allow(now) {
		l.record(l.opts.Dispatcher.Click(stats.RightClick))
	}

	if d.HasScroll && l.sess.ScrollGate.Allow(now) {
		l.record(l.opts.Dispatcher.Scroll(d.Scroll))
	}

	return false
}

func (l *Loop) record(ev stats.Event) {
	if ev.Err != nil {
		log.Warn().Err(ev.Err).Str("gesture", ev.Kind.String()).Msg("action failed")
	}
	l.sess.Recorder.Record(ev)
}

func (l *Loop) report(title string) {
	if err := l.sess.Recorder.Report(l.opts.Report, title); err != nil {
		log.Error().Err(err).Msg("failed to write report")
	}
}

// terminate emits the final report, persists the session and releases resources.
func (l *Loop) terminate(reason Reason, runErr error) {
	l.termOnce.Do(func() {
		now := l.opts.Clock()

		l.report(FinalReportTitle)

		l.checkpoint(now)
		if l.opts.Store != nil {
			if err := l.opts.Store.Finish(l.id, reason.String(), now); err != nil {
				log.Error().Err(err).Str("session", l.id).Msg("failed to finish session")
			}
		}

		if err := l.opts.Display.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close display")
		}
		if err := l.opts.Camera.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close camera")
		}
		if err := l.opts.Detector.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close detector")
		}

		ev := log.Info()
		if runErr != nil {
			ev = log.Error().Err(runErr)
		}
		ev.Str("session", l.id).
			Str("reason", reason.String()).
			Dur("elapsed", l.sess.Elapsed(now)).
			Msg("session terminated")

		if l.opts.OnTerminate != nil {
			l.opts.OnTerminate(reason)
		}
	})
}

func (l *Loop) persistStart(start time.Time) {
	if l.opts.Store == nil {
		return
	}
	err := l.opts.Store.Create(&store.Session{ID: l.id, StartedAt: start, Pointer: l.opts.Pointer})
	if err != nil {
		log.Error().Err(err).Str("session", l.id).Msg("failed to record session start")
	}
}

func (l *Loop) checkpoint(now time.Time) {
	if l.opts.Store == nil {
		return
	}
	if err := l.opts.Store.SaveStats(l.id, l.sess.Recorder.Snapshot(), now); err != nil {
		log.Error().Err(err).Str("session", l.id).Msg("failed to save stats checkpoint")
	}
}
