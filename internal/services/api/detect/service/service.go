// Package service contains the detect workflows
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"vera/internal/core/media"
	"vera/internal/core/verdict"
	perr "vera/internal/platform/errors"
	"vera/internal/platform/logger"
	pnet "vera/internal/platform/net"
	pstrings "vera/internal/platform/strings"
	"vera/internal/services/api/detect/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
	recordTimeout       = 5 * time.Second
)

// sniffFile detects a mime type from the file's leading bytes
var sniffFile = func(path string) (string, error) {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}

// Service is the public service port
type Service interface{ domain.ServicePort }

// Options control service behavior
type Options struct {
	// Recorder is optional; when set every completed detection is recorded
	Recorder domain.Recorder

	// History is optional; without it History reports the feature as disabled
	History domain.HistoryReader

	// Now defaults to time.Now
	Now func() time.Time
}

// Svc implements the service port
type Svc struct {
	store    domain.ObjectStore
	detector domain.Detector
	recorder domain.Recorder
	history  domain.HistoryReader
	now      func() time.Time
}

// New constructs the service
func New(store domain.ObjectStore, detector domain.Detector, opt Options) *Svc {
	if store == nil {
		panic("detect.Service requires a non nil ObjectStore")
	}
	if detector == nil {
		panic("detect.Service requires a non nil Detector")
	}
	now := opt.Now
	if now == nil {
		now = time.Now
	}
	return &Svc{
		store:    store,
		detector: detector,
		recorder: opt.Recorder,
		history:  opt.History,
		now:      now,
	}
}

// resolved is the detection target after input selection
type resolved struct {
	source  domain.Source
	kind    media.Kind
	content string
	mime    string
	object  *domain.StoredObject
}

// Detect runs one detection: pick the input, store media if needed, ask the model, normalize
// the spooled file is always removed and a stored object is deleted again when anything fails
func (s *Svc) Detect(ctx context.Context, in domain.Input) (out domain.Outcome, err error) {
	log := logger.C(ctx)
	l := newLedger(log)
	defer func() {
		// a panic past the upload still owes the compensating delete
		if r := recover(); r != nil {
			l.settle(ctx, true)
			panic(r)
		}
		l.settle(ctx, err != nil)
	}()

	if in.File != nil {
		path := in.File.Path
		l.always("temp file", func(context.Context) error { return removeFile(path) })
	}

	start := s.now()
	target, err := s.resolve(ctx, in, l)
	if err != nil {
		return domain.Outcome{}, err
	}

	reply, err := s.detector.Analyze(ctx, target.kind, target.content)
	if err != nil {
		log.Error().Err(err).Str("media_type", target.kind.String()).Msg("detection failed")
		return domain.Outcome{}, internal(err)
	}

	out = s.outcome(target, reply)
	log.Info().
		Str("source", string(target.source)).
		Str("media_type", target.kind.String()).
		Bool("uncertain", out.Uncertain).
		Int("deepfake_probability", out.Verdict().DeepfakeProbability).
		Dur("latency", s.now().Sub(start)).
		Msg("detection complete")

	s.record(ctx, in, target, out, start)
	return out, nil
}

// resolve applies input precedence and performs the upload for file inputs
func (s *Svc) resolve(ctx context.Context, in domain.Input, l *ledger) (resolved, error) {
	switch {
	case in.File != nil:
		mime, err := resolveMime(in.File)
		if err != nil {
			return resolved{}, internal(err)
		}
		if !media.IsSupportedMime(mime) {
			return resolved{}, perr.Reasonf(perr.ErrorCodeValidation, domain.ReasonUnsupportedFileType,
				"File type %s is not supported for detection.", mime)
		}
		obj, err := s.store.Upload(ctx, in.File.Path, mime)
		if err != nil {
			return resolved{}, internal(err)
		}
		l.onFailure("remote object "+obj.PublicID, func(rctx context.Context) error {
			return s.store.Remove(rctx, obj.PublicID, obj.ResourceType)
		})
		return resolved{
			source:  domain.SourceFile,
			kind:    obj.MediaType,
			content: obj.URL,
			mime:    mime,
			object:  &obj,
		}, nil

	case in.ImageURL != "":
		if !media.IsValidImageURL(in.ImageURL) {
			return resolved{}, perr.Reasonf(perr.ErrorCodeValidation, domain.ReasonInvalidImageURL, "%s", domain.MsgInvalidImageURL)
		}
		return resolved{source: domain.SourceImageURL, kind: media.Image, content: in.ImageURL}, nil

	case in.Text != "":
		return resolved{source: domain.SourceText, kind: media.Text, content: in.Text}, nil
	}
	return resolved{}, perr.Reasonf(perr.ErrorCodeValidation, domain.ReasonNoInput, "%s", domain.MsgNoInput)
}

func (s *Svc) outcome(t resolved, reply domain.ModelReply) domain.Outcome {
	var url, publicID *string
	if t.object != nil {
		url = pstrings.Ptr(t.object.URL)
		publicID = pstrings.Ptr(t.object.PublicID)
	}

	parsed := verdict.ExtractJSON(reply.Text)
	if parsed == nil {
		return domain.Outcome{
			Uncertain: true,
			Fallback: domain.UncertainResult{
				Verdict:        verdict.Uncertain(t.kind),
				RawModelOutput: reply.Text,
				SDKRaw:         reply.Raw,
				Note:           domain.MsgUncertainNote,
				CloudinaryURL:  url,
			},
		}
	}
	return domain.Outcome{
		Result: domain.Result{
			Verdict:            verdict.Normalize(parsed, t.kind),
			RawModelOutput:     reply.Text,
			SDKRaw:             reply.Raw,
			ProvidedSource:     domain.ProvidedSource(t.source, t.mime),
			CloudinaryURL:      url,
			CloudinaryPublicID: publicID,
		},
	}
}

// record writes history on a detached context; errors are logged only
func (s *Svc) record(ctx context.Context, in domain.Input, t resolved, out domain.Outcome, start time.Time) {
	if s.recorder == nil {
		return
	}
	v := out.Verdict()
	clientID := in.ClientID
	if clientID == "" {
		clientID = pnet.ClientID(ctx)
	}
	rec := domain.Record{
		ID:                  uuid.NewString(),
		ClientID:            clientID,
		RequestID:           pnet.RequestID(ctx),
		Source:              t.source,
		MediaType:           v.MediaType,
		DeepfakeProbability: v.DeepfakeProbability,
		NaturalProbability:  v.NaturalProbability,
		Uncertain:           out.Uncertain,
		Overall:             v.Reasoning.Overall,
		Model:               s.detector.Model(),
		LatencyMS:           s.now().Sub(start).Milliseconds(),
		CreatedAt:           s.now().UTC(),
	}
	if t.object != nil {
		rec.CloudinaryURL = t.object.URL
		rec.CloudinaryPublicID = t.object.PublicID
	}

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := s.recorder.Record(rctx, rec); err != nil {
		logger.C(ctx).Warn().Err(err).Str("detection_id", rec.ID).Msg("record detection failed")
	}
}

// Health reports whether both collaborators are configured
func (s *Svc) Health(context.Context) domain.HealthReport {
	ai, store := s.detector.Configured(), s.store.Configured()
	rep := domain.HealthReport{
		Status:    domain.StatusHealthy,
		Message:   "Detection service is operational",
		Timestamp: s.now().UTC(),
		Services: domain.HealthServices{
			OpenAI:     domain.StateConfigured,
			Cloudinary: domain.StateConfigured,
		},
	}
	if !ai {
		rep.Services.OpenAI = domain.StateMissingAPIKey
	}
	if !store {
		rep.Services.Cloudinary = domain.StateMissingConfiguration
	}
	if !ai || !store {
		rep.Status = domain.StatusUnhealthy
		rep.Message = "Detection service configuration incomplete"
	}
	return rep
}

// SupportedTypes returns the static catalogue
func (s *Svc) SupportedTypes() domain.Catalogue { return media.SupportedCatalogue() }

// TestConnection pings the object store
func (s *Svc) TestConnection(ctx context.Context) (domain.ConnectionReport, error) {
	status, err := s.store.Ping(ctx)
	if err != nil {
		return domain.ConnectionReport{}, &domain.DiagnosticError{
			Reason: domain.ReasonConnectionTest,
			Err:    err,
			Details: map[string]any{
				"cloudinary_configured": s.store.Configured(),
				"error_type":            perr.ReasonOf(err),
			},
		}
	}
	return domain.ConnectionReport{
		Success:    true,
		Message:    "Cloudinary connection successful",
		PingResult: map[string]string{"status": status},
		Timestamp:  s.now().UTC(),
	}, nil
}

// TestUpload uploads a file and deletes it again right away
func (s *Svc) TestUpload(ctx context.Context, up *domain.Upload) (rep domain.UploadTestReport, err error) {
	if up == nil {
		return domain.UploadTestReport{}, perr.Reasonf(perr.ErrorCodeValidation, domain.ReasonNoFile, "%s", domain.MsgNoFile)
	}
	log := logger.C(ctx)
	l := newLedger(log)
	defer func() { l.settle(ctx, err != nil) }()
	path := up.Path
	l.always("temp file", func(context.Context) error { return removeFile(path) })

	fail := func(err error) error {
		return &domain.DiagnosticError{
			Reason: domain.ReasonUploadTest,
			Err:    err,
			Details: map[string]any{
				"cloudinary_configured": s.store.Configured(),
				"file_provided":         true,
			},
		}
	}

	mime, err := resolveMime(up)
	if err != nil {
		return domain.UploadTestReport{}, fail(err)
	}
	log.Info().Str("path", up.Path).Str("mime", mime).Msg("testing upload")

	obj, err := s.store.Upload(ctx, up.Path, mime)
	if err != nil {
		return domain.UploadTestReport{}, fail(err)
	}
	if err := s.store.Remove(ctx, obj.PublicID, obj.ResourceType); err != nil {
		log.Warn().Err(err).Str("public_id", obj.PublicID).Msg("test upload not deleted")
	}
	return domain.UploadTestReport{
		Success:       true,
		Message:       "Cloudinary upload test successful",
		UploadResult:  obj,
		TestCompleted: true,
	}, nil
}

// History lists recent detections, newest first
func (s *Svc) History(ctx context.Context, q domain.ListQuery) ([]domain.Record, error) {
	if s.history == nil {
		return nil, perr.Reasonf(perr.ErrorCodeUnavailable, domain.ReasonHistoryDisabled, "detection history is not enabled")
	}
	if q.Limit <= 0 {
		q.Limit = defaultHistoryLimit
	}
	if q.Limit > maxHistoryLimit {
		q.Limit = maxHistoryLimit
	}
	q.ClientID = strings.TrimSpace(q.ClientID)
	return s.history.List(ctx, q)
}

// resolveMime trusts the declared type unless it is missing or generic, then sniffs the bytes
func resolveMime(up *domain.Upload) (string, error) {
	m := normalizeMime(up.Mime)
	if m != "" && m != "application/octet-stream" {
		return m, nil
	}
	sniffed, err := sniffFile(up.Path)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "detect file type of %s", up.Filename)
	}
	return normalizeMime(sniffed), nil
}

func normalizeMime(m string) string {
	m, _, _ = strings.Cut(m, ";")
	return strings.ToLower(strings.TrimSpace(m))
}

// internal maps a failure past input validation onto a 500 keeping its message and root cause
func internal(err error) error {
	if err == nil {
		return nil
	}
	if perr.IsCode(err, perr.ErrorCodeValidation) {
		return err
	}
	msg := err.Error()
	if e, ok := perr.As(err); ok && e.Message() != "" {
		msg = e.Message()
		// keep the last underlying cause visible to the caller
		if root := perr.Root(err); root != nil {
			if rm := root.Error(); rm != "" && !strings.Contains(msg, rm) {
				msg += ": " + rm
			}
		}
	}
	if errors.Is(err, context.Canceled) {
		msg = "request canceled"
	}
	if msg == "" {
		msg = "Unexpected server error."
	}
	return perr.WithReason(perr.Wrap(err, perr.ErrorCodeUnknown, msg), domain.ReasonInternal)
}
