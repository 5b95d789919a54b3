// Package http provides http transport for detect
package http

import (
	"errors"
	"io"
	stdhttp "net/http"
	"strconv"
	"strings"

	"vera/internal/modkit/httpkit"
	perr "vera/internal/platform/errors"
	pnet "vera/internal/platform/net"
	"vera/internal/services/api/detect/domain"
	svc "vera/internal/services/api/detect/service"
)

// detectJSON matches the api's 10mb JSON limit and tolerates extra fields and empty bodies
var detectJSON = httpkit.JSONOptions{MaxBytes: 10 << 20, DisallowUnknown: false, AllowEmptyBody: true}

// Register mounts the detect endpoints
func Register(r httpkit.Router, s svc.Service, uploadDir string) {
	h := &handlers{svc: s, spool: spooler{dir: uploadDir}}
	httpkit.Post(r, "/", h.detect)
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/supported-types", h.supportedTypes)
	httpkit.Get(r, "/test-connection", h.testConnection)
	httpkit.Post(r, "/test-upload", h.testUpload)
}

// RegisterHistory mounts the history listing
func RegisterHistory(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/", h.history)
}

type handlers struct {
	svc   svc.Service
	spool spooler
}

// swagger:route POST /detect Detect detect
// @Summary Detect deepfakes in uploaded media, a remote image or text
// @Description Send multipart/form-data with file_data, or JSON with image_url or text. A file wins over image_url, which wins over text.
// @Tags detect
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param file_data formData file false "Media file (max 100MB)"
// @Param payload body domain.DetectBody false "Remote image or text"
// @Param X-Client-ID header string false "Caller identity such as a wallet address"
// @Success 200 {object} domain.Result "verdict"
// @Failure 400 {object} httpkit.Envelope "no_input, invalid_image_url, unsupported_file_type, file_too_large"
// @Failure 429 {object} httpkit.Envelope "too_many_requests"
// @Failure 500 {object} httpkit.Envelope "internal_error"
// @Router /detect [post]
func (h *handlers) detect(r *stdhttp.Request) (any, error) {
	in, err := h.input(r)
	if err != nil {
		return nil, err
	}
	out, err := h.svc.Detect(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Raw(stdhttp.StatusOK, out.Body()), nil
}

// input decodes whichever body format the client sent
func (h *handlers) input(r *stdhttp.Request) (domain.Input, error) {
	in := domain.Input{ClientID: pnet.ClientID(r.Context())}
	switch {
	case isMultipart(r):
		f, err := h.spool.read(r)
		if err != nil {
			return domain.Input{}, err
		}
		in.File = f.file
		in.ImageURL = f.fields["image_url"]
		in.Text = f.fields["text"]
	case isJSONOrEmpty(r):
		body, err := httpkit.BindJSON[domain.DetectBody](r, detectJSON)
		if err != nil {
			return domain.Input{}, err
		}
		in.ImageURL, in.Text = body.ImageURL, body.Text
	default:
		_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, detectJSON.MaxBytes))
	}
	return in, nil
}

// swagger:route GET /detect/health Detect detectHealth
// @Summary Detection service health
// @Tags detect
// @Produce json
// @Success 200 {object} domain.HealthReport "healthy"
// @Failure 503 {object} domain.HealthReport "unhealthy"
// @Router /detect/health [get]
func (h *handlers) health(r *stdhttp.Request) (any, error) {
	rep := h.svc.Health(r.Context())
	status := stdhttp.StatusOK
	if !rep.Healthy() {
		status = stdhttp.StatusServiceUnavailable
	}
	return httpkit.Raw(status, rep), nil
}

// swagger:route GET /detect/supported-types Detect detectSupportedTypes
// @Summary Accepted file types and limits
// @Tags detect
// @Produce json
// @Success 200 {object} media.Catalogue "catalogue"
// @Router /detect/supported-types [get]
func (h *handlers) supportedTypes(*stdhttp.Request) (any, error) {
	return httpkit.Raw(stdhttp.StatusOK, h.svc.SupportedTypes()), nil
}

// swagger:route GET /detect/test-connection Detect detectTestConnection
// @Summary Ping the media store
// @Tags detect
// @Produce json
// @Success 200 {object} domain.ConnectionReport "ok"
// @Failure 500 {object} domain.Failure "connection_test_failed"
// @Router /detect/test-connection [get]
func (h *handlers) testConnection(r *stdhttp.Request) (any, error) {
	rep, err := h.svc.TestConnection(r.Context())
	if err != nil {
		return diagnostic(err)
	}
	return httpkit.Raw(stdhttp.StatusOK, rep), nil
}

// swagger:route POST /detect/test-upload Detect detectTestUpload
// @Summary Upload a file to the media store and delete it again
// @Tags detect
// @Accept multipart/form-data
// @Produce json
// @Param file_data formData file true "File to round trip"
// @Success 200 {object} domain.UploadTestReport "ok"
// @Failure 400 {object} httpkit.Envelope "no_file"
// @Failure 500 {object} domain.Failure "upload_test_failed"
// @Router /detect/test-upload [post]
func (h *handlers) testUpload(r *stdhttp.Request) (any, error) {
	var up *domain.Upload
	if isMultipart(r) {
		f, err := h.spool.read(r)
		if err != nil {
			return nil, err
		}
		up = f.file
	}
	rep, err := h.svc.TestUpload(r.Context(), up)
	if err != nil {
		return diagnostic(err)
	}
	return httpkit.Raw(stdhttp.StatusOK, rep), nil
}

// swagger:route GET /detections Detect detectHistory
// @Summary Recent detections, newest first
// @Tags detect
// @Produce json
// @Param limit query int false "Max rows (1-200, default 20)"
// @Param client_id query string false "Only this caller"
// @Success 200 {object} httpkit.Envelope{data=[]domain.Record} "ok"
// @Failure 400 {object} httpkit.Envelope "validation_error"
// @Router /detections [get]
func (h *handlers) history(r *stdhttp.Request) (any, error) {
	q, err := listQuery(r)
	if err != nil {
		return nil, err
	}
	return h.svc.History(r.Context(), q)
}

func listQuery(r *stdhttp.Request) (domain.ListQuery, error) {
	v := r.URL.Query()
	q := domain.ListQuery{ClientID: strings.TrimSpace(v.Get("client_id"))}
	if raw := strings.TrimSpace(v.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, perr.WithField(perr.Validationf("limit must be a number"), "limit")
		}
		q.Limit = n
	}
	if err := httpkit.Validate(q); err != nil {
		return q, err
	}
	return q, nil
}

// diagnostic renders DiagnosticError bodies unwrapped and everything else as the envelope
func diagnostic(err error) (any, error) {
	var de *domain.DiagnosticError
	if errors.As(err, &de) {
		return httpkit.Raw(stdhttp.StatusInternalServerError, de.Failure()), nil
	}
	return nil, err
}
