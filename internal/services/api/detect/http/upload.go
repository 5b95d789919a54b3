package http

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	stdhttp "net/http"
	"os"
	"path/filepath"
	"strings"

	"vera/internal/core/media"
	perr "vera/internal/platform/errors"
	"vera/internal/platform/logger"
	"vera/internal/services/api/detect/domain"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

const (
	// FileField is the only multipart field accepted for files
	FileField = "file_data"

	maxFieldBytes = 1 << 20
)

// form is a decoded multipart request: at most one spooled file plus plain fields
type form struct {
	file   *domain.Upload
	fields map[string]string
}

// discard removes the spooled file when the request fails before the service owns it
func (f *form) discard() {
	if f.file != nil {
		_ = os.Remove(f.file.Path)
		f.file = nil
	}
}

func isMultipart(r *stdhttp.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func isJSONOrEmpty(r *stdhttp.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}

// spooler writes uploads to dir under random names
type spooler struct{ dir string }

// read streams the multipart body; the first file_data part is spooled, later ones are drained
// limits: 100 MiB per file, MaxFiles file parts, files only under file_data
func (s spooler) read(r *stdhttp.Request) (form, error) {
	f := form{fields: map[string]string{}}
	mr, err := r.MultipartReader()
	if err != nil {
		return form{}, perr.Wrap(err, perr.ErrorCodeValidation, "invalid multipart body")
	}

	files := 0
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		if err != nil {
			f.discard()
			return form{}, perr.Wrap(err, perr.ErrorCodeValidation, "invalid multipart body")
		}

		if part.FileName() == "" {
			b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			_ = part.Close()
			if err != nil {
				f.discard()
				return form{}, perr.Wrap(err, perr.ErrorCodeValidation, "invalid multipart body")
			}
			f.fields[part.FormName()] = string(b)
			continue
		}

		if part.FormName() != FileField {
			_ = part.Close()
			f.discard()
			return form{}, perr.Reasonf(perr.ErrorCodeValidation, domain.ReasonUnexpectedFileField, "%s", domain.MsgUnexpectedFileField)
		}
		files++
		if files > media.MaxFiles {
			_ = part.Close()
			f.discard()
			return form{}, perr.Reasonf(perr.ErrorCodeValidation, domain.ReasonTooManyFiles, "%s", domain.MsgTooManyFiles)
		}

		if f.file != nil {
			n, err := io.Copy(io.Discard, io.LimitReader(part, media.MaxUploadBytes+1))
			_ = part.Close()
			if err == nil && n > media.MaxUploadBytes {
				err = tooLarge()
			}
			if err != nil {
				f.discard()
				return form{}, asUploadErr(err)
			}
			continue
		}

		up, err := s.spool(part)
		_ = part.Close()
		if err != nil {
			return form{}, err
		}
		f.file = up
	}
}

func (s spooler) spool(part *multipart.Part) (*domain.Upload, error) {
	path := filepath.Join(s.dir, uuid.NewString())
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "could not store upload")
	}
	n, err := io.Copy(out, io.LimitReader(part, media.MaxUploadBytes+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > media.MaxUploadBytes {
		err = tooLarge()
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, asUploadErr(err)
	}

	logger.Get().Debug().
		Str("path", path).
		Str("filename", part.FileName()).
		Str("size", humanize.IBytes(uint64(n))).
		Msg("upload spooled")

	return &domain.Upload{
		Path:     path,
		Mime:     part.Header.Get("Content-Type"),
		Filename: part.FileName(),
		Size:     n,
	}, nil
}

func tooLarge() error {
	return perr.Reasonf(perr.ErrorCodeValidation, domain.ReasonFileTooLarge, "%s", domain.MsgFileTooLarge)
}

// asUploadErr keeps our errors and maps stream failures to a bad request
func asUploadErr(err error) error {
	if _, ok := perr.As(err); ok {
		return err
	}
	return perr.Wrap(err, perr.ErrorCodeValidation, "invalid multipart body")
}
