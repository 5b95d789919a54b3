package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"vera/internal/modkit"
	"vera/internal/platform/config"
	perr "vera/internal/platform/errors"
	"vera/internal/platform/logger"
	"vera/internal/services/api/detect/domain"
	detectmod "vera/internal/services/api/detect/module"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// serviceFactory builds the orchestrator lazily so help and flag errors need no credentials
type serviceFactory func() domain.ServicePort

func defaultService() domain.ServicePort {
	cfg := config.New()
	s, _ := detectmod.NewService(
		modkit.Deps{Log: *logger.Get(), Cfg: cfg},
		detectmod.FromConfig(cfg),
		detectmod.Ports{},
	)
	return s
}

func newRootCmd(svc serviceFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "vera-detect",
		Short:         "Run deepfake detection without the HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newFileCmd(svc),
		newURLCmd(svc),
		newTextCmd(svc),
		&cobra.Command{
			Use:   "health",
			Short: "Report whether OpenAI and Cloudinary are configured",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				rep := svc().Health(cmd.Context())
				if err := printJSON(cmd.OutOrStdout(), rep); err != nil {
					return err
				}
				if !rep.Healthy() {
					return perr.Configurationf("%s", rep.Message)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "types",
			Short: "List accepted file types and limits",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return printJSON(cmd.OutOrStdout(), svc().SupportedTypes())
			},
		},
	)
	return root
}

func newFileCmd(svc serviceFactory) *cobra.Command {
	var mime string
	cmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Upload a local file and analyze it",
		Long: `Upload a local file to Cloudinary and analyze it.

The file is copied first; the original is never removed. The mime type is
sniffed from the bytes unless --mime is given.

Examples:
  vera-detect file ./photo.jpg
  vera-detect file ./clip.bin --mime video/mp4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := copyUpload(args[0], mime)
			if err != nil {
				return report(cmd, err)
			}
			return detect(cmd, svc, domain.Input{File: up})
		},
	}
	cmd.Flags().StringVar(&mime, "mime", "", "declared mime type, sniffed when empty")
	return cmd
}

func newURLCmd(svc serviceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "url <image_url>",
		Short: "Analyze a remote image by url",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return detect(cmd, svc, domain.Input{ImageURL: args[0]})
		},
	}
}

func newTextCmd(svc serviceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "text <text...>",
		Short: "Analyze text; all arguments are joined with spaces",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return detect(cmd, svc, domain.Input{Text: strings.Join(args, " ")})
		},
	}
}

func detect(cmd *cobra.Command, svc serviceFactory, in domain.Input) error {
	out, err := svc().Detect(cmd.Context(), in)
	if err != nil {
		return report(cmd, err)
	}
	return printJSON(cmd.OutOrStdout(), out.Body())
}

// report prints the error envelope the API would have served and returns err for the exit code
func report(cmd *cobra.Command, err error) error {
	_ = printJSON(cmd.ErrOrStderr(), perr.WireFrom(err))
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// copyUpload stages path in the temp dir because the service always deletes its upload
func copyUpload(path, mime string) (*domain.Upload, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "File not found: %s", path)
	}
	defer func() { _ = src.Close() }()

	dst := filepath.Join(os.TempDir(), "vera-"+uuid.NewString())
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "could not stage upload")
	}
	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "could not stage upload")
	}
	return &domain.Upload{Path: dst, Mime: mime, Filename: filepath.Base(path), Size: n}, nil
}
