// cmd/intakectl/main.go
//
// intakectl – command-line client for the patient intake service.
//
//	intakectl submit -f jane.yaml     validate locally, then POST /patients
//	intakectl list                    print stored records as JSON
//
// The base URL and timeout default to the gateway section of
// conf/global.yaml (and INTAKE_GATEWAY__* overrides) when a config root is
// found, else to the built-in defaults.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/intake/internal/config"
	"github.com/yanizio/intake/internal/form"
	"github.com/yanizio/intake/internal/gateway"
	"github.com/yanizio/intake/internal/logger"
)

// errInvalid marks a document that failed validation; the errors are
// already printed.
var errInvalid = errors.New("intake is invalid")

type options struct {
	baseURL  string
	timeout  time.Duration
	logLevel string
}

func (o *options) client(log *zap.SugaredLogger) *gateway.Client {
	return gateway.New(o.baseURL, gateway.WithTimeout(o.timeout), gateway.WithLogger(log))
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	def := config.Defaults().Gateway
	if cfg, err := config.Load(); err == nil {
		def = cfg.Gateway
	}

	opts := &options{}
	root := &cobra.Command{
		Use:          "intakectl",
		Short:        "Submit and list patient intake records",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", def.BaseURL, "patients API base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", def.Timeout, "request timeout")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn, or error")

	root.AddCommand(submitCmd(opts), listCmd(opts))
	return root
}

func submitCmd(opts *options) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate an intake document and submit it",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewConsole(opts.logLevel)

			var in io.Reader = cmd.InOrStdin()
			if path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			doc, err := readDoc(in)
			if err != nil {
				return err
			}

			s := form.NewSession(opts.client(log), form.WithLogger(log))
			if err := fill(s, doc); err != nil {
				return err
			}
			return submit(cmd, s)
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "-", "YAML intake document, - for stdin")
	return cmd
}

// submit runs the session to an outcome and prints it.
func submit(cmd *cobra.Command, s *form.Session) error {
	for _, f := range form.Fields() {
		s.BlurField(f)
	}
	out, err := s.Submit(cmd.Context())
	if err != nil {
		return err
	}

	switch o := out.(type) {
	case form.Invalid:
		for _, f := range form.Fields() {
			if msg := o.Errors.Get(f); msg != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", f, msg)
			}
		}
		return errInvalid
	case form.Failure:
		return errors.New(o.Message)
	case form.Success:
		return printJSON(cmd.OutOrStdout(), o.Record)
	}
	return fmt.Errorf("unexpected outcome %T", out)
}

func listCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every stored intake record",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewConsole(opts.logLevel)
			recs, err := opts.client(log).List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), recs)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
