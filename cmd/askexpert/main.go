// askexpert - ask an expert persona a question through an OpenAI-compatible provider.
// Entry point: cobra command tree over the HTTP form, the MCP tool server and the
// standalone connectivity probe.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/matiasleandrokruk/askexpert/internal/domain/persona"
	"github.com/matiasleandrokruk/askexpert/internal/domain/probe"
	"github.com/matiasleandrokruk/askexpert/internal/infra/config"
	"github.com/matiasleandrokruk/askexpert/internal/mcpserver"
	"github.com/matiasleandrokruk/askexpert/internal/server"
	"github.com/matiasleandrokruk/askexpert/internal/version"
	pkgauth "github.com/matiasleandrokruk/askexpert/pkg/auth"
)

// shutdownTimeout bounds graceful shutdown after a signal.
const shutdownTimeout = 10 * time.Second

var lookupEnv = os.LookupEnv

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func run(args []string, out, errOut io.Writer) int {
	root := newRootCmd(out, errOut)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(errOut, "Error:", ee.err) //nolint:errcheck
		}
		return ee.code
	}
	fmt.Fprintln(errOut, "Error:", err) //nolint:errcheck
	return 1
}

// app holds what every subcommand shares once the root pre-run has loaded it.
type app struct {
	out    io.Writer
	errOut io.Writer
	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "askexpert",
		Short: "Ask an expert persona a question",
		Long: `askexpert answers questions in the voice of an expert persona
(medical expert, legal expert, IT engineer, educator) using an OpenAI-compatible
chat completion endpoint.

The API key is read from the secrets file first (SECRETS_FILE) and then from
the OPENAI_API_KEY environment variable.

Run without a subcommand to start the web form (same as "askexpert serve").`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
		RunE: a.runServe,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetVersionTemplate(version.String() + "\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitError{code: 2, err: err}
	})

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the web form and JSON API (default)",
			Args:  cobra.NoArgs,
			RunE:  a.runServe,
		},
		&cobra.Command{
			Use:   "probe",
			Short: "Check connectivity and credentials against the provider's models endpoint",
			Args:  cobra.NoArgs,
			RunE:  a.runProbe,
		},
		&cobra.Command{
			Use:   "mcp",
			Short: "Serve the ask_expert and list_personas tools over MCP stdio",
			Args:  cobra.NoArgs,
			RunE:  a.runMCP,
		},
		a.askCmd(),
		a.tokenCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version.String()) //nolint:errcheck
			},
		},
	)
	return root
}

func (a *app) init() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, a.errOut)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// newLogger builds a JSON production logger writing to w at the given level.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), lvl)
	return zap.New(core, zap.AddCaller()), nil
}

// ===== serve =====

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	st, err := buildStack(a.cfg, a.logger)
	if err != nil {
		return err
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Host = a.cfg.ServerHost
	srvCfg.Port = a.cfg.ServerPort
	if a.cfg.RequestTimeout+15*time.Second > srvCfg.WriteTimeout {
		srvCfg.WriteTimeout = a.cfg.RequestTimeout + 15*time.Second
	}
	srv := server.NewServer(st.handler(), srvCfg, a.logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// ===== probe =====

func (a *app) runProbe(cmd *cobra.Command, _ []string) error {
	st, err := buildStack(a.cfg, a.logger)
	if err != nil {
		return err
	}

	cred, ok := st.resolver.Resolve()
	if !ok {
		res := probe.Result{Kind: probe.NotConfigured}
		fmt.Fprintln(a.out, res.Message()) //nolint:errcheck
		return &exitError{code: 1}
	}

	a.logger.Info("probe settings",
		zap.String("endpoint", st.prober.Endpoint()),
		zap.String("provenance", string(cred.Provenance)),
		zap.String("key_prefix", cred.Redacted()),
		zap.String("http_proxy", redactURL(st.network.HTTPProxy)),
		zap.String("https_proxy", redactURL(st.network.HTTPSProxy)),
		zap.Bool("insecure_skip_verify", st.network.InsecureSkipVerify),
	)

	res := st.prober.Probe(cmd.Context(), cred, ok)
	res.Log(a.logger)
	fmt.Fprintln(a.out, res.Message()) //nolint:errcheck
	return nil
}

// redactURL hides any password embedded in a proxy URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparseable)"
	}
	return u.Redacted()
}

// ===== mcp =====

func (a *app) runMCP(cmd *cobra.Command, _ []string) error {
	st, err := buildStack(a.cfg, a.logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return mcpserver.ServeStdio(ctx, mcpserver.New(st.service, a.logger))
}

// ===== ask =====

func (a *app) askCmd() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question and print the answer",
		Example: `  askexpert ask --persona "legal expert" "Can my landlord keep the deposit?"
  askexpert ask "How is hypertension managed?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := buildStack(a.cfg, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, st.service.Submit(cmd.Context(), strings.Join(args, " "), label)) //nolint:errcheck
			return nil
		},
	}
	cmd.Flags().StringVarP(&label, "persona", "p", persona.Medical.Label(),
		"expert persona: "+strings.Join(persona.Labels(), ", "))
	return cmd
}

// ===== token =====

func (a *app) tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for the JSON API (requires ACCESS_TOKEN_SECRET)",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			token, err := pkgauth.GenerateToken([]byte(a.cfg.AccessTokenSecret), subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, token) //nolint:errcheck
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject (caller identity)")
	cmd.Flags().DurationVar(&ttl, "ttl", pkgauth.DefaultTokenTTL, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
