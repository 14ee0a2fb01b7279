// Package localstack manages a local AWS cloud emulator for tests.
//
// A Stack installs the emulator on first use, starts it once, waits until
// it reports readiness and resolves per-service endpoint URLs from its
// port configuration. Share one Stack across a test binary and tear it
// down after the tests run; see localstacktest.Main.
package localstack

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/schmitthub/stackup/internal/config"
	"github.com/schmitthub/stackup/internal/endpoint"
	"github.com/schmitthub/stackup/internal/executor"
	"github.com/schmitthub/stackup/internal/git"
	"github.com/schmitthub/stackup/internal/installer"
	"github.com/schmitthub/stackup/internal/lifecycle"
	"github.com/schmitthub/stackup/internal/logger"
	"github.com/schmitthub/stackup/internal/signals"
)

// EmulatorLogName is the rotated log file receiving emulator output.
const EmulatorLogName = "emulator.log"

type (
	// Config is the stackup configuration.
	Config = config.Config
	// State is a lifecycle state.
	State = lifecycle.State
	// Snapshot describes a ready emulator.
	Snapshot = lifecycle.Snapshot
	// Installer makes the emulator available on disk.
	Installer = lifecycle.Installer
	// Starter launches the emulator process.
	Starter = lifecycle.Starter
	// Process is a running emulator.
	Process = lifecycle.Process

	StartupFailedError      = lifecycle.StartupFailedError
	StartupTimeoutError     = lifecycle.StartupTimeoutError
	InstallationFailedError = installer.InstallationFailedError
	CommandFailedError      = executor.CommandFailedError
	EndpointNotFoundError   = endpoint.NotFoundError
)

const (
	StateNotStarted   = lifecycle.StateNotStarted
	StateInstalling   = lifecycle.StateInstalling
	StateStarting     = lifecycle.StateStarting
	StateWaitingReady = lifecycle.StateWaitingReady
	StateReady        = lifecycle.StateReady
	StateTornDown     = lifecycle.StateTornDown
	StateFailed       = lifecycle.StateFailed
)

// Service names with a dedicated accessor.
const (
	ServiceS3              = endpoint.S3
	ServiceKinesis         = endpoint.Kinesis
	ServiceLambda          = endpoint.Lambda
	ServiceDynamoDB        = endpoint.DynamoDB
	ServiceDynamoDBStreams = endpoint.DynamoDBStreams
	ServiceAPIGateway      = endpoint.APIGateway
	ServiceElasticsearch   = endpoint.Elasticsearch
	ServiceFirehose        = endpoint.Firehose
	ServiceSNS             = endpoint.SNS
	ServiceSQS             = endpoint.SQS
	ServiceRedshift        = endpoint.Redshift
)

var (
	ErrEndpointNotFound = endpoint.ErrEndpointNotFound
	ErrTornDown         = lifecycle.ErrTornDown
	ErrNotReady         = lifecycle.ErrNotReady
)

// globalLogging guards the one initialization of the global logger done on
// behalf of Stacks created without WithLogger.
var globalLogging sync.Once

// initLogging points the global logger at the logging section of the first
// Stack's config. Later Stacks share that logger.
func initLogging(cfg config.LoggingConfig) {
	globalLogging.Do(func() {
		if err := logger.InitWithFile(cfg.Debug, cfg.Dir, cfg.LoggerConfig()); err != nil {
			logger.Init(cfg.Debug)
			logger.Warn().Err(err).Msg("file logging unavailable")
		}
	})
}

// Stack is one managed emulator.
type Stack struct {
	cfg       *Config
	ctrl      *lifecycle.Controller
	installer Installer
	resolver  endpoint.Resolver
	log       logger.Logger

	output    io.Writer
	closeOut  func() error
	closeOnce sync.Once
}

// New builds a Stack from stackup.yaml, STACKUP_* environment variables and
// opts. Nothing is installed or started until EnsureRunning.
func New(opts ...Option) (*Stack, error) {
	s := &settings{handleSignals: true}
	for _, opt := range opts {
		opt(s)
	}

	cfg := s.cfg
	if cfg == nil {
		workDir := s.workDir
		if workDir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to determine working directory: %w", err)
			}
			workDir = wd
		}
		var loaderOpts []config.LoaderOption
		if s.configFile != "" {
			loaderOpts = append(loaderOpts, config.WithConfigFile(s.configFile))
		}
		loaded, err := config.NewLoader(workDir, loaderOpts...).Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		copied := *cfg
		cfg = &copied
	}
	for _, fn := range s.overrides {
		fn(cfg)
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}

	log := s.logger
	if log == nil {
		initLogging(cfg.Logging)
		log = logger.Default()
	}

	stack := &Stack{
		cfg:      cfg,
		resolver: endpoint.Resolver{Scheme: cfg.Endpoint.Scheme, Host: cfg.Endpoint.Host},
		log:      log,
		closeOut: func() error { return nil },
	}
	stack.output = s.output
	if stack.output == nil {
		w := logger.OutputWriter(EmulatorLogName)
		stack.output = w
		stack.closeOut = w.Close
	}

	hooks := s.hooks
	if hooks == nil {
		hooks = signals.Default
	}
	exe := executor.New(executor.Options{
		Shell:         cfg.Exec.Shell,
		ExtraPath:     cfg.Exec.ExtraPath,
		KillGrace:     cfg.Startup.KillGrace,
		Stderr:        stack.output,
		Hooks:         hooks,
		HandleSignals: s.handleSignals,
		Logger:        log,
	})

	stack.installer = s.installer
	if stack.installer == nil {
		var cloner git.Cloner = &git.GoGitCloner{}
		if cfg.Install.UseGitCLI {
			cloner = &git.CommandCloner{Runner: exe, WorkDir: filepath.Dir(cfg.Install.Dir)}
		}
		stack.installer = installer.New(installer.Options{
			Dir:          cfg.Install.Dir,
			RepoURL:      cfg.Install.RepoURL,
			Ref:          cfg.Install.Ref,
			Depth:        cfg.Install.Depth,
			BuildCommand: cfg.Install.BuildCommand,
			LockTimeout:  cfg.Install.LockTimeout,
			Cloner:       cloner,
			Runner:       exe,
			Logger:       log,
		})
	}

	starter := s.starter
	if starter == nil {
		starter = lifecycle.ExecStarter(exe)
	}

	stack.ctrl = lifecycle.New(lifecycle.Options{
		Installer:      stack.installer,
		Starter:        starter,
		StartCommand:   cfg.Startup.Command,
		ReadyMarker:    cfg.Startup.ReadyMarker,
		ConfigFile:     cfg.Startup.ConfigFile,
		StartupTimeout: cfg.Startup.Timeout,
		ArtifactGrace:  cfg.Startup.ArtifactGrace,
		KillOnFailure:  cfg.Startup.KillOnFailure,
		ProbeServices:  cfg.Startup.ProbeServices,
		ProbeTimeout:   cfg.Startup.ProbeTimeout,
		Resolver:       stack.resolver,
		Output:         stack.output,
		Logger:         log,
	})

	return stack, nil
}

// Config returns the resolved configuration. Treat it as read-only.
func (s *Stack) Config() *Config { return s.cfg }

// State returns the current lifecycle state.
func (s *Stack) State() State { return s.ctrl.State() }

// Snapshot returns the published emulator snapshot, or nil before ready.
func (s *Stack) Snapshot() *Snapshot { return s.ctrl.Snapshot() }

// InstallDir returns the directory the emulator is installed into.
func (s *Stack) InstallDir() string { return s.installer.Dir() }

// Install clones and builds the emulator without starting it.
func (s *Stack) Install(ctx context.Context) error {
	return s.installer.EnsureInstalled(ctx)
}

// EnsureRunning installs and starts the emulator if needed and waits for it
// to become ready. Safe for concurrent use; the emulator starts at most once.
func (s *Stack) EnsureRunning(ctx context.Context) error {
	return s.ctrl.EnsureRunning(ctx)
}

// Exited returns a channel closed when the emulator process exits, or nil
// before it has been started.
func (s *Stack) Exited() <-chan struct{} { return s.ctrl.Exited() }

// Teardown stops the emulator. Safe to call more than once.
func (s *Stack) Teardown() error {
	err := s.ctrl.Teardown()
	s.closeOnce.Do(func() {
		if cerr := s.closeOut(); cerr != nil {
			s.log.Debug().Err(cerr).Msg("failed to close emulator output")
		}
	})
	return err
}

// Endpoint returns the base URL of service, starting the emulator if needed.
func (s *Stack) Endpoint(ctx context.Context, service string) (string, error) {
	return s.ctrl.Endpoint(ctx, service)
}

// Endpoints returns the base URL of every service the emulator assigns a
// port to, starting the emulator if needed.
func (s *Stack) Endpoints(ctx context.Context) (map[string]string, error) {
	if err := s.ctrl.EnsureRunning(ctx); err != nil {
		return nil, err
	}
	return s.ctrl.Endpoints()
}

// Services lists the services with a dedicated accessor.
func Services() []string {
	return endpoint.KnownServices()
}

func (s *Stack) EndpointS3(ctx context.Context) (string, error) {
	return s.Endpoint(ctx, endpoint.S3)
}

func (s *Stack) EndpointKinesis(ctx context.Context) (string, error) {
	return s.Endpoint(ctx, endpoint.Kinesis)
}

func (s *Stack) EndpointLambda(ctx context.Context) (string, error) {
	return s.Endpoint(ctx, endpoint.Lambda)
}

func (s *Stack) EndpointDynamoDB(ctx context.Context) (string, error) {
	return s.Endpoint(ctx, endpoint.DynamoDB)
}

func (s *Stack) EndpointDynamoDBStreams(ctx context.Context) (string, error) {
	return s.Endpoint(ctx, endpoint.DynamoDBStreams)
}

func (s *Stack) EndpointAPIGateway(ctx context.Context) (string, error) {
	return s.Endpoint(ctx, endpoint.APIGateway)
}

func (s *Stack) EndpointElasticsearch(ctx context.Context) (string, error) {
	return s.Endpoint(ctx, endpoint.Elasticsearch)
}

func (s *Stack) EndpointFirehose(ctx context.Context) (string, error) {
	return s.Endpoint(ctx, endpoint.Firehose)
}

func (s *Stack) EndpointSNS(ctx context.Context) (string, error) {
	return s.Endpoint(ctx, endpoint.SNS)
}

func (s *Stack) EndpointSQS(ctx context.Context) (string, error) {
	return s.Endpoint(ctx, endpoint.SQS)
}

func (s *Stack) EndpointRedshift(ctx context.Context) (string, error) {
	return s.Endpoint(ctx, endpoint.Redshift)
}
