package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kingrea/waypoint/internal/config"
	"github.com/kingrea/waypoint/internal/identity"
	"github.com/kingrea/waypoint/internal/logging"
	"github.com/kingrea/waypoint/internal/remote"
	"github.com/kingrea/waypoint/internal/trip"
)

// runtime is the wired object graph behind every command.
type runtime struct {
	cfg      *config.Config
	logger   *logging.Logger
	identity *identity.Client
	remote   *remote.Client
	session  *trip.Session
}

func (o *options) resolveDir() (string, error) {
	if strings.TrimSpace(o.projectDir) != "" {
		return o.projectDir, nil
	}
	return os.Getwd()
}

func (o *options) open() (*runtime, error) {
	dir, err := o.resolveDir()
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	if err := config.InitDir(dir); err != nil {
		return nil, err
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.ProjectDir, cfg.Project.Logging.Level)
	if err != nil {
		return nil, err
	}

	identityClient, err := identity.NewClient(identity.Options{
		BaseURL: cfg.Project.Identity.BaseURL,
		APIKey:  cfg.Project.Identity.APIKey,
		Logger:  logger.Component("identity"),
	})
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	remoteClient, err := remote.NewClient(remote.Options{
		BaseURL:           cfg.Project.Services.BaseURL,
		Timeout:           cfg.Project.Services.Timeout,
		RequestsPerSecond: cfg.Project.Services.RequestsPerSecond,
		Burst:             cfg.Project.Services.Burst,
		Token:             identityClient.Token,
		Logger:            logger.Component("remote"),
	})
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	pref, err := trip.ParsePreference(cfg.DefaultPreference())
	if err != nil {
		pref = trip.PreferFastest
	}
	session := trip.NewSession(remoteClient, remoteClient,
		trip.WithLogger(logger.Component("trip")),
		trip.WithPreference(pref),
	)
	return &runtime{
		cfg:      cfg,
		logger:   logger,
		identity: identityClient,
		remote:   remoteClient,
		session:  session,
	}, nil
}

func (r *runtime) Close() {
	if r == nil {
		return
	}
	_ = r.logger.Close()
}

func (o *options) credentialsGiven() bool {
	email, password := o.credentials()
	return email != "" && password != ""
}

func (o *options) credentials() (string, string) {
	email := strings.TrimSpace(o.email)
	if email == "" {
		email = strings.TrimSpace(os.Getenv("WAYPOINT_EMAIL"))
	}
	password := o.password
	if password == "" {
		password = os.Getenv("WAYPOINT_PASSWORD")
	}
	return email, password
}

var errNoCredentials = errors.New("credentials required: pass --email and --password or set WAYPOINT_EMAIL and WAYPOINT_PASSWORD")

// signIn authenticates with the flag or environment credentials and attaches
// the session.
func (r *runtime) signIn(ctx context.Context, o *options) error {
	email, password := o.credentials()
	if email == "" || password == "" {
		return errNoCredentials
	}
	var (
		session *identity.Session
		err     error
	)
	if o.signUp {
		session, err = r.identity.SignUp(ctx, email, password)
	} else {
		session, err = r.identity.SignIn(ctx, email, password)
	}
	if err != nil {
		var authErr *identity.AuthError
		if errors.As(err, &authErr) {
			return &userError{msg: authErr.UserMessage(), err: err}
		}
		return err
	}
	r.session.SignIn(session)
	return nil
}

// userError shows msg to the user and keeps err for errors.Is/As.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }

func (e *userError) Unwrap() error { return e.err }

func describe(err error) error {
	if err == nil {
		return nil
	}
	return &userError{msg: trip.Message(err), err: err}
}
