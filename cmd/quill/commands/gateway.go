package commands

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/quillpost/gateway-client/internal/client"
	"github.com/quillpost/gateway-client/internal/constants"
	"github.com/quillpost/gateway-client/internal/logging"
	"github.com/quillpost/gateway-client/internal/notify"
	"github.com/quillpost/gateway-client/pkg/gateway"
	"github.com/quillpost/gateway-client/pkg/gwclient"
)

// cliSession is a gateway built from the CLI configuration, with its cookies
// restored from and saved to the session store.
type cliSession struct {
	gw       *client.Gateway
	endpoint *url.URL
	store    *SessionStore
	metrics  *gateway.MetricsCollector
	logger   *logging.SlogLogger
	notifier *notify.NATSNotifier

	// Set once the session is ended; nothing is saved afterwards.
	ended atomic.Bool
}

// openSession builds a gateway for the configured endpoint.
func openSession(ctx context.Context) (*cliSession, error) {
	config := loadConfig()

	if config.Endpoint == "" {
		return nil, constants.ErrNoEndpointConfigured
	}

	endpoint, err := url.Parse(gwclient.NormalizeBaseAddress(config.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", config.Endpoint, err)
	}

	level := config.LogLevel
	if config.Verbose && level == "" {
		level = "debug"
	}

	session := &cliSession{
		endpoint: endpoint,
		metrics:  gateway.NewMetricsCollector(),
		logger:   logging.New(os.Stderr, level, config.LogFormat == constants.FormatJSON),
	}

	session.store, err = DefaultSessionStore()
	if err != nil {
		return nil, err
	}

	jar, err := gwclient.NewCookieJar()
	if err != nil {
		return nil, err
	}

	err = session.store.Load(jar, endpoint)
	if err != nil {
		return nil, err
	}

	gwConfig := &gateway.Config{
		BaseAddress:     endpoint.String(),
		RefreshTopology: gateway.RefreshTopology(config.RefreshTopology),
		RetryMax:        config.RetryMax,
		Debug:           config.Verbose,
		Logger:          session.logger,
		UserAgent:       config.UserAgent,
		CookieJar:       jar,
		Metrics:         session.metrics,
	}

	if config.Timeout != "" {
		gwConfig.HTTPTimeout, err = time.ParseDuration(config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", config.Timeout, err)
		}
	}

	if config.NATSURL != "" {
		session.notifier, err = notify.Connect(config.NATSURL, config.NATSSubject, endpoint.String(), session.logger)
		if err != nil {
			return nil, err
		}
	}

	gwConfig.OnForceLogout = notify.Chain(session.forgetSession, session.notifierHandler())

	session.gw, err = client.New(ctx, gwConfig)
	if err != nil {
		session.close()

		return nil, fmt.Errorf("failed to create gateway client: %w", err)
	}

	return session, nil
}

func (s *cliSession) notifierHandler() gateway.LogoutHandler {
	if s.notifier == nil {
		return nil
	}

	return s.notifier.Handler()
}

// forgetSession drops the stored cookies once the gateway reports the
// session as unrecoverable.
func (s *cliSession) forgetSession(_ context.Context, code gateway.ErrorCode) {
	s.ended.Store(true)

	err := s.store.Clear()
	if err != nil {
		s.logger.Warn("Failed to clear stored session", map[string]interface{}{"error": err.Error()})
	}

	_, _ = fmt.Fprintf(os.Stderr, "Session ended by the gateway (%s), please log in again\n", code)
}

// persist saves the cookies the gateway currently holds.
func (s *cliSession) persist() error {
	if s.ended.Load() {
		return nil
	}

	return s.store.Save(s.gw.Jar(), s.endpoint, constants.RefreshTokenPath)
}

// end clears the stored session and stops later saves.
func (s *cliSession) end() error {
	s.ended.Store(true)

	return s.store.Clear()
}

func (s *cliSession) close() {
	if s.notifier != nil {
		s.notifier.Close()
	}
}

// run opens a session, runs fn and saves any rotated cookies.
func run(ctx context.Context, fn func(s *cliSession) error) error {
	session, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer session.close()

	err = fn(session)

	persistErr := session.persist()
	if err != nil {
		return err
	}

	return persistErr
}
