/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package redirect drives the cross-window handshake for redirection steps.
// The identity provider's continuation happens in a browsing context the
// engine does not control, so two independent completion signals race: a
// cross-context message and a periodic inspection of the context's URL.
package redirect

import (
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/asgardeo/flowkit/flow/constants"
	"github.com/asgardeo/flowkit/internal/system/log"
	"github.com/asgardeo/flowkit/serviceerror"
)

const (
	loggerComponentName = "RedirectSession"

	// DefaultPollInterval is the interval between URL inspections of the
	// opened browsing context.
	DefaultPollInterval = time.Second
	// DefaultMaxDuration is the hard ceiling after which an unresolved
	// handshake is abandoned so the timer cannot leak indefinitely.
	DefaultMaxDuration = 10 * time.Minute
)

// Window models a browsing context opened for a redirection step. The
// context is exclusively owned by one session for the session's lifetime.
type Window interface {
	// Location returns the context's current URL. Implementations are
	// expected to fail for cross-origin navigations; the session treats such
	// failures as transient and keeps polling.
	Location() (string, error)
	// Closed reports whether the context has been closed.
	Closed() bool
	// Close closes the context. Closing an already closed context is a no-op.
	Close() error
}

// Opener opens a new browsing context at the given URL.
type Opener interface {
	Open(url string) (Window, error)
}

// Message is a cross-context message observed by the hosting application and
// fed into the session.
type Message struct {
	Origin string
	Source Window
	Data   map[string]string
}

// Result carries the authorization outcome of a resolved handshake.
type Result struct {
	Code  string
	State string
}

// Config parameterizes a redirect session.
type Config struct {
	// ExpectedOrigin is the origin the callback is expected to post from.
	// Messages from any other origin are ignored.
	ExpectedOrigin string
	// Messages optionally feeds cross-context messages into the session.
	Messages <-chan Message
	// PollInterval overrides DefaultPollInterval when positive.
	PollInterval time.Duration
	// MaxDuration overrides DefaultMaxDuration when positive.
	MaxDuration time.Duration
}

// Session owns one redirect handshake: the opened window, the message
// listener and the polling timer. Exactly one completion signal wins; all
// termination paths release the listener, the timer and the window.
type Session struct {
	id         string
	window     Window
	cfg        Config
	onResolved func(Result)
	onFailed   func(*serviceerror.ServiceError)

	done         chan struct{}
	teardownOnce sync.Once
	resolveOnce  sync.Once
	logger       *log.Logger
}

// Start opens a browsing context at redirectURL and begins racing the message
// and poll signals. If the context cannot be opened the failure is reported
// immediately and no session is created.
func Start(opener Opener, redirectURL string, cfg Config, onResolved func(Result),
	onFailed func(*serviceerror.ServiceError)) (*Session, *serviceerror.ServiceError) {
	if opener == nil {
		return nil, &constants.ErrorRedirectUnavailable
	}

	window, err := opener.Open(redirectURL)
	if err != nil || window == nil {
		return nil, &constants.ErrorRedirectBlocked
	}

	session := &Session{
		id:         uuid.NewString(),
		window:     window,
		cfg:        cfg,
		onResolved: onResolved,
		onFailed:   onFailed,
		done:       make(chan struct{}),
	}
	session.logger = log.GetLogger().With(
		log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeySessionID, session.id))

	if session.cfg.PollInterval <= 0 {
		session.cfg.PollInterval = DefaultPollInterval
	}
	if session.cfg.MaxDuration <= 0 {
		session.cfg.MaxDuration = DefaultMaxDuration
	}

	go session.run()
	return session, nil
}

// ID returns the session correlation identifier.
func (s *Session) ID() string {
	return s.id
}

// Close tears the session down without reporting a result: the poll timer is
// stopped, the message listener detached and the window closed if still open.
// Close is idempotent and runs on every termination path.
func (s *Session) Close() {
	s.teardownOnce.Do(func() {
		close(s.done)
		if s.window != nil && !s.window.Closed() {
			if err := s.window.Close(); err != nil {
				s.logger.Debug("Failed to close browsing context", log.Error(err))
			}
		}
	})
}

// run races the two completion signals until one wins or the session is
// closed. Leaving this loop detaches the message listener; the ticker and
// ceiling timer are released on exit.
func (s *Session) run() {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()
	ceiling := time.NewTimer(s.cfg.MaxDuration)
	defer ceiling.Stop()

	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-s.cfg.Messages:
			if !ok {
				// Host closed the message feed; the poll signal keeps running.
				s.cfg.Messages = nil
				continue
			}
			if s.handleMessage(msg) {
				return
			}
		case <-ticker.C:
			if s.pollTick() {
				return
			}
		case <-ceiling.C:
			s.logger.Warn("Redirect handshake exceeded the maximum duration")
			s.fail(&constants.ErrorRedirectTimeout)
			return
		}
	}
}

// handleMessage applies the message signal. A message is accepted only when
// it originates from the session's own window at the expected origin and
// carries both an authorization code and a state value. Returns true when the
// session terminated.
func (s *Session) handleMessage(msg Message) bool {
	if msg.Source != nil && msg.Source != s.window {
		return false
	}
	if s.cfg.ExpectedOrigin != "" && msg.Origin != s.cfg.ExpectedOrigin {
		s.logger.Debug("Ignoring message from unexpected origin",
			log.String("origin", msg.Origin))
		return false
	}
	if errParam := msg.Data[paramError]; errParam != "" {
		s.fail(serviceerror.CustomServiceError(constants.ErrorRedirectDenied,
			"Identity provider returned error: "+errParam))
		return true
	}
	code := msg.Data[paramCode]
	state := msg.Data[paramState]
	if code == "" || state == "" {
		return false
	}
	s.resolve(Result{Code: code, State: state})
	return true
}

// pollTick applies the poll signal: a best-effort inspection of the window's
// current URL. Cross-origin reads fail while the provider's own redirect
// chain is in progress; those failures are ignored and polling continues.
// Returns true when the session terminated.
func (s *Session) pollTick() bool {
	if s.window.Closed() {
		s.fail(&constants.ErrorRedirectWindowClosed)
		return true
	}

	location, err := s.window.Location()
	if err != nil || location == "" {
		return false
	}

	parsed, err := url.Parse(location)
	if err != nil {
		return false
	}
	query := parsed.Query()

	if errParam := query.Get(paramError); errParam != "" {
		s.fail(serviceerror.CustomServiceError(constants.ErrorRedirectDenied,
			"Identity provider returned error: "+errParam))
		return true
	}
	if code := query.Get(paramCode); code != "" {
		s.resolve(Result{Code: code, State: query.Get(paramState)})
		return true
	}
	return false
}

// resolve reports success exactly once. The latch makes the slower signal a
// no-op, so a message event and a poll hit carrying the same result produce
// one submission and one window close.
func (s *Session) resolve(result Result) {
	s.resolveOnce.Do(func() {
		s.logger.Debug("Redirect handshake resolved")
		s.Close()
		if s.onResolved != nil {
			s.onResolved(result)
		}
	})
}

// fail reports failure exactly once, running the same teardown as success.
func (s *Session) fail(svcErr *serviceerror.ServiceError) {
	s.resolveOnce.Do(func() {
		s.logger.Debug("Redirect handshake failed", log.String("code", svcErr.Code))
		s.Close()
		if s.onFailed != nil {
			s.onFailed(svcErr)
		}
	})
}

const (
	paramCode  = "code"
	paramState = "state"
	paramError = "error"
)
