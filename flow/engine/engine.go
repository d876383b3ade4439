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

// Package engine implements the client side state machine for embedded flow
// execution. The engine owns the authoritative step state, normalizes every
// server response, and decides the next action: render a form, auto-advance
// a no-input step, hand off to the redirect or passkey handlers, or
// terminate.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/asgardeo/flowkit/flow/assertion"
	"github.com/asgardeo/flowkit/flow/constants"
	"github.com/asgardeo/flowkit/flow/form"
	"github.com/asgardeo/flowkit/flow/model"
	"github.com/asgardeo/flowkit/flow/normalizer"
	"github.com/asgardeo/flowkit/flow/passkey"
	"github.com/asgardeo/flowkit/flow/redirect"
	"github.com/asgardeo/flowkit/internal/system/log"
	sysutils "github.com/asgardeo/flowkit/internal/system/utils"
	"github.com/asgardeo/flowkit/serviceerror"
	"github.com/asgardeo/flowkit/transport"
)

const loggerComponentName = "FlowEngine"

// Selection identifies the component or authenticator chosen for a
// submission. Exactly one of ActionID and AuthenticatorID is set; both may be
// empty when the current step has a single selected authenticator.
type Selection struct {
	ActionID        string
	AuthenticatorID string
	// EventType controls local validation: trigger actions skip it.
	EventType constants.ActionEventType
}

// Completion carries the final authentication result of a completed flow.
type Completion struct {
	AuthData  map[string]string
	Assertion string
	// Claims holds the decoded assertion claims when an assertion is present
	// and parseable.
	Claims *assertion.Claims
}

// Callbacks is the renderer seam. The engine reports state transitions
// through these; the hosting application renders and feeds user events back
// via Submit and the form accessors. Callbacks are invoked without engine
// locks held and may call back into the engine.
type Callbacks struct {
	// OnStep fires when a new step should be rendered. The authenticator is
	// non-nil when the legacy shape selected a single authenticator; a nil
	// authenticator with multiple authenticators present means the option
	// list should be shown.
	OnStep func(resp *model.FlowResponse, current *model.Authenticator)
	// OnComplete fires once when the flow reaches COMPLETE.
	OnComplete func(completion Completion)
	// OnFailure fires once when the flow reaches a terminal failure status.
	OnFailure func(message string, resp *model.FlowResponse)
	// OnError fires for non-terminal errors. The current step is unchanged
	// and the user may retry.
	OnError func(svcErr *serviceerror.ServiceError)
}

// Config parameterizes an engine instance.
type Config struct {
	// Transport drives the flow execution API. Required.
	Transport transport.Transport
	// Callbacks is the renderer seam.
	Callbacks Callbacks
	// WindowOpener enables redirection steps.
	WindowOpener redirect.Opener
	// PasskeyAuthenticator enables passkey steps.
	PasskeyAuthenticator passkey.PlatformAuthenticator
	// RedirectOrigin is the origin redirect callback messages must carry.
	RedirectOrigin string
	// RedirectMessages optionally feeds cross-context messages to redirect
	// sessions.
	RedirectMessages <-chan redirect.Message
	// RedirectPollInterval and RedirectMaxDuration tune the redirect session
	// timers; zero values select the defaults.
	RedirectPollInterval time.Duration
	RedirectMaxDuration  time.Duration
}

type handoffKind int

const (
	handoffNone handoffKind = iota
	handoffRedirect
	handoffPasskey
)

// Engine owns the state of one flow attempt. All exported methods are safe
// for concurrent use; submissions are strictly sequential per instance.
type Engine struct {
	id        string
	transport transport.Transport
	callbacks Callbacks
	opener    redirect.Opener
	passkeys  *passkey.Handler
	cfg       Config
	logger    *log.Logger

	mu                   sync.Mutex
	generation           uint64
	initialized          bool
	loading              bool
	terminal             bool
	stalled              bool
	currentFlow          *model.FlowResponse
	currentAuthenticator *model.Authenticator
	form                 *form.Tracker
	handoff              handoffKind
	session              *redirect.Session
	pendingSelection     Selection
	lastAutoKey          string
}

// New creates an engine for one flow attempt.
func New(cfg Config) (*Engine, *serviceerror.ServiceError) {
	if cfg.Transport == nil {
		return nil, &constants.ErrorMissingTransport
	}
	e := &Engine{
		id:        uuid.NewString(),
		transport: cfg.Transport,
		callbacks: cfg.Callbacks,
		opener:    cfg.WindowOpener,
		passkeys:  passkey.NewHandler(cfg.PasskeyAuthenticator),
		cfg:       cfg,
		form:      form.NewTracker(),
	}
	e.logger = log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyEngineID, e.id))
	return e, nil
}

// Initialize starts the flow. The transport init operation fires at most once
// per engine instance even if the hosting component re-invokes Initialize;
// later calls return the current step. A failed initialization leaves no step
// behind and may be retried. A fresh attempt requires Reset.
func (e *Engine) Initialize(ctx context.Context) (*model.FlowResponse, *serviceerror.ServiceError) {
	e.mu.Lock()
	if e.initialized && e.currentFlow != nil {
		resp := e.currentFlow
		e.mu.Unlock()
		e.logger.Debug("Initialize called on an initialized engine, returning current step")
		return resp, nil
	}
	if e.loading {
		e.mu.Unlock()
		return nil, &constants.ErrorSubmissionInFlight
	}
	e.initialized = true
	e.loading = true
	gen := e.generation
	e.mu.Unlock()

	svcErr := e.runRequests(ctx, model.FlowRequest{}, true, gen)
	e.mu.Lock()
	resp := e.currentFlow
	e.mu.Unlock()
	return resp, svcErr
}

// Submit advances the flow with the chosen selection and optional field
// data. The call is a rejected no-op while a submission is in flight, after
// a terminal status, or while an out-of-band handoff is pending.
func (e *Engine) Submit(ctx context.Context, selection Selection, data map[string]string) *serviceerror.ServiceError {
	e.mu.Lock()
	if svcErr := e.preflightLocked(); svcErr != nil {
		e.mu.Unlock()
		return svcErr
	}

	sel, svcErr := e.resolveSelectionLocked(selection)
	if svcErr != nil {
		e.mu.Unlock()
		return svcErr
	}

	// Local validation never reaches the transport or the error callback;
	// it only populates field errors for rendering. Trigger actions skip it.
	if sel.EventType != constants.ActionEventTypeTrigger {
		e.form.TouchAll()
		if _, ok := e.form.Validate(); !ok {
			e.mu.Unlock()
			e.logger.Debug("Submission blocked by local validation")
			return nil
		}
	}

	inputs := sysutils.MergeStringMaps(e.form.Values(), data)
	req := e.buildRequestLocked(sel, inputs)
	e.loading = true
	e.lastAutoKey = ""
	gen := e.generation
	e.mu.Unlock()

	return e.runRequests(ctx, req, false, gen)
}

// Reset discards all flow state so a fresh attempt can be initialized.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.generation++
	session := e.session
	e.session = nil
	e.initialized = false
	e.loading = false
	e.terminal = false
	e.stalled = false
	e.currentFlow = nil
	e.currentAuthenticator = nil
	e.handoff = handoffNone
	e.pendingSelection = Selection{}
	e.lastAutoKey = ""
	e.form.Reset()
	e.mu.Unlock()

	e.passkeys.Reset()
	if session != nil {
		session.Close()
	}
}

// Close tears down any pending out-of-band interaction. The engine itself
// holds no other releasable resources.
func (e *Engine) Close() {
	e.mu.Lock()
	e.generation++
	session := e.session
	e.session = nil
	e.mu.Unlock()
	if session != nil {
		session.Close()
	}
}

// CurrentFlow returns the current step. The returned value is replaced
// wholesale on step transitions and must not be mutated by the caller.
func (e *Engine) CurrentFlow() *model.FlowResponse {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentFlow
}

// CurrentAuthenticator returns the selected authenticator of the current
// step, or nil when the step shows an option list or uses components.
func (e *Engine) CurrentAuthenticator() *model.Authenticator {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentAuthenticator
}

// IsLoading reports whether a submission or initialization is in flight.
func (e *Engine) IsLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// IsTerminal reports whether the flow has reached a terminal status.
func (e *Engine) IsTerminal() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.terminal
}

// IsAwaitingHandoff reports whether an out-of-band interaction (redirect
// handshake or passkey ceremony) is pending for the current step.
func (e *Engine) IsAwaitingHandoff() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handoff != handoffNone
}

// SetFieldValue records a field value for the current step.
func (e *Engine) SetFieldValue(ref, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form.SetValue(ref, value)
}

// SetFieldTouched marks a field of the current step as touched.
func (e *Engine) SetFieldTouched(ref string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form.SetTouched(ref, true)
}

// Form exposes the form state of the current step for rendering. The tracker
// is owned by the engine; renderers read it between engine calls.
func (e *Engine) Form() *form.Tracker {
	return e.form
}

// preflightLocked applies the submission guards shared by all entry points.
func (e *Engine) preflightLocked() *serviceerror.ServiceError {
	if !e.initialized || e.currentFlow == nil {
		return &constants.ErrorFlowNotInitialized
	}
	if e.terminal {
		return &constants.ErrorFlowAlreadyTerminal
	}
	if e.loading {
		return &constants.ErrorSubmissionInFlight
	}
	if e.handoff != handoffNone {
		return &constants.ErrorHandoffInProgress
	}
	return nil
}

// resolveSelectionLocked validates the selection against the current step,
// defaulting to the selected authenticator when the caller passes an empty
// selection.
func (e *Engine) resolveSelectionLocked(selection Selection) (Selection, *serviceerror.ServiceError) {
	if selection.ActionID != "" {
		action := model.FindAction(e.currentFlow.Components, selection.ActionID)
		if action == nil {
			return Selection{}, &constants.ErrorInvalidSelection
		}
		if selection.EventType == "" {
			selection.EventType = action.EventType
		}
		return selection, nil
	}
	if selection.AuthenticatorID != "" {
		for i := range e.currentFlow.Authenticators {
			if e.currentFlow.Authenticators[i].AuthenticatorID == selection.AuthenticatorID {
				return selection, nil
			}
		}
		return Selection{}, &constants.ErrorInvalidSelection
	}
	if e.currentAuthenticator != nil {
		selection.AuthenticatorID = e.currentAuthenticator.AuthenticatorID
		return selection, nil
	}
	return Selection{}, &constants.ErrorInvalidSelection
}

// buildRequestLocked constructs the transport request for a selection. The
// flow ID is the stable key of the attempt; component selections ride in the
// action ID and legacy authenticator selections ride in the inputs.
func (e *Engine) buildRequestLocked(selection Selection, inputs map[string]string) model.FlowRequest {
	req := model.FlowRequest{
		FlowID:   e.currentFlow.FlowID,
		ActionID: selection.ActionID,
		Inputs:   inputs,
	}
	if selection.AuthenticatorID != "" {
		if req.Inputs == nil {
			req.Inputs = make(map[string]string)
		}
		req.Inputs[constants.InputAuthenticatorID] = selection.AuthenticatorID
	}
	e.pendingSelection = selection
	return req
}

// runRequests drives the transport request loop: one user-initiated request
// plus any auto-advance and passkey continuations it causes. The loop holds
// no lock during transport and ceremony calls; the loading flag keeps
// submissions sequential. isInit selects the transport init operation for
// the first iteration. gen is the attempt generation captured when the
// request was admitted; Reset and Close bump it, so a resolution arriving
// after either is dropped instead of applied against the wrong attempt.
func (e *Engine) runRequests(ctx context.Context, req model.FlowRequest, isInit bool,
	gen uint64) *serviceerror.ServiceError {
	for {
		var payload []byte
		var err error
		if isInit {
			payload, err = e.transport.Init(ctx, req)
			isInit = false
		} else {
			payload, err = e.transport.Submit(ctx, req)
		}

		e.mu.Lock()
		if e.generation != gen {
			e.mu.Unlock()
			e.logger.Debug("Dropping response for a superseded flow attempt")
			return nil
		}
		e.loading = false

		if err != nil {
			e.mu.Unlock()
			svcErr := serviceerror.CustomServiceError(constants.ErrorTransportFailure, err.Error())
			e.reportError(svcErr)
			return svcErr
		}

		resp := normalizer.Normalize(payload)
		d := e.applyResponseLocked(resp)
		e.mu.Unlock()

		switch d.kind {
		case decideError:
			e.reportError(d.svcErr)
			return d.svcErr

		case decideComplete:
			e.logger.Debug("Flow completed", log.String(log.LoggerKeyFlowID, resp.FlowID))
			if e.callbacks.OnComplete != nil {
				e.callbacks.OnComplete(*d.completion)
			}
			return nil

		case decideFailed:
			e.logger.Debug("Flow terminated with failure",
				log.String(log.LoggerKeyFlowID, resp.FlowID))
			if e.callbacks.OnFailure != nil {
				e.callbacks.OnFailure(d.failureMessage, resp)
			}
			return nil

		case decideRender:
			if e.callbacks.OnStep != nil {
				e.callbacks.OnStep(d.resp, d.authenticator)
			}
			return nil

		case decideRedirect:
			return e.startRedirect(d.redirectURL)

		case decidePasskey:
			nextReq, proceed, svcErr := e.runCeremony(ctx, d.challenge, gen)
			if svcErr != nil {
				return svcErr
			}
			if !proceed {
				return nil
			}
			req = nextReq

		case decideAutoAdvance:
			e.logger.Debug("Auto-advancing no-input step",
				log.String(log.LoggerKeyFlowID, resp.FlowID))
			req = d.nextReq
		}
	}
}

type decisionKind int

const (
	decideError decisionKind = iota
	decideComplete
	decideFailed
	decideRender
	decideRedirect
	decidePasskey
	decideAutoAdvance
)

type decision struct {
	kind           decisionKind
	svcErr         *serviceerror.ServiceError
	completion     *Completion
	failureMessage string
	redirectURL    string
	challenge      passkey.Challenge
	nextReq        model.FlowRequest
	resp           *model.FlowResponse
	authenticator  *model.Authenticator
}

// applyResponseLocked inspects a normalized response, updates the engine
// state and classifies the next action. An ERROR status leaves the current
// step unchanged so the user can retry.
func (e *Engine) applyResponseLocked(resp *model.FlowResponse) decision {
	if resp.Status == constants.FlowStatusError {
		description := resp.FailureReason
		if description == "" && len(resp.Messages) > 0 {
			description = resp.Messages[0].Text
		}
		if description == "" {
			description = normalizer.GenericFailureMessage
		}
		return decision{kind: decideError,
			svcErr: serviceerror.CustomServiceError(constants.ErrorProtocolFailure, description)}
	}

	if resp.Status == constants.FlowStatusComplete {
		e.currentFlow = resp
		e.currentAuthenticator = nil
		e.terminal = true
		e.form.Reset()
		return decision{kind: decideComplete, completion: e.buildCompletion(resp)}
	}

	if resp.Status.IsFailure() {
		e.currentFlow = resp
		e.currentAuthenticator = nil
		e.terminal = true
		e.form.Reset()
		message := constants.ErrorFlowFailure.ErrorDescription
		if len(resp.Messages) > 0 {
			message = resp.Messages[0].Text
		}
		return decision{kind: decideFailed, failureMessage: message}
	}

	// Non-terminal step: the step state is replaced wholesale and the form
	// is fully reset so no field state leaks across steps.
	e.currentFlow = resp
	e.currentAuthenticator = nil
	e.form.Reset()

	if resp.Type == constants.ResponseTypeRedirection {
		if resp.RedirectURL == "" {
			return decision{kind: decideError, svcErr: &constants.ErrorMissingRedirectURL}
		}
		e.handoff = handoffRedirect
		return decision{kind: decideRedirect, redirectURL: resp.RedirectURL}
	}

	if len(resp.Authenticators) == 1 {
		e.currentAuthenticator = &resp.Authenticators[0]
	}

	if challenge, ok := passkey.DetectChallenge(resp, e.currentAuthenticator); ok {
		if svcErr := e.checkStallLocked("passkey|" + challenge.Options); svcErr != nil {
			return decision{kind: decideError, svcErr: svcErr}
		}
		e.handoff = handoffPasskey
		return decision{kind: decidePasskey, challenge: challenge}
	}

	if e.currentAuthenticator != nil {
		e.form.DeriveFieldsFromAuthenticator(e.currentAuthenticator)
	} else {
		e.form.DeriveFields(resp.Components)
	}

	if sel, ok := e.autoAdvanceSelectionLocked(resp); ok {
		if svcErr := e.checkStallLocked("auto|" + sel.ActionID + sel.AuthenticatorID); svcErr != nil {
			return decision{kind: decideError, svcErr: svcErr}
		}
		e.loading = true
		return decision{kind: decideAutoAdvance, nextReq: e.buildRequestLocked(sel, nil)}
	}

	e.lastAutoKey = ""
	return decision{kind: decideRender, resp: resp, authenticator: e.currentAuthenticator}
}

// autoAdvanceSelectionLocked reports whether the step is a no-input continue:
// exactly one authenticator or action, not redirect or passkey bound, with no
// required parameters. A step flagged multi-option with exactly one
// authenticator is treated as the single-authenticator case.
func (e *Engine) autoAdvanceSelectionLocked(resp *model.FlowResponse) (Selection, bool) {
	if e.currentAuthenticator != nil {
		a := e.currentAuthenticator
		if !a.RequiresInput() && !a.IsRedirect() && !a.IsInternal() {
			return Selection{AuthenticatorID: a.AuthenticatorID}, true
		}
		return Selection{}, false
	}
	if len(resp.Authenticators) > 1 {
		return Selection{}, false
	}
	actions := model.Actions(resp.Components)
	if len(actions) == 1 && len(e.form.Fields()) == 0 {
		return Selection{ActionID: actions[0].ID, EventType: actions[0].EventType}, true
	}
	return Selection{}, false
}

// checkStallLocked detects an auto-advance loop that makes no protocol
// progress: the same flow returning the same continuation twice in a row.
func (e *Engine) checkStallLocked(key string) *serviceerror.ServiceError {
	key = e.currentFlow.FlowID + "|" + key
	if e.lastAutoKey == key {
		e.logger.Warn("Auto-advance stall detected",
			log.String(log.LoggerKeyFlowID, e.currentFlow.FlowID))
		e.stalled = true
		e.handoff = handoffNone
		return &constants.ErrorStallDetected
	}
	e.lastAutoKey = key
	return nil
}

// buildCompletion assembles the completion payload, decoding the assertion
// claims when one is present.
func (e *Engine) buildCompletion(resp *model.FlowResponse) *Completion {
	completion := &Completion{
		AuthData:  resp.AuthData,
		Assertion: resp.Assertion,
	}
	if completion.Assertion == "" {
		completion.Assertion = resp.AuthData["assertion"]
	}
	if completion.Assertion != "" {
		claims, err := assertion.Decode(completion.Assertion)
		if err != nil {
			e.logger.Debug("Failed to decode assertion claims", log.Error(err))
		} else {
			completion.Claims = claims
		}
	}
	return completion
}

// startRedirect hands the step off to a redirect session. Engine driven
// submissions stay suspended until the session reports back.
func (e *Engine) startRedirect(redirectURL string) *serviceerror.ServiceError {
	session, svcErr := redirect.Start(e.opener, redirectURL, redirect.Config{
		ExpectedOrigin: e.cfg.RedirectOrigin,
		Messages:       e.cfg.RedirectMessages,
		PollInterval:   e.cfg.RedirectPollInterval,
		MaxDuration:    e.cfg.RedirectMaxDuration,
	}, e.resolveRedirect, e.failRedirect)

	if svcErr != nil {
		e.mu.Lock()
		e.handoff = handoffNone
		e.mu.Unlock()
		e.reportError(svcErr)
		return svcErr
	}

	e.mu.Lock()
	e.session = session
	e.mu.Unlock()
	e.logger.Debug("Redirect handoff started",
		log.String(log.LoggerKeySessionID, session.ID()))
	return nil
}

// resolveRedirect submits the authorization result exactly as a normal
// submission for the selection that caused the redirection.
func (e *Engine) resolveRedirect(result redirect.Result) {
	e.mu.Lock()
	if e.handoff != handoffRedirect || e.currentFlow == nil {
		e.mu.Unlock()
		return
	}
	e.handoff = handoffNone
	e.session = nil
	inputs := map[string]string{
		constants.InputCode:  result.Code,
		constants.InputState: result.State,
	}
	req := e.buildRequestLocked(e.pendingSelection, inputs)
	e.loading = true
	gen := e.generation
	e.mu.Unlock()

	// The session resolves from its own goroutine; there is no caller
	// context to inherit.
	_ = e.runRequests(context.Background(), req, false, gen)
}

// failRedirect clears the handoff and surfaces the session failure. The
// current step is unchanged and the user may retry the selection.
func (e *Engine) failRedirect(svcErr *serviceerror.ServiceError) {
	e.mu.Lock()
	e.handoff = handoffNone
	e.session = nil
	e.mu.Unlock()
	e.reportError(svcErr)
}

// runCeremony invokes the passkey ceremony for a challenge and builds the
// synthetic submission carrying the credential result. A false proceed flag
// means the attempt was superseded during the ceremony and the loop must
// stop silently.
func (e *Engine) runCeremony(ctx context.Context, challenge passkey.Challenge,
	gen uint64) (model.FlowRequest, bool, *serviceerror.ServiceError) {
	e.mu.Lock()
	if e.generation != gen || e.currentFlow == nil {
		e.mu.Unlock()
		e.logger.Debug("Dropping ceremony for a superseded flow attempt")
		return model.FlowRequest{}, false, nil
	}
	flowID := e.currentFlow.FlowID
	selection := e.pendingSelection
	if e.currentAuthenticator != nil {
		selection = Selection{AuthenticatorID: e.currentAuthenticator.AuthenticatorID}
	}
	e.mu.Unlock()

	inputs, svcErr := e.passkeys.Run(ctx, flowID, challenge)

	e.mu.Lock()
	if e.generation != gen {
		e.mu.Unlock()
		e.logger.Debug("Dropping ceremony result for a superseded flow attempt")
		return model.FlowRequest{}, false, nil
	}
	e.handoff = handoffNone
	if svcErr != nil {
		e.mu.Unlock()
		e.reportError(svcErr)
		return model.FlowRequest{}, false, svcErr
	}
	req := e.buildRequestLocked(selection, inputs)
	e.loading = true
	e.mu.Unlock()
	return req, true, nil
}

// reportError surfaces a non-terminal error through the error callback.
func (e *Engine) reportError(svcErr *serviceerror.ServiceError) {
	e.logger.Debug("Reporting flow error", log.String("code", svcErr.Code),
		log.String("description", svcErr.ErrorDescription))
	if e.callbacks.OnError != nil {
		e.callbacks.OnError(svcErr)
	}
}
