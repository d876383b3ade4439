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

package main

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/asgardeo/flowkit/config"
	"github.com/asgardeo/flowkit/flow/constants"
	"github.com/asgardeo/flowkit/flow/engine"
	"github.com/asgardeo/flowkit/flow/model"
	"github.com/asgardeo/flowkit/serviceerror"
	"github.com/asgardeo/flowkit/transport"
)

const defaultCallbackAddr = "localhost:8090"

type eventKind int

const (
	eventStep eventKind = iota
	eventComplete
	eventFailed
	eventError
)

type runnerEvent struct {
	kind          eventKind
	resp          *model.FlowResponse
	authenticator *model.Authenticator
	completion    engine.Completion
	message       string
	svcErr        *serviceerror.ServiceError
}

// runner drives one flow attempt from the terminal. Engine callbacks are
// funneled into a channel so rendering and stdin prompting stay on the main
// goroutine regardless of which goroutine a step arrives on.
type runner struct {
	cfg       *config.ClientConfig
	transport transport.Transport
	events    chan runnerEvent
	stdin     *bufio.Reader
}

func newRunner(cfg *config.ClientConfig, t transport.Transport) *runner {
	return &runner{
		cfg:       cfg,
		transport: t,
		events:    make(chan runnerEvent, 8),
		stdin:     bufio.NewReader(os.Stdin),
	}
}

func (r *runner) run(ctx context.Context) error {
	eng, svcErr := engine.New(engine.Config{
		Transport: r.transport,
		Callbacks: engine.Callbacks{
			OnStep: func(resp *model.FlowResponse, current *model.Authenticator) {
				r.events <- runnerEvent{kind: eventStep, resp: resp, authenticator: current}
			},
			OnComplete: func(completion engine.Completion) {
				r.events <- runnerEvent{kind: eventComplete, completion: completion}
			},
			OnFailure: func(message string, resp *model.FlowResponse) {
				r.events <- runnerEvent{kind: eventFailed, message: message, resp: resp}
			},
			OnError: func(svcErr *serviceerror.ServiceError) {
				r.events <- runnerEvent{kind: eventError, svcErr: svcErr}
			},
		},
		WindowOpener:         &browserOpener{listenAddr: r.callbackAddr()},
		RedirectOrigin:       r.cfg.Redirect.CallbackOrigin,
		RedirectPollInterval: r.cfg.Redirect.PollInterval.Std(),
		RedirectMaxDuration:  r.cfg.Redirect.MaxDuration.Std(),
	})
	if svcErr != nil {
		return fmt.Errorf("%s: %s", svcErr.Code, svcErr.ErrorDescription)
	}
	defer eng.Close()

	fmt.Printf("Starting %s flow for application %s\n",
		r.cfg.Flow.FlowType, r.cfg.Flow.ApplicationID)
	if _, svcErr := eng.Initialize(ctx); svcErr != nil {
		return fmt.Errorf("%s: %s", svcErr.Code, svcErr.ErrorDescription)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-r.events:
			done, err := r.handleEvent(ctx, eng, event)
			if done || err != nil {
				return err
			}
		}
	}
}

func (r *runner) handleEvent(ctx context.Context, eng *engine.Engine, event runnerEvent) (bool, error) {
	switch event.kind {
	case eventComplete:
		r.printCompletion(eng, event.completion)
		return true, nil

	case eventFailed:
		fmt.Println()
		fmt.Println("Flow failed:", event.message)
		return true, nil

	case eventError:
		fmt.Println()
		fmt.Printf("Error [%s]: %s\n", event.svcErr.Code, event.svcErr.ErrorDescription)
		if eng.IsTerminal() || eng.CurrentFlow() == nil {
			return true, fmt.Errorf("%s: %s", event.svcErr.Code, event.svcErr.ErrorDescription)
		}
		// The step is unchanged after a non-terminal error, so re-prompt it.
		return false, r.promptStep(ctx, eng, eng.CurrentFlow(), eng.CurrentAuthenticator())

	case eventStep:
		return false, r.promptStep(ctx, eng, event.resp, event.authenticator)
	}
	return false, nil
}

// promptStep renders the step, collects field values and a selection from
// stdin, and submits. Local validation failures re-prompt in place.
func (r *runner) promptStep(ctx context.Context, eng *engine.Engine,
	resp *model.FlowResponse, current *model.Authenticator) error {
	for {
		r.renderStep(resp, current)

		for _, field := range eng.Form().Fields() {
			value, err := r.promptField(field.Label, field.Ref,
				field.Kind == constants.ComponentTypePasswordInput, field.Required)
			if err != nil {
				return err
			}
			eng.SetFieldValue(field.Ref, value)
		}

		selection, err := r.promptSelection(resp, current)
		if err != nil {
			return err
		}

		if svcErr := eng.Submit(ctx, selection, nil); svcErr != nil {
			fmt.Printf("Error [%s]: %s\n", svcErr.Code, svcErr.ErrorDescription)
			continue
		}
		if errs := eng.Form().FieldErrors(); len(errs) > 0 && !eng.IsLoading() &&
			!eng.IsAwaitingHandoff() && !eng.IsTerminal() {
			for ref, msg := range errs {
				fmt.Printf("  %s: %s\n", ref, msg)
			}
			continue
		}
		if eng.IsAwaitingHandoff() {
			fmt.Println("Continue in your browser; waiting for the callback...")
		}
		return nil
	}
}

func (r *runner) renderStep(resp *model.FlowResponse, current *model.Authenticator) {
	fmt.Println()
	if heading := model.Heading(resp.Components); heading != "" {
		fmt.Println("==", heading, "==")
	}
	for _, message := range resp.Messages {
		fmt.Printf("[%s] %s\n", message.Severity, message.Text)
	}
	if link, ok := resp.AdditionalData[constants.DataInviteLink]; ok {
		fmt.Println("Invite link:", link)
	}
	if current != nil && current.IDP != "" {
		fmt.Println("Continue with:", current.IDP)
	}
}

// promptSelection picks what to submit: the sole continuation when there is
// exactly one, otherwise a numbered menu of actions or authenticators.
func (r *runner) promptSelection(resp *model.FlowResponse,
	current *model.Authenticator) (engine.Selection, error) {
	if current != nil {
		return engine.Selection{}, nil
	}

	actions := model.Actions(resp.Components)
	if len(actions) == 1 {
		return engine.Selection{ActionID: actions[0].ID, EventType: actions[0].EventType}, nil
	}
	if len(actions) > 1 {
		fmt.Println("Choose an action:")
		for i, action := range actions {
			label := action.Label
			if label == "" {
				label = action.ID
			}
			fmt.Printf("  %d) %s\n", i+1, label)
		}
		index, err := r.promptIndex(len(actions))
		if err != nil {
			return engine.Selection{}, err
		}
		return engine.Selection{ActionID: actions[index].ID, EventType: actions[index].EventType}, nil
	}

	if len(resp.Authenticators) > 0 {
		fmt.Println("Choose a sign-in option:")
		for i, authenticator := range resp.Authenticators {
			label := authenticator.IDP
			if label == "" {
				label = authenticator.AuthenticatorID
			}
			fmt.Printf("  %d) %s\n", i+1, label)
		}
		index, err := r.promptIndex(len(resp.Authenticators))
		if err != nil {
			return engine.Selection{}, err
		}
		return engine.Selection{
			AuthenticatorID: resp.Authenticators[index].AuthenticatorID,
		}, nil
	}
	return engine.Selection{}, nil
}

func (r *runner) promptField(label, ref string, secret, required bool) (string, error) {
	if label == "" {
		label = ref
	}
	suffix := ""
	if required {
		suffix = " (required)"
	}
	if secret {
		suffix += " (input is echoed)"
	}
	fmt.Printf("%s%s: ", label, suffix)
	return r.readLine()
}

func (r *runner) promptIndex(count int) (int, error) {
	for {
		fmt.Printf("Selection [1-%d]: ", count)
		line, err := r.readLine()
		if err != nil {
			return 0, err
		}
		index, err := strconv.Atoi(line)
		if err == nil && index >= 1 && index <= count {
			return index - 1, nil
		}
		fmt.Println("Enter a number from the list.")
	}
}

func (r *runner) readLine() (string, error) {
	line, err := r.stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (r *runner) printCompletion(eng *engine.Engine, completion engine.Completion) {
	fmt.Println()
	fmt.Println("Flow completed.")
	if completion.Claims != nil {
		if completion.Claims.Subject != "" {
			fmt.Println("Subject:", completion.Claims.Subject)
		}
		if completion.Claims.Issuer != "" {
			fmt.Println("Issuer:", completion.Claims.Issuer)
		}
	}
	if completion.Assertion != "" {
		fmt.Println("Assertion:", completion.Assertion)
	}
	for key, value := range completion.AuthData {
		if key == "assertion" {
			continue
		}
		fmt.Printf("%s: %s\n", key, value)
	}
	if flow := eng.CurrentFlow(); flow != nil {
		if link, ok := flow.AdditionalData[constants.DataInviteLink]; ok {
			fmt.Println("Invite link:", link)
		}
	}
}

// callbackAddr derives the local listen address from the configured callback
// origin, falling back to a fixed local port.
func (r *runner) callbackAddr() string {
	origin := r.cfg.Redirect.CallbackOrigin
	if origin == "" {
		return defaultCallbackAddr
	}
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return defaultCallbackAddr
	}
	return parsed.Host
}
