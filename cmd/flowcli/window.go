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
	"context"
	"errors"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/asgardeo/flowkit/flow/redirect"
)

// browserOpener opens redirection steps in the system browser and captures
// the provider's callback on a local listener. The captured callback URL is
// exposed through the Window contract, so the engine's poll signal resolves
// the handshake the same way it would against a popup.
type browserOpener struct {
	listenAddr string
}

// Open launches the system browser at the target URL and starts the callback
// listener backing the returned window.
func (o *browserOpener) Open(target string) (redirect.Window, error) {
	window := &callbackWindow{}

	router := chi.NewRouter()
	router.Get("/callback", window.handleCallback)
	window.server = &http.Server{
		Addr:              o.listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := window.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			window.mu.Lock()
			window.closed = true
			window.mu.Unlock()
		}
	}()

	if err := openBrowser(target); err != nil {
		_ = window.Close()
		return nil, err
	}
	return window, nil
}

// callbackWindow adapts the local callback listener to the redirect window
// contract. Location stays empty until the provider redirects back.
type callbackWindow struct {
	mu       sync.Mutex
	server   *http.Server
	location string
	closed   bool
}

func (w *callbackWindow) handleCallback(rw http.ResponseWriter, r *http.Request) {
	w.mu.Lock()
	w.location = "http://" + r.Host + r.URL.String()
	w.mu.Unlock()

	rw.Header().Set("Content-Type", "text/plain")
	_, _ = rw.Write([]byte("Authentication continued in the terminal. You can close this tab."))
}

// Location returns the callback URL once the provider has redirected back.
func (w *callbackWindow) Location() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.location, nil
}

// Closed reports whether the listener has been shut down.
func (w *callbackWindow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Close shuts the callback listener down. Closing twice is a no-op.
func (w *callbackWindow) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	server := w.server
	w.mu.Unlock()

	if server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// openBrowser launches the platform browser at the given URL.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
