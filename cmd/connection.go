// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/term"

	"github.com/Thermoquad/chamberctl/pkg/chamber"
)

// WebSocketTransport drives a chamber attached to a remote serial bridge.
// The bridge relays binary WebSocket messages to and from the chamber's
// serial port byte for byte.
type WebSocketTransport struct {
	conn      *websocket.Conn
	buf       []byte
	bufOffset int
	closed    bool
}

// ErrBridgeClosed is returned when reading from a closed bridge connection
var ErrBridgeClosed = fmt.Errorf("websocket bridge connection closed")

func (w *WebSocketTransport) Read(p []byte) (int, error) {
	if w.closed {
		return 0, ErrBridgeClosed
	}

	// Serve buffered bridge bytes first
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closed = true
			return 0, err
		}

		// Only binary messages carry chamber bytes
		if messageType != websocket.BinaryMessage {
			continue
		}

		w.buf = data
		w.bufOffset = 0
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	}
}

func (w *WebSocketTransport) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// ResetInputBuffer drops any bridge bytes buffered locally. Bytes still in
// flight on the bridge cannot be discarded; the exchange engine's echo
// validation catches those.
func (w *WebSocketTransport) ResetInputBuffer() error {
	w.buf = nil
	w.bufOffset = 0
	return nil
}

func (w *WebSocketTransport) Close() error {
	return w.conn.Close()
}

// OpenBridgeTransport opens a WebSocket bridge connection with HTTP Basic auth
func OpenBridgeTransport(wsURL, username, password string, skipSSLVerify bool) (chamber.Transport, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("bridge connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("bridge connection failed: %v", err)
	}

	return &WebSocketTransport{conn: conn}, nil
}

// GetPassword retrieves the bridge password from environment or prompts the user
func GetPassword() (string, error) {
	if pw := os.Getenv("CHAMBERCTL_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// loadConfig reads the config file named by --config, or the default
// ~/.chamberctl.yaml when the flag is unset.
func loadConfig() (*chamber.Config, error) {
	path := configPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return chamber.DefaultConfig(), nil
		}
		path = filepath.Join(home, ".chamberctl.yaml")
	}
	return chamber.LoadConfig(path)
}

// sessionOptions merges config file values with command-line flags (flags
// win) into chamber session options plus a human-readable connection label.
func sessionOptions() (chamber.Options, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return chamber.Options{}, "", err
	}

	if portName == "" {
		portName = cfg.Serial.Port
	}
	if baudRate == 0 {
		baudRate = cfg.Serial.Baud
	}
	if wsURL == "" {
		wsURL = cfg.Bridge.URL
	}
	if wsUsername == "" {
		wsUsername = cfg.Bridge.Username
	}
	if cfg.Bridge.NoSSLVerify {
		wsNoSSLVerify = true
	}
	if cfg.Simulate {
		simulate = true
	}

	opts := chamber.Options{
		Log: func(line string) { log.Print(line) },
	}

	if simulate {
		opts.Mode = chamber.Simulated
		return opts, "Simulated chamber", nil
	}

	if wsURL != "" {
		password := ""
		if wsUsername != "" {
			password, err = GetPassword()
			if err != nil {
				return chamber.Options{}, "", err
			}
		}

		t, err := OpenBridgeTransport(wsURL, wsUsername, password, wsNoSSLVerify)
		if err != nil {
			return chamber.Options{}, "", err
		}

		opts.Transport = t
		return opts, fmt.Sprintf("Bridge: %s", wsURL), nil
	}

	if portName == "" {
		return chamber.Options{}, "", fmt.Errorf("no serial port configured: pass --port, --url, or --simulate")
	}

	opts.Port = portName
	opts.BaudRate = baudRate
	return opts, fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate), nil
}

// openChamber builds and opens a chamber session from flags and config.
func openChamber() (*chamber.Chamber, string, error) {
	opts, connInfo, err := sessionOptions()
	if err != nil {
		return nil, "", err
	}

	c := chamber.New(opts)
	if err := c.Open(); err != nil {
		return nil, "", err
	}
	return c, connInfo, nil
}
