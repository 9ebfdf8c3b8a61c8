// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package twsbus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"

	"code.hybscloud.com/twsbus/internal/wire"
)

// greeting is the literal 4-byte prefix every connection starts with,
// before any length-prefixed framing begins.
const greeting = "API\x00"

// handshakeResult is what a successful handshake establishes: the
// negotiated protocol version and the two pieces of account state the
// server pushes unsolicited right after StartApi.
type handshakeResult struct {
	ServerVersion   int32
	ServerTime      string
	ManagedAccounts []string
	NextOrderID     int32
}

// handshake runs spec §4.3's five steps over sock. It does not retry;
// callers drive retries (see reconnectWithBackoff).
func handshake(sock wire.Socket, opts *Options) (*handshakeResult, error) {
	if err := sock.WriteRaw([]byte(greeting)); err != nil {
		return nil, fmt.Errorf("twsbus: writing greeting: %w", err)
	}

	versionField := fmt.Sprintf("v%d..%d", opts.MinServerVersion, opts.MaxServerVersion)
	if err := sock.WriteAll(wire.Frame([]byte(versionField))); err != nil {
		return nil, fmt.Errorf("twsbus: writing version greeting: %w", err)
	}

	payload, err := sock.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("twsbus: reading server version: %w", err)
	}
	fields := wire.Split(payload)
	if len(fields) < 2 {
		return nil, fmt.Errorf("twsbus: %w: malformed server version reply", ErrUnexpectedResponseShape)
	}
	serverVersion, err := strconv.ParseInt(fields[0], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("twsbus: parsing server version: %w", err)
	}

	req := wire.NewRequest(wire.OutStartAPI)
	req.PushInt(2) // StartApi version
	req.PushInt(opts.ClientID)
	req.PushString("")
	if err := sock.WriteAll(wire.Frame(req.Encode())); err != nil {
		return nil, fmt.Errorf("twsbus: writing StartApi: %w", err)
	}

	result := &handshakeResult{ServerVersion: int32(serverVersion), ServerTime: fields[1]}
	const maxIntakeFrames = 64
	haveNextOrderID, haveManagedAccounts := false, false
	for i := 0; i < maxIntakeFrames && !(haveNextOrderID && haveManagedAccounts); i++ {
		payload, err := sock.ReadFrame()
		if err != nil {
			return nil, fmt.Errorf("twsbus: reading handshake intake: %w", err)
		}
		f := wire.NewFrame(wire.Split(payload))
		switch f.MessageType() {
		case wire.InNextValidID:
			f.Skip() // message type
			f.Skip() // version
			id, err := f.NextInt()
			if err != nil {
				return nil, fmt.Errorf("twsbus: parsing NextValidId: %w", err)
			}
			result.NextOrderID = id
			haveNextOrderID = true
		case wire.InManagedAccounts:
			f.Skip()
			f.Skip()
			accounts, err := f.NextString()
			if err != nil {
				return nil, fmt.Errorf("twsbus: parsing ManagedAccounts: %w", err)
			}
			result.ManagedAccounts = splitManagedAccounts(accounts)
			haveManagedAccounts = true
		}
	}
	if !haveNextOrderID || !haveManagedAccounts {
		return nil, fmt.Errorf("twsbus: %w: handshake intake cap exceeded", ErrConnectionFailed)
	}
	return result, nil
}

func splitManagedAccounts(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	accounts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			accounts = append(accounts, p)
		}
	}
	return accounts
}

// ErrUnexpectedResponseShape reports that a frame expected to carry a
// specific field layout (the handshake's server-version/server-time
// pair) did not.
var ErrUnexpectedResponseShape = fmt.Errorf("twsbus: unexpected response shape")

// reconnectWithBackoff re-dials sock and re-runs the handshake, up to
// opts.MaxReconnectAttempts times, sleeping an exponentially growing
// delay between attempts via sock.Sleep so tests can drive the clock
// deterministically instead of a real timer.
func reconnectWithBackoff(sock wire.Socket, opts *Options, log *logrus.Logger) (*handshakeResult, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.ReconnectBaseDelay
	b.MaxInterval = opts.ReconnectMaxDelay

	var lastErr error
	for attempt := 1; attempt <= opts.MaxReconnectAttempts; attempt++ {
		if attempt > 1 {
			delay := b.NextBackOff()
			if delay == backoff.Stop {
				break
			}
			log.WithField("attempt", attempt).WithField("delay", delay).Debug("twsbus: reconnect backoff")
			sock.Sleep(delay)
		}

		if err := sock.Reconnect(); err != nil {
			lastErr = err
			log.WithError(err).WithField("attempt", attempt).Warn("twsbus: reconnect dial failed")
			continue
		}
		result, err := handshake(sock, opts)
		if err != nil {
			lastErr = err
			log.WithError(err).WithField("attempt", attempt).Warn("twsbus: reconnect handshake failed")
			continue
		}
		log.WithField("attempt", attempt).Info("twsbus: reconnected")
		return result, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, lastErr)
}
