// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package twsbus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"code.hybscloud.com/twsbus/internal/wire"
)

// TestBusPlaceOrderExecutionAndCommissionPinning exercises spec.md §8's
// place-market-order scenario end to end through a live Bus: an
// OrderStatus, then an ExecutionData naming the order id, then a bare
// CommissionReport that only carries the execution id, must all land
// on the same order subscription.
func TestBusPlaceOrderExecutionAndCommissionPinning(t *testing.T) {
	sock := &fakeSocket{}
	hr := &handshakeResult{ServerVersion: 178, NextOrderID: 501}
	bus := NewBus(sock, hr, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus.Start(ctx)
	defer func() {
		bus.Shutdown()
		_ = bus.Wait()
	}()

	orderID := bus.NextOrderID()
	req := wire.NewRequest(wire.OutPlaceOrder)
	ch, err := bus.openOrder(orderID, req)
	if err != nil {
		t.Fatalf("openOrder() error = %v", err)
	}

	sock.enqueue(fakeStep{payload: framePayload("3", "1", "501", "Filled", "100", "0", "150.0", "123456", "0", "150.0", "7", "")})
	execFields := make([]string, 20)
	for i := range execFields {
		execFields[i] = "0"
	}
	execFields[0] = "11" // InExecutionData
	execFields[3] = "501" // order id
	execFields[14] = "exec-501"
	sock.enqueue(fakeStep{payload: framePayload(execFields...)})
	sock.enqueue(fakeStep{payload: framePayload("59", "1", "exec-501", "1.25", "USD", "")})

	statusR := <-ch.recv()
	if statusR.Frame == nil || statusR.Frame.MessageType() != wire.InOrderStatus {
		t.Fatalf("first delivery = %+v, want InOrderStatus", statusR)
	}
	execR := <-ch.recv()
	if execR.Frame == nil || execR.Frame.MessageType() != wire.InExecutionData {
		t.Fatalf("second delivery = %+v, want InExecutionData", execR)
	}
	commissionR := <-ch.recv()
	if commissionR.Frame == nil || commissionR.Frame.MessageType() != wire.InCommissionReport {
		t.Fatalf("third delivery = %+v, want InCommissionReport routed via the late-bound execution id", commissionR)
	}
}

// TestBusWarningWhileSubscribedDoesNotDisturbTheStream confirms a live
// shared subscription keeps receiving its own frames undisturbed after
// a warning-band error frame arrives mid-stream.
func TestBusWarningWhileSubscribedDoesNotDisturbTheStream(t *testing.T) {
	sock := &fakeSocket{}
	sock.enqueue(fakeStep{payload: framePayload("61", "DU123", "265598", "AAPL", "STK", "", "0", "", "", "SMART", "USD", "AAPL", "100", "150.5")})
	sock.enqueue(fakeStep{payload: framePayload("4", "2", "-1", "2104", "market data farm connection is OK")})
	sock.enqueue(fakeStep{payload: framePayload("62")})

	hr := &handshakeResult{ServerVersion: 178, NextOrderID: 1}
	bus := NewBus(sock, hr, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus.Start(ctx)
	defer func() {
		bus.Shutdown()
		_ = bus.Wait()
	}()

	ch, err := bus.openShared(wire.OutRequestPositions, wire.NewRequest(wire.OutRequestPositions))
	if err != nil {
		t.Fatalf("openShared() error = %v", err)
	}

	first := <-ch.recv()
	if first.Frame == nil || first.Frame.MessageType() != wire.InPosition {
		t.Fatalf("first delivery = %+v, want InPosition (warning frame must be dropped, not delivered)", first)
	}
	second := <-ch.recv()
	if second.Frame == nil || second.Frame.MessageType() != wire.InPositionEnd {
		t.Fatalf("second delivery = %+v, want InPositionEnd right after the dropped warning", second)
	}
}

// TestBusDoubleOrderUpdateSinkIsRejected covers spec.md §8's
// double-subscribe scenario: a second sink while one is already live
// gets ErrAlreadySubscribed, and concurrent callers racing trySet's
// lock-guarded check-and-set produce exactly one winner.
func TestBusDoubleOrderUpdateSinkIsRejected(t *testing.T) {
	sock := &fakeSocket{}
	hr := &handshakeResult{ServerVersion: 178, NextOrderID: 1}
	bus := NewBus(sock, hr, testOptions())

	first, err := bus.openOrderUpdateStream()
	if err != nil {
		t.Fatalf("first openOrderUpdateStream() error = %v", err)
	}
	defer first.close()

	_, err = bus.openOrderUpdateStream()
	if !errors.Is(err, ErrAlreadySubscribed) {
		t.Fatalf("second openOrderUpdateStream() error = %v, want ErrAlreadySubscribed", err)
	}
}

func TestBusDoubleOrderUpdateSinkConcurrentCallersCollapseToOneWinner(t *testing.T) {
	sock := &fakeSocket{}
	hr := &handshakeResult{ServerVersion: 178, NextOrderID: 1}
	bus := NewBus(sock, hr, testOptions())

	const callers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	var successes, alreadySubscribed int

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch, err := bus.openOrderUpdateStream()
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
				_ = ch
			case errors.Is(err, ErrAlreadySubscribed):
				alreadySubscribed++
			default:
				t.Errorf("openOrderUpdateStream() unexpected error = %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("successes = %d, want exactly 1 winner across %d concurrent callers", successes, callers)
	}
	if alreadySubscribed != callers-1 {
		t.Fatalf("alreadySubscribed = %d, want %d", alreadySubscribed, callers-1)
	}
}
