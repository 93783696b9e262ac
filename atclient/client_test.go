package atclient_test

import (
	"bytes"
	"testing"

	"atgo/atclient"
	"atgo/fixture"
	"atgo/serialio"
	"atgo/spsc"
)

// mockWriter is a hand-written transport fake: it just appends every
// written byte.
type mockWriter struct {
	buf bytes.Buffer
}

func (w *mockWriter) WriteByte(b byte) (serialio.WriteStatus, error) {
	w.buf.WriteByte(b)
	return serialio.WriteOK, nil
}

func (w *mockWriter) Flush() (serialio.WriteStatus, error) {
	return serialio.WriteOK, nil
}

// mockTimer always reports elapsed.
type mockTimer struct {
	startCalls int
	lastMs     uint32
}

func (t *mockTimer) Start(durationMs uint32) {
	t.startCalls++
	t.lastMs = durationMs
}

func (t *mockTimer) Wait() bool { return true }

type harness struct {
	client  *atclient.Client
	tx      *mockWriter
	timer   *mockTimer
	resProd spsc.ResponseProducer
	urcProd spsc.URCProducer
	comCons spsc.CommandConsumer
}

func setup(mode atclient.Mode) *harness {
	resQ := spsc.NewResponseQueue(4)
	urcQ := spsc.NewURCQueue(4)
	comQ := spsc.NewCommandQueue(4)

	tx := &mockWriter{}
	timer := &mockTimer{}

	cfg := atclient.DefaultConfig(mode)
	client := atclient.New(tx, timer, resQ.Consumer(), urcQ.Consumer(), comQ.Producer(), cfg)

	return &harness{
		client:  client,
		tx:      tx,
		timer:   timer,
		resProd: resQ.Producer(),
		urcProd: urcQ.Producer(),
		comCons: comQ.Consumer(),
	}
}

func dontReset() *fixture.ResetMode {
	r := fixture.DontReset
	return &r
}

func doReset() *fixture.ResetMode {
	r := fixture.Reset
	return &r
}

func TestBlockingHappyPath(t *testing.T) {
	h := setup(atclient.Blocking)
	cmd := fixture.SetModuleFunctionality{Fun: fixture.APM, Rst: dontReset()}

	h.resProd.Enqueue(spsc.OkResponse(spsc.NewPayload(nil)))

	if h.client.State() != atclient.Idle {
		t.Fatalf("expected Idle before send")
	}

	resp, err := h.client.Send(cmd)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, ok := resp.(fixture.NoResponse); !ok {
		t.Errorf("got response %#v, want NoResponse", resp)
	}
	if h.client.State() != atclient.Idle {
		t.Errorf("expected Idle after send, got %v", h.client.State())
	}

	want := "AT+CFUN=4,0\r\n"
	if got := h.tx.buf.String(); got != want {
		t.Errorf("got transport bytes %q, want %q", got, want)
	}
}

// Serialization follows a command's declared field positions, not
// its struct field order.
func TestReversePositionalSerialization(t *testing.T) {
	h := setup(atclient.Blocking)

	h.resProd.Enqueue(spsc.OkResponse(spsc.NewPayload(nil)))
	if _, err := h.client.Send(fixture.SetModuleFunctionality{Fun: fixture.APM, Rst: dontReset()}); err != nil {
		t.Fatalf("first send: %v", err)
	}

	h.resProd.Enqueue(spsc.OkResponse(spsc.NewPayload(nil)))
	if _, err := h.client.Send(fixture.ReverseFunctionality{Fun: fixture.DM, Rst: doReset()}); err != nil {
		t.Fatalf("second send: %v", err)
	}

	want := "AT+CFUN=4,0\r\nAT+FUN=1,6\r\n"
	if got := h.tx.buf.String(); got != want {
		t.Errorf("got transport bytes %q, want %q", got, want)
	}
}

func TestNonBlockingPolling(t *testing.T) {
	h := setup(atclient.NonBlocking)
	cmd := fixture.SetModuleFunctionality{Fun: fixture.APM, Rst: dontReset()}

	_, err := h.client.Send(cmd)
	if err != atclient.ErrWouldBlock {
		t.Fatalf("first send: got err %v, want ErrWouldBlock", err)
	}
	if h.client.State() != atclient.AwaitingResponse {
		t.Fatalf("expected AwaitingResponse, got %v", h.client.State())
	}
	afterFirst := h.tx.buf.String()
	if afterFirst == "" {
		t.Fatalf("expected bytes to be emitted on first send")
	}

	// Retry while AwaitingResponse with no response queued: no bytes
	// re-emitted, still would-block.
	_, err = h.client.Send(cmd)
	if err != atclient.ErrWouldBlock {
		t.Fatalf("retry send: got err %v, want ErrWouldBlock", err)
	}
	if h.tx.buf.String() != afterFirst {
		t.Errorf("retry re-emitted bytes: got %q, want unchanged %q", h.tx.buf.String(), afterFirst)
	}

	h.resProd.Enqueue(spsc.OkResponse(spsc.NewPayload(nil)))

	resp, err := h.client.Send(cmd)
	if err != nil {
		t.Fatalf("final send: %v", err)
	}
	if _, ok := resp.(fixture.NoResponse); !ok {
		t.Errorf("got response %#v, want NoResponse", resp)
	}
	if h.client.State() != atclient.Idle {
		t.Errorf("expected Idle after response, got %v", h.client.State())
	}
	if h.tx.buf.String() != afterFirst {
		t.Errorf("final poll re-emitted bytes: got %q, want unchanged %q", h.tx.buf.String(), afterFirst)
	}
}

func TestResponseMixedArgOrder(t *testing.T) {
	h := setup(atclient.Blocking)
	cmd := fixture.QueryCUN{Fun: fixture.APM, Rst: dontReset()}

	h.resProd.Enqueue(spsc.OkResponse(spsc.NewPayload([]byte(`+CUN: "0123456789012345",22,16`))))

	resp, err := h.client.Send(cmd)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, ok := resp.(fixture.TestResponseString)
	if !ok {
		t.Fatalf("got response %#v, want TestResponseString", resp)
	}
	want := fixture.TestResponseString{Socket: 22, Length: 16, Data: "0123456789012345"}
	if got != want {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

// The response schema declares its quoted string field last
// (socket@0, length@1, data@2); an unquoted value in that position
// is invalid even though it parses fine as a number.
func TestInvalidResponse(t *testing.T) {
	h := setup(atclient.Blocking)
	cmd := fixture.QueryCDATA{Fun: fixture.APM, Rst: dontReset()}

	h.resProd.Enqueue(spsc.OkResponse(spsc.NewPayload([]byte("+CDATA: 22,16,22"))))

	_, err := h.client.Send(cmd)
	var atErr *atclient.Error
	if err == nil {
		t.Fatalf("expected an error, got nil")
	}
	if !castError(err, &atErr) {
		t.Fatalf("got err %v (%T), want *atclient.Error", err, err)
	}
	if atErr.Kind != atclient.KindParseString {
		t.Errorf("got kind %v, want ParseString", atErr.Kind)
	}
	if h.client.State() != atclient.Idle {
		t.Errorf("expected Idle after parse error, got %v", h.client.State())
	}
}

func castError(err error, target **atclient.Error) bool {
	e, ok := err.(*atclient.Error)
	if !ok {
		return false
	}
	*target = e
	return true
}

func TestURCRoundTrip(t *testing.T) {
	h := setup(atclient.NonBlocking)

	h.urcProd.Enqueue(spsc.NewPayload([]byte("+UMWI: 0, 1")))

	if h.client.State() != atclient.Idle {
		t.Fatalf("expected Idle before check_urc")
	}

	v, ok := h.client.CheckURC(fixture.Urc{})
	if !ok {
		t.Fatalf("expected a URC to be parsed")
	}
	want := fixture.MessageWaitingIndication{Status: 0, Code: 1}
	if got, ok := v.(fixture.MessageWaitingIndication); !ok || got != want {
		t.Errorf("got %#v, want %#v", v, want)
	}
	if h.client.State() != atclient.Idle {
		t.Errorf("expected Idle after check_urc, got %v", h.client.State())
	}
}

// A stale response arriving while Idle is discarded without a state
// change and without rearming the cooldown.
func TestStaleResponseWhileIdleIsDiscarded(t *testing.T) {
	h := setup(atclient.NonBlocking)
	cmd := fixture.SetModuleFunctionality{Fun: fixture.APM, Rst: dontReset()}

	if _, err := h.client.Send(cmd); err != atclient.ErrWouldBlock {
		t.Fatalf("got err %v, want ErrWouldBlock", err)
	}
	h.resProd.Enqueue(spsc.OkResponse(spsc.NewPayload(nil)))
	if _, err := h.client.CheckResponse(cmd); err != nil {
		t.Fatalf("expected the queued frame to resolve the turn, got err %v", err)
	}

	startsBefore := h.timer.startCalls
	if h.client.State() != atclient.Idle {
		t.Fatalf("expected Idle after first consumption")
	}

	h.resProd.Enqueue(spsc.OkResponse(spsc.NewPayload([]byte("late"))))
	_, err := h.client.CheckResponse(cmd)
	if err != atclient.ErrWouldBlock {
		t.Errorf("got err %v, want ErrWouldBlock for stale frame", err)
	}
	if h.client.State() != atclient.Idle {
		t.Errorf("expected Idle unchanged, got %v", h.client.State())
	}
	if h.timer.startCalls != startsBefore {
		t.Errorf("expected cooldown timer not rearmed by stale frame")
	}
}

// BoundedTimeout mode surfaces Timeout and best-effort signals
// ClearBuffer when no response ever arrives.
func TestBoundedTimeoutElapses(t *testing.T) {
	h := setup(atclient.BoundedTimeout)
	cmd := fixture.SetModuleFunctionality{Fun: fixture.APM, Rst: dontReset()}

	_, err := h.client.Send(cmd)
	if !atclient.IsTimeout(err) {
		t.Fatalf("got err %v, want a Timeout error", err)
	}
	if h.client.State() != atclient.Idle {
		t.Errorf("expected Idle after timeout, got %v", h.client.State())
	}

	cmdTag, ok := h.comCons.Dequeue()
	if !ok {
		t.Fatalf("expected a ClearBuffer control command to be signaled")
	}
	if cmdTag.Tag != spsc.ClearBuffer {
		t.Errorf("got control tag %v, want ClearBuffer", cmdTag.Tag)
	}
}
