package notify

import (
	"context"
	"errors"
	"io"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"aihr-backend/internal/shared/upstream"
)

func TestRenderInviteEscapesName(t *testing.T) {
	body, err := RenderInvite("<b>Ann</b>", "http://localhost:5173/interview/abc")
	if err != nil {
		t.Fatalf("RenderInvite: %v", err)
	}
	if strings.Contains(body, "<b>Ann</b>") {
		t.Fatalf("name should be escaped: %s", body)
	}
	if !strings.Contains(body, `href="http://localhost:5173/interview/abc"`) {
		t.Fatalf("link missing: %s", body)
	}
}

// fakeSMTPServer speaks just enough SMTP for one PLAIN-authenticated session.
type fakeSMTPServer struct {
	ln       net.Listener
	authCode string
	mu       sync.Mutex
	from     string
	rcpt     []string
	data     string
}

func newFakeSMTPServer(t *testing.T, authCode string) *fakeSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &fakeSMTPServer{ln: ln, authCode: authCode}
	t.Cleanup(func() { ln.Close() })
	go srv.serve()
	return srv
}

func (f *fakeSMTPServer) port() string {
	return strconv.Itoa(f.ln.Addr().(*net.TCPAddr).Port)
}

func (f *fakeSMTPServer) serve() {
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	tp := textproto.NewConn(conn)
	_ = tp.PrintfLine("220 localhost ESMTP")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		switch verb {
		case "EHLO":
			_ = tp.PrintfLine("250-localhost")
			_ = tp.PrintfLine("250 AUTH PLAIN")
		case "AUTH":
			_ = tp.PrintfLine("%s", f.authCode)
		case "MAIL":
			f.mu.Lock()
			f.from = line
			f.mu.Unlock()
			_ = tp.PrintfLine("250 ok")
		case "RCPT":
			f.mu.Lock()
			f.rcpt = append(f.rcpt, line)
			f.mu.Unlock()
			_ = tp.PrintfLine("250 ok")
		case "DATA":
			_ = tp.PrintfLine("354 go ahead")
			body, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			f.mu.Lock()
			f.data = string(body)
			f.mu.Unlock()
			_ = tp.PrintfLine("250 queued")
		case "QUIT":
			_ = tp.PrintfLine("221 bye")
			return
		default:
			_ = tp.PrintfLine("502 unsupported")
		}
	}
}

func TestSendInterviewInviteDeliversMessage(t *testing.T) {
	srv := newFakeSMTPServer(t, "235 accepted")
	n := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: srv.port(), Username: "hr@example.com", Password: "secret"})

	if err := n.SendInterviewInvite(context.Background(), "ann@x.com", "Ann", "http://app/interview/1"); err != nil {
		t.Fatalf("SendInterviewInvite: %v", err)
	}
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if !strings.Contains(srv.from, "<hr@example.com>") {
		t.Fatalf("unexpected sender %q", srv.from)
	}
	if len(srv.rcpt) != 1 || !strings.Contains(srv.rcpt[0], "<ann@x.com>") {
		t.Fatalf("unexpected recipients %v", srv.rcpt)
	}
	for _, want := range []string{"To: ann@x.com", "Content-Type: text/html", "http://app/interview/1"} {
		if !strings.Contains(srv.data, want) {
			t.Fatalf("message missing %q:\n%s", want, srv.data)
		}
	}
}

func TestSendInterviewInviteWrapsTransportError(t *testing.T) {
	srv := newFakeSMTPServer(t, "535 authentication failed")
	n := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: srv.port(), Username: "u", Password: "p"})
	err := n.SendInterviewInvite(context.Background(), "a@b.c", "", "l")
	var upErr *upstream.Error
	if !errors.As(err, &upErr) || upErr.Provider != "smtp" {
		t.Fatalf("expected smtp upstream error, got %v", err)
	}
}

func TestSendInterviewInviteHonoursDeadline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	// Accept and never greet.
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = io.Copy(io.Discard, conn)
	}()
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	n := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: port, Username: "u", Password: "p"})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	start := time.Now()
	err = n.SendInterviewInvite(ctx, "a@b.c", "", "l")
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("send should stop at the context deadline, took %v", elapsed)
	}
	var upErr *upstream.Error
	if !errors.As(err, &upErr) {
		t.Fatalf("expected smtp upstream error, got %v", err)
	}
}

func TestSendInterviewInviteClosesConnOnBadGreeting(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	closed := make(chan struct{})
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = conn.Write([]byte("554 no service\r\n"))
		_, _ = io.Copy(io.Discard, conn)
		close(closed)
	}()
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	n := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: port, Username: "u", Password: "p"})

	if err := n.SendInterviewInvite(context.Background(), "a@b.c", "", "l"); err == nil {
		t.Fatalf("expected greeting error")
	}
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("client connection left open after a rejected greeting")
	}
}

func TestSendInterviewInviteRequiresCredentials(t *testing.T) {
	err := NewSMTP(SMTPConfig{}).SendInterviewInvite(context.Background(), "a@b.c", "", "l")
	if !errors.Is(err, upstream.ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
}
