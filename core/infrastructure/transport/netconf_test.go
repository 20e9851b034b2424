package transport

import (
	"bufio"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Juniper/go-netconf/netconf"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/crypto/ssh"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

const (
	frameEnd    = "]]>]]>"
	serverHello = `<?xml version="1.0" encoding="UTF-8"?>
<hello xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">
  <capabilities><capability>urn:ietf:params:netconf:base:1.0</capability></capabilities>
  <session-id>4</session-id>
</hello>`
)

var messageIDPattern = regexp.MustCompile(`message-id="([^"]+)"`)

func sshServerConfig(t *testing.T) *ssh.ServerConfig {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate host key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		t.Fatalf("host key signer: %v", err)
	}
	cfg := &ssh.ServerConfig{
		PasswordCallback: func(ssh.ConnMetadata, []byte) (*ssh.Permissions, error) { return nil, nil },
	}
	cfg.AddHostKey(signer)
	return cfg
}

func sshTestClientConfig() *ssh.ClientConfig {
	return &ssh.ClientConfig{
		User:            "admin",
		Auth:            []ssh.AuthMethod{ssh.Password("secret")},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}
}

// fakeNetconfServer accepts one netconf subsystem, sends hello and answers
// each rpc with the next canned body, echoing its message-id.
func fakeNetconfServer(conn net.Conn, cfg *ssh.ServerConfig, hello string, replies []string, requests chan<- string) {
	sconn, chans, reqs, err := ssh.NewServerConn(conn, cfg)
	if err != nil {
		return
	}
	defer sconn.Close()
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			newCh.Reject(ssh.UnknownChannelType, "session only")
			continue
		}
		ch, chReqs, err := newCh.Accept()
		if err != nil {
			return
		}
		started := make(chan struct{})
		var once sync.Once
		go func() {
			for req := range chReqs {
				ok := req.Type == "subsystem"
				req.Reply(ok, nil)
				if ok {
					once.Do(func() { close(started) })
				}
			}
		}()
		<-started
		speakNetconf(ch, hello, replies, requests)
		ch.Close()
		return
	}
}

func speakNetconf(rw io.ReadWriter, hello string, replies []string, requests chan<- string) {
	reader := bufio.NewReader(rw)
	readFrame := func() (string, error) {
		var b strings.Builder
		for {
			chunk, err := reader.ReadString('>')
			b.WriteString(chunk)
			if strings.HasSuffix(b.String(), frameEnd) {
				return strings.TrimSuffix(b.String(), frameEnd), nil
			}
			if err != nil {
				return "", err
			}
		}
	}

	io.WriteString(rw, hello+frameEnd)
	if _, err := readFrame(); err != nil {
		return
	}
	for {
		req, err := readFrame()
		if err != nil {
			return
		}
		id := ""
		if m := messageIDPattern.FindStringSubmatch(req); m != nil {
			id = m[1]
		}
		if strings.Contains(req, "<close-session") || len(replies) == 0 {
			fmt.Fprintf(rw, `<rpc-reply message-id="%s" xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"><ok/></rpc-reply>%s`, id, frameEnd)
			return
		}
		requests <- req
		fmt.Fprintf(rw, `<rpc-reply message-id="%s" xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">%s</rpc-reply>%s`, id, replies[0], frameEnd)
		replies = replies[1:]
	}
}

func dialFakeNetconf(t *testing.T, hello string, replies ...string) (*NetconfClient, chan string, error) {
	t.Helper()
	client, server := net.Pipe()
	requests := make(chan string, len(replies))
	go fakeNetconfServer(server, sshServerConfig(t), hello, replies, requests)
	t.Cleanup(func() { server.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	nc, err := NewNetconfClient(ctx, client, sshTestClientConfig(), nil)
	if err == nil {
		t.Cleanup(func() { nc.Close() })
	}
	return nc, requests, err
}

func netconfPair(t *testing.T, replies ...string) (*NetconfClient, chan string) {
	t.Helper()
	nc, requests, err := dialFakeNetconf(t, serverHello, replies...)
	if err != nil {
		t.Fatalf("NewNetconfClient() unexpected error: %v", err)
	}
	return nc, requests
}

func TestNetconfGetConfig(t *testing.T) {
	nc, requests := netconfPair(t, `<data><interface/></data>`)

	out, err := nc.GetConfig(context.Background(), `<interface xmlns="urn:brocade.com:mgmt:brocade-interface"/>`)
	if err != nil {
		t.Fatalf("GetConfig() unexpected error: %v", err)
	}
	if want := `<rpc-reply><data><interface/></data></rpc-reply>`; out != want {
		t.Errorf("GetConfig() = %q, want %q", out, want)
	}

	req := <-requests
	for _, want := range []string{"message-id=", "<get-config>", "<running/>", `<filter type="subtree">`, "brocade-interface"} {
		if !strings.Contains(req, want) {
			t.Errorf("request %q missing %q", req, want)
		}
	}
}

func TestNetconfEditConfigMessageIDs(t *testing.T) {
	nc, requests := netconfPair(t, "<ok/>", "<ok/>")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := nc.EditConfig(ctx, "<config/>"); err != nil {
			t.Fatalf("EditConfig() unexpected error: %v", err)
		}
	}
	first, second := <-requests, <-requests
	firstID := messageIDPattern.FindStringSubmatch(first)
	secondID := messageIDPattern.FindStringSubmatch(second)
	if firstID == nil || secondID == nil {
		t.Fatalf("requests carry no message-id: %q, %q", first, second)
	}
	if firstID[1] == secondID[1] {
		t.Errorf("message ids repeated: %q", firstID[1])
	}
	if !strings.Contains(first, "<edit-config><target><running/></target><config/></edit-config>") {
		t.Errorf("unexpected edit-config request %q", first)
	}
}

func TestNetconfRPCError(t *testing.T) {
	reply := `<rpc-error>
    <error-type>application</error-type>
    <error-tag>invalid-value</error-tag>
    <error-severity>error</error-severity>
    <error-message>%Error: Invalid port-channel number</error-message>
  </rpc-error>`
	nc, _ := netconfPair(t, reply)

	_, err := nc.EditConfig(context.Background(), "<config/>")
	var devErr *entities.DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("EditConfig() error = %v, want DeviceError", err)
	}
	if devErr.Line != "%Error: Invalid port-channel number" {
		t.Errorf("DeviceError.Line = %q", devErr.Line)
	}
}

func TestDecodeReply(t *testing.T) {
	tests := []struct {
		name     string
		reply    *netconf.RPCReply
		err      error
		want     string
		wantErr  error
		wantLine string
	}{
		{name: "ok", reply: &netconf.RPCReply{Data: "<ok/>"}, want: "<rpc-reply><ok/></rpc-reply>"},
		{
			name: "warning only",
			reply: &netconf.RPCReply{
				Data:   "<ok/>",
				Errors: []netconf.RPCError{{Severity: "warning", Message: "w"}},
			},
			want: "<rpc-reply><ok/></rpc-reply>",
		},
		{
			name: "tag without message",
			reply: &netconf.RPCReply{
				Errors: []netconf.RPCError{{Tag: "lock-denied", Severity: "error"}},
			},
			err:      errors.New("netconf rpc [error] ''"),
			wantErr:  entities.ErrDevice,
			wantLine: "lock-denied",
		},
		{name: "not xml", err: &xml.SyntaxError{Msg: "unexpected EOF", Line: 1}, wantErr: entities.ErrMalformedPayload},
		{name: "wrong root", err: xml.UnmarshalError("expected element type <rpc-reply> but have <notify>"), wantErr: entities.ErrMalformedPayload},
		{name: "empty", wantErr: entities.ErrMalformedPayload},
		{name: "transport failure", err: io.EOF, wantErr: io.EOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeReply(tt.reply, tt.err)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("decodeReply() unexpected error: %v", err)
				}
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("reply mismatch (-want +got):\n%s", diff)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("decodeReply() error = %v, want %v", err, tt.wantErr)
			}
			var devErr *entities.DeviceError
			if tt.wantLine != "" && (!errors.As(err, &devErr) || devErr.Line != tt.wantLine) {
				t.Errorf("decodeReply() error = %v, want line %q", err, tt.wantLine)
			}
		})
	}
}

func TestNetconfBadGreeting(t *testing.T) {
	_, _, err := dialFakeNetconf(t, `<notify/>`)
	if !errors.Is(err, entities.ErrMalformedPayload) {
		t.Errorf("NewNetconfClient() error = %v, want ErrMalformedPayload", err)
	}
}

func TestNetconfHandshakeTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewNetconfClient(ctx, client, sshTestClientConfig(), nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("NewNetconfClient() error = %v, want DeadlineExceeded", err)
	}
}

func TestNetconfContextCancel(t *testing.T) {
	nc, _ := netconfPair(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := nc.GetConfig(ctx, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("GetConfig() error = %v, want Canceled", err)
	}
}
