package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type recordedRequest struct {
	path string
	form map[string]string
}

func newTestClient(t *testing.T, status int) (*Client, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error: %v", err)
		}
		form := make(map[string]string, len(r.PostForm))
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		requests = append(requests, recordedRequest{path: r.URL.Path, form: form})
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	c := NewClient("test-token", "12345")
	c.baseURL = srv.URL
	return c, &requests
}

func TestSendText(t *testing.T) {
	c, requests := newTestClient(t, http.StatusOK)

	if err := c.SendText(context.Background(), "hello *world*"); err != nil {
		t.Fatalf("SendText() error: %v", err)
	}

	if len(*requests) != 1 {
		t.Fatalf("made %d requests, want 1", len(*requests))
	}
	req := (*requests)[0]
	if req.path != "/bottest-token/sendMessage" {
		t.Errorf("path = %q", req.path)
	}
	if req.form["chat_id"] != "12345" {
		t.Errorf("chat_id = %q, want %q", req.form["chat_id"], "12345")
	}
	if req.form["text"] != "hello *world*" {
		t.Errorf("text = %q", req.form["text"])
	}
	if req.form["parse_mode"] != "Markdown" {
		t.Errorf("parse_mode = %q, want Markdown", req.form["parse_mode"])
	}
	if req.form["disable_web_page_preview"] != "true" {
		t.Errorf("disable_web_page_preview = %q, want true", req.form["disable_web_page_preview"])
	}
}

func TestSendPhoto(t *testing.T) {
	c, requests := newTestClient(t, http.StatusOK)

	if err := c.SendPhoto(context.Background(), "https://example.com/a.jpg", "caption"); err != nil {
		t.Fatalf("SendPhoto() error: %v", err)
	}

	req := (*requests)[0]
	if req.path != "/bottest-token/sendPhoto" {
		t.Errorf("path = %q", req.path)
	}
	if req.form["photo"] != "https://example.com/a.jpg" {
		t.Errorf("photo = %q", req.form["photo"])
	}
	if req.form["caption"] != "caption" {
		t.Errorf("caption = %q", req.form["caption"])
	}
}

func TestSendTextErrorStatus(t *testing.T) {
	c, _ := newTestClient(t, http.StatusBadGateway)

	err := c.SendText(context.Background(), "hello")
	if err == nil {
		t.Fatal("SendText() = nil error on 502")
	}
	if !strings.Contains(err.Error(), "sendMessage") {
		t.Errorf("error %q does not name the failing method", err)
	}
}

func TestSendTextMisconfigured(t *testing.T) {
	c := NewClient("", "")
	if err := c.SendText(context.Background(), "hello"); err == nil {
		t.Error("SendText() = nil error with empty credentials")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantLen int
		cut     bool
	}{
		{"short text unchanged", "hello", 5, false},
		{"exactly at cap", strings.Repeat("a", maxMessageLen), maxMessageLen, false},
		{"over cap", strings.Repeat("a", maxMessageLen+100), maxMessageLen, true},
		{"multibyte over cap", strings.Repeat("é", maxMessageLen+1), maxMessageLen, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.text)
			runes := []rune(got)
			if len(runes) != tt.wantLen {
				t.Errorf("truncate() length = %d runes, want %d", len(runes), tt.wantLen)
			}
			if tt.cut && !strings.HasSuffix(got, "…") {
				t.Errorf("truncated text missing ellipsis suffix")
			}
		})
	}
}
