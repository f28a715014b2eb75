package harvest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lcolaco/placetap/internal/model"
)

func TestExtractEmails(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "no matches",
			page: "<html><body><p>Call us today!</p></body></html>",
			want: model.NoEmail,
		},
		{
			name: "single address",
			page: "<html><body><p>Reach us at info@a.com</p></body></html>",
			want: "info@a.com",
		},
		{
			name: "duplicates collapse to one",
			page: "<html><body><p>info@a.com</p><footer>info@a.com</footer></body></html>",
			want: "info@a.com",
		},
		{
			name: "multiple addresses sorted",
			page: "<html><body>sales@shop.example or support@shop.example</body></html>",
			want: "sales@shop.example, support@shop.example",
		},
		{
			name: "subdomain and plus tag",
			page: "<p>bookings+web@mail.hotel.example</p>",
			want: "bookings+web@mail.hotel.example",
		},
		{
			name: "script bodies are not visible text",
			page: "<html><body><script>var e='hidden@x.com';</script><p>shown@x.com</p></body></html>",
			want: "shown@x.com",
		},
		{
			name: "single-letter tld is no match",
			page: "<p>broken@host.x</p>",
			want: model.NoEmail,
		},
		{
			name: "plain text without markup",
			page: "contact contact@plain.example now",
			want: "contact@plain.example",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractEmails([]byte(tt.page))
			if got != tt.want {
				t.Errorf("ExtractEmails() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHarvesterEmails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>info@a.com and info@a.com</p></body></html>")
	}))
	defer ts.Close()

	h := New()
	if got := h.Emails(ts.URL); got != "info@a.com" {
		t.Errorf("Emails() = %q, want %q", got, "info@a.com")
	}
}

func TestHarvesterEmailsStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	h := New()
	if got := h.Emails(ts.URL); got != model.NoEmail {
		t.Errorf("Emails() = %q, want placeholder", got)
	}
}

func TestHarvesterEmailsUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close() // connection refused from here on

	h := New()
	if got := h.Emails(url); got != model.NoEmail {
		t.Errorf("Emails() = %q, want placeholder", got)
	}
}

func TestHarvesterEmailsBadURL(t *testing.T) {
	h := New()
	if got := h.Emails("://not-a-url"); got != model.NoEmail {
		t.Errorf("Emails() = %q, want placeholder", got)
	}
}
