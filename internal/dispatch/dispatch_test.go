package dispatch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/qrscan/internal/scan"
	"github.com/coral-mesh/qrscan/internal/scan/content"
	"github.com/coral-mesh/qrscan/internal/testutil"
)

func record(text string) scan.DecodedRecord {
	return scan.DecodedRecord{Text: text, Type: content.Classify(text)}
}

func TestPlan(t *testing.T) {
	tests := []struct {
		text       string
		wantKinds  []Kind
		wantTarget string
	}{
		{"hello world", []Kind{KindCopy}, ""},
		{"", []Kind{KindCopy}, ""},
		{"www.example.com", []Kind{KindCopy, KindOpenURL}, "http://www.example.com"},
		{"HTTPS://Example.com/a", []Kind{KindCopy, KindOpenURL}, "HTTPS://Example.com/a"},
		{"tel:+1-555-0100", []Kind{KindCopy, KindDial}, "tel:+1-555-0100"},
		{"+1 (555) 0100", []Kind{KindCopy, KindDial}, "tel:+1 (555) 0100"},
		{"mailto:bob@example.com", []Kind{KindCopy, KindComposeEmail}, "mailto:bob@example.com"},
		{"alice@example.com", []Kind{KindCopy, KindComposeEmail}, "mailto:alice@example.com"},
		{"smsto:+15550100:see you soon", []Kind{KindCopy, KindComposeSMS}, "sms:+15550100?body=see%20you%20soon"},
		{"sms:+15550100", []Kind{KindCopy, KindComposeSMS}, "sms:+15550100"},
		{"geo:40.7128,-74.0060", []Kind{KindCopy, KindOpenMaps}, "https://www.google.com/maps?q=40.7128,-74.0060"},
		{"WIFI:T:WPA;S:Home;P:pw;;", []Kind{KindCopy, KindShowWiFi}, ""},
		{"MECARD:N:Doe,John;TEL:123;;", []Kind{KindCopy, KindShowContact}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			actions := Plan(record(tt.text))

			var kinds []Kind
			for _, a := range actions {
				kinds = append(kinds, a.Kind)
				assert.Equal(t, tt.text, a.Text, "actions carry the raw payload")
			}
			assert.Equal(t, tt.wantKinds, kinds)
			assert.Equal(t, tt.wantTarget, actions[len(actions)-1].Target())
		})
	}
}

func TestPlan_FieldsOnlyForStructuredTypes(t *testing.T) {
	wifi := Primary(record("WIFI:T:WPA;S:Home;P:pw;;"))
	assert.Equal(t, "Home", wifi.Fields[content.FieldSSID])
	assert.Equal(t, "pw", wifi.Fields[content.FieldPassword])

	contact := Primary(record("MECARD:N:Doe,John;TEL:123;;"))
	assert.Equal(t, "Doe,John", contact.Fields[content.FieldName])

	assert.Nil(t, Primary(record("https://example.com")).Fields)
	assert.Nil(t, Plan(record("WIFI:S:x;;"))[0].Fields, "copy never carries fields")
}

func TestPrimary_PhonePayloadReachesAction(t *testing.T) {
	action := Primary(record("tel:+1-555-0100"))

	assert.Equal(t, KindDial, action.Kind)
	assert.Equal(t, content.Phone, action.Type)
	assert.Equal(t, "+1-555-0100", content.StripPhone(action.Text))
}

func TestFilter(t *testing.T) {
	tests := []struct {
		expr string
		text string
		want bool
	}{
		{`type == "url"`, "https://example.com", true},
		{`type == "url"`, "hello", false},
		{`text.startsWith("https://")`, "https://example.com", true},
		{`type == "wifi" && fields["SSID"] == "Home"`, "WIFI:S:Home;;", true},
		{`type == "wifi" && fields["SSID"] == "Home"`, "WIFI:S:Cafe;;", false},
		{`type in ["phone", "sms"]`, "tel:123", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr+"/"+tt.text, func(t *testing.T) {
			f, err := NewFilter(tt.expr)
			require.NoError(t, err)

			got, err := f.Match(record(tt.text))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_Invalid(t *testing.T) {
	_, err := NewFilter(`type ==`)
	assert.Error(t, err)

	_, err = NewFilter(`text`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must evaluate to bool")

	_, err = NewFilter(`unknown == "x"`)
	assert.Error(t, err)
}

func TestFilter_MissingFieldIsEvalError(t *testing.T) {
	f, err := NewFilter(`fields["SSID"] == "Home"`)
	require.NoError(t, err)

	_, err = f.Match(record("https://example.com"))
	assert.Error(t, err)
}

func TestMarkdown(t *testing.T) {
	md := Markdown(Primary(record("WIFI:T:WPA;S:My|Net;P:pw;;")))
	assert.Contains(t, md, "### WiFi Details")
	assert.Contains(t, md, `| SSID | My\|Net |`)

	md = Markdown(Primary(record("www.example.com")))
	assert.Contains(t, md, "`http://www.example.com`")

	md = Markdown(Primary(record("plain note")))
	assert.Contains(t, md, "plain note")
}

func TestTerminalPerformer(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewTerminalPerformer(&buf)
	require.NoError(t, err)

	require.NoError(t, p.Perform(context.Background(), Primary(record("geo:1,2"))))

	out := buf.String()
	assert.Contains(t, out, "Open in Maps")
	assert.Contains(t, out, "https://www.google.com/maps?q=1,2")
	assert.NotContains(t, out, "\x1b]52", "no clipboard sequence for non-terminals")
}

type recordingRunner struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (r *recordingRunner) run(_ context.Context, name string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.err
}

func TestSystemOpener(t *testing.T) {
	var fallback []Action
	runner := &recordingRunner{}
	opener := &SystemOpener{
		Run:  runner.run,
		GOOS: "linux",
		Fallback: PerformerFunc(func(_ context.Context, a Action) error {
			fallback = append(fallback, a)
			return nil
		}),
	}

	ctx := context.Background()
	require.NoError(t, opener.Perform(ctx, Primary(record("tel:+1-555-0100"))))
	require.NoError(t, opener.Perform(ctx, Primary(record("WIFI:S:Home;;"))))

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"xdg-open", "tel:+1-555-0100"}, runner.calls[0])
	require.Len(t, fallback, 1)
	assert.Equal(t, KindShowWiFi, fallback[0].Kind)
}

func TestOpenCommand(t *testing.T) {
	name, args := openCommand("darwin", "https://x")
	assert.Equal(t, "open", name)
	assert.Equal(t, []string{"https://x"}, args)

	name, args = openCommand("windows", "https://x")
	assert.Equal(t, "rundll32", name)
	assert.Equal(t, []string{"url.dll,FileProtocolHandler", "https://x"}, args)
}

func TestSystemOpener_Errors(t *testing.T) {
	opener := &SystemOpener{Run: (&recordingRunner{err: errors.New("exit status 3")}).run}

	err := opener.Perform(context.Background(), Primary(record("https://example.com")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open_url")

	err = opener.Perform(context.Background(), Primary(record("hello")))
	assert.Error(t, err, "copy without fallback has no handler")
}

func TestDispatcher(t *testing.T) {
	var performed []Action
	performer := PerformerFunc(func(_ context.Context, a Action) error {
		performed = append(performed, a)
		return nil
	})

	filter, err := NewFilter(`type == "url"`)
	require.NoError(t, err)
	d := NewDispatcher(performer, filter, testutil.NewTestLogger(t))

	ok, err := d.Dispatch(context.Background(), record("hello"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = d.Dispatch(context.Background(), record("https://example.com"))
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, performed, 1)
	assert.Equal(t, KindOpenURL, performed[0].Kind)
}

func TestDispatcher_PerformError(t *testing.T) {
	d := NewDispatcher(PerformerFunc(func(context.Context, Action) error {
		return errors.New("no display")
	}), nil, testutil.NewTestLogger(t))

	ok, err := d.Dispatch(context.Background(), record("hello"))
	assert.True(t, ok)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "perform copy"))
}
