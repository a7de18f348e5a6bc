package bot

import (
	"reflect"
	"testing"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single token", in: "@UserOne", want: []string{"@UserOne"}},
		{name: "whitespace separated", in: "@UserOne  My Group", want: []string{"@UserOne", "My", "Group"}},
		{name: "quoted group title", in: `@UserOne "My Group"`, want: []string{"@UserOne", "My Group"}},
		{name: "commas as separators", in: "@UserOne,@UserTwo", want: []string{"@UserOne", "@UserTwo"}},
		{name: "comma inside quotes kept", in: `"One, Two"`, want: []string{"One, Two"}},
		{name: "tabs and newlines", in: "a\tb\nc", want: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitArgs(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRepArguments(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantTarget string
		wantChat   string
	}{
		{name: "empty", in: "", wantTarget: "", wantChat: ""},
		{name: "target only", in: "@UserOne", wantTarget: "@UserOne", wantChat: ""},
		{name: "target and quoted group", in: `@UserOne "Trade Chat"`, wantTarget: "@UserOne", wantChat: "Trade Chat"},
		{name: "target and bare group words", in: "@UserOne Trade Chat", wantTarget: "@UserOne", wantChat: "Trade Chat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, chat := parseRepArguments(tt.in)
			if target != tt.wantTarget || chat != tt.wantChat {
				t.Errorf("parseRepArguments(%q) = (%q, %q), want (%q, %q)", tt.in, target, chat, tt.wantTarget, tt.wantChat)
			}
		})
	}
}

func TestParseInlineQuery(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     string
		wantChat string
	}{
		{name: "empty", in: "", want: ""},
		{name: "bare username", in: "UserOne", want: "userone"},
		{name: "rep prefix", in: "rep UserOne", want: "userone"},
		{name: "slash rep prefix", in: "/rep UserOne", want: "userone"},
		{name: "plus rep prefix", in: "+rep UserOne", want: "userone"},
		{name: "short prefix", in: "r UserOne", want: "userone"},
		{name: "cyrillic prefix", in: "реп UserOne", want: "userone"},
		{name: "at sign kept", in: "rep @UserOne", want: "@userone"},
		{name: "prefix only", in: "rep", want: ""},
		{name: "word starting with r is not prefix", in: "rambler", want: "rambler"},
		{name: "group title follows target", in: "rep UserOne Trade Chat", want: "userone", wantChat: "trade chat"},
		{name: "quoted group title", in: `rep UserOne "Trade Chat"`, want: "userone", wantChat: "trade chat"},
		{name: "numeric chat id follows target", in: "rep UserOne -1001234", want: "userone", wantChat: "-1001234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, gotChat := parseInlineQuery(tt.in)
			if got != tt.want || gotChat != tt.wantChat {
				t.Errorf("parseInlineQuery(%q) = (%q, %q), want (%q, %q)", tt.in, got, gotChat, tt.want, tt.wantChat)
			}
		})
	}
}

func TestParseDetailCallback(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantTarget string
		wantChatID *int64
		wantOK     bool
	}{
		{name: "global scope", in: "detail:userone:all", wantTarget: "userone", wantOK: true},
		{name: "chat scope", in: "detail:userone:-1001234", wantTarget: "userone", wantChatID: ptrInt64(-1001234), wantOK: true},
		{name: "missing scope", in: "detail:userone", wantOK: false},
		{name: "garbage scope", in: "detail:userone:xyz", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, chatID, ok := parseDetailCallback(tt.in)

			if ok != tt.wantOK {
				t.Fatalf("parseDetailCallback(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}

			if !ok {
				return
			}

			if target != tt.wantTarget {
				t.Errorf("target = %q, want %q", target, tt.wantTarget)
			}

			if (chatID == nil) != (tt.wantChatID == nil) {
				t.Fatalf("chatID = %v, want %v", chatID, tt.wantChatID)
			}

			if chatID != nil && *chatID != *tt.wantChatID {
				t.Errorf("chatID = %d, want %d", *chatID, *tt.wantChatID)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}

	got := truncate("аaаaаaаaаaаaаaаaаaаa", 5)
	if got != "аaаaа…" {
		t.Errorf("truncate long = %q", got)
	}
}

func ptrInt64(v int64) *int64 { return &v }
