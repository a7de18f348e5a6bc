package db

import "testing"

func TestBuildMessageLink(t *testing.T) {
	tests := []struct {
		name      string
		chatID    int64
		messageID int64
		want      string
	}{
		{
			name:      "supergroup strips -100 prefix",
			chatID:    -1001234567890,
			messageID: 42,
			want:      "https://t.me/c/1234567890/42",
		},
		{
			name:      "plain chat id",
			chatID:    123456,
			messageID: 7,
			want:      "https://t.me/123456/7",
		},
		{
			name:      "basic group without supergroup prefix",
			chatID:    -654321,
			messageID: 3,
			want:      "https://t.me/-654321/3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildMessageLink(tt.chatID, tt.messageID); got != tt.want {
				t.Errorf("BuildMessageLink(%d, %d) = %q, want %q", tt.chatID, tt.messageID, got, tt.want)
			}
		})
	}
}

func TestSanitizeUTF8(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"реп", "реп"},
		{"bad\xffbyte", "badbyte"},
	}

	for _, tt := range tests {
		if got := SanitizeUTF8(tt.in); got != tt.want {
			t.Errorf("SanitizeUTF8(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
