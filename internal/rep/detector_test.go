package rep

import (
	"testing"
)

func sentimentsByTarget(mentions []ParsedMention) map[string]Sentiment {
	out := make(map[string]Sentiment, len(mentions))
	for _, m := range mentions {
		out[m.Target] = m.Sentiment
	}

	return out
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]Sentiment
	}{
		{
			name: "empty text",
			text: "",
			want: map[string]Sentiment{},
		},
		{
			name: "no trigger keyword",
			text: "hello @UserOne how are you",
			want: map[string]Sentiment{},
		},
		{
			name: "keyword without target or mention",
			text: "+реп",
			want: map[string]Sentiment{},
		},
		{
			name: "positive applies to each mention",
			text: "+rep @UserOne @UserTwo",
			want: map[string]Sentiment{"userone": SentimentPositive, "usertwo": SentimentPositive},
		},
		{
			name: "negative applies to each mention",
			text: "-rep @UserOne @UserTwo",
			want: map[string]Sentiment{"userone": SentimentNegative, "usertwo": SentimentNegative},
		},
		{
			name: "trailing sign resolves pending mentions",
			text: "@UserOne @UserTwo -rep",
			want: map[string]Sentiment{"userone": SentimentNegative, "usertwo": SentimentNegative},
		},
		{
			name: "mixed signs split across groups",
			text: "+rep @UserOne @UserTwo -rep @UserThree",
			want: map[string]Sentiment{
				"userone":   SentimentPositive,
				"usertwo":   SentimentPositive,
				"userthree": SentimentNegative,
			},
		},
		{
			name: "repeated plus signs",
			text: "++rep @UserOne",
			want: map[string]Sentiment{"userone": SentimentPositive},
		},
		{
			name: "repeated minus signs",
			text: "--rep @UserOne",
			want: map[string]Sentiment{"userone": SentimentNegative},
		},
		{
			name: "majority minus wins",
			text: "+--rep @UserOne",
			want: map[string]Sentiment{"userone": SentimentNegative},
		},
		{
			name: "tie resolves to positive",
			text: "+-rep @UserOne",
			want: map[string]Sentiment{"userone": SentimentPositive},
		},
		{
			name: "cyrillic keyword",
			text: "спасибо, +реп @UserOne",
			want: map[string]Sentiment{"userone": SentimentPositive},
		},
		{
			name: "extended keyword does not leak into target",
			text: "+репутацию @UserOne",
			want: map[string]Sentiment{"userone": SentimentPositive},
		},
		{
			name: "sign after target with extended keyword",
			text: "@UserOne +репу за сделку",
			want: map[string]Sentiment{"userone": SentimentPositive},
		},
		{
			name: "target without mention prefix",
			text: "userone -rep",
			want: map[string]Sentiment{"userone": SentimentNegative},
		},
		{
			name: "uppercase keyword and target",
			text: "+REP @UserOne",
			want: map[string]Sentiment{"userone": SentimentPositive},
		},
		{
			name: "cyrillic target is folded",
			text: "+rep @Иван_Петров",
			want: map[string]Sentiment{"иван_петров": SentimentPositive},
		},
		{
			name: "no separator between sign keyword and mention",
			text: "+rep@UserOne",
			want: map[string]Sentiment{"userone": SentimentPositive},
		},
		{
			name: "mention shorter than three characters ignored",
			text: "+rep @ab",
			want: map[string]Sentiment{},
		},
		{
			name: "english word containing keyword is not a sign token",
			text: "reputation matters @UserOne",
			want: map[string]Sentiment{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sentimentsByTarget(Extract(tt.text))

			if len(got) != len(tt.want) {
				t.Fatalf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}

			for target, sentiment := range tt.want {
				if got[target] != sentiment {
					t.Errorf("Extract(%q)[%q] = %q, want %q", tt.text, target, got[target], sentiment)
				}
			}
		})
	}
}

func TestExtractOrderIsFirstSeen(t *testing.T) {
	mentions := Extract("+rep @UserOne @UserTwo")

	if len(mentions) != 2 {
		t.Fatalf("got %d mentions, want 2", len(mentions))
	}

	if mentions[0].Target != "userone" || mentions[1].Target != "usertwo" {
		t.Errorf("unexpected order: %v", mentions)
	}
}

func TestExtractLastDistinctSentimentWins(t *testing.T) {
	// The token pass walks left to right: "+rep" sets the current sign, so
	// both @UserOne occurrences register positive before "-rep" arrives with
	// no mention pending or following it.
	mentions := Extract("+rep @UserOne и всё же @UserOne -rep")

	got := sentimentsByTarget(mentions)
	if got["userone"] != SentimentPositive {
		t.Errorf("got %q, want %q", got["userone"], SentimentPositive)
	}

	// A sign followed by the re-mention does overwrite: the second token
	// group registers the target negative after its earlier positive.
	mentions = Extract("+rep @UserOne -rep @UserOne")

	got = sentimentsByTarget(mentions)
	if got["userone"] != SentimentNegative {
		t.Errorf("got %q, want %q", got["userone"], SentimentNegative)
	}
}

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"@UserOne", "userone"},
		{"UserOne", "userone"},
		{"  @UserOne  ", "userone"},
		{"@Иван", "иван"},
		{"userone", "userone"},
		{"@", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTarget(tt.raw); got != tt.want {
			t.Errorf("NormalizeTarget(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeTargetIdempotent(t *testing.T) {
	for _, raw := range []string{"@UserOne", "UserOne", "иван", "@Mixed_Случай42"} {
		once := NormalizeTarget(raw)
		if twice := NormalizeTarget(once); twice != once {
			t.Errorf("NormalizeTarget not idempotent for %q: %q != %q", raw, twice, once)
		}
	}
}
