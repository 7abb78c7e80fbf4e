package analysis

import (
	"context"
	"testing"

	"github.com/cognicore/facet/pkg/facet/lexicon"
)

func TestStemKatakana(t *testing.T) {
	tests := []struct{ word, want string }{
		{"コンピューター", "コンピュータ"},
		{"サーバー", "サーバ"},
		{"ユーザー", "ユーザ"},
		{"カー", "カー"},       // too short
		{"コピー", "コピー"},     // three runes
		{"検索エンジン", "検索エンジン"}, // not all katakana
		{"エンジン", "エンジン"},   // no prolonged sound mark
		{"", ""},
	}
	for _, tt := range tests {
		if got := StemKatakana(tt.word); got != tt.want {
			t.Errorf("StemKatakana(%q) = %q, want %q", tt.word, got, tt.want)
		}
	}
}

func TestFoldWidth(t *testing.T) {
	tests := []struct{ in, want string }{
		{"ＡＢＣ１２３", "ABC123"},
		{"ｶﾀｶﾅ", "カタカナ"},
		{"ｶﾞｲﾄﾞ", "ガイド"},
		{"検索", "検索"},
	}
	for _, tt := range tests {
		if got := FoldWidth(tt.in); got != tt.want {
			t.Errorf("FoldWidth(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJapaneseTokenize(t *testing.T) {
	lex, err := lexicon.EmbeddedSource{}.Load(context.Background(), "ja")
	if err != nil {
		t.Fatalf("load Japanese lexicon: %v", err)
	}
	a, err := NewJapanese(lex)
	if err != nil {
		t.Fatalf("NewJapanese: %v", err)
	}
	if a.SpaceDelimited() {
		t.Error("Japanese is not space delimited")
	}

	text := "私はコンピューターが好きです。"
	tokens := collect(a, text)
	if len(tokens) == 0 {
		t.Fatal("Expected tokens")
	}

	var sawComputer, sawParticle bool
	for _, tok := range tokens {
		if tok.Start < 0 || tok.Start+tok.Length > len(text) {
			t.Fatalf("Token span out of range: %+v", tok)
		}
		switch tok.Image {
		case "コンピューター":
			sawComputer = true
			if tok.Type != TypeWord || tok.Flags.Has(FlagCommonWord) {
				t.Errorf("Unexpected computer token: %+v", tok)
			}
			if a.Stem(tok.Image) != "コンピュータ" {
				t.Errorf("Stem(%q) = %q", tok.Image, a.Stem(tok.Image))
			}
		case "は":
			sawParticle = true
			if !tok.Flags.Has(FlagCommonWord) {
				t.Error("Particle は should be a common word")
			}
		}
	}
	if !sawComputer || !sawParticle {
		t.Errorf("Missing expected tokens in %+v", tokens)
	}

	last := tokens[len(tokens)-1]
	if last.Type != TypePunctuation || !last.Flags.Has(FlagSentenceEnd) {
		t.Errorf("Expected trailing sentence-end punctuation, got %+v", last)
	}
}

func TestJapaneseWidthFoldedTokens(t *testing.T) {
	lex, _ := lexicon.NewData("ja", nil, nil)
	a, err := NewJapanese(lex)
	if err != nil {
		t.Fatalf("NewJapanese: %v", err)
	}
	for tok := range a.Tokenize("ＧＯ言語") {
		if tok.Type == TypeWord && tok.Image == "ＧＯ" {
			t.Errorf("Full-width letters should be folded, got %q", tok.Image)
		}
	}
}
