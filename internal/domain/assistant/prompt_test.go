package assistant

import "testing"

func TestBuildPromptWithoutContext(t *testing.T) {
	if got := buildPrompt("Quelle hauteur ?", ""); got != "Quelle hauteur ?" {
		t.Errorf("expected the bare question, got %q", got)
	}
}

func TestBuildPromptWithContext(t *testing.T) {
	got := buildPrompt("Quelle hauteur ?", "article 1\narticle 2")
	want := "Contexte:\narticle 1\narticle 2\n\nQuestion: Quelle hauteur ?"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
