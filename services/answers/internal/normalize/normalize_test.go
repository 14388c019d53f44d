package normalize

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Équipe", "equipe"},
		{"ÉQUIPE", "equipe"},
		{"equipe", "equipe"},
		{"première", "premiere"},
		{"Quelle équipe est première au classement ?", "quelle equipe est premiere au classement ?"},
		{"victoires à l'extérieur", "victoires a l'exterieur"},
		{"novembre 2008", "novembre 2008"},
		{"Top 6 !", "top 6 !"},
		{"ﬁnale", "finale"},
		{"Ça marche, NOËL", "ca marche, noel"},
	}
	for _, tt := range tests {
		got := String(tt.input)
		if got != tt.want {
			t.Errorf("String(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestString_CaseAndAccentInvariance(t *testing.T) {
	assert.Equal(t, String("equipe"), String("Équipe"))
	assert.Equal(t, String("equipe"), String("ÉQUIPE"))
	assert.Equal(t, String("exterieur"), String("EXTÉRIEUR"))
}

func TestString_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Quelles sont les confrontations historiques entre le premier et le troisième du championnat ?",
		"Combien de victoires à domicile pour Manchester United ?",
		"℡ ﬁ Ⅸ ½",
		"İstanbul",
		"ÅNGSTRÖM",
		"xyz random unrelated text",
	}
	for _, in := range inputs {
		once := String(in)
		assert.Equal(t, once, String(once), "not idempotent for %q", in)
	}
}

func TestAll(t *testing.T) {
	got := All([]string{"Extérieur", "Manchester", "le plus de buts"})
	assert.Equal(t, []string{"exterieur", "manchester", "le plus de buts"}, got)
	assert.Empty(t, All(nil))
}

func TestString_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := String("Équipe première"); got != "equipe premiere" {
					t.Errorf("got %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
