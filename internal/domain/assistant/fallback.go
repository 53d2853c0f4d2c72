package assistant

import "strings"

// Keyword-driven responder used whenever the LLM is unavailable. The rules
// are checked in order and the first match wins; changing the order changes
// which answer a multi-keyword question gets.

type fallbackRule struct {
	match  func(q string) bool
	answer func(q, commune string) string
}

var fallbackRules = []fallbackRule{
	{
		match: keyword("hauteur"),
		answer: func(q, commune string) string {
			if strings.Contains(q, "maximum") || strings.Contains(q, "maximale") {
				return "La hauteur maximale autorisée dans cette zone est de 12 mètres (R+3), mesurée depuis le terrain naturel jusqu'au faîtage du toit."
			}
			return "Les règles de hauteur varient selon le zonage. En zone UA centre-ville : 15m max, en zone UB : 12m max, en zone UC : 9m max."
		},
	},
	{
		match: anyKeyword("zone", "zonage"),
		answer: func(q, commune string) string {
			if strings.EqualFold(commune, "montpellier") {
				return "Cette parcelle est située en zone UB - Zone urbaine mixte à dominante résidentielle. Les constructions à usage d'habitation, de commerce et de bureau y sont autorisées."
			}
			return "Le zonage dépend de la commune et du PLU en vigueur. Les principales zones sont : UA (centre-ville), UB (urbain mixte), UC (pavillonnaire), N (naturelle), A (agricole)."
		},
	},
	{
		match:  anyKeyword("emprise", "sol"),
		answer: canned("L'emprise au sol maximale est de 60% de la surface de la parcelle en zone UB. Cela inclut l'ensemble des constructions, y compris les annexes."),
	},
	{
		match:  allKeywords("limite", "propriété"),
		answer: canned("En zone UB, les constructions peuvent être implantées soit en limite séparative, soit avec un recul minimum de 3 mètres. La hauteur en limite ne peut excéder 3,50 mètres."),
	},
	{
		match:  anyKeyword("stationnement", "parking"),
		answer: canned("Le nombre de places de stationnement requis dépend de l'usage : Pour l'habitat : 1 place par logement jusqu'à 50m², 2 places au-delà. Pour les bureaux : 1 place pour 50m² de surface de plancher."),
	},
	{
		match:  allKeywords("permis", "construire"),
		answer: canned("Un permis de construire est nécessaire pour toute construction nouvelle de plus de 20m² (ou 40m² en zone urbaine avec PLU). Le délai d'instruction est de 2 mois pour une maison individuelle."),
	},
	{
		match:  keyword("piscine"),
		answer: canned("Une piscine de plus de 10m² nécessite une déclaration préalable (jusqu'à 100m²) ou un permis de construire (au-delà). Elle doit respecter un recul de 3m minimum des limites séparatives."),
	},
	{
		match:  keyword("clôture"),
		answer: canned("La hauteur maximale des clôtures est généralement de 2 mètres. En limite de voie publique, une partie pleine de 0,80m maximum peut être surmontée d'un dispositif ajouré."),
	},
	{
		match:  anyKeyword("recul", "retrait"),
		answer: canned("Le recul par rapport à la voirie est généralement de 5 mètres minimum en zone UB. Par rapport aux limites séparatives : soit en limite, soit à une distance égale à la moitié de la hauteur avec un minimum de 3 mètres."),
	},
}

const fallbackMenu = `Je peux vous aider avec les questions sur :

• Le zonage et les règles associées
• Les hauteurs maximales autorisées
• L'emprise au sol et les distances aux limites
• Les règles de stationnement
• Les autorisations nécessaires (permis de construire, déclaration préalable)

Précisez votre question et indiquez si possible la commune et/ou la référence cadastrale concernée.`

// MockResponse returns a deterministic canned answer for the question, or
// the generic topic menu when no keyword matches.
func MockResponse(question, commune string) string {
	q := strings.ToLower(question)
	for _, rule := range fallbackRules {
		if rule.match(q) {
			return rule.answer(q, commune)
		}
	}
	return fallbackMenu
}

func keyword(word string) func(string) bool {
	return func(q string) bool { return strings.Contains(q, word) }
}

func anyKeyword(words ...string) func(string) bool {
	return func(q string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}
}

func allKeywords(words ...string) func(string) bool {
	return func(q string) bool {
		for _, w := range words {
			if !strings.Contains(q, w) {
				return false
			}
		}
		return true
	}
}

func canned(text string) func(q, commune string) string {
	return func(q, commune string) string { return text }
}
